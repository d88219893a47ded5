package testutils

import (
	"time"

	"github.com/menthorq/tradecore/internal/types"
)

// BaseBar builds a synthetic BaseBarRecord for a given symbol/chart/index at
// the given timestamp, the minimal fixture most FeatureEngine tests start
// from.
func BaseBar(symbol string, chart int, idx int64, ts time.Time, o, h, l, c float64, v int64) types.BaseBarRecord {
	return types.BaseBarRecord{
		M: types.RecordMeta{
			Symbol: symbol, ChartID: chart, Timestamp: ts, BarIndex: idx,
			Variant: types.VariantBaseBar,
		},
		Open: o, High: h, Low: l, Close: c, Volume: v,
	}
}

// NBCV builds a synthetic NBCVRecord.
func NBCV(symbol string, chart int, idx int64, ts time.Time, ask, bid, delta float64) types.NBCVRecord {
	total := ask + bid
	var askPct, bidPct float64
	if total > 0 {
		askPct, bidPct = ask/total, bid/total
	}
	return types.NBCVRecord{
		M: types.RecordMeta{
			Symbol: symbol, ChartID: chart, Timestamp: ts, BarIndex: idx,
			Variant: types.VariantNBCV,
		},
		AskVolume: ask, BidVolume: bid, Delta: delta, TotalVolume: total,
		AskPercent: askPct, BidPercent: bidPct,
	}
}

// MenthorQ builds a synthetic MenthorQLevelsRecord.
func MenthorQ(symbol string, chart int, idx int64, ts time.Time, gamma map[string]float64) types.MenthorQLevelsRecord {
	return types.MenthorQLevelsRecord{
		M: types.RecordMeta{
			Symbol: symbol, ChartID: chart, Timestamp: ts, BarIndex: idx,
			Variant: types.VariantMenthorQLevels,
		},
		Gamma: gamma,
	}
}

// VixPoint builds a synthetic VixPointRecord.
func VixPoint(ts time.Time, close float64) types.VixPointRecord {
	return types.VixPointRecord{
		M: types.RecordMeta{
			Symbol: "VIX", ChartID: 8, Timestamp: ts,
			Variant: types.VariantVixPoint,
		},
		Close: close,
	}
}

// FakeClock is a manually advanced clock for deterministic timing tests.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock { return &FakeClock{now: start} }

func (c *FakeClock) Now() time.Time { return c.now }

func (c *FakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
