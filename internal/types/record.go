// Package types holds the data model shared by every layer of the decision
// pipeline: input Records, the unified event stream, derived Bars, MenthorQ
// LevelSets, the VIX regime, the per-bar Snapshot, and the emitted
// TradingDecision. The Record variant set is closed and statically known
// (spec.md §3); it is modeled as an interface with one concrete struct per
// variant plus a dispatch-friendly Kind() discriminator, rather than a
// dynamic map keyed by string name.
package types

import "time"

// VariantKind discriminates the closed set of Record variants.
type VariantKind int

const (
	VariantBaseBar VariantKind = iota
	VariantQuote
	VariantTrade
	VariantDepthLevel
	VariantVWAP
	VariantVVA
	VariantPVWAP
	VariantNBCV
	VariantCumulativeDelta
	VariantAtrBar
	VariantVolumeProfile
	VariantCorrelation
	VariantMenthorQLevels
	VariantVixPoint
)

func (v VariantKind) String() string {
	switch v {
	case VariantBaseBar:
		return "basedata"
	case VariantQuote:
		return "quote"
	case VariantTrade:
		return "trade"
	case VariantDepthLevel:
		return "depth"
	case VariantVWAP:
		return "vwap"
	case VariantVVA:
		return "vva"
	case VariantPVWAP:
		return "pvwap"
	case VariantNBCV:
		return "nbcv_footprint"
	case VariantCumulativeDelta:
		return "cumulative_delta"
	case VariantAtrBar:
		return "atr"
	case VariantVolumeProfile:
		return "volume_profile"
	case VariantCorrelation:
		return "correlation"
	case VariantMenthorQLevels:
		return "menthorq"
	case VariantVixPoint:
		return "vix"
	default:
		return "unknown"
	}
}

// RecordMeta is the set of fields every Record variant carries (spec.md §3).
type RecordMeta struct {
	Symbol    string
	ChartID   int
	Timestamp time.Time // UTC, monotonic per chart
	BarIndex  int64     // monotonic per chart+symbol
	Revision  int       // incremented when a later record revises this bar_index
	Variant   VariantKind
}

// Key returns the idempotent-ingestion dedupe key (symbol, timestamp,
// bar_index, variant) from spec.md §3/§4.1.
func (m RecordMeta) Key() DedupeKey {
	return DedupeKey{
		Symbol:    m.Symbol,
		TimeUnix:  m.Timestamp.UnixNano(),
		BarIndex:  m.BarIndex,
		Variant:   m.Variant,
	}
}

// DedupeKey is a comparable struct so it can key a plain Go map.
type DedupeKey struct {
	Symbol   string
	TimeUnix int64
	BarIndex int64
	Variant  VariantKind
}

// Record is implemented by every concrete variant struct below.
type Record interface {
	Meta() RecordMeta
}

// BaseBarRecord carries OHLCV for the underlying chart timeframe.
type BaseBarRecord struct {
	M                     RecordMeta
	Open, High, Low, Close float64
	Volume                int64
}

func (r BaseBarRecord) Meta() RecordMeta { return r.M }

// QuoteRecord is a top-of-book bid/ask snapshot.
type QuoteRecord struct {
	M                  RecordMeta
	Bid, Ask           float64
	BidQty, AskQty     float64
	Seq                int64
}

func (r QuoteRecord) Meta() RecordMeta { return r.M }

// TradeRecord is a single executed trade print.
type TradeRecord struct {
	M        RecordMeta
	Price    float64
	Volume   float64
	Seq      int64
}

func (r TradeRecord) Meta() RecordMeta { return r.M }

// DepthLevelRecord is one level of order-book depth.
type DepthLevelRecord struct {
	M         RecordMeta
	Level     int
	BidPrice  float64
	BidQty    float64
	AskPrice  float64
	AskQty    float64
}

func (r DepthLevelRecord) Meta() RecordMeta { return r.M }

// VWAPRecord carries the session VWAP and its standard-deviation bands, when
// the upstream chart supplies them directly (spec.md §4.2).
type VWAPRecord struct {
	M                          RecordMeta
	VWAP                       float64
	Up1, Dn1, Up2, Dn2, Up3, Dn3 float64
}

func (r VWAPRecord) Meta() RecordMeta { return r.M }

// VVARecord carries the current-session Volume Value Area.
type VVARecord struct {
	M                RecordMeta
	VPOC, VAH, VAL   float64
}

func (r VVARecord) Meta() RecordMeta { return r.M }

// PVWAPRecord carries a prior-session VWAP reference (rarely used directly;
// kept for completeness of the closed variant set).
type PVWAPRecord struct {
	M    RecordMeta
	VWAP float64
}

func (r PVWAPRecord) Meta() RecordMeta { return r.M }

// NBCVRecord is the "Numbers Bars Calculated Values" footprint payload.
type NBCVRecord struct {
	M                                RecordMeta
	AskVolume, BidVolume             float64
	Delta, CumulativeDelta           float64
	Trades                           int64
	TotalVolume                      float64
	DeltaRatio                       float64
	AskPercent, BidPercent           float64
	PressureBullish, PressureBearish bool
	Pressure                         int // -1, 0, +1
}

func (r NBCVRecord) Meta() RecordMeta { return r.M }

// CumulativeDeltaRecord is a standalone cumulative-delta reading (some
// charts emit this separately from the NBCV footprint).
type CumulativeDeltaRecord struct {
	M     RecordMeta
	Value float64
}

func (r CumulativeDeltaRecord) Meta() RecordMeta { return r.M }

// AtrBarRecord carries a precomputed ATR reading for the bar.
type AtrBarRecord struct {
	M   RecordMeta
	ATR float64
}

func (r AtrBarRecord) Meta() RecordMeta { return r.M }

// VolumeProfileRecord carries the rolling (30-minute) volume profile.
type VolumeProfileRecord struct {
	M                RecordMeta
	VPOC, VAH, VAL   float64
	HVN, LVN         []float64
}

func (r VolumeProfileRecord) Meta() RecordMeta { return r.M }

// CorrelationRecord carries the latest ES/NQ correlation reading.
type CorrelationRecord struct {
	M     RecordMeta
	Value float64
}

func (r CorrelationRecord) Meta() RecordMeta { return r.M }

// MenthorQLevelsRecord carries an options-derived level set update for one
// symbol: gamma-class levels, blind spots, and swing levels, each keyed by
// name within the payload.
type MenthorQLevelsRecord struct {
	M          RecordMeta
	Gamma      map[string]float64 // e.g. "call_resistance", "gamma_wall_0dte", "gex_3"
	BlindSpots map[string]float64 // "bl_1".."bl_10"
	Swing      map[string]float64 // "swing_1".."swing_60"
}

func (r MenthorQLevelsRecord) Meta() RecordMeta { return r.M }

// VixPointRecord carries the latest VIX index print (chart 8 in spec.md §6).
type VixPointRecord struct {
	M     RecordMeta
	Close float64
}

func (r VixPointRecord) Meta() RecordMeta { return r.M }

// UnifiedEvent is a Record tagged with its ingestion timestamp and source
// chart; the Unifier emits these in total order by (Timestamp, ChartID,
// BarIndex, Variant) (spec.md §3).
type UnifiedEvent struct {
	Record      Record
	IngestedAt  time.Time
	SourceChart int
}

// Less implements the UnifiedEvent total order from spec.md §3.
func (e UnifiedEvent) Less(o UnifiedEvent) bool {
	am, bm := e.Record.Meta(), o.Record.Meta()
	if !am.Timestamp.Equal(bm.Timestamp) {
		return am.Timestamp.Before(bm.Timestamp)
	}
	if am.ChartID != bm.ChartID {
		return am.ChartID < bm.ChartID
	}
	if am.BarIndex != bm.BarIndex {
		return am.BarIndex < bm.BarIndex
	}
	return am.Variant < bm.Variant
}
