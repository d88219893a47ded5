package types

import "time"

// Bar is the derived per-(symbol, timeframe, bar_index) aggregate: OHLCV plus
// every feature value valid as of bar close (spec.md §3). A Bar starts open
// and is finalized exactly once per bar_index, but may be revised later if a
// late record arrives; Revision tracks that.
type Bar struct {
	Symbol    string
	Timeframe string
	BarIndex  int64
	Revision  int

	Open, High, Low, Close float64
	Volume                 int64

	OpenTime  time.Time
	CloseTime time.Time

	Finalized   bool
	FinalizedAt time.Time

	Features BarFeatures
}

// Clone returns a deep-enough copy for safe concurrent reads: scalar fields
// copy by value, and Features' slice fields are copied so a reader never
// observes a mutation in progress.
func (b Bar) Clone() Bar {
	b.Features = b.Features.clone()
	return b
}

// VWAPBands holds the session VWAP and its three standard-deviation bands.
type VWAPBands struct {
	VWAP                         float64
	Up1, Dn1, Up2, Dn2, Up3, Dn3 float64
}

// ValueArea holds a volume profile's point of control and value area bounds.
type ValueArea struct {
	VPOC, VAH, VAL float64
}

// NBCV holds the footprint pressure/delta reading for one bar.
type NBCV struct {
	AskVolume, BidVolume   float64
	Delta, CumulativeDelta float64
	DeltaRatio             float64
	AskPercent, BidPercent float64
	// Pressure is -1 (bearish), 0 (neutral), +1 (bullish); derived from the
	// ask/bid percentage thresholds in spec.md §4.3.
	Pressure int
}

// VolumeProfile holds the rolling volume profile and its filtered high/low
// volume nodes (spec.md §4.5: HVN/LVN within ±3% of spot).
type VolumeProfile struct {
	VPOC, VAH, VAL float64
	HVN, LVN       []float64
}

func (vp VolumeProfile) clone() VolumeProfile {
	out := vp
	if vp.HVN != nil {
		out.HVN = append([]float64(nil), vp.HVN...)
	}
	if vp.LVN != nil {
		out.LVN = append([]float64(nil), vp.LVN...)
	}
	return out
}

// BarFeatures bundles every feature the FeatureEngine computes for a bar.
// Pointer fields are nil until the first record of that kind arrives for the
// session, matching spec.md's "features are optional until warmed up" note.
type BarFeatures struct {
	VWAP            *VWAPBands
	VVA             *ValueArea
	PrevVVA         *ValueArea
	NBCV            *NBCV
	CumulativeDelta float64
	ATR             *float64
	VolumeProfile   *VolumeProfile
	TrendConfirm    *TrendConfirm

	// CurrentPrice is the mid of the last quote, or the last trade price if
	// no quote arrived within 500ms (spec.md §3).
	CurrentPrice *float64
	// Spread is the last observed bid-ask spread; SpreadMedian60s is the
	// rolling median spread over the trailing 60 seconds, used by the
	// execution rules' wide-spread soft modifier (spec.md §4.7).
	Spread          *float64
	SpreadMedian60s *float64
}

func (f BarFeatures) clone() BarFeatures {
	out := f
	if f.VWAP != nil {
		v := *f.VWAP
		out.VWAP = &v
	}
	if f.VVA != nil {
		v := *f.VVA
		out.VVA = &v
	}
	if f.PrevVVA != nil {
		v := *f.PrevVVA
		out.PrevVVA = &v
	}
	if f.NBCV != nil {
		v := *f.NBCV
		out.NBCV = &v
	}
	if f.ATR != nil {
		v := *f.ATR
		out.ATR = &v
	}
	if f.VolumeProfile != nil {
		v := f.VolumeProfile.clone()
		out.VolumeProfile = &v
	}
	if f.TrendConfirm != nil {
		v := *f.TrendConfirm
		out.TrendConfirm = &v
	}
	if f.CurrentPrice != nil {
		v := *f.CurrentPrice
		out.CurrentPrice = &v
	}
	if f.Spread != nil {
		v := *f.Spread
		out.Spread = &v
	}
	if f.SpreadMedian60s != nil {
		v := *f.SpreadMedian60s
		out.SpreadMedian60s = &v
	}
	return out
}

// TrendConfirm is the goti-derived structure confirmation signal (HMA/AMDO/
// ATSO crossovers folded into a single directional score). It is carried on
// the Bar only; neither BattleNavale nor the fuser's structure_score reads it.
type TrendConfirm struct {
	HMABullish, HMABearish   bool
	AMDOBullish, AMDOBearish bool
	ATSOBullish              bool
	Score                    float64 // in [-1, 1]
}
