package types

// VixRegime buckets the current VIX print into one of four bands
// (spec.md §3): LOW <15, MID [15,22), HIGH [22,35), EXTREME >=35.
type VixRegime int

const (
	VixLow VixRegime = iota
	VixMid
	VixHigh
	VixExtreme
)

func (r VixRegime) String() string {
	switch r {
	case VixLow:
		return "low"
	case VixMid:
		return "mid"
	case VixHigh:
		return "high"
	case VixExtreme:
		return "extreme"
	default:
		return "unknown"
	}
}

// RegimeFor classifies a VIX close into its regime.
func RegimeFor(vix float64) VixRegime {
	switch {
	case vix < 15:
		return VixLow
	case vix < 22:
		return VixMid
	case vix < 35:
		return VixHigh
	default:
		return VixExtreme
	}
}
