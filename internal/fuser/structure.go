package fuser

import "github.com/menthorq/tradecore/internal/types"

// structureScore implements spec.md §4.8 step 1's structure_score: a
// composite of VWAP alignment, VVA position, and ES/NQ correlation
// confirmation, each normalized to [-1, +1] and averaged.
func structureScore(snap types.Snapshot) float64 {
	var terms []float64
	if v, ok := vwapAlignment(snap); ok {
		terms = append(terms, v)
	}
	if v, ok := vvaPosition(snap); ok {
		terms = append(terms, v)
	}
	terms = append(terms, correlationConfirmation(snap))

	if len(terms) == 0 {
		return 0
	}
	var sum float64
	for _, t := range terms {
		sum += t
	}
	return clamp(sum/float64(len(terms)), -1, 1)
}

// vwapAlignment scores price against the VWAP center and its sigma bands:
// at the center the score is 0, at or beyond the 3rd band it saturates at
// +-1.
func vwapAlignment(snap types.Snapshot) (float64, bool) {
	vwap := snap.Bar.Features.VWAP
	if vwap == nil || vwap.VWAP == 0 {
		return 0, false
	}
	price := snap.CurrentPrice
	span := vwap.Up3 - vwap.VWAP
	if span <= 0 {
		return 0, false
	}
	return clamp((price-vwap.VWAP)/span, -1, 1), true
}

// vvaPosition scores price relative to the prior value area: above VAH is
// bullish, below VAL is bearish, inside scales linearly between them.
func vvaPosition(snap types.Snapshot) (float64, bool) {
	vva := snap.Bar.Features.PrevVVA
	if vva == nil {
		vva = snap.Bar.Features.VVA
	}
	if vva == nil || vva.VAH <= vva.VAL {
		return 0, false
	}
	price := snap.CurrentPrice
	mid := (vva.VAH + vva.VAL) / 2
	halfRange := (vva.VAH - vva.VAL) / 2
	return clamp((price-mid)/halfRange, -1, 1), true
}

// correlationConfirmation scores the leadership direction scaled by how
// strongly ES/NQ are currently correlated: a confident leadership read only
// confirms structure when the two contracts are actually moving together.
func correlationConfirmation(snap types.Snapshot) float64 {
	dir := clamp(snap.Leadership.LS, -1, 1)
	return clamp(dir*snap.CorrelationESNQ, -1, 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
