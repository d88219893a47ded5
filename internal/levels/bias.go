package levels

import "github.com/menthorq/tradecore/internal/types"

// DealersBias derives the options-market positioning scalar in [-1, +1]
// (spec.md §3 glossary) from the symbol's gex_1..gex_10 gamma-exposure
// levels, since the closed Record set carries no dedicated dealer-bias
// variant (see DESIGN.md). Each gex level votes: spot trading above the
// level reads as dealers long gamma there (bullish, supportive), spot below
// reads bearish; votes are weighted inversely by distance so nearby levels
// dominate the reading.
func DealersBias(ls types.LevelSet, spot float64) float64 {
	if spot <= 0 {
		return 0
	}
	var weighted, totalWeight float64
	for name, lvl := range ls.Levels {
		if !isGex(name) {
			continue
		}
		dist := absf(spot - lvl.Price)
		weight := 1.0 / (1.0 + dist/spot)
		sign := 1.0
		if spot < lvl.Price {
			sign = -1.0
		}
		weighted += sign * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	bias := weighted / totalWeight
	if bias > 1 {
		bias = 1
	}
	if bias < -1 {
		bias = -1
	}
	return bias
}

func isGex(name types.LevelName) bool {
	s := string(name)
	return len(s) >= 4 && s[:4] == "gex_"
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
