package strategy

import "github.com/menthorq/tradecore/internal/types"

// pattern is one named, fixed-strength entry in BattleNavale's closed
// pattern set (spec.md §4.5).
type pattern struct {
	name              string
	strength          float64 // signed, in [-1, 1]
	requiredForPremium bool
}

func body(b types.Bar) float64 {
	d := b.Close - b.Open
	if d < 0 {
		return -d
	}
	return d
}

func rng(b types.Bar) float64 {
	return b.High - b.Low
}

func avgRange(bars []types.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		sum += rng(b)
	}
	return sum / float64(len(bars))
}

// detectPatterns scans the current bar against its recent history and
// returns every pattern from the closed set that matched.
func detectPatterns(history []types.Bar) []pattern {
	var found []pattern
	if len(history) == 0 {
		return found
	}
	cur := history[len(history)-1]
	avgR := avgRange(history)
	isLong := rng(cur) > avgR*1.2

	var prev types.Bar
	havePrev := len(history) >= 2
	if havePrev {
		prev = history[len(history)-2]
	}

	curUp := cur.Close > cur.Open
	curDown := cur.Close < cur.Open

	if havePrev && isLong {
		prevDown := prev.Close < prev.Open
		prevUp := prev.Close > prev.Open
		if prevDown && curUp {
			found = append(found, pattern{"long_down_up_bar", 0.80, false})
		}
		if prevUp && curDown {
			found = append(found, pattern{"long_up_down_bar", -0.80, false})
		}
	}

	if curDown && body(cur) < avgR*0.4 {
		found = append(found, pattern{"color_down_setting", -0.40, false})
	}
	if curUp && body(cur) < avgR*0.4 {
		found = append(found, pattern{"color_up_setting", 0.40, false})
	}

	if havePrev && detectRougeSousVerte(prev, cur) {
		found = append(found, pattern{"rouge_sous_verte", 0.60, true})
	}

	if cur.Features.NBCV != nil && havePrev && prev.Features.NBCV != nil {
		if cur.Features.NBCV.AskVolume > prev.Features.NBCV.AskVolume*2 {
			found = append(found, pattern{"double_ask", 0.50, false})
		}
		if cur.Features.NBCV.BidVolume > prev.Features.NBCV.BidVolume*2 {
			found = append(found, pattern{"double_bid", -0.50, false})
		}
	}

	return found
}

// detectRougeSousVerte recognizes the "red under green" absorption setup: a
// down bar after an up bar, whose high does not exceed the prior bar's close,
// signaling buyers absorbed the selling rather than losing control.
func detectRougeSousVerte(prev, cur types.Bar) bool {
	prevUp := prev.Close > prev.Open
	curDown := cur.Close < cur.Open
	return prevUp && curDown && cur.High <= prev.Close
}

// patternScore folds the matched patterns into BattleNavale's pattern_score
// and confidence (spec.md §4.5 steps 1, 5).
func patternScore(found []pattern) (score, confidence float64, hasRouge bool) {
	if len(found) == 0 {
		return 0, 0, false
	}
	var sum float64
	for _, p := range found {
		sum += p.strength
		if p.name == "rouge_sous_verte" {
			hasRouge = true
		}
	}
	avgStrength := sum / float64(len(found))
	score = avgStrength
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	confidence = float64(len(found)) * absf(avgStrength)
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return score, confidence, hasRouge
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
