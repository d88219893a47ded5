package strategy

import (
	"testing"

	"github.com/menthorq/tradecore/internal/types"
)

func TestDetectRougeSousVerteRequiresHighBeneathPriorClose(t *testing.T) {
	prev := bar(1, 5000, 5005, 4998, 5004) // up bar
	cur := bar(2, 5003, 5004, 5000, 5001)  // down bar, high <= prev.Close(5004)
	if !detectRougeSousVerte(prev, cur) {
		t.Fatalf("expected rouge_sous_verte to match")
	}
}

func TestDetectRougeSousVerteFailsWhenHighBreaksAbove(t *testing.T) {
	prev := bar(1, 5000, 5005, 4998, 5004)
	cur := bar(2, 5003, 5006, 5000, 5001) // high (5006) > prev.Close (5004)
	if detectRougeSousVerte(prev, cur) {
		t.Fatalf("expected rouge_sous_verte to fail once the high breaks the prior close")
	}
}

func TestDetectPatternsEmptyHistory(t *testing.T) {
	if found := detectPatterns(nil); len(found) != 0 {
		t.Fatalf("expected no patterns from empty history, got %v", found)
	}
}

func TestDetectPatternsLongDownUpBar(t *testing.T) {
	history := []types.Bar{
		bar(1, 5000, 5001, 4998, 4999), // down bar, range 3
		bar(2, 4999, 5010, 4998, 5005), // up bar, range 12, > avg*1.2
	}
	found := detectPatterns(history)
	var names []string
	for _, p := range found {
		names = append(names, p.name)
	}
	hasLongDownUp := false
	for _, n := range names {
		if n == "long_down_up_bar" {
			hasLongDownUp = true
		}
	}
	if !hasLongDownUp {
		t.Fatalf("expected long_down_up_bar among detected patterns, got %v", names)
	}
}

func TestPatternScoreEmptyIsZero(t *testing.T) {
	score, conf, rouge := patternScore(nil)
	if score != 0 || conf != 0 || rouge {
		t.Fatalf("expected zero-value result for no patterns, got %v %v %v", score, conf, rouge)
	}
}

func TestPatternScoreAveragesStrengthAndFlagsRouge(t *testing.T) {
	found := []pattern{
		{name: "rouge_sous_verte", strength: 0.60, requiredForPremium: true},
		{name: "color_up_setting", strength: 0.40},
	}
	score, conf, rouge := patternScore(found)
	if !rouge {
		t.Fatalf("expected rouge_sous_verte to be flagged")
	}
	wantScore := (0.60 + 0.40) / 2
	if score != wantScore {
		t.Fatalf("expected average strength %v, got %v", wantScore, score)
	}
	if conf <= 0 {
		t.Fatalf("expected positive confidence, got %v", conf)
	}
}

func TestPatternScoreClampsToUnitRange(t *testing.T) {
	found := []pattern{
		{name: "a", strength: 1.0},
		{name: "b", strength: 1.0},
		{name: "c", strength: 1.0},
	}
	_, conf, _ := patternScore(found)
	if conf != 1 {
		t.Fatalf("expected confidence to clamp to 1, got %v", conf)
	}
}
