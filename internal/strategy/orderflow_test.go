package strategy

import (
	"testing"

	"github.com/menthorq/tradecore/internal/types"
)

func barWithNBCV(idx int64, cumDelta, askVol, bidVol float64, pressure int, deltaRatio float64) types.Bar {
	b := bar(idx, 5000, 5001, 4999, 5000.5)
	b.Features.NBCV = &types.NBCV{
		CumulativeDelta: cumDelta, AskVolume: askVol, BidVolume: bidVol,
		Pressure: pressure, DeltaRatio: deltaRatio,
	}
	return b
}

func TestOrderflowScoreNoHistoryIsNotOK(t *testing.T) {
	if _, ok := orderflowScore(nil); ok {
		t.Fatalf("expected no orderflow score for empty history")
	}
}

func TestOrderflowScoreMissingCurrentNBCVIsNotOK(t *testing.T) {
	history := []types.Bar{bar(1, 5000, 5001, 4999, 5000.5)}
	if _, ok := orderflowScore(history); ok {
		t.Fatalf("expected no orderflow score when the current bar lacks NBCV")
	}
}

func TestOrderflowScorePositiveWithBullishPressure(t *testing.T) {
	history := []types.Bar{
		barWithNBCV(1, 100, 600, 400, 1, 0.2),
		barWithNBCV(2, 150, 600, 400, 1, 0.3),
		barWithNBCV(3, 250, 700, 300, 1, 0.5),
	}
	score, ok := orderflowScore(history)
	if !ok {
		t.Fatalf("expected an orderflow score when NBCV is present")
	}
	if score <= 0 {
		t.Fatalf("expected a positive score for rising delta and persistent bullish pressure, got %v", score)
	}
}

func TestCumulativeDeltaSlopeSingleBarIsZero(t *testing.T) {
	history := []types.Bar{barWithNBCV(1, 100, 600, 400, 1, 0.2)}
	if got := cumulativeDeltaSlope(history); got != 0 {
		t.Fatalf("expected 0 slope for a single bar, got %v", got)
	}
}

func TestPressurePersistenceAllMatchIsFullMagnitude(t *testing.T) {
	window := []types.Bar{
		barWithNBCV(1, 0, 0, 0, 1, 0),
		barWithNBCV(2, 0, 0, 0, 1, 0),
	}
	if got := pressurePersistence(window, 1); got != 1 {
		t.Fatalf("expected full positive persistence, got %v", got)
	}
}

func TestPressurePersistenceNegativePressureIsNegative(t *testing.T) {
	window := []types.Bar{
		barWithNBCV(1, 0, 0, 0, -1, 0),
		barWithNBCV(2, 0, 0, 0, -1, 0),
	}
	if got := pressurePersistence(window, -1); got != -1 {
		t.Fatalf("expected full negative persistence, got %v", got)
	}
}

func TestPressurePersistenceZeroCurrentIsZero(t *testing.T) {
	window := []types.Bar{barWithNBCV(1, 0, 0, 0, 1, 0)}
	if got := pressurePersistence(window, 0); got != 0 {
		t.Fatalf("expected 0 persistence for a neutral current pressure, got %v", got)
	}
}

func TestClampBounds(t *testing.T) {
	if clamp(5, -1, 1) != 1 {
		t.Fatalf("expected clamp to cap at the high bound")
	}
	if clamp(-5, -1, 1) != -1 {
		t.Fatalf("expected clamp to cap at the low bound")
	}
	if clamp(0.5, -1, 1) != 0.5 {
		t.Fatalf("expected clamp to pass through an in-range value")
	}
}
