package strategy

import (
	"fmt"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/types"
)

// BattleNavale is the orderflow/pattern-driven directional analyzer from
// spec.md §4.5. It keeps its own rolling window of finalized bars (pushed
// via OnBar) since pattern detection scans the last K bars, not just the
// bar a single Snapshot carries.
type BattleNavale struct {
	cfg     *config.Config
	history *barHistory
}

// NewBattleNavale builds a BattleNavale analyzer scanning the configured
// pattern lookback window (spec.md §4.5: "last K bars, default 20").
func NewBattleNavale(cfg *config.Config) *BattleNavale {
	return &BattleNavale{cfg: cfg, history: newBarHistory(cfg.PatternLookback)}
}

// OnBar records a newly finalized bar. Must be called once per bar, before
// Analyze is asked to score that bar.
func (a *BattleNavale) OnBar(b types.Bar) { a.history.push(b) }

// Result is BattleNavale's full analysis, matching the analyze() contract in
// spec.md §4.5.
type Result struct {
	Score          float64
	Confidence     float64
	Patterns       []string
	RougeSousVerte bool
	OrderflowScore float64
	PatternScore   float64
}

// Analyze scores the most recently pushed bar against BattleNavale's closed
// pattern set and orderflow composite (spec.md §4.5 steps 1-5).
func (a *BattleNavale) Analyze() Result {
	hist := a.history.last(a.history.cap)
	found := detectPatterns(hist)
	patternScoreVal, confidence, hasRouge := patternScore(found)

	ofScore, ofOK := orderflowScore(hist)
	if !ofOK {
		confidence -= 0.2
		if confidence < 0 {
			confidence = 0
		}
	}

	score := 0.55*patternScoreVal + 0.45*ofScore

	// Rouge-sous-verte rule (spec.md §4.5 step 4): an intended-LONG setup
	// without the rouge_sous_verte pattern present, below the premium
	// confidence threshold, is capped short of PREMIUM classification.
	if score > 0 && !hasRouge && confidence < a.cfg.PremiumThreshold && score > 0.55 {
		score = 0.55
	}

	names := make([]string, len(found))
	for i, p := range found {
		names[i] = p.name
	}

	return Result{
		Score: clamp(score, -1, 1), Confidence: clamp(confidence, 0, 1),
		Patterns: names, RougeSousVerte: hasRouge,
		OrderflowScore: ofScore, PatternScore: patternScoreVal,
	}
}

// Vote converts a Result into the generic AnalyzerVote the SignalFuser
// consumes.
func (r Result) Vote() types.AnalyzerVote {
	side := types.SideNone
	switch {
	case r.Score > 0:
		side = types.SideLong
	case r.Score < 0:
		side = types.SideShort
	}
	rationale := []string{fmt.Sprintf("battle_navale: pattern=%.3f orderflow=%.3f patterns=%v rouge=%v", r.PatternScore, r.OrderflowScore, r.Patterns, r.RougeSousVerte)}
	return types.AnalyzerVote{
		Name: "battle_navale", Score: r.Score, Side: side,
		Confidence: r.Confidence, Rationale: rationale,
	}
}
