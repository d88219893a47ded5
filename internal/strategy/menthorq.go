package strategy

import (
	"strings"
	"time"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/types"
)

// distanceClass groups MenthorQ level names into the priority/tolerance/
// weight tiers MenthorQ-Distance uses (spec.md §4.6). It is a finer
// partition than types.LevelClass (which only tracks staleness windows).
type distanceClass int

const (
	dcGammaWall0DTE distanceClass = iota
	dcSupport0DTE
	dcCallPutWall
	dcGex
	dcHVL
	dcSwing
	dcIneligible // blind spots and anything else: not a MQ-Distance candidate
)

// priorityOrder is the tie-break order from spec.md §4.6 step 3:
// "gamma_wall_0dte > call/put_support_0dte > call/put_wall > gex_1..3 > hvl > swing".
var priorityOrder = []distanceClass{dcGammaWall0DTE, dcSupport0DTE, dcCallPutWall, dcGex, dcHVL, dcSwing}

func classify(name types.LevelName) distanceClass {
	s := string(name)
	switch {
	case name == types.GammaWall0DTE:
		return dcGammaWall0DTE
	case name == types.CallSupport0DTE, name == types.PutSupport0DTE:
		return dcSupport0DTE
	case name == types.CallResistance, name == types.PutSupport:
		return dcCallPutWall
	case strings.HasPrefix(s, "gex_"):
		return dcGex
	case name == types.HVL:
		return dcHVL
	case strings.HasPrefix(s, "swing_"):
		return dcSwing
	default:
		return dcIneligible
	}
}

// toleranceTicks and classWeight resolve a distanceClass to the configured
// tolerance and the fixed scoring weight from spec.md §4.6 steps 2 and 5.
// call_support_0dte/put_support_0dte and call_resistance/put_support have no
// dedicated tolerance entry in spec.md's table; both are 0DTE/static gamma-
// adjacent levels, so they share the gamma_wall tolerance (see DESIGN.md).
func toleranceTicks(cfg *config.Config, class distanceClass) float64 {
	switch class {
	case dcGammaWall0DTE, dcSupport0DTE, dcCallPutWall:
		return cfg.Tolerances.GammaWall
	case dcGex:
		return cfg.Tolerances.Gex
	case dcHVL:
		return cfg.Tolerances.HVL
	case dcSwing:
		return cfg.Tolerances.Swing
	default:
		return 0
	}
}

func classWeight(class distanceClass) float64 {
	switch class {
	case dcGammaWall0DTE, dcSupport0DTE:
		return 1.0
	case dcCallPutWall:
		return 0.9
	case dcGex:
		return 0.7
	case dcHVL:
		return 0.8
	case dcSwing:
		return 0.5
	default:
		return 0
	}
}

func className(class distanceClass) string {
	switch class {
	case dcGammaWall0DTE:
		return "gamma_wall"
	case dcSupport0DTE:
		return "support_0dte"
	case dcCallPutWall:
		return "call_put_wall"
	case dcGex:
		return "gex"
	case dcHVL:
		return "hvl"
	case dcSwing:
		return "swing"
	default:
		return "ineligible"
	}
}

// sideFor maps level-name semantics to a directional bias (spec.md §4.6
// step 4). "support" and "resistance" are checked before the bare
// "call"/"put" substrings so that e.g. call_support_0dte (a dealer support
// level, despite the "call" in its name) resolves to LONG rather than SHORT.
func sideFor(name types.LevelName, price, levelPrice float64) types.Side {
	s := string(name)
	switch {
	case strings.Contains(s, "resistance"):
		return types.SideShort
	case strings.Contains(s, "support"):
		return types.SideLong
	case strings.Contains(s, "call"):
		return types.SideShort
	case strings.Contains(s, "put"):
		return types.SideLong
	default:
		if price < levelPrice {
			return types.SideLong
		}
		return types.SideShort
	}
}

// MqSignal is the MenthorQ-Distance analyzer's output (spec.md §4.6).
type MqSignal struct {
	Side       types.Side
	Score      float64 // signed, in [-1, 1]
	LevelName  types.LevelName
	LevelPrice float64
	Class      string
}

type candidate struct {
	name     types.LevelName
	price    float64
	class    distanceClass
	distance float64 // ticks
}

// Outcome reports how AnalyzeMenthorQDistance resolved.
type Outcome int

const (
	// OutcomeNone: no eligible level within tolerance.
	OutcomeNone Outcome = iota
	// OutcomeFound: a usable MqSignal was produced.
	OutcomeFound
	// OutcomeExpired: the nearest decisive level exists but is EXPIRED
	// (spec.md §4.6 step 6, §4.7 hard block "level_expired").
	OutcomeExpired
)

// AnalyzeMenthorQDistance implements spec.md §4.6: distance-to-level
// proximity scoring with class-priority tie-breaking. The Outcome
// distinguishes "no candidate at all" from "the nearest decisive level is
// EXPIRED", since the latter is a distinct hard block in spec.md §4.7.
func AnalyzeMenthorQDistance(price, tickSize float64, levels types.LevelSet, windows types.StalenessWindows, cfg *config.Config, now time.Time) (*MqSignal, Outcome) {
	if tickSize <= 0 {
		return nil, OutcomeNone
	}

	var candidates []candidate
	var nearestExpired *candidate
	for name, lvl := range levels.Levels {
		class := classify(name)
		if class == dcIneligible {
			continue
		}
		tol := toleranceTicks(cfg, class)
		if tol <= 0 {
			continue
		}
		dist := absf(price-lvl.Price) / tickSize
		if dist > tol {
			continue
		}
		c := candidate{name: name, price: lvl.Price, class: class, distance: dist}
		if types.Staleness(now, lvl, windows) == types.Expired {
			if nearestExpired == nil || c.distance < nearestExpired.distance {
				nc := c
				nearestExpired = &nc
			}
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		if nearestExpired != nil {
			return nil, OutcomeExpired
		}
		return nil, OutcomeNone
	}

	best := bestCandidate(candidates)

	// If an EXPIRED level outranks every fresh/stale candidate by the same
	// priority/distance rule, it is the "nearest decisive level" and blocks
	// per spec.md step 6, even though a lower-priority fresh candidate exists.
	if nearestExpired != nil {
		rank := make(map[distanceClass]int, len(priorityOrder))
		for i, c := range priorityOrder {
			rank[c] = i
		}
		br, er := rank[best.class], rank[nearestExpired.class]
		if er < br || (er == br && nearestExpired.distance < best.distance) {
			return nil, OutcomeExpired
		}
	}

	tol := toleranceTicks(cfg, best.class)
	magnitude := (1 - best.distance/tol) * classWeight(best.class)
	magnitude = clamp(magnitude, 0, 1)

	side := sideFor(best.name, price, best.price)
	signed := magnitude
	if side == types.SideShort {
		signed = -magnitude
	}

	return &MqSignal{Side: side, Score: signed, LevelName: best.name, LevelPrice: best.price, Class: className(best.class)}, OutcomeFound
}

// bestCandidate picks the highest-priority candidate, breaking ties by
// smallest distance (spec.md §4.6 step 3).
func bestCandidate(candidates []candidate) candidate {
	rank := make(map[distanceClass]int, len(priorityOrder))
	for i, c := range priorityOrder {
		rank[c] = i
	}
	best := candidates[0]
	bestRank := rank[best.class]
	for _, c := range candidates[1:] {
		r := rank[c.class]
		if r < bestRank || (r == bestRank && c.distance < best.distance) {
			best = c
			bestRank = r
		}
	}
	return best
}

// Vote converts an MqSignal into the generic AnalyzerVote.
func (s MqSignal) Vote() types.AnalyzerVote {
	return types.AnalyzerVote{
		Name: "menthorq_distance", Score: s.Score, Side: s.Side, Confidence: absf(s.Score),
		Rationale: []string{"menthorq_distance: level=" + string(s.LevelName) + " class=" + s.Class},
	}
}
