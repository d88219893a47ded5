// Package leadership implements the LeadershipEngine: ES-vs-NQ Z-momentum
// across three horizons, rolling beta and correlation, and the vix-gated
// veto/bonus logic that Execution Rules and SignalFuser consult
// (spec.md §4.4).
package leadership

import (
	"math"
	"time"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/types"
)

var horizons = []struct {
	name   string
	window time.Duration
	weight float64
}{
	{"3s", 3 * time.Second, 0.2},
	{"30s", 30 * time.Second, 0.5},
	{"5m", 5 * time.Minute, 0.3},
}

const returnHistoryLen = 120
const corrSampleLen = 60

// Engine tracks ES and NQ price history across the three horizons and
// derives the combined leadership score. A single task owns the Engine and
// calls Update on every new (es, nq) price pair; everything else reads via
// Snapshot, which is a value copy.
type Engine struct {
	prices  map[string]*series // "ES"/"NQ" price history, one series per symbol
	returns map[string][]float64 // horizon-name -> ring of recent log returns, per symbol key "ES:3s"

	corrES *series
	corrNQ *series

	last types.Leadership
}

// NewEngine creates a LeadershipEngine. bufCapacity bounds the raw price
// history retained per symbol; it must cover the longest horizon (5 min) at
// the expected update rate.
func NewEngine(bufCapacity int) *Engine {
	e := &Engine{
		prices:  map[string]*series{"ES": newSeries(bufCapacity), "NQ": newSeries(bufCapacity)},
		returns: map[string][]float64{},
		corrES:  newSeries(corrSampleLen),
		corrNQ:  newSeries(corrSampleLen),
	}
	return e
}

// Update feeds a new simultaneous ES/NQ price pair and recomputes the
// leadership snapshot (spec.md §4.4 algorithm steps 1-4).
func (e *Engine) Update(es, nq float64, ts time.Time) types.Leadership {
	e.prices["ES"].Add(ts, es)
	e.prices["NQ"].Add(ts, nq)

	zES := map[string]float64{}
	zNQ := map[string]float64{}
	var ls float64
	for _, h := range horizons {
		rES, okES := e.horizonReturn("ES", h.window, ts)
		rNQ, okNQ := e.horizonReturn("NQ", h.window, ts)
		if !okES || !okNQ {
			continue
		}
		e.pushReturn("ES", h.name, rES)
		e.pushReturn("NQ", h.name, rNQ)
		zES[h.name] = zscore(rES, e.returns[key("ES", h.name)])
		zNQ[h.name] = zscore(rNQ, e.returns[key("NQ", h.name)])
		ls += h.weight * (zNQ[h.name] - zES[h.name])
	}

	beta := e.rollingBeta()

	if r30ES, ok := e.horizonReturn("ES", 30*time.Second, ts); ok {
		if r30NQ, ok2 := e.horizonReturn("NQ", 30*time.Second, ts); ok2 {
			e.corrES.Add(ts, r30ES)
			e.corrNQ.Add(ts, r30NQ)
		}
	}
	corr := pearson(e.corrES.values, e.corrNQ.values)

	e.last = types.Leadership{LS: ls, Beta: beta, RollCorr30s: corr, UpdatedAt: ts}
	return e.last
}

// Snapshot returns the most recently computed leadership state without
// advancing it.
func (e *Engine) Snapshot() types.Leadership { return e.last }

func key(symbol, horizon string) string { return symbol + ":" + horizon }

func (e *Engine) pushReturn(symbol, horizon string, r float64) {
	k := key(symbol, horizon)
	buf := e.returns[k]
	buf = append(buf, r)
	if len(buf) > returnHistoryLen {
		buf = buf[len(buf)-returnHistoryLen:]
	}
	e.returns[k] = buf
}

// horizonReturn computes the log return of symbol over the given window
// ending at ts, or false if there isn't enough history yet (warmup).
func (e *Engine) horizonReturn(symbol string, window time.Duration, ts time.Time) (float64, bool) {
	s := e.prices[symbol]
	_, now, ok := s.Last()
	if !ok || now <= 0 {
		return 0, false
	}
	past, ok := s.ValueAtOrBefore(ts.Add(-window))
	if !ok || past <= 0 {
		return 0, false
	}
	return math.Log(now / past), true
}

func (e *Engine) rollingBeta() float64 {
	nqRet := e.returns[key("NQ", "5m")]
	esRet := e.returns[key("ES", "5m")]
	sdNQ, sdES := stddev(nqRet), stddev(esRet)
	if sdES == 0 {
		return 0.8
	}
	beta := sdNQ / sdES
	if beta < 0.8 {
		return 0.8
	}
	if beta > 1.6 {
		return 1.6
	}
	return beta
}

// Gate is the spec.md §4.4 gate_for_es result: whether a proposed side is
// allowed, the size bonus to apply, how many extra orderflow confirmations
// are demanded, and a human-readable reason for the rationale trail.
type Gate struct {
	Allow           bool
	Bonus           float64
	ExtraOFConfirms int
	Reason          string
}

// GateForES evaluates the leadership veto/bonus for a proposed side under
// the current vix regime (spec.md §4.4 step 5).
func (e *Engine) GateForES(side types.Side, regime types.VixRegime, cfg *config.Config) Gate {
	row, ok := cfg.Thresholds.LeadershipByVix[regime.String()]
	if !ok {
		return Gate{Allow: true, Bonus: 1.0, Reason: "warmup"}
	}
	if e.last.UpdatedAt.IsZero() {
		return Gate{Allow: true, Bonus: 1.0, Reason: "warmup"}
	}

	floor, ok := cfg.Thresholds.CorrelationFloorByVix[regime.String()]
	if ok && e.last.RollCorr30s < floor {
		return Gate{Allow: false, Reason: "correlation too low"}
	}

	ls := e.last.LS
	switch side {
	case types.SideLong:
		if ls < -row.Hard {
			return Gate{Allow: false, Reason: "hard leadership veto"}
		}
		if ls < -row.Soft {
			return Gate{Allow: true, Bonus: 1.0, ExtraOFConfirms: 1, Reason: "soft adverse leadership"}
		}
	case types.SideShort:
		if ls > row.Hard {
			return Gate{Allow: false, Reason: "hard leadership veto"}
		}
		if ls > row.Soft {
			return Gate{Allow: true, Bonus: 1.0, ExtraOFConfirms: 1, Reason: "soft adverse leadership"}
		}
	}
	return Gate{Allow: true, Bonus: row.BonusFactor, ExtraOFConfirms: row.ExtraOF, Reason: "aligned"}
}
