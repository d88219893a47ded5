// Package pipeline wires every other package into the running decision
// engine: one ChartTail task per discovered chart file, a Unifier merging
// them into one ordered stream, a dispatch loop that routes each event to
// its owning component (spec.md §2's EventBus), and a per-symbol decision
// loop driven by the configured tick interval. Bar finalization does not
// trigger a decision cycle; the next tick picks the new bar up.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/correlation"
	"github.com/menthorq/tradecore/internal/feature"
	"github.com/menthorq/tradecore/internal/fuser"
	"github.com/menthorq/tradecore/internal/ingest"
	"github.com/menthorq/tradecore/internal/leadership"
	"github.com/menthorq/tradecore/internal/levels"
	"github.com/menthorq/tradecore/internal/logging"
	"github.com/menthorq/tradecore/internal/metrics"
	"github.com/menthorq/tradecore/internal/risk"
	"github.com/menthorq/tradecore/internal/sink"
	"github.com/menthorq/tradecore/internal/snapshot"
	"github.com/menthorq/tradecore/internal/strategy"
	"github.com/menthorq/tradecore/internal/types"
	"github.com/menthorq/tradecore/internal/vix"
)

// leadershipBufCapacity bounds raw price history per symbol in the
// LeadershipEngine; it must cover the longest horizon (5 min) at the
// expected tick rate.
const leadershipBufCapacity = 4096

var chartFilePattern = regexp.MustCompile(`^chart_(\d+)_\d{8}\.jsonl$`)

// symbolEngines bundles the per-symbol state a decision cycle reads: the
// FeatureEngine (also the PriceSource), the BattleNavale analyzer, and the
// daily risk gate.
type symbolEngines struct {
	feature *feature.Engine
	battle  *strategy.BattleNavale
	gate    *risk.DailyGate
}

// Pipeline owns every shared store and per-symbol engine and drives the
// full ingest -> feature -> snapshot -> analyze -> fuse -> emit cycle
// (spec.md §2, §5).
type Pipeline struct {
	cfg  *config.Config
	log  logging.Logger
	sink sink.DecisionSink

	levels      *levels.Store
	vix         *vix.Cache
	corr        *correlation.Cache
	leadership  *leadership.Engine
	fuser       *fuser.Fuser
	symbols     map[string]*symbolEngines
}

// New builds a Pipeline for every configured symbol.
func New(cfg *config.Config, log logging.Logger, s sink.DecisionSink) (*Pipeline, error) {
	p := &Pipeline{
		cfg:        cfg,
		log:        log,
		sink:       s,
		levels:     levels.New(cfg.Staleness),
		vix:        vix.New(),
		corr:       correlation.New(),
		leadership: leadership.NewEngine(leadershipBufCapacity),
		fuser:      fuser.New(cfg),
		symbols:    make(map[string]*symbolEngines, len(cfg.SymbolSpecs)),
	}
	for sym := range cfg.SymbolSpecs {
		eng, err := feature.NewEngine(sym, cfg, log)
		if err != nil {
			return nil, err
		}
		p.symbols[sym] = &symbolEngines{
			feature: eng,
			battle:  strategy.NewBattleNavale(cfg),
			gate:    risk.NewDailyGate(cfg),
		}
	}
	return p, nil
}

// Run starts every ChartTail, the Unifier, the dispatch loop, and the
// per-symbol decision tick, and blocks until ctx is cancelled or a fatal
// error occurs (spec.md §5). On cancellation every task returns at its next
// context check; queued events are not drained, and the shutdown_grace
// setting is not read.
func (p *Pipeline) Run(ctx context.Context) error {
	chartIDs, err := discoverCharts(p.cfg.Ingestion.ChartDir)
	if err != nil {
		return err
	}
	if len(chartIDs) == 0 {
		p.log.Warn("no chart files found at startup", logging.String("dir", p.cfg.Ingestion.ChartDir))
	}

	g, ctx := errgroup.WithContext(ctx)

	tails := make([]*ingest.ChartTail, 0, len(chartIDs))
	sources := make([]<-chan types.UnifiedEvent, 0, len(chartIDs))
	for _, id := range chartIDs {
		t := ingest.NewChartTail(id, p.cfg.Ingestion.ChartDir, p.cfg.Ingestion.QueueCapacity, p.cfg.Ingestion.DedupeWindow, p.cfg.Ingestion.MaxRetries, p.cfg.Ingestion.RotateOnDateChange, p.log)
		tails = append(tails, t)
		sources = append(sources, t.Out())
	}
	for _, t := range tails {
		t := t
		g.Go(func() error { return t.Run(ctx) })
	}

	reorderWindow := time.Duration(p.cfg.Ingestion.ReorderWindowMs) * time.Millisecond
	unifier := ingest.NewUnifier(reorderWindow, p.cfg.Ingestion.QueueCapacity)
	g.Go(func() error {
		unifier.Run(ctx, sources)
		return nil
	})

	g.Go(func() error { return p.dispatch(ctx, unifier.Out()) })

	for sym := range p.symbols {
		sym := sym
		g.Go(func() error { return p.decisionTicker(ctx, sym) })
	}

	return g.Wait()
}

// discoverCharts finds every distinct chart id present in dir's current
// record files.
func discoverCharts(dir string) ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "chart_*_*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("discover charts: %w", err)
	}
	seen := map[int]struct{}{}
	var ids []int
	for _, m := range matches {
		sub := chartFilePattern.FindStringSubmatch(filepath.Base(m))
		if sub == nil {
			continue
		}
		id, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// dispatch routes each unified event to its owning component: shared-state
// writes (LevelStore, VixCache, correlation.Cache) happen inline since each
// has exactly one writer task by construction (this loop); everything else
// folds into the named symbol's FeatureEngine.
func (p *Pipeline) dispatch(ctx context.Context, events <-chan types.UnifiedEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.route(ev)
		}
	}
}

func (p *Pipeline) route(ev types.UnifiedEvent) {
	switch r := ev.Record.(type) {
	case types.MenthorQLevelsRecord:
		p.levels.Upsert(r)
	case types.VixPointRecord:
		p.vix.Update(r)
	case types.CorrelationRecord:
		p.corr.Update(r)
	default:
		se, ok := p.symbols[ev.Record.Meta().Symbol]
		if !ok {
			return
		}
		if bar, finalized := se.feature.OnEvent(ev); finalized {
			se.battle.OnBar(bar)
			p.maybeUpdateLeadership(bar)
		}
	}
}

// maybeUpdateLeadership feeds a finalized ES or NQ bar's close price into
// the shared LeadershipEngine whenever both symbols have a current price,
// since leadership is inherently a paired ES/NQ computation (spec.md §4.4).
func (p *Pipeline) maybeUpdateLeadership(bar types.Bar) {
	es, esOK := p.symbols["ES"]
	nq, nqOK := p.symbols["NQ"]
	if !esOK || !nqOK {
		return
	}
	esPx, esGood := es.feature.CurrentPrice(bar.FinalizedAt)
	nqPx, nqGood := nq.feature.CurrentPrice(bar.FinalizedAt)
	if !esGood || !nqGood {
		return
	}
	p.leadership.Update(esPx, nqPx, bar.FinalizedAt)
}

// decisionTicker runs one decision cycle per symbol on every configured
// tick interval (spec.md §5: "triggered... by an external tick request,
// default every 100 ms").
func (p *Pipeline) decisionTicker(ctx context.Context, symbol string) error {
	ticker := time.NewTicker(p.cfg.DecisionTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.runCycle(ctx, symbol)
		}
	}
}

// runCycle executes one full decision cycle within the configured soft/hard
// deadlines, emitting NO_TRADE with "deadline_exceeded" if the hard deadline
// is hit (spec.md §5).
func (p *Pipeline) runCycle(ctx context.Context, symbol string) {
	se := p.symbols[symbol]
	bar, ok := se.feature.LastFinalized()
	if !ok {
		return
	}

	start := time.Now()
	cycleCtx, cancel := context.WithTimeout(ctx, p.cfg.HardDeadline)
	defer cancel()

	done := make(chan types.TradingDecision, 1)
	go func() { done <- p.buildDecision(symbol, se, bar) }()

	select {
	case decision := <-done:
		metrics.DecisionLatency.WithLabelValues(symbol).Observe(time.Since(start).Seconds())
		if err := p.sink.Emit(decision); err != nil {
			p.log.Error("sink emit failed", logging.Err(err), logging.String("symbol", symbol))
		}
	case <-cycleCtx.Done():
		metrics.DeadlineExceeded.WithLabelValues(symbol).Inc()
		metrics.DecisionLatency.WithLabelValues(symbol).Observe(time.Since(start).Seconds())
		timeout := types.TradingDecision{
			Timestamp: time.Now().UTC(), Symbol: symbol, Action: types.ActionNoTrade,
			BlockedBy: []string{"deadline_exceeded"},
		}
		metrics.BlockedBy.WithLabelValues(symbol, "deadline_exceeded").Inc()
		if err := p.sink.Emit(timeout); err != nil {
			p.log.Error("sink emit failed", logging.Err(err), logging.String("symbol", symbol))
		}
	}

	if elapsed := time.Since(start); elapsed > p.cfg.SoftDeadline {
		p.log.Warn("decision cycle exceeded soft deadline", logging.String("symbol", symbol), logging.Duration("elapsed", elapsed))
	}
}

// buildDecision runs one symbol's snapshot -> analyze -> fuse cycle against
// an already-finalized bar. It is pure given its inputs (bar, and whatever
// the shared stores currently hold), so both the live wall-clock-deadlined
// runCycle and the synchronous, deterministic Replay drive it the same way.
func (p *Pipeline) buildDecision(symbol string, se *symbolEngines, bar types.Bar) types.TradingDecision {
	prior := types.PriorTradeState{CooldownRemaining: se.gate.CooldownRemaining(bar.FinalizedAt)}
	snap := (&snapshot.Builder{Levels: p.levels, Vix: p.vix, Leadership: p.leadership, Correlation: p.corr}).
		Build(bar, prior, se.feature)

	tickSize := 0.25
	if spec, ok := p.cfg.SymbolSpecs[symbol]; ok {
		tickSize = spec.TickSize
	}
	mq, outcome := strategy.AnalyzeMenthorQDistance(snap.CurrentPrice, tickSize, snap.Levels, p.cfg.Staleness, p.cfg, snap.AsOf)
	bn := se.battle.Analyze()

	return p.fuser.Fuse(snap, mq, outcome, bn, p.leadership, se.gate)
}
