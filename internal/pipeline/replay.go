package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/menthorq/tradecore/internal/ingest"
	"github.com/menthorq/tradecore/internal/logging"
	"github.com/menthorq/tradecore/internal/metrics"
	"github.com/menthorq/tradecore/internal/types"
	"github.com/menthorq/tradecore/internal/xerrors"
)

// Replay deterministically re-feeds every chart record between from and to
// (inclusive) through the same dispatch and decision path Run uses live. The
// live wall-clock ticker and file-tailing are replaced by a fully sorted,
// as-fast-as-possible drain over each chart's whole rotated history, and
// decision cycles are driven by event timestamps advancing past each
// DecisionTick boundary rather than by real time, so replaying the same
// sequence twice yields bit-identical decisions (spec.md §6, §8 item 8).
func (p *Pipeline) Replay(from, to time.Time) error {
	chartIDs, err := discoverCharts(p.cfg.Ingestion.ChartDir)
	if err != nil {
		return err
	}
	if len(chartIDs) == 0 {
		p.log.Warn("no chart files found for replay", logging.String("dir", p.cfg.Ingestion.ChartDir))
	}

	events, err := loadReplayEvents(p.cfg.Ingestion.ChartDir, chartIDs, from, to)
	if err != nil {
		return err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Less(events[j]) })

	p.log.Info("replay loaded events", logging.Int("count", len(events)))

	nextTick := from
	for _, ev := range events {
		p.route(ev)

		ts := ev.Record.Meta().Timestamp
		for !ts.Before(nextTick) {
			p.emitReplayTick()
			nextTick = nextTick.Add(p.cfg.DecisionTick)
		}
	}
	// Flush a final cycle so the tail end of the window still gets a
	// decision even if no DecisionTick boundary fell after the last event.
	p.emitReplayTick()
	return nil
}

// emitReplayTick runs one synchronous decision cycle per symbol against
// whatever bar is currently finalized, skipping symbols with no finalized
// bar yet (warmup). Unlike the live runCycle, this has no wall-clock
// deadline: event-time, not wall-clock time, drives replay (spec.md §8
// determinism), so there is nothing non-deterministic to time out against.
func (p *Pipeline) emitReplayTick() {
	for symbol, se := range p.symbols {
		bar, ok := se.feature.LastFinalized()
		if !ok {
			continue
		}
		decision := p.buildDecision(symbol, se, bar)
		if err := p.sink.Emit(decision); err != nil {
			p.log.Error("sink emit failed", logging.Err(err), logging.String("symbol", symbol))
		}
	}
}

// loadReplayEvents parses every chart_<id>_*.jsonl file for each discovered
// chart id, across every rotated day (oldest first), keeping only records
// timestamped within [from, to]. Replay dedupes against the full loaded set
// rather than ChartTail's bounded sliding window, since the whole history
// is available upfront.
func loadReplayEvents(dir string, chartIDs []int, from, to time.Time) ([]types.UnifiedEvent, error) {
	seen := make(map[types.DedupeKey]struct{})
	var events []types.UnifiedEvent

	for _, id := range chartIDs {
		pattern := filepath.Join(dir, fmt.Sprintf("chart_%d_*.jsonl", id))
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, xerrors.IO("pipeline.Replay", err)
		}
		sort.Strings(matches) // date-suffixed names sort chronologically

		for _, path := range matches {
			evs, err := parseReplayFile(path, id, from, to, seen)
			if err != nil {
				return nil, err
			}
			events = append(events, evs...)
		}
	}
	return events, nil
}

func parseReplayFile(path string, chartID int, from, to time.Time, seen map[types.DedupeKey]struct{}) ([]types.UnifiedEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.IO("pipeline.Replay", err)
	}
	defer f.Close()

	chartLabel := strconv.Itoa(chartID)
	var events []types.UnifiedEvent

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rec, err := ingest.ParseLine(line)
		if err != nil {
			metrics.ParseErrors.WithLabelValues(chartLabel).Inc()
			continue
		}

		meta := rec.Meta()
		if meta.Timestamp.Before(from) || meta.Timestamp.After(to) {
			continue
		}

		key := meta.Key()
		if _, dup := seen[key]; dup {
			metrics.DedupeDropped.WithLabelValues(chartLabel).Inc()
			continue
		}
		seen[key] = struct{}{}

		events = append(events, types.UnifiedEvent{Record: rec, IngestedAt: meta.Timestamp, SourceChart: chartID})
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.IO("pipeline.Replay", fmt.Errorf("%s: %w", path, err))
	}
	return events, nil
}
