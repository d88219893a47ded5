package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/menthorq/tradecore/internal/logging"
	"github.com/menthorq/tradecore/internal/metrics"
	"github.com/menthorq/tradecore/internal/types"
	"github.com/menthorq/tradecore/internal/xerrors"
)

const (
	minBackoff = 100 * time.Millisecond
	maxBackoff = 5 * time.Second
	pollEvery  = 50 * time.Millisecond
)

// ChartTail reads one chart's append-only JSON-lines file, following daily
// rotation transparently, and pushes parsed+deduplicated events onto a
// bounded queue (spec.md §4.1). One ChartTail runs on its own task; it
// shares no state with any other ChartTail.
type ChartTail struct {
	chartID  int
	dir      string
	log      logging.Logger
	dedupe   *dedupeWindow
	queue    chan types.UnifiedEvent
	queueCap int

	maxRetries         int
	rotateOnDateChange bool

	curFile   string
	curOffset int64
}

// NewChartTail builds a ChartTail for chartID reading chart_<chartID>_*.jsonl
// files under dir. rotateOnDateChange controls whether the tail follows a
// newer same-chart file once one appears (spec.md §4.1's daily rotation); set
// false to pin the tail to whichever file it opened first, for chart sources
// that are never rotated.
func NewChartTail(chartID int, dir string, queueCapacity, dedupeCapacity, maxRetries int, rotateOnDateChange bool, log logging.Logger) *ChartTail {
	if queueCapacity <= 0 {
		queueCapacity = 10000
	}
	return &ChartTail{
		chartID:            chartID,
		dir:                dir,
		log:                log.With(logging.Int("chart_id", chartID)),
		dedupe:             newDedupeWindow(dedupeCapacity),
		queue:              make(chan types.UnifiedEvent, queueCapacity),
		queueCap:           queueCapacity,
		maxRetries:         maxRetries,
		rotateOnDateChange: rotateOnDateChange,
	}
}

// Out returns the channel of events this tail has parsed and deduplicated,
// in append order. The Unifier reads from N such channels.
func (t *ChartTail) Out() <-chan types.UnifiedEvent { return t.queue }

// ChartID reports which chart this tail follows.
func (t *ChartTail) ChartID() int { return t.chartID }

// Run tails the chart's current file until ctx is cancelled, transparently
// following daily rotation (spec.md §4.1: "no event loss across rotation").
// IO errors are retried with exponential backoff (100ms -> 5s); after
// maxRetries consecutive failures it returns a fatal *xerrors.Error of
// KindIO (spec.md §4.1, §7).
func (t *ChartTail) Run(ctx context.Context) error {
	backoff := minBackoff
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		path, err := t.latestFile()
		if err != nil {
			failures++
			if t.maxRetries > 0 && failures > t.maxRetries {
				return xerrors.IO("ChartTail.Run", fmt.Errorf("chart %d: %w", t.chartID, err))
			}
			t.log.Warn("chart file unavailable, retrying", logging.Err(err), logging.Duration("backoff", backoff))
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}

		prevOffset := t.curOffset
		if err := t.followFile(ctx, path); err != nil {
			if t.curOffset != prevOffset {
				failures, backoff = 0, minBackoff
			}
			failures++
			if t.maxRetries > 0 && failures > t.maxRetries {
				return xerrors.IO("ChartTail.Run", fmt.Errorf("chart %d: %w", t.chartID, err))
			}
			t.log.Warn("chart tail IO error, retrying", logging.Err(err), logging.Duration("backoff", backoff))
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}

		// followFile returns nil when ctx was cancelled (the check at the top
		// of the loop then returns) or when a newer file has appeared, which
		// the next iteration opens.
		failures, backoff = 0, minBackoff
	}
}

func nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > maxBackoff {
		next = maxBackoff
	}
	return next
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// latestFile finds the newest chart_<chartID>_YYYYMMDD.jsonl under dir;
// lexicographic sort of the date suffix is chronological.
func (t *ChartTail) latestFile() (string, error) {
	pattern := filepath.Join(t.dir, fmt.Sprintf("chart_%d_*.jsonl", t.chartID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no files matching %s", pattern)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// followFile tails one file from t.curOffset (or from the start if this is
// a new file), resuming across rotation: when EOF is reached it checks for
// a newer file before continuing to poll the current one.
func (t *ChartTail) followFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if path != t.curFile {
		t.curFile = path
		t.curOffset = 0
	}
	if t.curOffset > 0 {
		if _, err := f.Seek(t.curOffset, io.SeekStart); err != nil {
			return err
		}
	}

	reader := bufio.NewReaderSize(f, 64*1024)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			t.curOffset += int64(len(line))
			trimmed := trimNewline(line)
			if len(trimmed) > 0 {
				t.handleLine(trimmed)
			}
		}
		if err == nil {
			continue
		}
		if err != io.EOF {
			return err
		}

		// EOF: check for rotation before sleeping.
		if t.rotateOnDateChange {
			newer, ferr := t.latestFile()
			if ferr == nil && newer != path {
				return nil // caller's loop will open the new file from offset 0
			}
		}
		if !sleepCtx(ctx, pollEvery) {
			return nil
		}
	}
}

func trimNewline(b []byte) []byte {
	n := len(b)
	for n > 0 && (b[n-1] == '\n' || b[n-1] == '\r') {
		n--
	}
	return b[:n]
}

func (t *ChartTail) handleLine(line []byte) {
	rec, err := ParseLine(line)
	if err != nil {
		metrics.ParseErrors.WithLabelValues(strconv.Itoa(t.chartID)).Inc()
		t.log.Debug("skipping unparsable record line", logging.Err(err))
		return
	}

	key := rec.Meta().Key()
	if t.dedupe.seenOrAdd(key) {
		metrics.DedupeDropped.WithLabelValues(strconv.Itoa(t.chartID)).Inc()
		return
	}

	ev := types.UnifiedEvent{Record: rec, IngestedAt: time.Now().UTC(), SourceChart: t.chartID}
	t.push(ev)
}

// push enqueues ev, dropping the oldest queued event on overflow so the
// tail always preserves the most recent reality (spec.md §5).
func (t *ChartTail) push(ev types.UnifiedEvent) {
	select {
	case t.queue <- ev:
		return
	default:
	}
	select {
	case <-t.queue:
		metrics.QueueOverflowDropped.WithLabelValues(strconv.Itoa(t.chartID)).Inc()
	default:
	}
	select {
	case t.queue <- ev:
	default:
		// Another producer raced us for the freed slot; drop ev rather than
		// block (oldest-drop policy still holds: the queue stays full of
		// the most recent events).
		metrics.QueueOverflowDropped.WithLabelValues(strconv.Itoa(t.chartID)).Inc()
	}
}
