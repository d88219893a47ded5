package ingest

import (
	"container/heap"
	"context"
	"reflect"
	"time"

	"github.com/menthorq/tradecore/internal/types"
)

// eventHeap is a min-heap of UnifiedEvents ordered by the total order from
// spec.md §3 (types.UnifiedEvent.Less).
type eventHeap []types.UnifiedEvent

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(types.UnifiedEvent)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Unifier performs the k-way merge described in spec.md §4.1: events from N
// ChartTail queues are buffered into a min-heap and released in timestamp
// order once they are older than `now - reorderWindow`, tolerating a bounded
// amount of cross-chart reordering while guaranteeing liveness even if one
// chart's queue goes idle.
type Unifier struct {
	reorderWindow time.Duration
	out           chan types.UnifiedEvent
}

// NewUnifier builds a Unifier with the given reorder window and output
// buffer capacity.
func NewUnifier(reorderWindow time.Duration, outCapacity int) *Unifier {
	if outCapacity <= 0 {
		outCapacity = 4096
	}
	return &Unifier{reorderWindow: reorderWindow, out: make(chan types.UnifiedEvent, outCapacity)}
}

// Out returns the unified, totally ordered event stream.
func (u *Unifier) Out() <-chan types.UnifiedEvent { return u.out }

// Run merges the given per-chart source channels until ctx is cancelled or
// every source channel closes, at which point Out() is closed too.
func (u *Unifier) Run(ctx context.Context, sources []<-chan types.UnifiedEvent) {
	defer close(u.out)

	h := &eventHeap{}
	heap.Init(h)

	live := make([]bool, len(sources))
	for i := range sources {
		live[i] = true
	}
	anyLive := func() bool {
		for _, l := range live {
			if l {
				return true
			}
		}
		return false
	}

	ticker := time.NewTicker(tickerInterval(u.reorderWindow))
	defer ticker.Stop()

	for anyLive() || h.Len() > 0 {
		cases := make([]reflect.SelectCase, 0, len(sources)+2)
		idx := make([]int, 0, len(sources))
		for i, src := range sources {
			if !live[i] {
				continue
			}
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(src)})
			idx = append(idx, i)
		}
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
		ctxCase := len(cases) - 1
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ticker.C)})
		tickCase := len(cases) - 1

		chosen, recv, ok := reflect.Select(cases)
		switch {
		case chosen == ctxCase:
			return
		case chosen == tickCase:
			u.drain(ctx, h, time.Now().UTC())
		default:
			srcIdx := idx[chosen]
			if !ok {
				live[srcIdx] = false
				continue
			}
			ev := recv.Interface().(types.UnifiedEvent)
			heap.Push(h, ev)
		}
	}

	u.drain(ctx, h, time.Time{}) // final flush: emit everything remaining
}

// drain emits every heap entry older than now-reorderWindow (or everything,
// if now is the zero value, used for final flush on shutdown).
func (u *Unifier) drain(ctx context.Context, h *eventHeap, now time.Time) {
	flushAll := now.IsZero()
	for h.Len() > 0 {
		top := (*h)[0]
		if !flushAll && top.Record.Meta().Timestamp.After(now.Add(-u.reorderWindow)) {
			return
		}
		ev := heap.Pop(h).(types.UnifiedEvent)
		select {
		case u.out <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func tickerInterval(reorderWindow time.Duration) time.Duration {
	d := reorderWindow / 4
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return d
}
