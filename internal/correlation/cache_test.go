package correlation

import (
	"testing"
	"time"

	"github.com/menthorq/tradecore/internal/types"
)

func TestNewCacheIsEmpty(t *testing.T) {
	c := New()
	v, ts := c.Value()
	if v != 0 || !ts.IsZero() {
		t.Fatalf("expected a zero-value reading before any update, got %v %v", v, ts)
	}
}

func TestCacheUpdateLatestWins(t *testing.T) {
	c := New()
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	c.Update(types.CorrelationRecord{M: types.RecordMeta{Timestamp: t1}, Value: 0.91})
	c.Update(types.CorrelationRecord{M: types.RecordMeta{Timestamp: t2}, Value: 0.75})

	v, ts := c.Value()
	if v != 0.75 || !ts.Equal(t2) {
		t.Fatalf("expected the second update to win, got %v %v", v, ts)
	}
}
