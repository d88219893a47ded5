package sink

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/menthorq/tradecore/internal/types"
)

func TestJSONLinesEmitsOneLinePerDecision(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONLines(&buf)

	d1 := types.TradingDecision{Symbol: "ES", Action: types.ActionGoLong, Timestamp: time.Unix(0, 0).UTC()}
	d2 := types.TradingDecision{Symbol: "NQ", Action: types.ActionNoTrade, Timestamp: time.Unix(1, 0).UTC()}
	if err := s.Emit(d1); err != nil {
		t.Fatalf("emit d1: %v", err)
	}
	if err := s.Emit(d2); err != nil {
		t.Fatalf("emit d2: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"ES"`) || !strings.Contains(lines[1], `"NQ"`) {
		t.Fatalf("unexpected line content: %v", lines)
	}
}

type failingSink struct{ err error }

func (f failingSink) Emit(types.TradingDecision) error { return f.err }

type recordingSink struct{ emitted []types.TradingDecision }

func (r *recordingSink) Emit(d types.TradingDecision) error {
	r.emitted = append(r.emitted, d)
	return nil
}

func TestMultiStopsAtFirstError(t *testing.T) {
	rec := &recordingSink{}
	boom := errors.New("boom")
	m := NewMulti(rec, failingSink{err: boom}, rec)

	d := types.TradingDecision{Symbol: "ES"}
	err := m.Emit(d)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if len(rec.emitted) != 1 {
		t.Fatalf("expected the sink before the failing one to receive exactly 1 emit, got %d", len(rec.emitted))
	}
}

func TestMultiFansOutToEverySink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := NewMulti(a, b)
	d := types.TradingDecision{Symbol: "ES"}
	if err := m.Emit(d); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(a.emitted) != 1 || len(b.emitted) != 1 {
		t.Fatalf("expected both sinks to receive the decision, got a=%d b=%d", len(a.emitted), len(b.emitted))
	}
}
