// Package sink implements the TradingDecision output boundary (spec.md §6):
// the core pipeline never writes to disk or a network socket directly, it
// only calls DecisionSink.Emit.
package sink

import (
	"io"

	"github.com/segmentio/encoding/json"

	"github.com/menthorq/tradecore/internal/types"
)

// DecisionSink is implemented by anything that can durably or visibly
// record one TradingDecision. Emit must not block the decision cycle for
// longer than the pipeline's shutdown grace period.
type DecisionSink interface {
	Emit(types.TradingDecision) error
}

// JSONLines writes one JSON object per line to the given writer, the
// default sink for `tradecore run` (spec.md §6: "external sinks").
type JSONLines struct {
	w   io.Writer
	enc *json.Encoder
}

// NewJSONLines wraps w as a newline-delimited JSON DecisionSink.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w, enc: json.NewEncoder(w)}
}

// Emit writes one decision as a JSON line.
func (s *JSONLines) Emit(d types.TradingDecision) error {
	return s.enc.Encode(d)
}

// Multi fans one decision out to every wrapped sink, stopping at the first
// error encountered.
type Multi struct {
	sinks []DecisionSink
}

// NewMulti builds a DecisionSink that emits to every given sink in order.
func NewMulti(sinks ...DecisionSink) *Multi { return &Multi{sinks: sinks} }

func (m *Multi) Emit(d types.TradingDecision) error {
	for _, s := range m.sinks {
		if err := s.Emit(d); err != nil {
			return err
		}
	}
	return nil
}
