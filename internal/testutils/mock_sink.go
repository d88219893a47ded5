package testutils

import (
	"sync"

	"github.com/menthorq/tradecore/internal/types"
)

// MockSink is an in-memory types.TradingDecision sink for assertions in tests,
// generalizing the teacher's MockExecutor (Submit/Orders) to the decision
// pipeline's single Emit contract.
type MockSink struct {
	mu        sync.Mutex
	decisions []types.TradingDecision
}

func NewMockSink() *MockSink { return &MockSink{} }

// Emit implements sink.DecisionSink.
func (m *MockSink) Emit(d types.TradingDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
	return nil
}

// Decisions returns a copy of everything emitted so far, in order.
func (m *MockSink) Decisions() []types.TradingDecision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.TradingDecision(nil), m.decisions...)
}

// Last returns the most recently emitted decision and true, or the zero
// value and false if nothing has been emitted yet.
func (m *MockSink) Last() (types.TradingDecision, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.decisions) == 0 {
		return types.TradingDecision{}, false
	}
	return m.decisions[len(m.decisions)-1], true
}
