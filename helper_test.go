package substate

import (
	"testing"

	"github.com/orneryd/substate/engine"
)

// newTestModel returns a Model backed by a fresh in-memory engine, isolated
// per test.
func newTestModel(t *testing.T) *Model {
	t.Helper()
	return NewModel(engine.NewMemoryEngine(engine.DefaultConfig()))
}
