package engine

import "github.com/orneryd/substate"

// step is one committed transaction: the ordered actions it produced plus
// the caller-supplied opaque message (§4.10).
type step struct {
	actions []substate.Action
	message string
}

// MemoryEngine is the in-memory reference StorageEngine (§4.10). It keeps
// every retained step in a slice and trims the oldest half of the window
// once the stack grows past twice the configured retention.
type MemoryEngine struct {
	model    *substate.Model
	cfg      Config
	stack    []step
	minStep  int
	current  int
}

// NewMemoryEngine constructs a MemoryEngine honoring cfg's retention
// window. Panics if cfg fails Validate, matching the spec's "rejected
// before model setup if lower" requirement for max_steps (§4.10).
func NewMemoryEngine(cfg Config) *MemoryEngine {
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return &MemoryEngine{cfg: cfg}
}

func (e *MemoryEngine) Setup(m *substate.Model) error {
	e.model = m
	return nil
}

func (e *MemoryEngine) Prepare() error { return nil }

// Abort is a no-op: the engine never retained the aborted buffer, and
// AbortTransaction has already replayed it in reverse against the live
// graph before calling here.
func (e *MemoryEngine) Abort(buf []substate.Action) error { return nil }

// Commit truncates any redo tail, appends the new step, and trims to the
// retention window (§4.10 "commit").
func (e *MemoryEngine) Commit(actions []substate.Action, message string) error {
	if e.current < len(e.stack) {
		e.stack = e.stack[:e.current]
	}
	e.stack = append(e.stack, step{actions: actions, message: message})
	e.current++

	if e.current > 2*e.cfg.MaxSteps {
		e.stack = e.stack[e.cfg.MaxSteps:]
		e.minStep += e.cfg.MaxSteps
		e.current -= e.cfg.MaxSteps
	}
	return nil
}

// Execute replays one step. undo=true steps current back by one and
// executes that step's actions in reverse; undo=false steps current
// forward by one and executes the next step's actions in order. Both
// directions no-op at their boundary (§4.10 "execute", §7).
func (e *MemoryEngine) Execute(undo bool) error {
	if undo {
		if e.current <= 0 {
			return nil
		}
		s := e.stack[e.current-1]
		for i := len(s.actions) - 1; i >= 0; i-- {
			if err := s.actions[i].Execute(true); err != nil {
				return err
			}
		}
		e.current--
		return nil
	}
	if e.current >= len(e.stack) {
		return nil
	}
	s := e.stack[e.current]
	for _, a := range s.actions {
		if err := a.Execute(false); err != nil {
			return err
		}
	}
	e.current++
	return nil
}

// Reset clears the stack and counters (§4.10 "reset").
func (e *MemoryEngine) Reset() error {
	e.stack = nil
	e.minStep = 0
	e.current = 0
	return nil
}

func (e *MemoryEngine) Minimum() int { return e.minStep }
func (e *MemoryEngine) Maximum() int { return e.minStep + len(e.stack) }
func (e *MemoryEngine) Current() int { return e.minStep + e.current }

// StepMessage returns the commit message for step, a global step index as
// returned by Current()/Maximum() (Minimum() < step <= Maximum()).
func (e *MemoryEngine) StepMessage(stepIndex int) (string, bool) {
	localIndex := stepIndex - e.minStep - 1
	if localIndex < 0 || localIndex >= len(e.stack) {
		return "", false
	}
	return e.stack[localIndex].message, true
}
