package substate

// ModelState is the transaction state machine's current position (§4.9).
type ModelState int

const (
	Idle ModelState = iota
	Transaction
	Undo
	Redo
)

func (s ModelState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Transaction:
		return "Transaction"
	case Undo:
		return "Undo"
	case Redo:
		return "Redo"
	default:
		return "Unknown"
	}
}

// StorageEngine holds the committed action log, chooses a retention
// policy, and exposes the min/current/max step counters that undo/redo
// walk across (§4.10, §6.5). The in-memory implementation in the engine
// subpackage is the reference; a persistent implementation conforms to
// the same contract.
type StorageEngine interface {
	// Setup associates the engine with its owning model, invoked once
	// from NewModel.
	Setup(m *Model) error

	// Prepare is informed when a transaction begins.
	Prepare() error

	// Abort is informed when a transaction is aborted. The model has
	// already re-executed every action in buf in reverse with undo=true
	// before calling it; the engine itself does not retain aborted
	// buffers.
	Abort(buf []Action) error

	// Commit truncates any redo tail, appends {actions, message} as a
	// new step, and trims to the retention window.
	Commit(actions []Action, message string) error

	// Execute replays one step: undo=true steps current back by one and
	// executes that step's actions in reverse; undo=false steps current
	// forward by one and executes the next step's actions in order.
	// Both directions are no-ops at their respective boundary (§7).
	Execute(undo bool) error

	// Reset drops every committed step and zeroes the counters.
	Reset() error

	Minimum() int
	Maximum() int
	Current() int

	// StepMessage returns the opaque commit message for step, if present.
	StepMessage(step int) (string, bool)
}

// Model owns a node graph's root, its id index, the transaction state
// machine and the action lock that serializes mutation within one action
// (§4.9, §5).
type Model struct {
	state     ModelState
	root      Node
	ids       *IdIndex
	engine    StorageEngine
	txBuffer  []Action
	locked    bool
	observers []Subscriber
}

// NewModel constructs a Model backed by engine. The engine's Setup is
// called once so it can retain a reference back to the model if needed.
func NewModel(engine StorageEngine) *Model {
	m := &Model{state: Idle, ids: newIDIndex(), engine: engine}
	if engine != nil {
		if err := engine.Setup(m); err != nil {
			panic("substate: engine setup failed: " + err.Error())
		}
	}
	return m
}

// Root returns the model's current root node, or nil.
func (m *Model) Root() Node { return m.root }

// State returns the model's current state-machine position.
func (m *Model) State() ModelState { return m.state }

// Minimum returns the lowest position undo can reach, the position just
// before the engine's oldest retained step, or 0 if no engine is attached.
func (m *Model) Minimum() int {
	if m.engine == nil {
		return 0
	}
	return m.engine.Minimum()
}

// Maximum returns the highest position redo can reach, which is also the
// step number of the engine's newest retained step, or 0 if no engine is
// attached.
func (m *Model) Maximum() int {
	if m.engine == nil {
		return 0
	}
	return m.engine.Maximum()
}

// Current returns the engine's current position within its retained steps,
// or 0 if no engine is attached.
func (m *Model) Current() int {
	if m.engine == nil {
		return 0
	}
	return m.engine.Current()
}

// StepMessage returns the commit message recorded for step, or ("", false)
// if step is out of range or no engine is attached (§4.10).
func (m *Model) StepMessage(step int) (string, bool) {
	if m.engine == nil {
		return "", false
	}
	return m.engine.StepMessage(step)
}

// Subscribe registers an observer notified of every Notification bubbled
// up from any node in this model, plus StepChange and AboutToReset
// (§4.11).
func (m *Model) Subscribe(s Subscriber) {
	m.observers = append(m.observers, s)
}

func (m *Model) dispatch(n Notification) {
	for _, s := range m.observers {
		dispatchSafely(s, n)
	}
}

// isWritable reports whether a node belonging to this model may currently
// accept a structural mutation: the model must be in Transaction state and
// no node may currently hold the action lock (§3, §5).
func (m *Model) isWritable() bool {
	return m.state == Transaction && !m.locked
}

// beginAction takes the action lock, serializing nested mutation attempts
// triggered from within a notification handler (§5 "Action lock"). The
// mutating node is not retained; only its presence matters.
func (m *Model) beginAction(n Node) {
	if m.locked {
		panic("substate: nested action on a locked model")
	}
	m.locked = true
}

func (m *Model) endAction() {
	m.locked = false
}

func (m *Model) appendAction(a Action) {
	m.txBuffer = append(m.txBuffer, a)
}

// applySetRoot detaches the outgoing root the same way a replaced NodeRef
// is detached elsewhere (releasing its id/model association if it has one)
// and installs node as the new root; called directly by SetRoot and by
// RootChangeAction.Execute.
func (m *Model) applySetRoot(node Node) {
	if m.root != nil {
		detachChild(m.root)
	}
	m.root = node
	if node != nil {
		cb := node.baseNode()
		cb.parent = nil
		cb.state = StateActive
	}
}

// SetRoot replaces the model's root. Allowed only while the model is
// writable; appends a RootChangeAction to the transaction buffer (§4.9).
func (m *Model) SetRoot(node Node) {
	if !m.isWritable() {
		panic("substate: model is not writable")
	}
	if node != nil && !node.IsFree() {
		panic("substate: set_root requires a free node")
	}
	m.beginAction(nil)
	old := m.root
	a := &RootChangeAction{model: m, oldRoot: old, newRoot: node}
	m.applySetRoot(node)
	m.appendAction(a)
	m.endAction()
}

// BeginTransaction moves Idle -> Transaction and informs the engine.
// Panics if the model is not currently Idle (§4.9 "fails if not Idle").
func (m *Model) BeginTransaction() {
	if m.state != Idle {
		panic("substate: begin_transaction requires Idle state")
	}
	if m.engine != nil {
		if err := m.engine.Prepare(); err != nil {
			panic("substate: engine prepare failed: " + err.Error())
		}
	}
	m.state = Transaction
	m.txBuffer = nil
}

// AbortTransaction re-executes every buffered action in reverse with
// undo=true, discards the buffer, and informs the engine (§4.9).
func (m *Model) AbortTransaction() {
	if m.state != Transaction {
		panic("substate: abort_transaction requires Transaction state")
	}
	for i := len(m.txBuffer) - 1; i >= 0; i-- {
		_ = m.txBuffer[i].Execute(true)
	}
	buf := m.txBuffer
	m.txBuffer = nil
	m.state = Idle
	if m.engine != nil {
		_ = m.engine.Abort(buf)
	}
}

// CommitTransaction closes out the open transaction. An empty buffer is a
// soft no-op that still returns to Idle without writing a log entry.
// Otherwise every action's inserted subtrees are registered (id assignment
// + model association) in one batched pass, the buffer is handed to the
// engine, and StepChange fires (§4.9).
func (m *Model) CommitTransaction(message string) {
	if m.state != Transaction {
		panic("substate: commit_transaction requires Transaction state")
	}
	buf := m.txBuffer
	m.txBuffer = nil
	m.state = Idle
	if len(buf) == 0 {
		return
	}
	for _, a := range buf {
		if provider, ok := a.(insertedRootsProvider); ok {
			for _, root := range provider.insertedRoots() {
				m.registerSubtree(root)
			}
		}
	}
	if m.engine != nil {
		if err := m.engine.Commit(buf, message); err != nil {
			panic("substate: engine commit failed: " + err.Error())
		}
	}
	m.dispatch(Notification{Kind: NotifyStepChange})
}

// Undo steps the engine backward by one committed step, a no-op at
// current == minimum (§4.10, §7).
func (m *Model) Undo() {
	m.state = Undo
	if m.engine != nil {
		_ = m.engine.Execute(true)
	}
	m.state = Idle
	m.dispatch(Notification{Kind: NotifyStepChange})
}

// Redo steps the engine forward by one step, a no-op at current ==
// maximum (§4.10, §7).
func (m *Model) Redo() {
	m.state = Redo
	if m.engine != nil {
		_ = m.engine.Execute(false)
	}
	m.state = Idle
	m.dispatch(Notification{Kind: NotifyStepChange})
}

// Reset drops the root, the id index and the engine's committed history,
// returning every counter to zero. Allowed only while Idle (§4.9).
func (m *Model) Reset() {
	if m.state != Idle {
		panic("substate: reset requires Idle state")
	}
	m.dispatch(Notification{Kind: NotifyAboutToReset})
	m.ids.beginClear()
	m.root = nil
	m.ids.endClear()
	if m.engine != nil {
		_ = m.engine.Reset()
	}
}
