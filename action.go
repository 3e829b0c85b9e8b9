package substate

import (
	"sync"

	"github.com/orneryd/substate/stream"
)

// ActionTypeID identifies a concrete Action kind on the wire (§3, §6.4).
type ActionTypeID int32

const (
	ActionRootChange    ActionTypeID = 1
	ActionBytesInsert   ActionTypeID = 2
	ActionBytesRemove   ActionTypeID = 3
	ActionBytesReplace  ActionTypeID = 4
	ActionVectorInsert  ActionTypeID = 5
	ActionVectorRemove  ActionTypeID = 6
	ActionVectorMove    ActionTypeID = 7
	ActionSheetInsert   ActionTypeID = 8
	ActionSheetRemove   ActionTypeID = 9
	ActionMappingAssign ActionTypeID = 10
	ActionStructAssign  ActionTypeID = 11

	// ActionUserBase is the first action type id available to
	// user-registered action kinds.
	ActionUserBase ActionTypeID = 1000
)

// Action is a reversible record of one structural change to a node (§3).
// Every action carries enough information to re-apply (Execute(false)) or
// invert (Execute(true)) itself exactly; Execute is invoked by a
// StorageEngine replaying history (undo/redo) and by
// Model.AbortTransaction, never by the node method that originally
// produced the action — that method applies the mutation directly and
// buffers the action for later replay (§4.2–§4.7).
type Action interface {
	TypeTag() ActionTypeID

	// Execute applies this action's effect (undo=false, original
	// direction / redo) or its inverse (undo=true, undo). Node actions
	// fire their parent node's pre/post notifications around the
	// mutation; RootChangeAction fires none.
	Execute(undo bool) error

	// WriteTo serializes the action per §6.4: an i32 type tag, the
	// owning parent's node id, then kind-specific fields.
	WriteTo(w *stream.Writer) error
}

// insertedRootsProvider is implemented by actions that attach previously
// free subtrees (Vector/Sheet insert, Mapping/Struct assign with a NodeRef
// value). Model.CommitTransaction walks a transaction's actions through
// this interface to batch-register every newly attached subtree's id and
// model association in one pass (§4.9).
type insertedRootsProvider interface {
	insertedRoots() []Node
}

// ActionFactory constructs a user-registered action from its wire form.
// Registered under a type id >= ActionUserBase (§9).
type ActionFactory func(r *stream.Reader, resolve func(id uint64) (Node, bool)) (Action, error)

var (
	actionRegistryMu sync.RWMutex
	actionRegistry   = map[ActionTypeID]ActionFactory{}
)

// RegisterActionType registers a factory for a user-defined action kind.
func RegisterActionType(id ActionTypeID, factory ActionFactory) {
	actionRegistryMu.Lock()
	defer actionRegistryMu.Unlock()
	actionRegistry[id] = factory
}

// lookupActionFactory retrieves a previously registered factory for id
// (§5: concurrent registration and lookup must be safe).
func lookupActionFactory(id ActionTypeID) (ActionFactory, bool) {
	actionRegistryMu.RLock()
	defer actionRegistryMu.RUnlock()
	factory, ok := actionRegistry[id]
	return factory, ok
}
