// Package substate implements an in-memory, transactional, undoable
// document model: a tree of typed nodes representing structured
// application state, with atomic multi-step mutations and reversible
// history.
//
// A Model owns a root Node and drives a small transaction state machine:
// BeginTransaction, mutate nodes (each structural change appends a
// reversible Action to the open transaction and fires notifications),
// then CommitTransaction hands the action buffer to a StorageEngine. Undo
// and Redo replay that log backwards or forwards through the engine to
// reconstruct any previously reachable state.
//
// Five node kinds cover most document shapes: Bytes (an ordered byte
// buffer), Vector (an ordered sequence of child nodes), Mapping (string
// keyed Property values), Sheet (an auto-indexed, insertion-ordered child
// container), and Struct (a fixed-arity tuple of Property slots).
//
// Example:
//
//	m := substate.NewModel(engine.NewMemoryEngine(engine.DefaultConfig()))
//	root := substate.NewBytesNode()
//
//	m.BeginTransaction()
//	m.SetRoot(root)
//	root.Append([]byte(" world"))
//	m.CommitTransaction("append world")
//
//	m.Undo()
//	m.Redo()
package substate
