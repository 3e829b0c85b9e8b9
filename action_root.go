package substate

import "github.com/orneryd/substate/stream"

// RootChangeAction records replacing the model's root node (§3, §4.1). The
// old root, if any, is detached (and so loses its id/model association);
// the new root, if any, is attached and registered the same way a freshly
// inserted subtree would be.
type RootChangeAction struct {
	model   *Model
	oldRoot Node
	newRoot Node
}

func (a *RootChangeAction) TypeTag() ActionTypeID { return ActionRootChange }

func (a *RootChangeAction) insertedRoots() []Node {
	if a.newRoot != nil {
		return []Node{a.newRoot}
	}
	return nil
}

func (a *RootChangeAction) Execute(undo bool) error {
	if undo {
		a.model.applySetRoot(a.oldRoot)
		if a.oldRoot != nil {
			a.model.registerSubtree(a.oldRoot)
		}
	} else {
		a.model.applySetRoot(a.newRoot)
		if a.newRoot != nil {
			a.model.registerSubtree(a.newRoot)
		}
	}
	return nil
}

func (a *RootChangeAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionRootChange)); err != nil {
		return err
	}
	if err := w.WriteU64(0); err != nil {
		return err
	}
	hasOld := a.oldRoot != nil
	if err := w.WriteBool(hasOld); err != nil {
		return err
	}
	if hasOld {
		if err := a.oldRoot.WriteTo(w); err != nil {
			return err
		}
	}
	hasNew := a.newRoot != nil
	if err := w.WriteBool(hasNew); err != nil {
		return err
	}
	if hasNew {
		if err := a.newRoot.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
