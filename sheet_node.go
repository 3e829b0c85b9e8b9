package substate

import "github.com/orneryd/substate/stream"

// SheetNode holds a map from positive integer id to child node, with a
// monotonically non-decreasing max id (§3, §4.6).
type SheetNode struct {
	base
	byID  map[uint64]Node
	order []uint64
	maxID uint64
}

// NewSheetNode returns a new free SheetNode.
func NewSheetNode() *SheetNode {
	n := &SheetNode{base: base{typ: NodeSheet, state: StateCreated}, byID: make(map[uint64]Node)}
	n.self = n
	return n
}

func (n *SheetNode) children() []Node {
	out := make([]Node, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.byID[id])
	}
	return out
}

// MaxID returns the highest id ever assigned within this sheet.
func (n *SheetNode) MaxID() uint64 { return n.maxID }

// IDs returns the sheet's current ids in insertion order.
func (n *SheetNode) IDs() []uint64 { return append([]uint64(nil), n.order...) }

// Get returns the child stored under id, if present.
func (n *SheetNode) Get(id uint64) (Node, bool) {
	c, ok := n.byID[id]
	return c, ok
}

// Clone returns a free SheetNode with cloned children (§4.2).
func (n *SheetNode) Clone(copyID bool) Node {
	clone := NewSheetNode()
	if copyID {
		clone.id = n.id
	}
	clone.maxID = n.maxID
	for _, id := range n.order {
		child := n.byID[id].Clone(copyID)
		attachChild(clone, child)
		clone.byID[id] = child
		clone.order = append(clone.order, id)
	}
	return clone
}

// Propagate invokes fn on this node, then on every child, pre-order.
func (n *SheetNode) Propagate(fn func(Node)) {
	fn(n)
	for _, c := range n.children() {
		c.Propagate(fn)
	}
}

func (n *SheetNode) insertRaw(id uint64, child Node) {
	n.byID[id] = child
	n.order = append(n.order, id)
	if id > n.maxID {
		n.maxID = id
	}
}

func (n *SheetNode) removeRaw(id uint64) Node {
	child := n.byID[id]
	delete(n.byID, id)
	for i, existing := range n.order {
		if existing == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	return child
}

// Insert adds child under a freshly assigned id equal to MaxID()+1; the
// max id is advanced and never reused, even after removal (§4.6).
func (n *SheetNode) Insert(child Node) uint64 {
	assertWritable(n)
	if !child.IsFree() {
		panic("substate: sheet insert requires a free node")
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	id := n.maxID + 1
	a := &SheetInsertAction{parent: n, id: id, child: child}
	n.notifyPre(a)
	attachChild(n, child)
	n.insertRaw(id, child)
	n.notifyPost(a)
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
	return id
}

// Remove deletes the child stored under id. Succeeds (returns true) iff
// id is present; absent ids are a no-op (§4.6).
func (n *SheetNode) Remove(id uint64) bool {
	assertWritable(n)
	child, ok := n.byID[id]
	if !ok {
		return false
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	a := &SheetRemoveAction{parent: n, id: id, child: child}
	n.notifyPre(a)
	n.removeRaw(id)
	detachChild(child)
	n.notifyPost(a)
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
	return true
}

// WriteTo serializes this node per §6.3: i32 type_tag, u64 id, i32 max_id,
// i32 count, then count pairs of (i32 id, nested node).
func (n *SheetNode) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(NodeSheet)); err != nil {
		return err
	}
	if err := w.WriteU64(n.id); err != nil {
		return err
	}
	if err := w.WriteI32(int32(n.maxID)); err != nil {
		return err
	}
	if err := w.WriteI32(int32(len(n.order))); err != nil {
		return err
	}
	for _, id := range n.order {
		if err := w.WriteI32(int32(id)); err != nil {
			return err
		}
		if err := n.byID[id].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadSheetNode deserializes a SheetNode payload (after the type tag has
// already been consumed by the caller).
func ReadSheetNode(r *stream.Reader) (*SheetNode, error) {
	id, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	maxID, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	count, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	n := NewSheetNode()
	n.id = id
	for i := int32(0); i < count; i++ {
		childID, err := r.ReadI32()
		if err != nil {
			return nil, err
		}
		child, err := ReadNode(r)
		if err != nil {
			return nil, err
		}
		attachChild(n, child)
		n.insertRaw(uint64(childID), child)
	}
	if uint64(maxID) > n.maxID {
		n.maxID = uint64(maxID)
	}
	return n, nil
}

// SheetInsertAction records an insertion into a SheetNode (§3).
type SheetInsertAction struct {
	parent *SheetNode
	id     uint64
	child  Node
}

func (a *SheetInsertAction) TypeTag() ActionTypeID { return ActionSheetInsert }

func (a *SheetInsertAction) insertedRoots() []Node { return []Node{a.child} }

func (a *SheetInsertAction) Execute(undo bool) error {
	m := a.parent.Model()
	a.parent.notifyPre(a)
	if undo {
		a.parent.removeRaw(a.id)
		detachChild(a.child)
	} else {
		attachChild(a.parent, a.child)
		a.parent.insertRaw(a.id, a.child)
		if m != nil {
			m.registerSubtree(a.child)
		}
	}
	a.parent.notifyPost(a)
	return nil
}

func (a *SheetInsertAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionSheetInsert)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteU64(a.id); err != nil {
		return err
	}
	return a.child.WriteTo(w)
}

// SheetRemoveAction records a removal from a SheetNode, retaining the
// original id so undo restores it exactly (§3, §4.6, scenario 4).
type SheetRemoveAction struct {
	parent *SheetNode
	id     uint64
	child  Node
}

func (a *SheetRemoveAction) TypeTag() ActionTypeID { return ActionSheetRemove }

func (a *SheetRemoveAction) Execute(undo bool) error {
	m := a.parent.Model()
	a.parent.notifyPre(a)
	if undo {
		attachChild(a.parent, a.child)
		a.parent.insertRaw(a.id, a.child)
		if m != nil {
			m.registerSubtree(a.child)
		}
	} else {
		a.parent.removeRaw(a.id)
		detachChild(a.child)
	}
	a.parent.notifyPost(a)
	return nil
}

func (a *SheetRemoveAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionSheetRemove)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteU64(a.id); err != nil {
		return err
	}
	return a.child.WriteTo(w)
}
