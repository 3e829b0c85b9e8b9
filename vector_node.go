package substate

import "github.com/orneryd/substate/stream"

// VectorNode holds an ordered sequence of child nodes (§3).
type VectorNode struct {
	base
	items []Node
}

// NewVectorNode returns a new free VectorNode.
func NewVectorNode() *VectorNode {
	n := &VectorNode{base: base{typ: NodeVector, state: StateCreated}}
	n.self = n
	return n
}

func (n *VectorNode) children() []Node { return n.items }

// Len returns the number of children.
func (n *VectorNode) Len() int { return len(n.items) }

// At returns the child at index.
func (n *VectorNode) At(index int) Node { return n.items[index] }

// Clone returns a free VectorNode whose children are themselves cloned
// (§4.2).
func (n *VectorNode) Clone(copyID bool) Node {
	clone := NewVectorNode()
	if copyID {
		clone.id = n.id
	}
	for _, c := range n.items {
		child := c.Clone(copyID)
		attachChild(clone, child)
		clone.items = append(clone.items, child)
	}
	return clone
}

// Propagate invokes fn on this node, then on every descendant, pre-order.
func (n *VectorNode) Propagate(fn func(Node)) {
	fn(n)
	for _, c := range n.items {
		c.Propagate(fn)
	}
}

func (n *VectorNode) spliceInsert(index int, nodes []Node) {
	tail := append([]Node(nil), n.items[index:]...)
	n.items = append(append(append([]Node(nil), n.items[:index]...), nodes...), tail...)
	for _, c := range nodes {
		attachChild(n, c)
	}
}

func (n *VectorNode) spliceRemove(index, count int) []Node {
	removed := append([]Node(nil), n.items[index:index+count]...)
	n.items = append(append([]Node(nil), n.items[:index]...), n.items[index+count:]...)
	for _, c := range removed {
		detachChild(c)
	}
	return removed
}

func (n *VectorNode) spliceMove(index, count, dest int) {
	moved := append([]Node(nil), n.items[index:index+count]...)
	rest := append(append([]Node(nil), n.items[:index]...), n.items[index+count:]...)
	insertAt := dest
	if dest > index {
		insertAt = dest - count
	}
	out := append(append([]Node(nil), rest[:insertAt]...), moved...)
	out = append(out, rest[insertAt:]...)
	n.items = out
}

// Insert splices nodes into the sequence at index. Every node must be
// free (§4.4).
func (n *VectorNode) Insert(index int, nodes []Node) {
	assertWritable(n)
	if index < 0 || index > len(n.items) {
		panic("substate: vector insert index out of range")
	}
	for _, c := range nodes {
		if !c.IsFree() {
			panic("substate: vector insert requires free nodes")
		}
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	a := &VectorInsertAction{parent: n, index: index, children: append([]Node(nil), nodes...)}
	n.notifyPre(a)
	n.spliceInsert(index, nodes)
	n.notifyPost(a)
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
}

// Remove detaches count children starting at index (§4.4).
func (n *VectorNode) Remove(index, count int) {
	assertWritable(n)
	if index < 0 || count <= 0 || index+count > len(n.items) {
		panic("substate: vector remove range out of bounds")
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	removed := append([]Node(nil), n.items[index:index+count]...)
	a := &VectorRemoveAction{parent: n, index: index, children: removed}
	n.notifyPre(a)
	n.spliceRemove(index, count)
	n.notifyPost(a)
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
}

// Move relocates count children starting at index to dest, where dest is
// expressed as the destination index before the move; dest must not lie
// within [index, index+count) (§4.4).
func (n *VectorNode) Move(index, count, dest int) {
	assertWritable(n)
	if index < 0 || count <= 0 || index+count > len(n.items) {
		panic("substate: vector move range out of bounds")
	}
	if dest < 0 || dest > len(n.items) {
		panic("substate: vector move destination out of range")
	}
	if dest >= index && dest < index+count {
		panic("substate: vector move destination overlaps source range")
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	a := &VectorMoveAction{parent: n, index: index, count: count, dest: dest}
	n.notifyPre(a)
	n.spliceMove(index, count, dest)
	n.notifyPost(a)
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
}

// Move2 relocates count children starting at index to dest, where dest is
// expressed as the destination index after the move; mapped to the
// pre-move form per §4.4.
func (n *VectorNode) Move2(index, count, dest int) {
	destPre := dest
	if dest > index {
		destPre = dest + count
	}
	n.Move(index, count, destPre)
}

// Prepend inserts nodes at the start of the sequence.
func (n *VectorNode) Prepend(nodes []Node) { n.Insert(0, nodes) }

// Append inserts nodes at the end of the sequence.
func (n *VectorNode) Append(nodes []Node) { n.Insert(len(n.items), nodes) }

// WriteTo serializes this node per §6.3: i32 type_tag, u64 id, i32 count,
// then count nested node records.
func (n *VectorNode) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(NodeVector)); err != nil {
		return err
	}
	if err := w.WriteU64(n.id); err != nil {
		return err
	}
	if err := w.WriteI32(int32(len(n.items))); err != nil {
		return err
	}
	for _, c := range n.items {
		if err := c.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadVectorNode deserializes a VectorNode payload (after the type tag has
// already been consumed by the caller).
func ReadVectorNode(r *stream.Reader) (*VectorNode, error) {
	id, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	count, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	n := NewVectorNode()
	n.id = id
	for i := int32(0); i < count; i++ {
		child, err := ReadNode(r)
		if err != nil {
			return nil, err
		}
		attachChild(n, child)
		n.items = append(n.items, child)
	}
	return n, nil
}

// VectorInsertAction records an insertion into a VectorNode (§3).
type VectorInsertAction struct {
	parent   *VectorNode
	index    int
	children []Node
}

func (a *VectorInsertAction) TypeTag() ActionTypeID { return ActionVectorInsert }

func (a *VectorInsertAction) insertedRoots() []Node { return a.children }

func (a *VectorInsertAction) Execute(undo bool) error {
	m := a.parent.Model()
	a.parent.notifyPre(a)
	if undo {
		// spliceRemove detaches each child, which releases its id and
		// model via detachChild whenever it currently belongs to one.
		a.parent.spliceRemove(a.index, len(a.children))
	} else {
		a.parent.spliceInsert(a.index, a.children)
		if m != nil {
			m.registerSubtrees(a.children)
		}
	}
	a.parent.notifyPost(a)
	return nil
}

func (a *VectorInsertAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionVectorInsert)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteI32(int32(a.index)); err != nil {
		return err
	}
	if err := w.WriteI32(int32(len(a.children))); err != nil {
		return err
	}
	for _, c := range a.children {
		if err := c.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// VectorRemoveAction records a removal from a VectorNode (§3).
type VectorRemoveAction struct {
	parent   *VectorNode
	index    int
	children []Node
}

func (a *VectorRemoveAction) TypeTag() ActionTypeID { return ActionVectorRemove }

func (a *VectorRemoveAction) Execute(undo bool) error {
	m := a.parent.Model()
	a.parent.notifyPre(a)
	if undo {
		a.parent.spliceInsert(a.index, a.children)
		if m != nil {
			m.registerSubtrees(a.children)
		}
	} else {
		a.parent.spliceRemove(a.index, len(a.children))
	}
	a.parent.notifyPost(a)
	return nil
}

func (a *VectorRemoveAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionVectorRemove)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteI32(int32(a.index)); err != nil {
		return err
	}
	if err := w.WriteI32(int32(len(a.children))); err != nil {
		return err
	}
	for _, c := range a.children {
		if err := c.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// VectorMoveAction records a relocation within a VectorNode (§3, §4.4).
type VectorMoveAction struct {
	parent *VectorNode
	index  int
	count  int
	dest   int
}

func (a *VectorMoveAction) TypeTag() ActionTypeID { return ActionVectorMove }

// inverse computes the pre-move (index, dest) pair that undoes a forward
// move of (index, count, dest), per §4.4.
func (a *VectorMoveAction) inverse() (index, dest int) {
	if a.dest > a.index {
		return a.dest - a.count, a.index
	}
	return a.dest, a.index + a.count
}

func (a *VectorMoveAction) Execute(undo bool) error {
	a.parent.notifyPre(a)
	if undo {
		idx, dest := a.inverse()
		a.parent.spliceMove(idx, a.count, dest)
	} else {
		a.parent.spliceMove(a.index, a.count, a.dest)
	}
	a.parent.notifyPost(a)
	return nil
}

func (a *VectorMoveAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionVectorMove)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteI32(int32(a.index)); err != nil {
		return err
	}
	if err := w.WriteI32(int32(a.count)); err != nil {
		return err
	}
	return w.WriteI32(int32(a.dest))
}
