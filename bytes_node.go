package substate

import "github.com/orneryd/substate/stream"

// BytesNode holds an ordered byte sequence and has no children (§3).
type BytesNode struct {
	base
	data []byte
}

// NewBytesNode returns a new free BytesNode.
func NewBytesNode() *BytesNode {
	n := &BytesNode{base: base{typ: NodeBytes, state: StateCreated}}
	n.self = n
	return n
}

func (n *BytesNode) children() []Node { return nil }

// Len returns the number of bytes currently stored.
func (n *BytesNode) Len() int { return len(n.data) }

// Bytes returns a copy of the stored byte sequence.
func (n *BytesNode) Bytes() []byte {
	out := make([]byte, len(n.data))
	copy(out, n.data)
	return out
}

// Clone returns a free BytesNode with the same contents. copyID controls
// whether the id is preserved (§4.2).
func (n *BytesNode) Clone(copyID bool) Node {
	clone := NewBytesNode()
	clone.data = append([]byte(nil), n.data...)
	if copyID {
		clone.id = n.id
	}
	return clone
}

// Propagate invokes fn on this node; Bytes nodes have no children.
func (n *BytesNode) Propagate(fn func(Node)) { fn(n) }

func (n *BytesNode) splice(index int, insert []byte, removeCount int) []byte {
	removed := append([]byte(nil), n.data[index:index+removeCount]...)
	tail := append([]byte(nil), n.data[index+removeCount:]...)
	n.data = append(n.data[:index], append(append([]byte(nil), insert...), tail...)...)
	return removed
}

func (n *BytesNode) applyAction(a Action, undo bool) {
	switch act := a.(type) {
	case *BytesInsertAction:
		if undo {
			n.splice(act.index, nil, len(act.bytes))
		} else {
			n.splice(act.index, act.bytes, 0)
		}
	case *BytesRemoveAction:
		if undo {
			n.splice(act.index, act.bytes, 0)
		} else {
			n.splice(act.index, nil, len(act.bytes))
		}
	case *BytesReplaceAction:
		if undo {
			n.splice(act.index, act.oldBytes, len(act.newBytes))
		} else {
			n.splice(act.index, act.newBytes, len(act.oldBytes))
		}
	}
}

func (n *BytesNode) runMutation(a Action, apply func()) {
	n.notifyPre(a)
	apply()
	n.notifyPost(a)
}

// Insert splices b into the buffer at index. 0 <= index <= Len().
func (n *BytesNode) Insert(index int, b []byte) {
	assertWritable(n)
	if index < 0 || index > len(n.data) {
		panic("substate: bytes insert index out of range")
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	a := &BytesInsertAction{parent: n, index: index, bytes: append([]byte(nil), b...)}
	n.runMutation(a, func() { n.splice(index, b, 0) })
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
}

// Remove deletes count bytes starting at index. 0 <= index, count > 0,
// index+count <= Len().
func (n *BytesNode) Remove(index, count int) {
	assertWritable(n)
	if index < 0 || count <= 0 || index+count > len(n.data) {
		panic("substate: bytes remove range out of bounds")
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	removed := append([]byte(nil), n.data[index:index+count]...)
	a := &BytesRemoveAction{parent: n, index: index, bytes: removed}
	n.runMutation(a, func() { n.splice(index, nil, count) })
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
}

// Replace overwrites len(b) bytes starting at index with b. If index+len(b)
// extends past the current length, the buffer is first extended with zero
// padding via an internal insert (§4.3).
func (n *BytesNode) Replace(index int, b []byte) {
	assertWritable(n)
	if index < 0 || index > len(n.data) {
		panic("substate: bytes replace index out of range")
	}
	if end := index + len(b); end > len(n.data) {
		n.Insert(len(n.data), make([]byte, end-len(n.data)))
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	old := append([]byte(nil), n.data[index:index+len(b)]...)
	a := &BytesReplaceAction{parent: n, index: index, newBytes: append([]byte(nil), b...), oldBytes: old}
	n.runMutation(a, func() { n.splice(index, b, len(b)) })
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
}

// Prepend inserts b at the start of the buffer.
func (n *BytesNode) Prepend(b []byte) { n.Insert(0, b) }

// Append inserts b at the end of the buffer.
func (n *BytesNode) Append(b []byte) { n.Insert(len(n.data), b) }

// Truncate shortens the buffer to size bytes. A size greater than the
// current length is a no-op (§9 Open Questions: ambiguous in the source,
// resolved here as a no-op).
func (n *BytesNode) Truncate(size int) {
	if size < 0 {
		panic("substate: negative truncate size")
	}
	if size >= len(n.data) {
		return
	}
	n.Remove(size, len(n.data)-size)
}

// Clear empties the buffer.
func (n *BytesNode) Clear() {
	if len(n.data) == 0 {
		return
	}
	n.Remove(0, len(n.data))
}

// WriteTo serializes this node per §6.3: i32 type_tag, u64 id, i32 len,
// then len bytes padded to 4.
func (n *BytesNode) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(NodeBytes)); err != nil {
		return err
	}
	if err := w.WriteU64(n.id); err != nil {
		return err
	}
	return w.WriteBytesBlock(n.data)
}

// ReadBytesNode deserializes a BytesNode payload (after the type tag has
// already been consumed by the caller).
func ReadBytesNode(r *stream.Reader) (*BytesNode, error) {
	id, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytesBlock()
	if err != nil {
		return nil, err
	}
	n := NewBytesNode()
	n.id = id
	n.data = data
	return n, nil
}

// BytesInsertAction records an insertion into a BytesNode (§3).
type BytesInsertAction struct {
	parent *BytesNode
	index  int
	bytes  []byte
}

func (a *BytesInsertAction) TypeTag() ActionTypeID { return ActionBytesInsert }

func (a *BytesInsertAction) Execute(undo bool) error {
	a.parent.notifyPre(a)
	a.parent.applyAction(a, undo)
	a.parent.notifyPost(a)
	return nil
}

func (a *BytesInsertAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionBytesInsert)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteI32(int32(a.index)); err != nil {
		return err
	}
	return w.WriteBytesBlock(a.bytes)
}

// BytesRemoveAction records a removal from a BytesNode (§3).
type BytesRemoveAction struct {
	parent *BytesNode
	index  int
	bytes  []byte
}

func (a *BytesRemoveAction) TypeTag() ActionTypeID { return ActionBytesRemove }

func (a *BytesRemoveAction) Execute(undo bool) error {
	a.parent.notifyPre(a)
	a.parent.applyAction(a, undo)
	a.parent.notifyPost(a)
	return nil
}

func (a *BytesRemoveAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionBytesRemove)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteI32(int32(a.index)); err != nil {
		return err
	}
	return w.WriteBytesBlock(a.bytes)
}

// BytesReplaceAction records an overwrite of a byte range, carrying both
// the old and new blocks so it can invert exactly (§3).
type BytesReplaceAction struct {
	parent   *BytesNode
	index    int
	newBytes []byte
	oldBytes []byte
}

func (a *BytesReplaceAction) TypeTag() ActionTypeID { return ActionBytesReplace }

func (a *BytesReplaceAction) Execute(undo bool) error {
	a.parent.notifyPre(a)
	a.parent.applyAction(a, undo)
	a.parent.notifyPost(a)
	return nil
}

func (a *BytesReplaceAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionBytesReplace)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteI32(int32(a.index)); err != nil {
		return err
	}
	if err := w.WriteBytesBlock(a.newBytes); err != nil {
		return err
	}
	return w.WriteBytesBlock(a.oldBytes)
}
