package substate

import "github.com/orneryd/substate/stream"

// StructNode holds a fixed-arity array of Property slots; the array length
// is immutable once constructed (§3).
type StructNode struct {
	base
	slots []Property
}

// NewStructNode returns a new free StructNode with the given arity.
func NewStructNode(arity int) *StructNode {
	if arity < 0 {
		panic("substate: negative struct arity")
	}
	n := &StructNode{base: base{typ: NodeStruct, state: StateCreated}, slots: make([]Property, arity)}
	n.self = n
	return n
}

func (n *StructNode) children() []Node {
	var out []Node
	for _, p := range n.slots {
		if p.IsNode() {
			out = append(out, p.Node())
		}
	}
	return out
}

// Arity returns the fixed number of slots.
func (n *StructNode) Arity() int { return len(n.slots) }

// Get returns the Property at index.
func (n *StructNode) Get(index int) Property { return n.slots[index] }

// Clone returns a free StructNode with cloned NodeRef slots (§4.2).
func (n *StructNode) Clone(copyID bool) Node {
	clone := NewStructNode(len(n.slots))
	if copyID {
		clone.id = n.id
	}
	for i, p := range n.slots {
		if p.IsNode() {
			child := p.Node().Clone(copyID)
			attachChild(clone, child)
			clone.slots[i] = NewNodeProperty(child)
		} else {
			clone.slots[i] = p
		}
	}
	return clone
}

// Propagate invokes fn on this node, then on every NodeRef slot,
// pre-order.
func (n *StructNode) Propagate(fn func(Node)) {
	fn(n)
	for _, c := range n.children() {
		c.Propagate(fn)
	}
}

func (n *StructNode) applyAssign(index int, value Property) {
	if old := n.slots[index]; old.IsNode() {
		detachChild(old.Node())
	}
	if value.IsNode() {
		attachChild(n, value.Node())
	}
	n.slots[index] = value
}

// Assign sets the Property at index. 0 <= index < Arity(). Assigning a
// value equal to the one already present is a no-op (§4.7).
func (n *StructNode) Assign(index int, value Property) {
	assertWritable(n)
	if index < 0 || index >= len(n.slots) {
		panic("substate: struct index out of range")
	}
	old := n.slots[index]
	if old.Equal(value) {
		return
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	a := &StructAssignAction{parent: n, index: index, oldValue: old, newValue: value}
	n.notifyPre(a)
	n.applyAssign(index, value)
	n.notifyPost(a)
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
}

// WriteTo serializes this node per §6.3: i32 type_tag, u64 id, i32 arity,
// then arity slot records. Unlike WriteProperty's generic NodeRef
// convention (a bare id, meant to be resolved against a live IdIndex), a
// node-valued slot here inlines the full nested node record — a cold
// deserialize has no index to resolve an id against, so Struct's own
// node kind is serialized the same inline way Vector/Mapping/Sheet
// serialize their children.
func (n *StructNode) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(NodeStruct)); err != nil {
		return err
	}
	if err := w.WriteU64(n.id); err != nil {
		return err
	}
	if err := w.WriteI32(int32(len(n.slots))); err != nil {
		return err
	}
	for _, p := range n.slots {
		switch {
		case p.IsNode():
			if err := w.WriteI32(int32(tagNodeRef)); err != nil {
				return err
			}
			if err := p.Node().WriteTo(w); err != nil {
				return err
			}
		case p.IsVariant():
			if err := w.WriteI32(int32(tagVariant)); err != nil {
				return err
			}
			if err := p.Variant().Write(w); err != nil {
				return err
			}
		default:
			if err := w.WriteI32(int32(tagEmpty)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadStructNode deserializes a StructNode payload (after the type tag
// has already been consumed by the caller).
func ReadStructNode(r *stream.Reader) (*StructNode, error) {
	id, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	arity, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	n := NewStructNode(int(arity))
	n.id = id
	for i := int32(0); i < arity; i++ {
		tagVal, err := r.ReadI32()
		if err != nil {
			return nil, err
		}
		switch propertyTag(tagVal) {
		case tagEmpty:
			n.slots[i] = EmptyProperty()
		case tagVariant:
			v, err := ReadVariant(r)
			if err != nil {
				return nil, err
			}
			n.slots[i] = NewVariantProperty(v)
		case tagNodeRef:
			child, err := ReadNode(r)
			if err != nil {
				return nil, err
			}
			attachChild(n, child)
			n.slots[i] = NewNodeProperty(child)
		default:
			return nil, ErrInvalidTag
		}
	}
	return n, nil
}

// StructAssignAction records a slot assignment (§3).
type StructAssignAction struct {
	parent   *StructNode
	index    int
	oldValue Property
	newValue Property
}

func (a *StructAssignAction) TypeTag() ActionTypeID { return ActionStructAssign }

func (a *StructAssignAction) insertedRoots() []Node {
	if a.newValue.IsNode() {
		return []Node{a.newValue.Node()}
	}
	return nil
}

func (a *StructAssignAction) Execute(undo bool) error {
	m := a.parent.Model()
	a.parent.notifyPre(a)
	if undo {
		a.parent.applyAssign(a.index, a.oldValue)
		if a.oldValue.IsNode() && m != nil {
			m.registerSubtree(a.oldValue.Node())
		}
	} else {
		a.parent.applyAssign(a.index, a.newValue)
		if a.newValue.IsNode() && m != nil {
			m.registerSubtree(a.newValue.Node())
		}
	}
	a.parent.notifyPost(a)
	return nil
}

func (a *StructAssignAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionStructAssign)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteI32(int32(a.index)); err != nil {
		return err
	}
	if err := WriteProperty(w, a.oldValue); err != nil {
		return err
	}
	return WriteProperty(w, a.newValue)
}
