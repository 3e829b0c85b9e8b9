package substate

import "github.com/orneryd/substate/stream"

// MappingNode holds a string-keyed map of Property values with unique
// keys (§3).
type MappingNode struct {
	base
	props map[string]Property
	// order preserves insertion order for stable serialization/iteration;
	// the map itself has no ordering guarantee.
	order []string
}

// NewMappingNode returns a new free MappingNode.
func NewMappingNode() *MappingNode {
	n := &MappingNode{base: base{typ: NodeMapping, state: StateCreated}, props: make(map[string]Property)}
	n.self = n
	return n
}

func (n *MappingNode) children() []Node {
	var out []Node
	for _, k := range n.order {
		if p := n.props[k]; p.IsNode() {
			out = append(out, p.Node())
		}
	}
	return out
}

// Keys returns the mapping's keys in insertion order.
func (n *MappingNode) Keys() []string {
	return append([]string(nil), n.order...)
}

// Get returns the Property stored under key, or EmptyProperty if absent.
func (n *MappingNode) Get(key string) Property {
	if p, ok := n.props[key]; ok {
		return p
	}
	return EmptyProperty()
}

// Clone returns a free MappingNode with cloned NodeRef children (§4.2).
func (n *MappingNode) Clone(copyID bool) Node {
	clone := NewMappingNode()
	if copyID {
		clone.id = n.id
	}
	for _, k := range n.order {
		p := n.props[k]
		if p.IsNode() {
			child := p.Node().Clone(copyID)
			attachChild(clone, child)
			clone.setRaw(k, NewNodeProperty(child))
		} else {
			clone.setRaw(k, p)
		}
	}
	return clone
}

// Propagate invokes fn on this node, then on every NodeRef child,
// pre-order.
func (n *MappingNode) Propagate(fn func(Node)) {
	fn(n)
	for _, c := range n.children() {
		c.Propagate(fn)
	}
}

// setRaw installs a property without producing an action; used by Clone
// and deserialization.
func (n *MappingNode) setRaw(key string, p Property) {
	if _, exists := n.props[key]; !exists {
		n.order = append(n.order, key)
	}
	n.props[key] = p
}

func (n *MappingNode) removeRaw(key string) {
	delete(n.props, key)
	for i, k := range n.order {
		if k == key {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

func (n *MappingNode) applyAssign(key string, value Property) {
	if old, ok := n.props[key]; ok && old.IsNode() {
		detachChild(old.Node())
	}
	if !value.IsValid() {
		n.removeRaw(key)
		return
	}
	if value.IsNode() {
		attachChild(n, value.Node())
	}
	n.setRaw(key, value)
}

// Set assigns value to key. Clearing a key is done by assigning
// EmptyProperty. A no-op (absent key + empty value, or an equal value
// already present) produces no action (§4.5).
func (n *MappingNode) Set(key string, value Property) {
	assertWritable(n)
	old := n.Get(key)
	if !old.IsValid() && !value.IsValid() {
		return
	}
	if old.Equal(value) {
		return
	}
	m := n.model
	if m != nil {
		m.beginAction(n)
	}
	a := &MappingAssignAction{parent: n, key: key, oldValue: old, newValue: value}
	n.notifyPre(a)
	n.applyAssign(key, value)
	n.notifyPost(a)
	if m != nil {
		m.appendAction(a)
		m.endAction()
	}
}

// WriteTo serializes this node per §6.3: i32 type_tag, u64 id, i32
// node_count, node_count pairs of (string key, nested node) for NodeRef
// entries, then i32 variant_count, variant_count pairs of (string key,
// variant) for Variant entries.
func (n *MappingNode) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(NodeMapping)); err != nil {
		return err
	}
	if err := w.WriteU64(n.id); err != nil {
		return err
	}
	var nodeKeys, variantKeys []string
	for _, k := range n.order {
		if n.props[k].IsNode() {
			nodeKeys = append(nodeKeys, k)
		} else {
			variantKeys = append(variantKeys, k)
		}
	}
	if err := w.WriteI32(int32(len(nodeKeys))); err != nil {
		return err
	}
	for _, k := range nodeKeys {
		if err := w.WriteString(k); err != nil {
			return err
		}
		if err := n.props[k].Node().WriteTo(w); err != nil {
			return err
		}
	}
	if err := w.WriteI32(int32(len(variantKeys))); err != nil {
		return err
	}
	for _, k := range variantKeys {
		if err := w.WriteString(k); err != nil {
			return err
		}
		if err := n.props[k].Variant().Write(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadMappingNode deserializes a MappingNode payload (after the type tag
// has already been consumed by the caller).
func ReadMappingNode(r *stream.Reader) (*MappingNode, error) {
	id, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	n := NewMappingNode()
	n.id = id
	nodeCount, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < nodeCount; i++ {
		key, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		child, err := ReadNode(r)
		if err != nil {
			return nil, err
		}
		attachChild(n, child)
		n.setRaw(key, NewNodeProperty(child))
	}
	variantCount, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < variantCount; i++ {
		key, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := ReadVariant(r)
		if err != nil {
			return nil, err
		}
		n.setRaw(key, NewVariantProperty(v))
	}
	return n, nil
}

// MappingAssignAction records a key assignment (§3). Either side may be
// empty.
type MappingAssignAction struct {
	parent   *MappingNode
	key      string
	oldValue Property
	newValue Property
}

func (a *MappingAssignAction) TypeTag() ActionTypeID { return ActionMappingAssign }

func (a *MappingAssignAction) insertedRoots() []Node {
	if a.newValue.IsNode() {
		return []Node{a.newValue.Node()}
	}
	return nil
}

func (a *MappingAssignAction) Execute(undo bool) error {
	m := a.parent.Model()
	a.parent.notifyPre(a)
	// applyAssign detaches (and so releases the id of) whichever value is
	// currently installed; we only need to explicitly register the side
	// being newly attached.
	if undo {
		a.parent.applyAssign(a.key, a.oldValue)
		if a.oldValue.IsNode() && m != nil {
			m.registerSubtree(a.oldValue.Node())
		}
	} else {
		a.parent.applyAssign(a.key, a.newValue)
		if a.newValue.IsNode() && m != nil {
			m.registerSubtree(a.newValue.Node())
		}
	}
	a.parent.notifyPost(a)
	return nil
}

func (a *MappingAssignAction) WriteTo(w *stream.Writer) error {
	if err := w.WriteI32(int32(ActionMappingAssign)); err != nil {
		return err
	}
	if err := w.WriteU64(a.parent.ID()); err != nil {
		return err
	}
	if err := w.WriteString(a.key); err != nil {
		return err
	}
	if err := WriteProperty(w, a.oldValue); err != nil {
		return err
	}
	return WriteProperty(w, a.newValue)
}
