package substate

import (
	"fmt"

	"github.com/orneryd/substate/stream"
)

// NodeType tags the shape of a Node's payload (§3).
type NodeType int32

const (
	NodeBytes NodeType = iota + 1
	NodeVector
	NodeMapping
	NodeSheet
	NodeStruct

	// NodeUserBase is the first node type id available to user-defined
	// node kinds registered through the factory registry.
	NodeUserBase NodeType = 1000
)

func (t NodeType) String() string {
	switch t {
	case NodeBytes:
		return "Bytes"
	case NodeVector:
		return "Vector"
	case NodeMapping:
		return "Mapping"
	case NodeSheet:
		return "Sheet"
	case NodeStruct:
		return "Struct"
	default:
		return fmt.Sprintf("User(%d)", int32(t))
	}
}

// NodeState is a node's position in its lifecycle (§3).
type NodeState int

const (
	StateCreated NodeState = iota
	StateActive
	StateDetached
)

func (s NodeState) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateActive:
		return "Active"
	case StateDetached:
		return "Detached"
	default:
		return "Unknown"
	}
}

// Subscriber receives notifications dispatched by a Node or a Model (§4.11).
type Subscriber func(Notification)

// Node is the public contract shared by every node kind. The interface
// carries two unexported methods (baseNode, children) which seals it to
// types defined in this package. A NodeFactory registered through
// RegisterNodeType returns a Node, so the user node kinds it reads are
// also types declared in this package; another package cannot define one.
type Node interface {
	Type() NodeType
	State() NodeState
	ID() uint64
	Parent() Node
	Model() *Model
	IsFree() bool
	IsDetached() bool
	IsWritable() bool

	// Clone returns a new free subtree structurally equivalent to this
	// node. If copyID is true every id is preserved (deserialization,
	// detached action materialization); otherwise every id is zero and
	// must be reassigned on insertion (§4.2).
	Clone(copyID bool) Node

	// Propagate invokes fn on this node and every descendant exactly
	// once in pre-order (§4.2).
	Propagate(fn func(Node))

	// WriteTo serializes this node per §6.3.
	WriteTo(w *stream.Writer) error

	// Subscribe registers a notification subscriber on this node.
	Subscribe(s Subscriber)

	baseNode() *base
	children() []Node
}

// base holds the fields and structural hooks common to every node kind.
// Concrete node types embed base and promote its exported methods to
// satisfy Node; the unexported hooks (attachChild, detachChild,
// notifyPre/Post, beginAction/endAction) are the "protected structural
// hooks" of §4.2, usable only from within this package.
type base struct {
	self        Node
	typ         NodeType
	state       NodeState
	id          uint64
	parent      Node
	model       *Model
	subscribers []Subscriber
}

func (b *base) Type() NodeType    { return b.typ }
func (b *base) State() NodeState  { return b.state }
func (b *base) ID() uint64        { return b.id }
func (b *base) Parent() Node      { return b.parent }
func (b *base) Model() *Model     { return b.model }
func (b *base) baseNode() *base   { return b }

// IsFree reports whether this node has never been attached to a parent or
// a model (§3 Lifecycle).
func (b *base) IsFree() bool {
	return b.parent == nil && b.model == nil
}

// IsDetached reports whether this node's own state is Detached or any
// ancestor is Detached (§3 Lifecycle).
func (b *base) IsDetached() bool {
	if b.state == StateDetached {
		return true
	}
	if b.parent != nil {
		return b.parent.IsDetached()
	}
	return false
}

// IsWritable reports whether this node currently accepts structural
// mutation: it belongs to no model, or its model is in the Transaction
// state with no node currently holding the action lock (§3, §5).
func (b *base) IsWritable() bool {
	if b.model == nil {
		return true
	}
	return b.model.isWritable()
}

func (b *base) Subscribe(s Subscriber) {
	b.subscribers = append(b.subscribers, s)
}

// notify dispatches a Notification to this node's own subscribers, then
// bubbles it to the owning model (§4.11). Panics from subscriber callbacks
// are recovered at this boundary so a broken subscriber cannot destabilize
// the model (§7).
func (b *base) notify(n Notification) {
	for _, s := range b.subscribers {
		dispatchSafely(s, n)
	}
	if b.model != nil {
		b.model.dispatch(n)
	}
}

func dispatchSafely(s Subscriber, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			defaultLogger.Printf("recovered panic from notification subscriber: %v", r)
		}
	}()
	s(n)
}

func (b *base) notifyPre(a Action) {
	b.notify(Notification{Kind: NotifyActionAboutToTrigger, Action: a})
}

func (b *base) notifyPost(a Action) {
	b.notify(Notification{Kind: NotifyActionTriggered, Action: a})
}

// assertWritable panics if the node cannot currently accept a structural
// mutation. Precondition violations are programming errors, fatal per §7.
func assertWritable(n Node) {
	if !n.IsWritable() {
		panic("substate: node is not writable")
	}
}

// attachChild makes child a structural child of parent: child must be
// free, its parent pointer is set, and its state becomes Active. Id and
// model association are deliberately NOT performed here — that happens in
// one batched pass at commit time (§4.9), or immediately when an action is
// replayed by the storage engine during undo/redo (the actions' Execute
// methods).
func attachChild(parent Node, child Node) {
	if !child.IsFree() {
		panic("substate: cannot attach a non-free node")
	}
	cb := child.baseNode()
	cb.parent = parent
	cb.state = StateActive
}

// detachChild removes child's structural attachment to its parent. If the
// child currently belongs to a model, its id is released from that
// model's index immediately and its state becomes Detached (§3, §4.6
// "a destroyed node releases its id").
func detachChild(child Node) {
	cb := child.baseNode()
	cb.parent = nil
	if cb.model != nil {
		m := cb.model
		cb.state = StateDetached
		m.unregisterSubtree(child)
	}
}

// registerSubtree assigns (or restores) ids and the model pointer across
// an entire subtree, in pre-order. Called once per freshly committed
// insert root (§4.9), and by action replay when the engine re-applies an
// insert (redo) or reverses a remove (undo).
func (m *Model) registerSubtree(n Node) {
	n.Propagate(func(child Node) {
		cb := child.baseNode()
		cb.model = m
		cb.id = m.ids.add(child, cb.id)
	})
}

// unregisterSubtree releases ids and clears the model pointer across an
// entire subtree, in pre-order. Called by detachChild for an already
// committed node, and by action replay when the engine reverses an insert
// (undo) or re-applies a remove (redo).
func (m *Model) unregisterSubtree(n Node) {
	n.Propagate(func(child Node) {
		cb := child.baseNode()
		if cb.id != 0 {
			m.ids.remove(cb.id)
		}
		cb.model = nil
	})
}

// registerSubtrees/unregisterSubtrees apply registerSubtree/unregisterSubtree
// across a batch of sibling roots, e.g. every child carried by a single
// Vector insert/remove action.
func (m *Model) registerSubtrees(nodes []Node) {
	for _, n := range nodes {
		m.registerSubtree(n)
	}
}

func (m *Model) unregisterSubtrees(nodes []Node) {
	for _, n := range nodes {
		m.unregisterSubtree(n)
	}
}
