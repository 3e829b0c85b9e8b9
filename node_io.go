package substate

import (
	"sync"

	"github.com/orneryd/substate/stream"
)

// NodeFactory reads a user-defined node kind's payload from the wire,
// after the type tag has already been consumed. Registered under a type
// id >= NodeUserBase (§9 "Polymorphic node and action family").
type NodeFactory func(r *stream.Reader) (Node, error)

var (
	nodeRegistryMu sync.RWMutex
	nodeRegistry   = map[NodeType]NodeFactory{}
)

// RegisterNodeType registers a factory for a user-defined node kind.
func RegisterNodeType(t NodeType, factory NodeFactory) {
	nodeRegistryMu.Lock()
	defer nodeRegistryMu.Unlock()
	nodeRegistry[t] = factory
}

// lookupNodeFactory retrieves a previously registered factory for t (§5:
// concurrent registration and lookup must be safe).
func lookupNodeFactory(t NodeType) (NodeFactory, bool) {
	nodeRegistryMu.RLock()
	defer nodeRegistryMu.RUnlock()
	factory, ok := nodeRegistry[t]
	return factory, ok
}

// ReadNode reads one node record (type tag plus kind-specific payload),
// dispatching to the matching reader. Unknown type tags fail the read
// with ErrUnknownTypeID (§7).
func ReadNode(r *stream.Reader) (Node, error) {
	tag, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	switch NodeType(tag) {
	case NodeBytes:
		return ReadBytesNode(r)
	case NodeVector:
		return ReadVectorNode(r)
	case NodeMapping:
		return ReadMappingNode(r)
	case NodeSheet:
		return ReadSheetNode(r)
	case NodeStruct:
		return ReadStructNode(r)
	default:
		factory, ok := lookupNodeFactory(NodeType(tag))
		if !ok {
			return nil, ErrUnknownTypeID
		}
		return factory(r)
	}
}
