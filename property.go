package substate

import (
	"github.com/orneryd/substate/stream"
)

// PropertyKind tags which of the three Property variants is populated.
type PropertyKind int

const (
	PropertyEmpty PropertyKind = iota
	PropertyVariantKind
	PropertyNodeKind
)

// propertyTag is the on-wire discriminator (§6.3).
type propertyTag int32

const (
	tagEmpty   propertyTag = 0
	tagNodeRef propertyTag = 1
	tagVariant propertyTag = 2
)

// Property is a tagged union of {empty, Variant, NodeRef} (§3, §4.1).
type Property struct {
	kind    PropertyKind
	variant Variant
	node    Node
}

// EmptyProperty returns the empty Property.
func EmptyProperty() Property { return Property{kind: PropertyEmpty} }

// NewVariantProperty wraps a Variant in a Property.
func NewVariantProperty(v Variant) Property {
	return Property{kind: PropertyVariantKind, variant: v}
}

// NewNodeProperty wraps a node reference in a Property.
func NewNodeProperty(n Node) Property {
	return Property{kind: PropertyNodeKind, node: n}
}

func (p Property) IsValid() bool  { return p.kind != PropertyEmpty }
func (p Property) IsVariant() bool { return p.kind == PropertyVariantKind }
func (p Property) IsNode() bool    { return p.kind == PropertyNodeKind }

// Variant returns the wrapped Variant; zero value if this Property does not
// hold one.
func (p Property) Variant() Variant { return p.variant }

// Node returns the wrapped Node reference; nil if this Property does not
// hold one.
func (p Property) Node() Node { return p.node }

// Equal implements the §3 structural equality rule: both empty, or both
// Variant with equal Variants, or both NodeRef referencing the same node
// identity.
func (p Property) Equal(other Property) bool {
	if p.kind != other.kind {
		return false
	}
	switch p.kind {
	case PropertyEmpty:
		return true
	case PropertyVariantKind:
		return p.variant.Equal(other.variant)
	case PropertyNodeKind:
		return sameNodeIdentity(p.node, other.node)
	default:
		return false
	}
}

func sameNodeIdentity(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.baseNode() == b.baseNode()
}

// WriteProperty serializes a Property per §6.3: a leading i32 tag, then a
// node id (NodeRef) or a Variant record (Variant); nothing further for
// empty.
func WriteProperty(w *stream.Writer, p Property) error {
	switch p.kind {
	case PropertyEmpty:
		return w.WriteI32(int32(tagEmpty))
	case PropertyNodeKind:
		if err := w.WriteI32(int32(tagNodeRef)); err != nil {
			return err
		}
		return w.WriteU64(p.node.ID())
	case PropertyVariantKind:
		if err := w.WriteI32(int32(tagVariant)); err != nil {
			return err
		}
		return p.variant.Write(w)
	default:
		return ErrInvalidTag
	}
}

// ReadProperty deserializes a Property, resolving NodeRef ids against
// resolve. An id resolve cannot satisfy fails the read with
// ErrUnresolvedRef (§6.4, §7).
func ReadProperty(r *stream.Reader, resolve func(id uint64) (Node, bool)) (Property, error) {
	tagVal, err := r.ReadI32()
	if err != nil {
		return Property{}, err
	}
	switch propertyTag(tagVal) {
	case tagEmpty:
		return EmptyProperty(), nil
	case tagNodeRef:
		id, err := r.ReadU64()
		if err != nil {
			return Property{}, err
		}
		n, ok := resolve(id)
		if !ok {
			return Property{}, ErrUnresolvedRef
		}
		return NewNodeProperty(n), nil
	case tagVariant:
		v, err := ReadVariant(r)
		if err != nil {
			return Property{}, err
		}
		return NewVariantProperty(v), nil
	default:
		return Property{}, ErrInvalidTag
	}
}
