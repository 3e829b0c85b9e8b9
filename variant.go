package substate

import (
	"fmt"
	"sync"

	"github.com/orneryd/substate/stream"
)

// VariantTypeID identifies the concrete payload type carried by a Variant.
// Primitive ids are fixed; user type ids start at TypeUserBase (§3).
type VariantTypeID int32

const (
	TypeBool   VariantTypeID = 1
	TypeI8     VariantTypeID = 2
	TypeU8     VariantTypeID = 3
	TypeI16    VariantTypeID = 4
	TypeU16    VariantTypeID = 5
	TypeI32    VariantTypeID = 6
	TypeU32    VariantTypeID = 7
	TypeI64    VariantTypeID = 8
	TypeU64    VariantTypeID = 9
	TypeF32    VariantTypeID = 10
	TypeF64    VariantTypeID = 11
	TypeString VariantTypeID = 12

	// TypeUserBase is the first type id available to user-registered
	// variant handlers.
	TypeUserBase VariantTypeID = 1000
)

// VariantHandler is the construct/read/write/equal/clone contract a user
// type registers under a type id >= TypeUserBase. Primitive types are
// handled internally and never go through the registry.
type VariantHandler interface {
	TypeID() VariantTypeID
	Read(r *stream.Reader) (any, error)
	Write(w *stream.Writer, value any) error
	Equal(a, b any) bool
	Clone(value any) any
}

var (
	registryMu sync.RWMutex
	registry   = map[VariantTypeID]VariantHandler{}
)

// RegisterVariantType registers a handler for a user-defined variant type.
// Safe for concurrent registration and lookup (§5): the registry is
// process-wide and guarded by a reader/writer lock.
func RegisterVariantType(h VariantHandler) error {
	if h.TypeID() < TypeUserBase {
		return fmt.Errorf("substate: user variant type id must be >= %d", TypeUserBase)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[h.TypeID()] = h
	return nil
}

func lookupHandler(id VariantTypeID) (VariantHandler, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	h, ok := registry[id]
	return h, ok
}

// Variant is an opaque, immutable leaf value. Copying a Variant is cheap:
// the struct itself is small and its payload is never mutated after
// construction, so a plain value copy is equivalent to the spec's
// "shared payload with atomic refcount" allowance — Go's garbage collector
// already makes manual refcounting unnecessary here.
type Variant struct {
	valid   bool
	typeID  VariantTypeID
	payload any
}

// NewVariant constructs a Variant of a registered user type.
func NewVariant(typeID VariantTypeID, payload any) Variant {
	return Variant{valid: true, typeID: typeID, payload: payload}
}

func NewBoolVariant(v bool) Variant     { return Variant{valid: true, typeID: TypeBool, payload: v} }
func NewI8Variant(v int8) Variant       { return Variant{valid: true, typeID: TypeI8, payload: v} }
func NewU8Variant(v uint8) Variant      { return Variant{valid: true, typeID: TypeU8, payload: v} }
func NewI16Variant(v int16) Variant     { return Variant{valid: true, typeID: TypeI16, payload: v} }
func NewU16Variant(v uint16) Variant    { return Variant{valid: true, typeID: TypeU16, payload: v} }
func NewI32Variant(v int32) Variant     { return Variant{valid: true, typeID: TypeI32, payload: v} }
func NewU32Variant(v uint32) Variant    { return Variant{valid: true, typeID: TypeU32, payload: v} }
func NewI64Variant(v int64) Variant     { return Variant{valid: true, typeID: TypeI64, payload: v} }
func NewU64Variant(v uint64) Variant    { return Variant{valid: true, typeID: TypeU64, payload: v} }
func NewF32Variant(v float32) Variant   { return Variant{valid: true, typeID: TypeF32, payload: v} }
func NewF64Variant(v float64) Variant   { return Variant{valid: true, typeID: TypeF64, payload: v} }
func NewStringVariant(v string) Variant { return Variant{valid: true, typeID: TypeString, payload: v} }

// IsValid reports whether the Variant was actually constructed (a zero
// Variant is not valid and must not be embedded in a non-empty Property).
func (v Variant) IsValid() bool { return v.valid }

// TypeID returns the variant's type id.
func (v Variant) TypeID() VariantTypeID { return v.typeID }

// Value returns the underlying payload.
func (v Variant) Value() any { return v.payload }

// Equal reports structural equality: same type id and equal payload.
func (v Variant) Equal(other Variant) bool {
	if v.valid != other.valid {
		return false
	}
	if !v.valid {
		return true
	}
	if v.typeID != other.typeID {
		return false
	}
	if v.typeID >= TypeUserBase {
		h, ok := lookupHandler(v.typeID)
		if !ok {
			return false
		}
		return h.Equal(v.payload, other.payload)
	}
	return v.payload == other.payload
}

// Write serializes the variant as an i32 type id followed by its payload
// (§6.2).
func (v Variant) Write(w *stream.Writer) error {
	if err := w.WriteI32(int32(v.typeID)); err != nil {
		return err
	}
	switch v.typeID {
	case TypeBool:
		return w.WriteBool(v.payload.(bool))
	case TypeI8:
		return w.WriteI8(v.payload.(int8))
	case TypeU8:
		return w.WriteU8(v.payload.(uint8))
	case TypeI16:
		return w.WriteI16(v.payload.(int16))
	case TypeU16:
		return w.WriteU16(v.payload.(uint16))
	case TypeI32:
		return w.WriteI32(v.payload.(int32))
	case TypeU32:
		return w.WriteU32(v.payload.(uint32))
	case TypeI64:
		return w.WriteI64(v.payload.(int64))
	case TypeU64:
		return w.WriteU64(v.payload.(uint64))
	case TypeF32:
		return w.WriteF32(v.payload.(float32))
	case TypeF64:
		return w.WriteF64(v.payload.(float64))
	case TypeString:
		return w.WriteString(v.payload.(string))
	default:
		h, ok := lookupHandler(v.typeID)
		if !ok {
			return ErrUnknownTypeID
		}
		return h.Write(w, v.payload)
	}
}

// ReadVariant reads a Variant previously written by Write. On failure it
// returns the zero Variant alongside the error.
func ReadVariant(r *stream.Reader) (result Variant, err error) {
	defer func() {
		if err != nil {
			result = Variant{}
		}
	}()
	id, err := r.ReadI32()
	if err != nil {
		return Variant{}, err
	}
	typeID := VariantTypeID(id)
	switch typeID {
	case TypeBool:
		v, err := r.ReadBool()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeI8:
		v, err := r.ReadI8()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeU8:
		v, err := r.ReadU8()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeI16:
		v, err := r.ReadI16()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeU16:
		v, err := r.ReadU16()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeI32:
		v, err := r.ReadI32()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeU32:
		v, err := r.ReadU32()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeI64:
		v, err := r.ReadI64()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeU64:
		v, err := r.ReadU64()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeF32:
		v, err := r.ReadF32()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeF64:
		v, err := r.ReadF64()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	case TypeString:
		v, err := r.ReadString()
		return Variant{valid: true, typeID: typeID, payload: v}, err
	default:
		h, ok := lookupHandler(typeID)
		if !ok {
			return Variant{}, ErrUnknownTypeID
		}
		payload, err := h.Read(r)
		if err != nil {
			return Variant{}, err
		}
		return Variant{valid: true, typeID: typeID, payload: payload}, nil
	}
}
