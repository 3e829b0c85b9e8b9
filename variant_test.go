package substate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/substate/stream"
)

func TestVariant_EqualityByTypeAndPayload(t *testing.T) {
	t.Run("same_type_same_payload_are_equal", func(t *testing.T) {
		assert.True(t, NewI32Variant(7).Equal(NewI32Variant(7)))
	})

	t.Run("same_type_different_payload_are_not_equal", func(t *testing.T) {
		assert.False(t, NewI32Variant(7).Equal(NewI32Variant(8)))
	})

	t.Run("different_type_same_underlying_value_are_not_equal", func(t *testing.T) {
		assert.False(t, NewI32Variant(7).Equal(NewI64Variant(7)))
	})

	t.Run("zero_variant_is_invalid", func(t *testing.T) {
		var v Variant
		assert.False(t, v.IsValid())
	})
}

func TestVariant_WriteReadRoundTrip(t *testing.T) {
	cases := []Variant{
		NewBoolVariant(true),
		NewI8Variant(-12),
		NewU8Variant(200),
		NewI16Variant(-1000),
		NewU16Variant(60000),
		NewI32Variant(-70000),
		NewU32Variant(4000000000),
		NewI64Variant(-1 << 40),
		NewU64Variant(1 << 60),
		NewF32Variant(3.5),
		NewF64Variant(2.718281828),
		NewStringVariant("hello, substate"),
	}
	for i, v := range cases {
		t.Run(fmt.Sprintf("type_%d", v.TypeID()), func(t *testing.T) {
			_ = i
			w := stream.NewWriter()
			require.NoError(t, v.Write(w))
			got, err := ReadVariant(stream.NewReader(w.Bytes()))
			require.NoError(t, err)
			assert.True(t, v.Equal(got))
		})
	}
}

// userStringHandler is a minimal user-registered variant type: a plain
// string payload read/written through the stream string convention.
type userStringHandler struct{}

func (userStringHandler) TypeID() VariantTypeID { return TypeUserBase + 1 }
func (userStringHandler) Read(r *stream.Reader) (any, error) {
	return r.ReadString()
}
func (userStringHandler) Write(w *stream.Writer, value any) error {
	return w.WriteString(value.(string))
}
func (userStringHandler) Equal(a, b any) bool { return a.(string) == b.(string) }
func (userStringHandler) Clone(value any) any { return value }

func TestRegisterVariantType_UserHandlerRoundTrips(t *testing.T) {
	t.Run("registered_handler_is_used_for_write_read_equal", func(t *testing.T) {
		require.NoError(t, RegisterVariantType(userStringHandler{}))

		v := NewVariant(TypeUserBase+1, "hello")
		w := stream.NewWriter()
		require.NoError(t, v.Write(w))

		got, err := ReadVariant(stream.NewReader(w.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Value())
		assert.True(t, v.Equal(got))
	})
}

type belowBaseHandler struct{}

func (belowBaseHandler) TypeID() VariantTypeID                  { return TypeBool }
func (belowBaseHandler) Read(r *stream.Reader) (any, error)     { return nil, nil }
func (belowBaseHandler) Write(w *stream.Writer, value any) error { return nil }
func (belowBaseHandler) Equal(a, b any) bool                    { return a == b }
func (belowBaseHandler) Clone(value any) any                    { return value }

func TestRegisterVariantType_RejectsIDBelowUserBase(t *testing.T) {
	t.Run("id_below_user_base_is_rejected", func(t *testing.T) {
		err := RegisterVariantType(belowBaseHandler{})
		require.Error(t, err)
	})
}
