package substate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/substate/stream"
)

func TestProperty_Equal(t *testing.T) {
	t.Run("two_empty_properties_are_equal", func(t *testing.T) {
		assert.True(t, EmptyProperty().Equal(EmptyProperty()))
	})

	t.Run("variant_properties_compare_by_variant_equality", func(t *testing.T) {
		a := NewVariantProperty(NewI32Variant(1))
		b := NewVariantProperty(NewI32Variant(1))
		c := NewVariantProperty(NewI32Variant(2))
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(c))
	})

	t.Run("node_properties_compare_by_identity_not_content", func(t *testing.T) {
		a := NewBytesNode()
		b := NewBytesNode()
		pa := NewNodeProperty(a)
		pb := NewNodeProperty(b)
		pa2 := NewNodeProperty(a)
		assert.False(t, pa.Equal(pb), "distinct free nodes with identical (empty) content are not the same identity")
		assert.True(t, pa.Equal(pa2))
	})

	t.Run("different_kinds_are_never_equal", func(t *testing.T) {
		empty := EmptyProperty()
		variant := NewVariantProperty(NewI32Variant(1))
		node := NewNodeProperty(NewBytesNode())
		assert.False(t, empty.Equal(variant))
		assert.False(t, variant.Equal(node))
		assert.False(t, node.Equal(empty))
	})
}

func TestProperty_WriteReadRoundTrip(t *testing.T) {
	resolveNone := func(id uint64) (Node, bool) { return nil, false }

	t.Run("empty", func(t *testing.T) {
		w := stream.NewWriter()
		require.NoError(t, WriteProperty(w, EmptyProperty()))
		got, err := ReadProperty(stream.NewReader(w.Bytes()), resolveNone)
		require.NoError(t, err)
		assert.False(t, got.IsValid())
	})

	t.Run("variant", func(t *testing.T) {
		p := NewVariantProperty(NewStringVariant("payload"))
		w := stream.NewWriter()
		require.NoError(t, WriteProperty(w, p))
		got, err := ReadProperty(stream.NewReader(w.Bytes()), resolveNone)
		require.NoError(t, err)
		assert.True(t, p.Equal(got))
	})

	t.Run("node_ref_resolves_through_callback", func(t *testing.T) {
		target := NewBytesNode()
		target.id = 42
		p := NewNodeProperty(target)
		w := stream.NewWriter()
		require.NoError(t, WriteProperty(w, p))

		resolve := func(id uint64) (Node, bool) {
			if id == 42 {
				return target, true
			}
			return nil, false
		}
		got, err := ReadProperty(stream.NewReader(w.Bytes()), resolve)
		require.NoError(t, err)
		assert.True(t, got.IsNode())
		assert.Same(t, target, got.Node())
	})

	t.Run("node_ref_with_unresolvable_id_fails", func(t *testing.T) {
		target := NewBytesNode()
		target.id = 99
		w := stream.NewWriter()
		require.NoError(t, WriteProperty(w, NewNodeProperty(target)))

		_, err := ReadProperty(stream.NewReader(w.Bytes()), resolveNone)
		assert.ErrorIs(t, err, ErrUnresolvedRef)
	})
}
