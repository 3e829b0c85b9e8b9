package substate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/substate/stream"
)

func TestMappingNode_SetGetClear(t *testing.T) {
	t.Run("set_then_get_round_trips_a_variant", func(t *testing.T) {
		n := NewMappingNode()
		n.Set("name", NewVariantProperty(NewStringVariant("alice")))
		assert.True(t, n.Get("name").Equal(NewVariantProperty(NewStringVariant("alice"))))
	})

	t.Run("clearing_an_absent_key_with_empty_value_is_a_no_op", func(t *testing.T) {
		n := NewMappingNode()
		assert.NotPanics(t, func() { n.Set("missing", EmptyProperty()) })
		assert.Empty(t, n.Keys())
	})

	t.Run("assigning_an_equal_value_is_a_no_op", func(t *testing.T) {
		n := NewMappingNode()
		n.Set("k", NewVariantProperty(NewI32Variant(1)))
		keysBefore := n.Keys()
		n.Set("k", NewVariantProperty(NewI32Variant(1)))
		assert.Equal(t, keysBefore, n.Keys())
	})

	t.Run("clear_removes_the_key", func(t *testing.T) {
		n := NewMappingNode()
		n.Set("k", NewVariantProperty(NewI32Variant(1)))
		n.Set("k", EmptyProperty())
		assert.False(t, n.Get("k").IsValid())
		assert.Empty(t, n.Keys())
	})

	t.Run("set_a_node_value_attaches_it", func(t *testing.T) {
		n := NewMappingNode()
		child := NewBytesNode()
		n.Set("child", NewNodeProperty(child))
		assert.False(t, child.IsFree())
		assert.Same(t, Node(n), child.Parent())
	})

	t.Run("overwriting_a_node_value_detaches_the_old_node", func(t *testing.T) {
		n := NewMappingNode()
		oldChild := NewBytesNode()
		n.Set("child", NewNodeProperty(oldChild))
		newChild := NewBytesNode()
		n.Set("child", NewNodeProperty(newChild))
		assert.True(t, oldChild.IsFree())
	})
}

func TestMappingNode_UndoRedo(t *testing.T) {
	t.Run("set_then_undo_restores_prior_value", func(t *testing.T) {
		m := newTestModel(t)
		root := NewMappingNode()

		m.BeginTransaction()
		m.SetRoot(root)
		root.Set("k", NewVariantProperty(NewI32Variant(1)))
		m.CommitTransaction("seed")

		m.BeginTransaction()
		root.Set("k", NewVariantProperty(NewI32Variant(2)))
		m.CommitTransaction("update")
		assert.True(t, root.Get("k").Equal(NewVariantProperty(NewI32Variant(2))))

		m.Undo()
		assert.True(t, root.Get("k").Equal(NewVariantProperty(NewI32Variant(1))))

		m.Redo()
		assert.True(t, root.Get("k").Equal(NewVariantProperty(NewI32Variant(2))))
	})
}

func TestMappingNode_WireRoundTrip(t *testing.T) {
	t.Run("mixed_variant_and_node_entries", func(t *testing.T) {
		n := NewMappingNode()
		n.Set("name", NewVariantProperty(NewStringVariant("alice")))
		n.Set("child", NewNodeProperty(labeledBytes("X")))
		n.id = 3

		w := stream.NewWriter()
		require.NoError(t, n.WriteTo(w))

		got, err := ReadNode(stream.NewReader(w.Bytes()))
		require.NoError(t, err)
		gotMapping := got.(*MappingNode)
		assert.Equal(t, uint64(3), gotMapping.ID())
		assert.True(t, gotMapping.Get("name").Equal(NewVariantProperty(NewStringVariant("alice"))))
		assert.True(t, gotMapping.Get("child").IsNode())
		assert.Equal(t, "X", string(gotMapping.Get("child").Node().(*BytesNode).Bytes()))
	})
}
