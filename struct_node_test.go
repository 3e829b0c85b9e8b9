package substate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/substate/stream"
)

func TestStructNode_Assign(t *testing.T) {
	t.Run("assign_sets_a_slot", func(t *testing.T) {
		n := NewStructNode(3)
		n.Assign(0, NewVariantProperty(NewI32Variant(1)))
		assert.True(t, n.Get(0).Equal(NewVariantProperty(NewI32Variant(1))))
		assert.False(t, n.Get(1).IsValid())
	})

	t.Run("assigning_an_equal_value_is_a_no_op", func(t *testing.T) {
		n := NewStructNode(1)
		n.Assign(0, NewVariantProperty(NewI32Variant(5)))
		assert.NotPanics(t, func() { n.Assign(0, NewVariantProperty(NewI32Variant(5))) })
	})

	t.Run("out_of_range_index_panics", func(t *testing.T) {
		n := NewStructNode(2)
		assert.Panics(t, func() { n.Assign(2, EmptyProperty()) })
	})

	t.Run("negative_arity_panics", func(t *testing.T) {
		assert.Panics(t, func() { NewStructNode(-1) })
	})

	t.Run("assigning_a_node_value_attaches_it_and_detaches_the_old_one", func(t *testing.T) {
		n := NewStructNode(1)
		oldChild := NewBytesNode()
		n.Assign(0, NewNodeProperty(oldChild))
		assert.False(t, oldChild.IsFree())

		newChild := NewBytesNode()
		n.Assign(0, NewNodeProperty(newChild))
		assert.True(t, oldChild.IsFree())
		assert.False(t, newChild.IsFree())
	})
}

func TestStructNode_UndoRedo(t *testing.T) {
	t.Run("assign_then_undo_restores_prior_slot_value", func(t *testing.T) {
		m := newTestModel(t)
		root := NewStructNode(2)

		m.BeginTransaction()
		m.SetRoot(root)
		root.Assign(0, NewVariantProperty(NewI32Variant(1)))
		m.CommitTransaction("seed")

		m.BeginTransaction()
		root.Assign(0, NewVariantProperty(NewI32Variant(2)))
		m.CommitTransaction("update")
		assert.True(t, root.Get(0).Equal(NewVariantProperty(NewI32Variant(2))))

		m.Undo()
		assert.True(t, root.Get(0).Equal(NewVariantProperty(NewI32Variant(1))))

		m.Redo()
		assert.True(t, root.Get(0).Equal(NewVariantProperty(NewI32Variant(2))))
	})
}

func TestStructNode_WireRoundTrip(t *testing.T) {
	t.Run("mixed_slots_round_trip", func(t *testing.T) {
		n := NewStructNode(2)
		n.Assign(0, NewVariantProperty(NewI32Variant(9)))
		n.Assign(1, NewNodeProperty(labeledBytes("X")))
		n.id = 11

		w := stream.NewWriter()
		require.NoError(t, n.WriteTo(w))

		got, err := ReadNode(stream.NewReader(w.Bytes()))
		require.NoError(t, err)
		gotStruct := got.(*StructNode)
		assert.Equal(t, uint64(11), gotStruct.ID())
		assert.Equal(t, 2, gotStruct.Arity())
		assert.True(t, gotStruct.Get(0).Equal(NewVariantProperty(NewI32Variant(9))))
		assert.True(t, gotStruct.Get(1).IsNode())
		assert.Equal(t, "X", string(gotStruct.Get(1).Node().(*BytesNode).Bytes()))
	})
}
