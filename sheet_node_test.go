package substate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/substate/stream"
)

func TestSheetNode_InsertAssignsMonotonicIDs(t *testing.T) {
	t.Run("ids_increase_and_are_never_reused_after_removal", func(t *testing.T) {
		n := NewSheetNode()
		id1 := n.Insert(labeledBytes("A"))
		id2 := n.Insert(labeledBytes("B"))
		assert.Equal(t, id1+1, id2)

		ok := n.Remove(id1)
		assert.True(t, ok)

		id3 := n.Insert(labeledBytes("C"))
		assert.Greater(t, id3, id2)
		assert.NotEqual(t, id1, id3)
	})

	t.Run("removing_an_absent_id_returns_false_without_panicking", func(t *testing.T) {
		n := NewSheetNode()
		assert.False(t, n.Remove(999))
	})
}

func TestSheetNode_UndoRestoresOriginalID(t *testing.T) {
	t.Run("remove_then_undo_restores_the_same_id", func(t *testing.T) {
		m := newTestModel(t)
		root := NewSheetNode()

		m.BeginTransaction()
		m.SetRoot(root)
		id := root.Insert(labeledBytes("A"))
		m.CommitTransaction("seed")

		m.BeginTransaction()
		root.Remove(id)
		m.CommitTransaction("remove")
		_, ok := root.Get(id)
		assert.False(t, ok)

		m.Undo()
		restored, ok := root.Get(id)
		require.True(t, ok)
		assert.Equal(t, "A", string(restored.(*BytesNode).Bytes()))
	})
}

func TestSheetNode_WireRoundTrip(t *testing.T) {
	t.Run("max_id_and_children_round_trip", func(t *testing.T) {
		n := NewSheetNode()
		n.Insert(labeledBytes("A"))
		id2 := n.Insert(labeledBytes("B"))
		n.Remove(id2)
		n.id = 9

		w := stream.NewWriter()
		require.NoError(t, n.WriteTo(w))

		got, err := ReadNode(stream.NewReader(w.Bytes()))
		require.NoError(t, err)
		gotSheet := got.(*SheetNode)
		assert.Equal(t, uint64(9), gotSheet.ID())
		assert.Equal(t, n.MaxID(), gotSheet.MaxID())
		assert.Equal(t, n.IDs(), gotSheet.IDs())
	})
}
