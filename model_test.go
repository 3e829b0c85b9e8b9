package substate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_TransactionStateMachine(t *testing.T) {
	t.Run("begin_transaction_requires_idle", func(t *testing.T) {
		m := newTestModel(t)
		m.BeginTransaction()
		assert.Panics(t, m.BeginTransaction)
	})

	t.Run("commit_transaction_requires_an_open_transaction", func(t *testing.T) {
		m := newTestModel(t)
		assert.Panics(t, func() { m.CommitTransaction("x") })
	})

	t.Run("abort_transaction_requires_an_open_transaction", func(t *testing.T) {
		m := newTestModel(t)
		assert.Panics(t, m.AbortTransaction)
	})

	t.Run("mutating_outside_a_transaction_panics", func(t *testing.T) {
		m := newTestModel(t)
		root := NewBytesNode()
		m.BeginTransaction()
		m.SetRoot(root)
		m.CommitTransaction("seed")
		assert.Panics(t, func() { root.Insert(0, []byte("x")) })
	})

	t.Run("empty_commit_is_a_silent_no_op", func(t *testing.T) {
		m := newTestModel(t)
		m.BeginTransaction()
		m.CommitTransaction("nothing happened")
		assert.Equal(t, Idle, m.State())
		assert.Equal(t, 0, m.Maximum())
	})

	t.Run("reset_requires_idle", func(t *testing.T) {
		m := newTestModel(t)
		m.BeginTransaction()
		assert.Panics(t, m.Reset)
	})
}

func TestModel_ActionLock(t *testing.T) {
	t.Run("a_subscriber_cannot_nest_a_mutation_during_dispatch", func(t *testing.T) {
		m := newTestModel(t)
		root := NewMappingNode()
		m.BeginTransaction()
		m.SetRoot(root)
		m.CommitTransaction("seed")

		m.BeginTransaction()
		root.Subscribe(func(n Notification) {
			if n.Kind == NotifyActionTriggered {
				assert.Panics(t, func() {
					root.Set("reentrant", NewVariantProperty(NewBoolVariant(true)))
				})
			}
		})
		root.Set("k", NewVariantProperty(NewI32Variant(1)))
		m.CommitTransaction("set k")
	})
}

func TestModel_SetRoot(t *testing.T) {
	t.Run("set_root_requires_a_free_node", func(t *testing.T) {
		m := newTestModel(t)
		parent := NewVectorNode()
		child := NewBytesNode()
		m.BeginTransaction()
		m.SetRoot(parent)
		parent.Append([]Node{child})
		assert.Panics(t, func() { m.SetRoot(child) })
		m.CommitTransaction("seed")
	})

	t.Run("set_root_outside_a_transaction_panics", func(t *testing.T) {
		m := newTestModel(t)
		assert.Panics(t, func() { m.SetRoot(NewBytesNode()) })
	})

	t.Run("replacing_the_root_detaches_the_old_one", func(t *testing.T) {
		m := newTestModel(t)
		first := NewBytesNode()
		m.BeginTransaction()
		m.SetRoot(first)
		m.CommitTransaction("first root")

		second := NewBytesNode()
		m.BeginTransaction()
		m.SetRoot(second)
		m.CommitTransaction("second root")

		assert.True(t, first.IsFree())
		assert.Same(t, Node(second), m.Root())
	})
}

func TestModel_CommitTruncatesRedoTail(t *testing.T) {
	t.Run("a_new_commit_after_undo_discards_the_redo_tail", func(t *testing.T) {
		m := newTestModel(t)
		root := NewBytesNode()

		m.BeginTransaction()
		m.SetRoot(root)
		root.Insert(0, []byte("a"))
		m.CommitTransaction("a")

		m.BeginTransaction()
		root.Append([]byte("b"))
		m.CommitTransaction("b")

		m.Undo()
		assert.Equal(t, "a", string(root.Bytes()))

		m.BeginTransaction()
		root.Append([]byte("c"))
		m.CommitTransaction("c")
		assert.Equal(t, "ac", string(root.Bytes()))

		// Redo now has nothing to replay: the "b" step was discarded.
		m.Redo()
		assert.Equal(t, "ac", string(root.Bytes()))
	})
}

func TestModel_UndoRedoAtBoundariesAreNoOps(t *testing.T) {
	t.Run("undo_with_nothing_committed_does_not_panic", func(t *testing.T) {
		m := newTestModel(t)
		assert.NotPanics(t, m.Undo)
		assert.Equal(t, Idle, m.State())
	})

	t.Run("redo_with_nothing_to_redo_does_not_panic", func(t *testing.T) {
		m := newTestModel(t)
		assert.NotPanics(t, m.Redo)
	})
}

func TestModel_Reset(t *testing.T) {
	t.Run("reset_drops_root_and_history", func(t *testing.T) {
		m := newTestModel(t)
		root := NewBytesNode()
		m.BeginTransaction()
		m.SetRoot(root)
		root.Insert(0, []byte("x"))
		m.CommitTransaction("seed")

		m.Reset()
		assert.Nil(t, m.Root())
		assert.Equal(t, 0, m.Maximum())
	})
}

func TestModel_Notifications(t *testing.T) {
	t.Run("step_change_fires_on_commit_undo_and_redo", func(t *testing.T) {
		m := newTestModel(t)
		root := NewBytesNode()
		var kinds []NotificationKind
		m.Subscribe(func(n Notification) { kinds = append(kinds, n.Kind) })

		m.BeginTransaction()
		m.SetRoot(root)
		m.CommitTransaction("seed")
		m.Undo()
		m.Redo()

		require.Len(t, kinds, 3)
		for _, k := range kinds {
			assert.Equal(t, NotifyStepChange, k)
		}
	})

	t.Run("a_panicking_subscriber_does_not_break_the_model", func(t *testing.T) {
		m := newTestModel(t)
		m.Subscribe(func(n Notification) { panic("boom") })
		root := NewBytesNode()
		m.BeginTransaction()
		m.SetRoot(root)
		assert.NotPanics(t, func() { m.CommitTransaction("seed") })
	})
}
