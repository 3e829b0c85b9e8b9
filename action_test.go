package substate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orneryd/substate/stream"
)

func TestRootChangeAction_InsertedRoots(t *testing.T) {
	t.Run("nil_new_root_reports_no_inserted_roots", func(t *testing.T) {
		a := &RootChangeAction{}
		assert.Nil(t, a.insertedRoots())
	})

	t.Run("a_new_root_is_reported_as_inserted", func(t *testing.T) {
		root := NewBytesNode()
		a := &RootChangeAction{newRoot: root}
		assert.Equal(t, []Node{root}, a.insertedRoots())
	})
}

type noopAction struct{ calls int }

func (a *noopAction) TypeTag() ActionTypeID        { return ActionUserBase + 1 }
func (a *noopAction) Execute(undo bool) error       { a.calls++; return nil }
func (a *noopAction) WriteTo(w *stream.Writer) error { return w.WriteI32(int32(ActionUserBase + 1)) }

func TestRegisterActionType(t *testing.T) {
	t.Run("registered_factory_is_retrievable_by_type_id", func(t *testing.T) {
		called := false
		RegisterActionType(ActionUserBase+2, func(r *stream.Reader, resolve func(id uint64) (Node, bool)) (Action, error) {
			called = true
			return &noopAction{}, nil
		})
		factory, ok := lookupActionFactory(ActionUserBase + 2)
		assert.True(t, ok)
		_, err := factory(stream.NewReader(nil), func(id uint64) (Node, bool) { return nil, false })
		assert.NoError(t, err)
		assert.True(t, called)
	})
}
