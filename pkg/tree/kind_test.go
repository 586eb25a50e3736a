package tree_test

import (
	"testing"

	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindText(t *testing.T) {
	a := assert.New(t)

	for _, k := range []tree.Kind{
		tree.KDirectory,
		tree.KMenu,
		tree.KButton,
		tree.KDepartment,
		tree.KDictType,
		tree.KDictData,
		tree.KPost,
	} {
		text, err := k.MarshalText()
		a.NoError(err)

		var parsed tree.Kind
		a.NoError(parsed.UnmarshalText(text))
		a.Equal(k, parsed)
	}

	_, err := tree.ParseKind("folder")
	a.Equal(tree.ErrInvalidKind, errors.Cause(err))

	_, err = tree.KNone.MarshalText()
	a.Error(err)
	a.Equal("unknown", tree.KAll.String())
}

func TestKindLeaf(t *testing.T) {
	a := assert.New(t)

	a.True(tree.KButton.IsLeaf())
	a.True(tree.KDictData.IsLeaf())
	a.True(tree.KPost.IsLeaf())
	a.False(tree.KDirectory.IsLeaf())
	a.False(tree.KMenu.IsLeaf())
	a.False(tree.KDepartment.IsLeaf())
	a.False(tree.KDictType.IsLeaf())
}

func TestEntity(t *testing.T) {
	a := assert.New(t)

	e, err := tree.ParseEntity(" Menu ")
	a.NoError(err)
	a.Equal(tree.EntityMenu, e)

	_, err = tree.ParseEntity("user")
	a.Equal(tree.ErrUnknownEntity, errors.Cause(err))

	a.True(tree.EntityMenu.Accepts(tree.KButton))
	a.False(tree.EntityMenu.Accepts(tree.KDepartment))
	a.False(tree.EntityDict.Accepts(tree.KDictType | tree.KDictData))
	a.True(tree.EntityMenu.HasVisibility())
	a.False(tree.EntityDept.HasVisibility())
	a.Len(tree.Entities(), 4)
}

func TestStatus(t *testing.T) {
	a := assert.New(t)

	a.NoError(tree.StatusActive.Validate())
	a.Error(tree.Status("deleted").Validate())
	a.Equal(tree.StatusInactive, tree.StatusActive.Toggle())
	a.Equal(tree.StatusActive, tree.StatusInactive.Toggle())
}

func TestFaultOf(t *testing.T) {
	a := assert.New(t)

	a.Equal(tree.FaultNotFound, tree.FaultOf(errors.Wrap(tree.ErrNodeNotFound, "node x")))
	a.Equal(tree.FaultNotFound, tree.FaultOf(tree.ErrParentNotFound))
	a.Equal(tree.FaultPrecondition, tree.FaultOf(errors.Wrap(tree.ErrHasChildren, "node x")))
	a.Equal(tree.FaultPrecondition, tree.FaultOf(tree.ErrHasUsers))
	a.Equal(tree.FaultConflict, tree.FaultOf(tree.ErrVersionConflict))
	a.Equal(tree.FaultValidation, tree.FaultOf(tree.ErrCircuitedParent))
	a.Equal(tree.FaultValidation, tree.FaultOf(&tree.ValidationError{}))
	a.Equal(tree.FaultValidation, tree.FaultOf(errors.Wrap(tree.ErrInvalidStatus, "status x")))
	a.Equal(tree.FaultValidation, tree.FaultOf(tree.ErrDuplicateID))
	a.Equal(tree.FaultValidation, tree.FaultOf(tree.ErrZeroID))
	a.Equal(tree.FaultInternal, tree.FaultOf(errors.New("disk is on fire")))
	a.Equal("precondition_failed", tree.FaultPrecondition.String())
}

func TestLookupError(t *testing.T) {
	a := assert.New(t)

	a.Equal(tree.ErrHasChildren, tree.LookupError(tree.ErrHasChildren.Error()))
	a.Equal(tree.ErrVersionConflict, tree.LookupError("version conflict"))
	a.Equal(tree.FaultPrecondition, tree.FaultOf(tree.LookupError(tree.ErrHasUsers.Error())))

	err := tree.LookupError("something else entirely")
	a.EqualError(err, "something else entirely")
	a.Equal(tree.FaultInternal, tree.FaultOf(err))
}
