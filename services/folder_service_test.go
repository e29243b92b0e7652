package services

import (
	"errors"
	"testing"

	"filevault/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// buildTree wires a parent chain: ids[0] is the root, each following
// id is a child of the previous one.
func buildTree(ids ...primitive.ObjectID) folderLookup {
	byID := make(map[primitive.ObjectID]*models.Folder, len(ids))
	for i, id := range ids {
		folder := &models.Folder{ID: id}
		if i > 0 {
			parent := ids[i-1]
			folder.ParentID = &parent
		}
		byID[id] = folder
	}
	return func(id primitive.ObjectID) (*models.Folder, error) {
		folder, ok := byID[id]
		if !ok {
			return nil, errors.New("not found")
		}
		return folder, nil
	}
}

func TestIsDescendantWalkSelf(t *testing.T) {
	id := primitive.NewObjectID()
	lookup := buildTree(id)

	ok, err := isDescendantWalk(id, id, lookup)
	require.NoError(t, err)
	assert.True(t, ok, "a folder is its own descendant")
}

func TestIsDescendantWalkDeepChain(t *testing.T) {
	root := primitive.NewObjectID()
	mid := primitive.NewObjectID()
	leaf := primitive.NewObjectID()
	lookup := buildTree(root, mid, leaf)

	ok, err := isDescendantWalk(root, leaf, lookup)
	require.NoError(t, err)
	assert.True(t, ok, "leaf sits under root through mid")

	ok, err = isDescendantWalk(mid, leaf, lookup)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsDescendantWalkUnrelated(t *testing.T) {
	root := primitive.NewObjectID()
	leaf := primitive.NewObjectID()
	other := primitive.NewObjectID()
	lookup := buildTree(root, leaf)

	ok, err := isDescendantWalk(other, leaf, lookup)
	require.NoError(t, err)
	assert.False(t, ok, "walk reaches the root without meeting the candidate")
}

func TestIsDescendantWalkReversedDirection(t *testing.T) {
	root := primitive.NewObjectID()
	leaf := primitive.NewObjectID()
	lookup := buildTree(root, leaf)

	ok, err := isDescendantWalk(leaf, root, lookup)
	require.NoError(t, err)
	assert.False(t, ok, "an ancestor is not a descendant of its child")
}

func TestIsDescendantWalkMissingParentTreatedAsRoot(t *testing.T) {
	orphan := primitive.NewObjectID()
	candidate := primitive.NewObjectID()
	lookup := func(primitive.ObjectID) (*models.Folder, error) {
		return nil, errors.New("not found")
	}

	ok, err := isDescendantWalk(candidate, orphan, lookup)
	require.NoError(t, err)
	assert.False(t, ok)
}
