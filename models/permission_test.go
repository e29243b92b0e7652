package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPermissionRankOrdering(t *testing.T) {
	assert.Less(t, PermissionView.Rank(), PermissionEdit.Rank())
	assert.Less(t, PermissionEdit.Rank(), PermissionAdmin.Rank())
}

func TestPermissionUnknownValueRanksZero(t *testing.T) {
	assert.Equal(t, 0, Permission("owner").Rank())
	assert.Equal(t, 0, Permission("").Rank())
	assert.False(t, Permission("superuser").IsValid())
}

func TestPermissionCovers(t *testing.T) {
	cases := []struct {
		held     Permission
		required Permission
		want     bool
	}{
		{PermissionView, PermissionView, true},
		{PermissionView, PermissionEdit, false},
		{PermissionEdit, PermissionView, true},
		{PermissionEdit, PermissionAdmin, false},
		{PermissionAdmin, PermissionView, true},
		{PermissionAdmin, PermissionAdmin, true},
		{Permission("bogus"), PermissionView, false},
		// An unknown requirement is never satisfied.
		{PermissionAdmin, Permission("bogus"), false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.held.Covers(tc.required),
			"held=%q required=%q", tc.held, tc.required)
	}
}

func TestUpsertShareUpdatesInPlace(t *testing.T) {
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	shares := UpsertShare(nil, SharedWith{UserID: userA, Permission: PermissionView})
	shares = UpsertShare(shares, SharedWith{UserID: userB, Permission: PermissionEdit})
	assert.Len(t, shares, 2)

	// Re-sharing the same user must not duplicate the entry.
	shares = UpsertShare(shares, SharedWith{UserID: userA, Permission: PermissionAdmin})
	assert.Len(t, shares, 2)

	got, ok := ShareFor(shares, userA)
	assert.True(t, ok)
	assert.Equal(t, PermissionAdmin, got.Permission)
}

func TestRemoveShareIsNoOpWhenAbsent(t *testing.T) {
	userA := primitive.NewObjectID()
	shares := []SharedWith{{UserID: userA, Permission: PermissionView}}

	shares = RemoveShare(shares, primitive.NewObjectID())
	assert.Len(t, shares, 1)

	shares = RemoveShare(shares, userA)
	assert.Empty(t, shares)
}
