package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission is the graded access level a user can hold on a shared
// resource. The owner of a resource implicitly outranks every level
// and is never stored in the shared_with list.
type Permission string

const (
	PermissionView  Permission = "view"
	PermissionEdit  Permission = "edit"
	PermissionAdmin Permission = "admin"
)

// Rank returns the numeric order of a permission (view < edit < admin).
// Unknown values rank 0 and therefore never satisfy any requirement.
func (p Permission) Rank() int {
	switch p {
	case PermissionView:
		return 1
	case PermissionEdit:
		return 2
	case PermissionAdmin:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether p is one of the three known levels.
func (p Permission) IsValid() bool {
	return p.Rank() > 0
}

// Covers reports whether p satisfies the required level.
func (p Permission) Covers(required Permission) bool {
	return p.Rank() >= required.Rank() && required.Rank() > 0
}

// SharedWith is a single grant on a file or folder. A resource holds
// at most one entry per user.
type SharedWith struct {
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Permission Permission         `bson:"permission" json:"permission"`
}

// SharedResource is implemented by File and Folder so the permission
// checks can treat both uniformly.
type SharedResource interface {
	ResourceOwner() primitive.ObjectID
	ResourceShares() []SharedWith
}

// UpsertShare adds or updates the entry for entry.UserID, keeping the
// at-most-one-entry-per-user invariant. Re-sharing updates the
// existing entry in place instead of appending a duplicate.
func UpsertShare(shares []SharedWith, entry SharedWith) []SharedWith {
	for i := range shares {
		if shares[i].UserID == entry.UserID {
			shares[i].Permission = entry.Permission
			return shares
		}
	}
	return append(shares, entry)
}

// RemoveShare removes the entry for userID. Removing an absent entry
// is a no-op.
func RemoveShare(shares []SharedWith, userID primitive.ObjectID) []SharedWith {
	for i := range shares {
		if shares[i].UserID == userID {
			return append(shares[:i], shares[i+1:]...)
		}
	}
	return shares
}

// ShareFor looks up the single entry for userID.
func ShareFor(shares []SharedWith, userID primitive.ObjectID) (SharedWith, bool) {
	for _, s := range shares {
		if s.UserID == userID {
			return s, true
		}
	}
	return SharedWith{}, false
}
