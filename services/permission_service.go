package services

import (
	"filevault/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authorize answers whether userID may act on the already-loaded
// resource at the required level. The owner implicitly outranks every
// stored grant; otherwise the single shared_with entry for the user
// decides. Pure: no I/O, no side effects, never errors. Callers
// translate false into a Forbidden failure with their own message.
func Authorize(res models.SharedResource, userID primitive.ObjectID, required models.Permission) bool {
	if res.ResourceOwner() == userID {
		return true
	}

	entry, ok := models.ShareFor(res.ResourceShares(), userID)
	if !ok {
		return false
	}

	return entry.Permission.Covers(required)
}

// HasAnyAccess reports whether userID is the owner or holds any grant
// at all, regardless of level. View-level reads use this.
func HasAnyAccess(res models.SharedResource, userID primitive.ObjectID) bool {
	if res.ResourceOwner() == userID {
		return true
	}
	_, ok := models.ShareFor(res.ResourceShares(), userID)
	return ok
}
