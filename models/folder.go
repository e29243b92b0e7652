package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder is a node in a per-user forest. ParentID nil means a root
// folder. Path is materialized at creation from the parent's path and
// is not refreshed when ancestors are renamed or moved.
type Folder struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name" validate:"required"`
	ParentID   *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	OwnerID    primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	Path       string              `bson:"path" json:"path"`
	SharedWith []SharedWith        `bson:"shared_with" json:"shared_with"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updated_at"`
}

func (f *Folder) ResourceOwner() primitive.ObjectID {
	return f.OwnerID
}

func (f *Folder) ResourceShares() []SharedWith {
	return f.SharedWith
}
