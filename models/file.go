package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is the metadata record for an uploaded file. The live file IS
// the current version: Versions holds only superseded snapshots, so a
// freshly uploaded file has an empty Versions list.
type File struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OriginalName string              `bson:"original_name" json:"original_name"`
	Filename     string              `bson:"filename" json:"filename"`
	Path         string              `bson:"path" json:"path"`
	Size         int64               `bson:"size" json:"size"`
	MimeType     string              `bson:"mime_type" json:"mime_type"`
	UploadedBy   primitive.ObjectID  `bson:"uploaded_by" json:"uploaded_by"`
	FolderID     *primitive.ObjectID `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	SharedWith   []SharedWith        `bson:"shared_with" json:"shared_with"`
	Versions     []Version           `bson:"versions" json:"versions"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// Version is an immutable snapshot of a superseded live state.
// Numbers strictly increase by one per push.
type Version struct {
	VersionNumber int                `bson:"version_number" json:"version_number"`
	Filename      string             `bson:"filename" json:"filename"`
	Path          string             `bson:"path" json:"path"`
	Size          int64              `bson:"size" json:"size"`
	UploadedAt    time.Time          `bson:"uploaded_at" json:"uploaded_at"`
	UploadedBy    primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`
	Remark        string             `bson:"remark" json:"remark"`
}

func (f *File) ResourceOwner() primitive.ObjectID {
	return f.UploadedBy
}

func (f *File) ResourceShares() []SharedWith {
	return f.SharedWith
}
