package services

import (
	"testing"

	"filevault/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanManageSharingOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	file := &models.File{UploadedBy: owner}

	assert.True(t, canManageSharing(file, owner))
}

func TestCanManageSharingGranteeLevels(t *testing.T) {
	owner := primitive.NewObjectID()
	viewer := primitive.NewObjectID()
	editor := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	folder := &models.Folder{
		OwnerID: owner,
		SharedWith: []models.SharedWith{
			{UserID: viewer, Permission: models.PermissionView},
			{UserID: editor, Permission: models.PermissionEdit},
			{UserID: admin, Permission: models.PermissionAdmin},
		},
	}

	// A view grant lets the user see the resource but not its grant
	// list or manage sharing on it.
	assert.True(t, HasAnyAccess(folder, viewer))
	assert.False(t, canManageSharing(folder, viewer))

	assert.False(t, canManageSharing(folder, editor))
	assert.True(t, canManageSharing(folder, admin))
	assert.False(t, canManageSharing(folder, stranger))
}
