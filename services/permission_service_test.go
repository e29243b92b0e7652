package services

import (
	"testing"

	"filevault/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthorizeOwnerAlwaysAllowed(t *testing.T) {
	owner := primitive.NewObjectID()
	file := &models.File{UploadedBy: owner}

	assert.True(t, Authorize(file, owner, models.PermissionView))
	assert.True(t, Authorize(file, owner, models.PermissionEdit))
	assert.True(t, Authorize(file, owner, models.PermissionAdmin))
}

func TestAuthorizeGranteeByRank(t *testing.T) {
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

	assert.True(t, Authorize(folder, viewer, models.PermissionView))
	assert.False(t, Authorize(folder, viewer, models.PermissionEdit))

	assert.True(t, Authorize(folder, editor, models.PermissionView))
	assert.True(t, Authorize(folder, editor, models.PermissionEdit))
	assert.False(t, Authorize(folder, editor, models.PermissionAdmin))

	assert.True(t, Authorize(folder, admin, models.PermissionAdmin))

	assert.False(t, Authorize(folder, stranger, models.PermissionView))
}

func TestAuthorizeUnknownPermissionValueDenied(t *testing.T) {
	owner := primitive.NewObjectID()
	grantee := primitive.NewObjectID()

	file := &models.File{
		UploadedBy: owner,
		SharedWith: []models.SharedWith{
			{UserID: grantee, Permission: models.Permission("superuser")},
		},
	}

	assert.False(t, Authorize(file, grantee, models.PermissionView))
}

func TestHasAnyAccess(t *testing.T) {
	owner := primitive.NewObjectID()
	viewer := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	file := &models.File{
		UploadedBy: owner,
		SharedWith: []models.SharedWith{
			{UserID: viewer, Permission: models.PermissionView},
		},
	}

	assert.True(t, HasAnyAccess(file, owner))
	assert.True(t, HasAnyAccess(file, viewer))
	assert.False(t, HasAnyAccess(file, stranger))
}
