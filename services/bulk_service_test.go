package services

import (
	"errors"
	"testing"

	"filevault/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateBulkActionEmptySelection(t *testing.T) {
	for _, action := range []string{
		models.BulkActionDelete,
		models.BulkActionMove,
		models.BulkActionDownload,
	} {
		err := validateBulkAction(&models.BulkActionRequest{Action: action})
		assert.Error(t, err, "action %s with nothing selected", action)
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.Contains(t, err.Error(), "No items selected for bulk action")
	}
}

func TestValidateBulkActionUnknownAction(t *testing.T) {
	err := validateBulkAction(&models.BulkActionRequest{
		Action: "archive",
		Files:  []string{"64b0c0ffee0000000000abcd"},
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "archive")
}

func TestValidateBulkActionAccepted(t *testing.T) {
	err := validateBulkAction(&models.BulkActionRequest{
		Action:  models.BulkActionMove,
		Folders: []string{"64b0c0ffee0000000000abcd"},
	})
	assert.NoError(t, err)

	err = validateBulkAction(&models.BulkActionRequest{
		Action: models.BulkActionDownload,
		Files:  []string{"64b0c0ffee0000000000abcd"},
	})
	assert.NoError(t, err)
}

func TestCanDownloadDirectlyOwnerOnly(t *testing.T) {
	owner := primitive.NewObjectID()
	viewer := primitive.NewObjectID()

	file := &models.File{
		UploadedBy: owner,
		SharedWith: []models.SharedWith{
			{UserID: viewer, Permission: models.PermissionView},
		},
	}

	assert.True(t, canDownloadDirectly(file, owner))
	// A grantee can preview the file, but it never enters their bulk
	// download manifest.
	assert.False(t, canDownloadDirectly(file, viewer))
}

func TestRecordVisitedFolderUsesID(t *testing.T) {
	folderID := primitive.NewObjectID()
	folder := &models.Folder{ID: folderID, Name: "reports", Path: "/work/reports"}

	manifest := &models.DownloadManifest{Folders: []string{}}
	recordVisitedFolder(manifest, folder)

	assert.Equal(t, []string{folderID.Hex()}, manifest.Folders)
}
