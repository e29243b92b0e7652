package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"time"

	"filevault/database"
	"filevault/models"
	"filevault/storage"
	"filevault/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type VersionService struct {
	fileCollection *mongo.Collection
	blobs          storage.BlobStore
	files          *FileService
}

func NewVersionService() *VersionService {
	return &VersionService{
		fileCollection: database.GetCollection(database.FilesCollection),
		blobs:          storage.Blobs(),
		files:          NewFileService(),
	}
}

// nextVersionNumber returns one past the highest snapshot number, so
// the first push produces version 1.
func nextVersionNumber(versions []models.Version) int {
	max := 0
	for _, v := range versions {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max + 1
}

// currentVersionNumber is the highest snapshot number on record. A
// file that was never versioned is still on version 1.
func currentVersionNumber(versions []models.Version) int {
	max := 1
	for _, v := range versions {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max
}

func findVersion(versions []models.Version, number int) (models.Version, bool) {
	for _, v := range versions {
		if v.VersionNumber == number {
			return v, true
		}
	}
	return models.Version{}, false
}

// PushVersion snapshots the current live content into the version
// list and makes the uploaded content live. The superseded blob stays
// in storage so the snapshot remains restorable.
func (vs *VersionService) PushVersion(userID, fileID primitive.ObjectID, fileHeader *multipart.FileHeader, remark string) (*models.VersionPushResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	file, err := vs.files.GetFile(fileID)
	if err != nil {
		return nil, err
	}

	if !Authorize(file, userID, models.PermissionEdit) {
		return nil, forbiddenError("you do not have permission to update this file")
	}

	number := nextVersionNumber(file.Versions)
	if remark == "" {
		remark = fmt.Sprintf("Version %d", number)
	}

	snapshot := models.Version{
		VersionNumber: number,
		Filename:      file.Filename,
		Path:          file.Path,
		Size:          file.Size,
		UploadedAt:    time.Now(),
		UploadedBy:    userID,
		Remark:        remark,
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, invalidInputError("could not read uploaded file")
	}
	defer src.Close()

	originalName := utils.SanitizeFilename(fileHeader.Filename)
	storageKey := utils.GenerateStorageKey(file.UploadedBy, originalName)

	if err := vs.blobs.UploadStream(storageKey, src, fileHeader.Size); err != nil {
		return nil, err
	}

	_, err = vs.fileCollection.UpdateOne(ctx,
		bson.M{"_id": fileID},
		bson.M{
			"$set": bson.M{
				"filename":   utils.GenerateStoredFilename(originalName),
				"path":       storageKey,
				"size":       fileHeader.Size,
				"mime_type":  utils.DetectMimeType(fileHeader.Header.Get("Content-Type"), originalName),
				"updated_at": time.Now(),
			},
			"$push": bson.M{"versions": snapshot},
		},
	)
	if err != nil {
		if delErr := vs.blobs.Delete(storageKey); delErr != nil {
			logrus.WithError(delErr).Warnf("failed to clean up blob %s after version push failure", storageKey)
		}
		return nil, err
	}

	updated, err := vs.files.GetFile(fileID)
	if err != nil {
		return nil, err
	}

	return &models.VersionPushResult{
		File: updated,
		NewVersion: models.VersionInfo{
			VersionNumber: number,
			Filename:      snapshot.Filename,
			Remark:        remark,
		},
	}, nil
}

// RestoreVersion makes an old snapshot live again. The current live
// content is auto-saved as a new snapshot first, so a restore is
// itself reversible.
func (vs *VersionService) RestoreVersion(userID, fileID primitive.ObjectID, versionNumber int) (*models.VersionRestoreResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	file, err := vs.files.GetFile(fileID)
	if err != nil {
		return nil, err
	}

	if !Authorize(file, userID, models.PermissionEdit) {
		return nil, forbiddenError("you do not have permission to update this file")
	}

	version, ok := findVersion(file.Versions, versionNumber)
	if !ok {
		return nil, notFoundError("version %d not found", versionNumber)
	}

	exists, err := vs.blobs.Exists(version.Path)
	if err != nil || !exists {
		return nil, notFoundError("version file not found on server")
	}

	backup := models.Version{
		VersionNumber: nextVersionNumber(file.Versions),
		Filename:      file.Filename,
		Path:          file.Path,
		Size:          file.Size,
		UploadedAt:    time.Now(),
		UploadedBy:    userID,
		Remark:        "Auto-saved before restore",
	}

	// The blob may have been rewritten by storage maintenance; trust
	// the store over the snapshot record.
	size := version.Size
	if actual, err := vs.blobs.GetSize(version.Path); err == nil {
		size = actual
	}

	_, err = vs.fileCollection.UpdateOne(ctx,
		bson.M{"_id": fileID},
		bson.M{
			"$set": bson.M{
				"filename":   version.Filename,
				"path":       version.Path,
				"size":       size,
				"updated_at": time.Now(),
			},
			"$push": bson.M{"versions": backup},
		},
	)
	if err != nil {
		return nil, err
	}

	updated, err := vs.files.GetFile(fileID)
	if err != nil {
		return nil, err
	}

	return &models.VersionRestoreResult{
		File: updated,
		RestoredVersion: models.VersionInfo{
			VersionNumber: version.VersionNumber,
			Filename:      version.Filename,
			Remark:        version.Remark,
		},
	}, nil
}

// GetHistory lists snapshots newest first. CurrentVersion is the
// highest snapshot number; a file with no snapshots reports 1.
func (vs *VersionService) GetHistory(userID, fileID primitive.ObjectID) (*models.VersionHistory, error) {
	file, err := vs.files.GetFile(fileID)
	if err != nil {
		return nil, err
	}

	if !HasAnyAccess(file, userID) {
		return nil, forbiddenError("you do not have access to this file")
	}

	versions := make([]models.Version, len(file.Versions))
	copy(versions, file.Versions)
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber > versions[j].VersionNumber
	})

	return &models.VersionHistory{
		Versions:       versions,
		CurrentVersion: currentVersionNumber(file.Versions),
	}, nil
}

// DownloadVersion streams the content of a specific snapshot.
func (vs *VersionService) DownloadVersion(userID, fileID primitive.ObjectID, versionNumber int) ([]byte, *models.Version, error) {
	file, err := vs.files.GetFile(fileID)
	if err != nil {
		return nil, nil, err
	}

	if !HasAnyAccess(file, userID) {
		return nil, nil, forbiddenError("you do not have access to this file")
	}

	version, ok := findVersion(file.Versions, versionNumber)
	if !ok {
		return nil, nil, notFoundError("version %d not found", versionNumber)
	}

	data, err := vs.blobs.Download(version.Path)
	if err != nil {
		return nil, nil, notFoundError("version file not found on server")
	}

	return data, &version, nil
}
