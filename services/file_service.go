package services

import (
	"context"
	"io"
	"mime/multipart"
	"time"

	"filevault/database"
	"filevault/models"
	"filevault/storage"
	"filevault/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FileService struct {
	fileCollection   *mongo.Collection
	folderCollection *mongo.Collection
	blobs            storage.BlobStore
}

func NewFileService() *FileService {
	return &FileService{
		fileCollection:   database.GetCollection(database.FilesCollection),
		folderCollection: database.GetCollection(database.FoldersCollection),
		blobs:            storage.Blobs(),
	}
}

// removeFileContent deletes every blob a file record points at: the
// superseded version snapshots first, then the live blob. Failures
// are logged and skipped so metadata cleanup can still proceed.
func removeFileContent(blobs storage.BlobStore, file *models.File) {
	for _, version := range file.Versions {
		if version.Path == file.Path {
			continue
		}
		if err := blobs.Delete(version.Path); err != nil {
			logrus.WithError(err).Warnf("failed to delete version blob %s of file %s", version.Path, file.ID.Hex())
		}
	}
	if err := blobs.Delete(file.Path); err != nil {
		logrus.WithError(err).Warnf("failed to delete blob %s of file %s", file.Path, file.ID.Hex())
	}
}

// Upload stores the content under a fresh storage key and records the
// metadata. A non-empty folderID must name a folder the user owns.
func (fs *FileService) Upload(userID primitive.ObjectID, fileHeader *multipart.FileHeader, folderID string) (*models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var folderObjID *primitive.ObjectID
	if folderID != "" && folderID != "root" {
		fid, err := utils.StringToObjectID(folderID)
		if err != nil {
			return nil, invalidInputError("invalid folder id")
		}

		count, err := fs.folderCollection.CountDocuments(ctx, bson.M{
			"_id":      fid,
			"owner_id": userID,
		})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, invalidInputError("destination folder not found")
		}
		folderObjID = &fid
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, invalidInputError("could not read uploaded file")
	}
	defer src.Close()

	originalName := utils.SanitizeFilename(fileHeader.Filename)
	storageKey := utils.GenerateStorageKey(userID, originalName)

	if err := fs.blobs.UploadStream(storageKey, src, fileHeader.Size); err != nil {
		return nil, err
	}

	file := &models.File{
		ID:           primitive.NewObjectID(),
		OriginalName: originalName,
		Filename:     utils.GenerateStoredFilename(originalName),
		Path:         storageKey,
		Size:         fileHeader.Size,
		MimeType:     utils.DetectMimeType(fileHeader.Header.Get("Content-Type"), originalName),
		UploadedBy:   userID,
		FolderID:     folderObjID,
		SharedWith:   []models.SharedWith{},
		Versions:     []models.Version{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if _, err := fs.fileCollection.InsertOne(ctx, file); err != nil {
		// Orphaned blob cleanup; the record never existed.
		if delErr := fs.blobs.Delete(storageKey); delErr != nil {
			logrus.WithError(delErr).Warnf("failed to clean up blob %s after insert failure", storageKey)
		}
		return nil, err
	}

	return file, nil
}

// ListFiles returns the user's files in the given folder. An empty or
// "root" folder id lists unfiled uploads.
func (fs *FileService) ListFiles(userID primitive.ObjectID, folderID string) ([]models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"uploaded_by": userID}
	if folderID == "" || folderID == "root" {
		filter["folder_id"] = bson.M{"$exists": false}
	} else {
		fid, err := utils.StringToObjectID(folderID)
		if err != nil {
			return nil, invalidInputError("invalid folder id")
		}
		filter["folder_id"] = fid
	}

	cursor, err := fs.fileCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"original_name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err = cursor.All(ctx, &files); err != nil {
		return nil, err
	}

	return files, nil
}

// GetFile loads a file by id regardless of owner.
func (fs *FileService) GetFile(fileID primitive.ObjectID) (*models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var file models.File
	err := fs.fileCollection.FindOne(ctx, bson.M{"_id": fileID}).Decode(&file)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundError("file not found")
		}
		return nil, err
	}

	return &file, nil
}

// GetUserFile loads a file owned by userID.
func (fs *FileService) GetUserFile(userID, fileID primitive.ObjectID) (*models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var file models.File
	err := fs.fileCollection.FindOne(ctx, bson.M{
		"_id":         fileID,
		"uploaded_by": userID,
	}).Decode(&file)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundError("file not found")
		}
		return nil, err
	}

	return &file, nil
}

// OpenDownload returns the live content of a file the user can at
// least view, along with its metadata for response headers.
func (fs *FileService) OpenDownload(userID, fileID primitive.ObjectID) (io.ReadCloser, *models.File, error) {
	file, err := fs.GetFile(fileID)
	if err != nil {
		return nil, nil, err
	}

	if !HasAnyAccess(file, userID) {
		return nil, nil, forbiddenError("you do not have access to this file")
	}

	reader, err := fs.blobs.DownloadStream(file.Path)
	if err != nil {
		return nil, nil, notFoundError("file content not found on server")
	}

	return reader, file, nil
}

// RenameFile changes the display name. A sibling with the same name
// in the same folder is a conflict.
func (fs *FileService) RenameFile(userID, fileID primitive.ObjectID, newName string) (*models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	file, err := fs.GetUserFile(userID, fileID)
	if err != nil {
		return nil, err
	}

	newName = utils.SanitizeFilename(newName)

	filter := bson.M{
		"uploaded_by":   userID,
		"original_name": newName,
		"_id":           bson.M{"$ne": fileID},
	}
	if file.FolderID != nil {
		filter["folder_id"] = *file.FolderID
	} else {
		filter["folder_id"] = bson.M{"$exists": false}
	}

	count, err := fs.fileCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictError("a file named %q already exists in this location", newName)
	}

	_, err = fs.fileCollection.UpdateOne(ctx,
		bson.M{"_id": fileID, "uploaded_by": userID},
		bson.M{"$set": bson.M{
			"original_name": newName,
			"updated_at":    time.Now(),
		}},
	)
	if err != nil {
		return nil, err
	}

	return fs.GetUserFile(userID, fileID)
}

// MoveFile reassigns a file to a folder the user owns, or to the root
// when target is "root".
func (fs *FileService) MoveFile(userID, fileID primitive.ObjectID, target string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := fs.GetUserFile(userID, fileID); err != nil {
		return err
	}

	if target == "" || target == "root" {
		_, err := fs.fileCollection.UpdateOne(ctx,
			bson.M{"_id": fileID, "uploaded_by": userID},
			bson.M{
				"$unset": bson.M{"folder_id": ""},
				"$set":   bson.M{"updated_at": time.Now()},
			},
		)
		return err
	}

	targetObjID, err := utils.StringToObjectID(target)
	if err != nil {
		return invalidInputError("invalid target folder id")
	}

	count, err := fs.folderCollection.CountDocuments(ctx, bson.M{
		"_id":      targetObjID,
		"owner_id": userID,
	})
	if err != nil {
		return err
	}
	if count == 0 {
		return invalidInputError("target folder not found")
	}

	_, err = fs.fileCollection.UpdateOne(ctx,
		bson.M{"_id": fileID, "uploaded_by": userID},
		bson.M{"$set": bson.M{
			"folder_id":  targetObjID,
			"updated_at": time.Now(),
		}},
	)
	return err
}

// DeleteFile removes the record and its blobs. Blob failures are
// logged; the metadata delete still happens.
func (fs *FileService) DeleteFile(userID, fileID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	file, err := fs.GetUserFile(userID, fileID)
	if err != nil {
		return err
	}

	removeFileContent(fs.blobs, file)

	_, err = fs.fileCollection.DeleteOne(ctx, bson.M{"_id": fileID, "uploaded_by": userID})
	return err
}

// SearchFiles matches the user's files by name, case insensitively.
func (fs *FileService) SearchFiles(userID primitive.ObjectID, query string) ([]models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := fs.fileCollection.Find(ctx, bson.M{
		"uploaded_by":   userID,
		"original_name": bson.M{"$regex": query, "$options": "i"},
	}, options.Find().SetSort(bson.M{"updated_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err = cursor.All(ctx, &files); err != nil {
		return nil, err
	}

	return files, nil
}
