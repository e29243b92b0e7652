package services

import (
	"context"
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

type BulkService struct {
	fileCollection   *mongo.Collection
	folderCollection *mongo.Collection
	blobs            storage.BlobStore
	files            *FileService
	folders          *FolderService
}

func NewBulkService() *BulkService {
	return &BulkService{
		fileCollection:   database.GetCollection(database.FilesCollection),
		folderCollection: database.GetCollection(database.FoldersCollection),
		blobs:            storage.Blobs(),
		files:            NewFileService(),
		folders:          NewFolderService(),
	}
}

// validateBulkAction rejects a request before any item is touched.
func validateBulkAction(req *models.BulkActionRequest) error {
	if len(req.Files) == 0 && len(req.Folders) == 0 {
		return invalidInputError("No items selected for bulk action")
	}

	switch req.Action {
	case models.BulkActionDelete, models.BulkActionMove, models.BulkActionDownload:
		return nil
	default:
		return invalidInputError("unknown bulk action %q", req.Action)
	}
}

// Execute dispatches a validated bulk request. Per-item failures are
// skipped; the result reports what actually happened.
func (bs *BulkService) Execute(userID primitive.ObjectID, req *models.BulkActionRequest) (interface{}, error) {
	if err := validateBulkAction(req); err != nil {
		return nil, err
	}

	switch req.Action {
	case models.BulkActionDelete:
		return bs.bulkDelete(userID, req)
	case models.BulkActionMove:
		return bs.moveItems(userID, req)
	default:
		return bs.collectDownloadSet(userID, req)
	}
}

// bulkDelete removes the selected files and folder subtrees. Items
// the user does not own are skipped, not errors.
func (bs *BulkService) bulkDelete(userID primitive.ObjectID, req *models.BulkActionRequest) (*models.DeleteSummary, error) {
	summary := &models.DeleteSummary{}

	for _, id := range req.Files {
		fileID, err := utils.StringToObjectID(id)
		if err != nil {
			continue
		}
		if err := bs.files.DeleteFile(userID, fileID); err != nil {
			logrus.WithError(err).Warnf("bulk delete skipped file %s", id)
			continue
		}
		summary.DeletedFiles++
	}

	for _, id := range req.Folders {
		folderID, err := utils.StringToObjectID(id)
		if err != nil {
			continue
		}
		sub, err := bs.folders.DeleteFolder(userID, folderID)
		if err != nil {
			logrus.WithError(err).Warnf("bulk delete skipped folder %s", id)
			continue
		}
		summary.DeletedFiles += sub.DeletedFiles
		summary.DeletedFolders += sub.DeletedFolders
	}

	return summary, nil
}

// moveItems moves the selection into the target folder ("root"
// detaches to top level). A move that would place a folder inside its
// own subtree is skipped along with items the user does not own; the
// counts cover only items actually moved.
func (bs *BulkService) moveItems(userID primitive.ObjectID, req *models.BulkActionRequest) (*models.MoveSummary, error) {
	target := req.TargetFolder
	if target == "" {
		target = "root"
	}

	if target != "root" {
		targetObjID, err := utils.StringToObjectID(target)
		if err != nil {
			return nil, invalidInputError("invalid target folder id")
		}
		if _, err := bs.folders.GetUserFolder(userID, targetObjID); err != nil {
			return nil, invalidInputError("target folder not found")
		}
	}

	summary := &models.MoveSummary{}

	for _, id := range req.Files {
		fileID, err := utils.StringToObjectID(id)
		if err != nil {
			continue
		}
		if err := bs.files.MoveFile(userID, fileID, target); err != nil {
			logrus.WithError(err).Warnf("bulk move skipped file %s", id)
			continue
		}
		summary.MovedFiles++
	}

	for _, id := range req.Folders {
		folderID, err := utils.StringToObjectID(id)
		if err != nil {
			continue
		}
		if err := bs.folders.MoveFolder(userID, folderID, target); err != nil {
			logrus.WithError(err).Warnf("bulk move skipped folder %s", id)
			continue
		}
		summary.MovedFolders++
	}

	return summary, nil
}

// collectDownloadSet expands the selection into a flat manifest of
// downloadable files. Selected folders are walked iteratively with an
// explicit stack, so arbitrarily deep trees cannot blow the call
// stack.
func (bs *BulkService) collectDownloadSet(userID primitive.ObjectID, req *models.BulkActionRequest) (*models.DownloadManifest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	manifest := &models.DownloadManifest{
		Files:   []models.DownloadItem{},
		Folders: []string{},
	}

	for _, id := range req.Files {
		fileID, err := utils.StringToObjectID(id)
		if err != nil {
			continue
		}
		file, err := bs.files.GetFile(fileID)
		if err != nil {
			continue
		}
		if !canDownloadDirectly(file, userID) {
			continue
		}
		bs.appendDownloadItem(manifest, file)
	}

	var stack []primitive.ObjectID
	for _, id := range req.Folders {
		folderID, err := utils.StringToObjectID(id)
		if err != nil {
			continue
		}
		if _, err := bs.folders.GetUserFolder(userID, folderID); err != nil {
			continue
		}
		stack = append(stack, folderID)
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		folder, err := bs.folders.GetUserFolder(userID, current)
		if err != nil {
			continue
		}
		recordVisitedFolder(manifest, folder)

		cursor, err := bs.fileCollection.Find(ctx, bson.M{
			"folder_id":   current,
			"uploaded_by": userID,
		})
		if err != nil {
			return nil, err
		}
		var files []models.File
		if err = cursor.All(ctx, &files); err != nil {
			return nil, err
		}
		for i := range files {
			bs.appendDownloadItem(manifest, &files[i])
		}

		subCursor, err := bs.folderCollection.Find(ctx, bson.M{
			"parent_id": current,
			"owner_id":  userID,
		})
		if err != nil {
			return nil, err
		}
		var subfolders []models.Folder
		if err = subCursor.All(ctx, &subfolders); err != nil {
			return nil, err
		}
		for _, sub := range subfolders {
			stack = append(stack, sub.ID)
		}
	}

	return manifest, nil
}

// canDownloadDirectly gates files named one by one in the request.
// Shared access is not enough here; only the owner bulk-downloads.
func canDownloadDirectly(file *models.File, userID primitive.ObjectID) bool {
	return file.UploadedBy == userID
}

// recordVisitedFolder adds a walked folder to the manifest, keyed by
// id so the caller can rebuild the tree client-side.
func recordVisitedFolder(manifest *models.DownloadManifest, folder *models.Folder) {
	manifest.Folders = append(manifest.Folders, folder.ID.Hex())
}

func (bs *BulkService) appendDownloadItem(manifest *models.DownloadManifest, file *models.File) {
	url, err := bs.blobs.GetURL(file.Path)
	if err != nil {
		logrus.WithError(err).Warnf("no download url for file %s", file.ID.Hex())
		return
	}

	manifest.Files = append(manifest.Files, models.DownloadItem{
		ID:          file.ID.Hex(),
		Name:        file.OriginalName,
		DownloadURL: url,
		Size:        file.Size,
		MimeType:    file.MimeType,
	})
}
