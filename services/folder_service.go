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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FolderService struct {
	folderCollection *mongo.Collection
	fileCollection   *mongo.Collection
	blobs            storage.BlobStore
}

func NewFolderService() *FolderService {
	return &FolderService{
		folderCollection: database.GetCollection(database.FoldersCollection),
		fileCollection:   database.GetCollection(database.FilesCollection),
		blobs:            storage.Blobs(),
	}
}

// GetFolder loads a folder by id regardless of owner. Sharing and
// permission checks happen on the loaded document.
func (fs *FolderService) GetFolder(folderID primitive.ObjectID) (*models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var folder models.Folder
	err := fs.folderCollection.FindOne(ctx, bson.M{"_id": folderID}).Decode(&folder)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundError("folder not found")
		}
		return nil, err
	}

	return &folder, nil
}

// GetUserFolder loads a folder owned by userID.
func (fs *FolderService) GetUserFolder(userID, folderID primitive.ObjectID) (*models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var folder models.Folder
	err := fs.folderCollection.FindOne(ctx, bson.M{
		"_id":      folderID,
		"owner_id": userID,
	}).Decode(&folder)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundError("folder not found")
		}
		return nil, err
	}

	return &folder, nil
}

// ListFolders returns the user's folders under the given parent.
// An empty or "root" parent lists top-level folders.
func (fs *FolderService) ListFolders(userID primitive.ObjectID, parentID string) ([]models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"owner_id": userID}
	if parentID == "" || parentID == "root" {
		filter["parent_id"] = bson.M{"$exists": false}
	} else {
		parentObjID, err := utils.StringToObjectID(parentID)
		if err != nil {
			return nil, invalidInputError("invalid parent folder id")
		}
		filter["parent_id"] = parentObjID
	}

	cursor, err := fs.folderCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err = cursor.All(ctx, &folders); err != nil {
		return nil, err
	}

	return folders, nil
}

// CreateFolder creates a new folder under a validated parent (or at
// the root). The materialized path is computed once here from the
// parent's path.
func (fs *FolderService) CreateFolder(userID primitive.ObjectID, req *models.FolderCreateRequest) (*models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var parentObjID *primitive.ObjectID
	path := "/" + req.Name

	if req.ParentID != "" && req.ParentID != "root" {
		pid, err := utils.StringToObjectID(req.ParentID)
		if err != nil {
			return nil, invalidInputError("invalid parent folder id")
		}

		parent, err := fs.GetUserFolder(userID, pid)
		if err != nil {
			return nil, invalidInputError("parent folder not found")
		}

		parentObjID = &pid
		path = parent.Path + "/" + req.Name
	}

	if err := fs.checkDuplicateFolderName(ctx, userID, req.Name, parentObjID, primitive.NilObjectID); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		ID:         primitive.NewObjectID(),
		Name:       req.Name,
		ParentID:   parentObjID,
		OwnerID:    userID,
		Path:       path,
		SharedWith: []models.SharedWith{},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if _, err := fs.folderCollection.InsertOne(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// RenameFolder renames a folder in place. The materialized path of
// the folder and its descendants is intentionally left untouched.
func (fs *FolderService) RenameFolder(userID, folderID primitive.ObjectID, newName string) (*models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	folder, err := fs.GetUserFolder(userID, folderID)
	if err != nil {
		return nil, err
	}

	var parentObjID *primitive.ObjectID
	if folder.ParentID != nil {
		parentObjID = folder.ParentID
	}

	if err := fs.checkDuplicateFolderName(ctx, userID, newName, parentObjID, folderID); err != nil {
		return nil, err
	}

	_, err = fs.folderCollection.UpdateOne(ctx,
		bson.M{"_id": folderID, "owner_id": userID},
		bson.M{"$set": bson.M{
			"name":       newName,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return nil, err
	}

	return fs.GetUserFolder(userID, folderID)
}

// MoveFolder reassigns a folder's parent. Target "root" detaches to
// top level; any other target must be an existing folder owned by
// the user and must not create a cycle.
func (fs *FolderService) MoveFolder(userID, folderID primitive.ObjectID, target string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := fs.GetUserFolder(userID, folderID); err != nil {
		return err
	}

	if target == "" || target == "root" {
		_, err := fs.folderCollection.UpdateOne(ctx,
			bson.M{"_id": folderID, "owner_id": userID},
			bson.M{
				"$unset": bson.M{"parent_id": ""},
				"$set":   bson.M{"updated_at": time.Now()},
			},
		)
		return err
	}

	targetObjID, err := utils.StringToObjectID(target)
	if err != nil {
		return invalidInputError("invalid target folder id")
	}

	if _, err := fs.GetUserFolder(userID, targetObjID); err != nil {
		return invalidInputError("target folder not found")
	}

	descendant, err := fs.IsDescendant(ctx, folderID, targetObjID)
	if err != nil {
		return err
	}
	if descendant {
		return invalidInputError("cannot move a folder into itself or its own subfolder")
	}

	_, err = fs.folderCollection.UpdateOne(ctx,
		bson.M{"_id": folderID, "owner_id": userID},
		bson.M{"$set": bson.M{
			"parent_id":  targetObjID,
			"updated_at": time.Now(),
		}},
	)
	return err
}

// DeleteFolder removes a folder and everything beneath it. Returns
// counts of removed records; the root folder itself is included in
// the folder count.
func (fs *FolderService) DeleteFolder(userID, folderID primitive.ObjectID) (*models.DeleteSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if _, err := fs.GetUserFolder(userID, folderID); err != nil {
		return nil, err
	}

	summary := &models.DeleteSummary{}
	if err := fs.deleteFolderContents(ctx, userID, folderID, summary); err != nil {
		return nil, err
	}

	if _, err := fs.folderCollection.DeleteOne(ctx, bson.M{"_id": folderID, "owner_id": userID}); err != nil {
		return nil, err
	}
	summary.DeletedFolders++

	return summary, nil
}

// deleteFolderContents removes every descendant of folderID owned by
// userID, files before subfolders at each level, depth first. Blob
// failures are logged and skipped so one broken file cannot wedge the
// whole cascade.
func (fs *FolderService) deleteFolderContents(ctx context.Context, userID, folderID primitive.ObjectID, summary *models.DeleteSummary) error {
	cursor, err := fs.fileCollection.Find(ctx, bson.M{
		"folder_id":   folderID,
		"uploaded_by": userID,
	})
	if err != nil {
		return err
	}

	var files []models.File
	if err = cursor.All(ctx, &files); err != nil {
		return err
	}

	for i := range files {
		file := &files[i]
		removeFileContent(fs.blobs, file)

		if _, err := fs.fileCollection.DeleteOne(ctx, bson.M{"_id": file.ID}); err != nil {
			logrus.WithError(err).Warnf("failed to delete file record %s", file.ID.Hex())
			continue
		}
		summary.DeletedFiles++
	}

	subCursor, err := fs.folderCollection.Find(ctx, bson.M{
		"parent_id": folderID,
		"owner_id":  userID,
	})
	if err != nil {
		return err
	}

	var subfolders []models.Folder
	if err = subCursor.All(ctx, &subfolders); err != nil {
		return err
	}

	for _, sub := range subfolders {
		if err := fs.deleteFolderContents(ctx, userID, sub.ID, summary); err != nil {
			logrus.WithError(err).Warnf("failed to delete contents of folder %s", sub.ID.Hex())
			continue
		}

		if _, err := fs.folderCollection.DeleteOne(ctx, bson.M{"_id": sub.ID}); err != nil {
			logrus.WithError(err).Warnf("failed to delete folder record %s", sub.ID.Hex())
			continue
		}
		summary.DeletedFolders++
	}

	return nil
}

// IsDescendant reports whether targetID sits inside the subtree
// rooted at candidateAncestorID. A folder counts as its own
// descendant, so moving a folder into itself is rejected by the same
// check.
func (fs *FolderService) IsDescendant(ctx context.Context, candidateAncestorID, targetID primitive.ObjectID) (bool, error) {
	return isDescendantWalk(candidateAncestorID, targetID, func(id primitive.ObjectID) (*models.Folder, error) {
		var folder models.Folder
		err := fs.folderCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
		if err != nil {
			return nil, err
		}
		return &folder, nil
	})
}

// folderLookup resolves a folder id during an ancestor walk.
type folderLookup func(id primitive.ObjectID) (*models.Folder, error)

// isDescendantWalk walks target's parent pointers upward. Reaching
// candidateAncestorID means descendant; reaching a root (or a missing
// record, which a concurrent delete can produce) means not.
func isDescendantWalk(candidateAncestorID, targetID primitive.ObjectID, lookup folderLookup) (bool, error) {
	if candidateAncestorID == targetID {
		return true, nil
	}

	current := targetID
	for {
		folder, err := lookup(current)
		if err != nil {
			return false, nil
		}
		if folder.ParentID == nil {
			return false, nil
		}
		if *folder.ParentID == candidateAncestorID {
			return true, nil
		}
		current = *folder.ParentID
	}
}

// Breadcrumb returns the ancestor chain from root down to the folder.
func (fs *FolderService) Breadcrumb(userID, folderID primitive.ObjectID) ([]models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var breadcrumb []models.Folder
	currentID := folderID

	for {
		var folder models.Folder
		err := fs.folderCollection.FindOne(ctx, bson.M{
			"_id":      currentID,
			"owner_id": userID,
		}).Decode(&folder)
		if err != nil {
			break
		}

		breadcrumb = append([]models.Folder{folder}, breadcrumb...)

		if folder.ParentID == nil {
			break
		}
		currentID = *folder.ParentID
	}

	if len(breadcrumb) == 0 {
		return nil, notFoundError("folder not found")
	}

	return breadcrumb, nil
}

// checkDuplicateFolderName rejects a second folder with the same name
// under the same parent. excludeID skips the folder being renamed.
func (fs *FolderService) checkDuplicateFolderName(ctx context.Context, userID primitive.ObjectID, name string, parentID *primitive.ObjectID, excludeID primitive.ObjectID) error {
	filter := bson.M{
		"owner_id": userID,
		"name":     name,
	}

	if parentID != nil {
		filter["parent_id"] = *parentID
	} else {
		filter["parent_id"] = bson.M{"$exists": false}
	}

	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	count, err := fs.folderCollection.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}

	if count > 0 {
		return conflictError("a folder named %q already exists in this location", name)
	}

	return nil
}
