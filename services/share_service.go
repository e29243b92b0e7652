package services

import (
	"context"
	"fmt"
	"time"

	"filevault/database"
	"filevault/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Notifier delivers realtime events to connected users. Delivery is
// best effort; implementations must not block the caller.
type Notifier interface {
	NotifyResourceShared(targetUserID, resourceID primitive.ObjectID, resourceType, sharedBy string, permission models.Permission)
	Notify(targetUserID primitive.ObjectID, eventType, message string, resourceID primitive.ObjectID)
}

// noopNotifier is used when no realtime hub is attached.
type noopNotifier struct{}

func (noopNotifier) NotifyResourceShared(primitive.ObjectID, primitive.ObjectID, string, string, models.Permission) {
}

func (noopNotifier) Notify(primitive.ObjectID, string, string, primitive.ObjectID) {}

type ShareService struct {
	fileCollection   *mongo.Collection
	folderCollection *mongo.Collection
	userCollection   *mongo.Collection
	notifier         Notifier
}

func NewShareService(notifier Notifier) *ShareService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ShareService{
		fileCollection:   database.GetCollection(database.FilesCollection),
		folderCollection: database.GetCollection(database.FoldersCollection),
		userCollection:   database.GetCollection(database.UsersCollection),
		notifier:         notifier,
	}
}

// canManageSharing is the bar for granting, revoking, and listing
// permissions: owner or admin grantee.
func canManageSharing(resource models.SharedResource, userID primitive.ObjectID) bool {
	return Authorize(resource, userID, models.PermissionAdmin)
}

func (ss *ShareService) collectionFor(resourceType string) (*mongo.Collection, error) {
	switch resourceType {
	case models.ResourceTypeFile:
		return ss.fileCollection, nil
	case models.ResourceTypeFolder:
		return ss.folderCollection, nil
	default:
		return nil, invalidInputError("invalid resource type %q", resourceType)
	}
}

func (ss *ShareService) loadResource(ctx context.Context, resourceType string, resourceID primitive.ObjectID) (models.SharedResource, error) {
	switch resourceType {
	case models.ResourceTypeFile:
		var file models.File
		err := ss.fileCollection.FindOne(ctx, bson.M{"_id": resourceID}).Decode(&file)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, notFoundError("file not found")
			}
			return nil, err
		}
		return &file, nil
	case models.ResourceTypeFolder:
		var folder models.Folder
		err := ss.folderCollection.FindOne(ctx, bson.M{"_id": resourceID}).Decode(&folder)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, notFoundError("folder not found")
			}
			return nil, err
		}
		return &folder, nil
	default:
		return nil, invalidInputError("invalid resource type %q", resourceType)
	}
}

// Share grants or updates a permission on a file or folder for the
// user identified by email. Only the owner or an admin-level grantee
// may share. A repeated grant for the same user replaces the existing
// permission in place.
func (ss *ShareService) Share(actor *models.User, req *models.ShareRequest) (*models.SharedWithInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	permission := req.Permission
	if !permission.IsValid() {
		return nil, invalidInputError("invalid permission %q", req.Permission)
	}

	resourceID, err := primitive.ObjectIDFromHex(req.ResourceID)
	if err != nil {
		return nil, invalidInputError("invalid resource id")
	}

	resource, err := ss.loadResource(ctx, req.ResourceType, resourceID)
	if err != nil {
		return nil, err
	}

	if !canManageSharing(resource, actor.ID) {
		return nil, forbiddenError("you do not have permission to share this %s", req.ResourceType)
	}

	var target models.User
	err = ss.userCollection.FindOne(ctx, bson.M{"email": req.TargetEmail}).Decode(&target)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundError("no user registered with email %s", req.TargetEmail)
		}
		return nil, err
	}

	if target.ID == resource.ResourceOwner() {
		return nil, invalidInputError("cannot share a resource with its owner")
	}

	shares := models.UpsertShare(resource.ResourceShares(), models.SharedWith{UserID: target.ID, Permission: permission})

	collection, err := ss.collectionFor(req.ResourceType)
	if err != nil {
		return nil, err
	}

	_, err = collection.UpdateOne(ctx,
		bson.M{"_id": resourceID},
		bson.M{"$set": bson.M{
			"shared_with": shares,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return nil, err
	}

	// Best-effort realtime ping; a failed or offline delivery never
	// affects the grant itself.
	go ss.notifier.NotifyResourceShared(target.ID, resourceID, req.ResourceType, actor.Name, permission)

	return &models.SharedWithInfo{
		User:         target.Profile(),
		Permission:   permission,
		ResourceType: req.ResourceType,
	}, nil
}

// ListPermissions returns the owner plus every grantee of a resource.
// Grantee user records are resolved tolerantly; a deleted account
// shows up with its id only.
func (ss *ShareService) ListPermissions(actor *models.User, resourceType string, resourceID primitive.ObjectID) ([]models.PermissionEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resource, err := ss.loadResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}

	if !canManageSharing(resource, actor.ID) {
		return nil, forbiddenError("you do not have permission to view sharing on this %s", resourceType)
	}

	entries := make([]models.PermissionEntry, 0, len(resource.ResourceShares())+1)

	ownerEntry := models.PermissionEntry{
		User:  models.UserProfile{ID: resource.ResourceOwner()},
		Owner: true,
	}
	if owner, err := ss.lookupUser(ctx, resource.ResourceOwner()); err == nil {
		ownerEntry.User = owner.Profile()
	}
	entries = append(entries, ownerEntry)

	for _, share := range resource.ResourceShares() {
		entry := models.PermissionEntry{
			User:       models.UserProfile{ID: share.UserID},
			Permission: share.Permission,
		}
		if user, err := ss.lookupUser(ctx, share.UserID); err == nil {
			entry.User = user.Profile()
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ListSharedWithMe returns every file and folder where the user
// appears as a grantee, with the grantor's display name resolved.
func (ss *ShareService) ListSharedWithMe(userID primitive.ObjectID) (*models.SharedListing, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listing := &models.SharedListing{
		Files:   []models.SharedFile{},
		Folders: []models.SharedFolder{},
	}

	filter := bson.M{"shared_with.user_id": userID}

	fileCursor, err := ss.fileCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var files []models.File
	if err = fileCursor.All(ctx, &files); err != nil {
		return nil, err
	}

	for i := range files {
		file := &files[i]
		share, ok := models.ShareFor(file.SharedWith, userID)
		if !ok {
			continue
		}
		entry := models.SharedFile{
			File:       file,
			Owner:      models.UserProfile{ID: file.UploadedBy},
			Permission: share.Permission,
		}
		if owner, err := ss.lookupUser(ctx, file.UploadedBy); err == nil {
			entry.Owner = owner.Profile()
		}
		listing.Files = append(listing.Files, entry)
	}

	folderCursor, err := ss.folderCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var folders []models.Folder
	if err = folderCursor.All(ctx, &folders); err != nil {
		return nil, err
	}

	for i := range folders {
		folder := &folders[i]
		share, ok := models.ShareFor(folder.SharedWith, userID)
		if !ok {
			continue
		}
		entry := models.SharedFolder{
			Folder:     folder,
			Owner:      models.UserProfile{ID: folder.OwnerID},
			Permission: share.Permission,
		}
		if owner, err := ss.lookupUser(ctx, folder.OwnerID); err == nil {
			entry.Owner = owner.Profile()
		}
		listing.Folders = append(listing.Folders, entry)
	}

	return listing, nil
}

// ListSharedByMe returns every resource the user owns that has at
// least one grantee.
func (ss *ShareService) ListSharedByMe(userID primitive.ObjectID) (*models.SharedListing, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listing := &models.SharedListing{
		Files:   []models.SharedFile{},
		Folders: []models.SharedFolder{},
	}

	fileCursor, err := ss.fileCollection.Find(ctx, bson.M{
		"uploaded_by":   userID,
		"shared_with.0": bson.M{"$exists": true},
	})
	if err != nil {
		return nil, err
	}
	var files []models.File
	if err = fileCursor.All(ctx, &files); err != nil {
		return nil, err
	}
	for i := range files {
		listing.Files = append(listing.Files, models.SharedFile{
			File:       &files[i],
			SharedWith: files[i].SharedWith,
		})
	}

	folderCursor, err := ss.folderCollection.Find(ctx, bson.M{
		"owner_id":      userID,
		"shared_with.0": bson.M{"$exists": true},
	})
	if err != nil {
		return nil, err
	}
	var folders []models.Folder
	if err = folderCursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	for i := range folders {
		listing.Folders = append(listing.Folders, models.SharedFolder{
			Folder:     &folders[i],
			SharedWith: folders[i].SharedWith,
		})
	}

	return listing, nil
}

// RemovePermission revokes a grantee's access. Removing a user who
// holds no grant succeeds without changing anything.
func (ss *ShareService) RemovePermission(actor *models.User, req *models.RemovePermissionRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resourceID, err := primitive.ObjectIDFromHex(req.ResourceID)
	if err != nil {
		return invalidInputError("invalid resource id")
	}

	var target models.User
	err = ss.userCollection.FindOne(ctx, bson.M{"email": req.TargetEmail}).Decode(&target)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return notFoundError("no user registered with email %s", req.TargetEmail)
		}
		return err
	}

	resource, err := ss.loadResource(ctx, req.ResourceType, resourceID)
	if err != nil {
		return err
	}

	if !canManageSharing(resource, actor.ID) {
		return forbiddenError("you do not have permission to manage sharing on this %s", req.ResourceType)
	}

	shares := models.RemoveShare(resource.ResourceShares(), target.ID)

	collection, err := ss.collectionFor(req.ResourceType)
	if err != nil {
		return err
	}

	_, err = collection.UpdateOne(ctx,
		bson.M{"_id": resourceID},
		bson.M{"$set": bson.M{
			"shared_with": shares,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return err
	}

	go ss.notifier.Notify(target.ID, "notification",
		fmt.Sprintf("Your access to a %s was removed", req.ResourceType), resourceID)

	return nil
}

func (ss *ShareService) lookupUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := ss.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			logrus.WithError(err).Warnf("failed to resolve user %s", userID.Hex())
		}
		return nil, err
	}
	return &user, nil
}
