package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the hierarchy and sharing queries
// rely on: children lookups must be O(children), not full scans.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	folderIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "shared_with.user_id", Value: 1}}},
	}

	fileIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "folder_id", Value: 1}, {Key: "uploaded_by", Value: 1}}},
		{Keys: bson.D{{Key: "uploaded_by", Value: 1}, {Key: "original_name", Value: 1}}},
		{Keys: bson.D{{Key: "shared_with.user_id", Value: 1}}},
	}

	if _, err := GetCollection(UsersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}
	if _, err := GetCollection(FoldersCollection).Indexes().CreateMany(ctx, folderIndexes); err != nil {
		return fmt.Errorf("failed to create folder indexes: %v", err)
	}
	if _, err := GetCollection(FilesCollection).Indexes().CreateMany(ctx, fileIndexes); err != nil {
		return fmt.Errorf("failed to create file indexes: %v", err)
	}

	logrus.Info("Database indexes ensured")
	return nil
}
