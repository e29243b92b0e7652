package storage

import (
	"fmt"

	"filevault/config"
)

var activeStore BlobStore

// Init creates the blob store named by the configuration and makes it
// available process-wide via Blobs().
func Init(cfg *config.Config) error {
	store, err := NewBlobStore(cfg)
	if err != nil {
		return err
	}
	activeStore = store
	return nil
}

// Blobs returns the active blob store
func Blobs() BlobStore {
	if activeStore == nil {
		panic("storage not initialized: call storage.Init() first")
	}
	return activeStore
}

// NewBlobStore creates a blob store for the configured provider
func NewBlobStore(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageProvider {
	case "local", "":
		return NewLocalClient(cfg.UploadPath)
	case "s3":
		return NewS3Client(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.StorageProvider)
	}
}
