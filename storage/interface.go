package storage

import (
	"io"
)

// BlobStore is the content store the metadata layer writes against.
// Keys are opaque path strings chosen by the upload layer.
type BlobStore interface {
	Upload(key string, data []byte) error
	UploadStream(key string, reader io.Reader, size int64) error
	Download(key string) ([]byte, error)
	DownloadStream(key string) (io.ReadCloser, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	GetSize(key string) (int64, error)
	GetURL(key string) (string, error)
	HealthCheck() error
}

// StorageError represents storage-specific errors
type StorageError struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Key      string `json:"key,omitempty"`
}

func (e *StorageError) Error() string {
	return e.Message
}

// NewStorageError creates a new storage error
func NewStorageError(provider, code, message, key string) *StorageError {
	return &StorageError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Key:      key,
	}
}
