package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalClient implements local file system storage
type LocalClient struct {
	basePath string
}

// NewLocalClient creates a new local storage client
func NewLocalClient(basePath string) (*LocalClient, error) {
	if basePath == "" {
		basePath = "./uploads"
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %v", err)
	}

	return &LocalClient{basePath: basePath}, nil
}

// Upload saves data to local file system
func (lc *LocalClient) Upload(key string, data []byte) error {
	fullPath := filepath.Join(lc.basePath, key)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}

	return os.WriteFile(fullPath, data, 0644)
}

// UploadStream saves data from a stream to local file system
func (lc *LocalClient) UploadStream(key string, reader io.Reader, size int64) error {
	fullPath := filepath.Join(lc.basePath, key)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	_, err = io.Copy(file, reader)
	return err
}

// Download reads data from local file system
func (lc *LocalClient) Download(key string) ([]byte, error) {
	fullPath := filepath.Join(lc.basePath, key)
	return os.ReadFile(fullPath)
}

// DownloadStream returns a reader for the file
func (lc *LocalClient) DownloadStream(key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(lc.basePath, key)
	return os.Open(fullPath)
}

// Delete removes a file from local file system
func (lc *LocalClient) Delete(key string) error {
	fullPath := filepath.Join(lc.basePath, key)
	err := os.Remove(fullPath)
	if os.IsNotExist(err) {
		return nil // File doesn't exist, consider it deleted
	}
	return err
}

// Exists checks if a file exists
func (lc *LocalClient) Exists(key string) (bool, error) {
	fullPath := filepath.Join(lc.basePath, key)
	_, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetSize returns the size of a file
func (lc *LocalClient) GetSize(key string) (int64, error) {
	fullPath := filepath.Join(lc.basePath, key)
	info, err := os.Stat(fullPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// GetURL returns the serving URL for a locally stored file
func (lc *LocalClient) GetURL(key string) (string, error) {
	return "/uploads/" + key, nil
}

// HealthCheck verifies local storage is accessible
func (lc *LocalClient) HealthCheck() error {
	testFile := filepath.Join(lc.basePath, ".health_check")

	if err := os.WriteFile(testFile, []byte("health_check"), 0644); err != nil {
		return fmt.Errorf("local storage write test failed: %v", err)
	}

	if _, err := os.ReadFile(testFile); err != nil {
		return fmt.Errorf("local storage read test failed: %v", err)
	}

	os.Remove(testFile)

	return nil
}
