package utils

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateStorageKey builds the opaque blob key for an upload. Keys
// are namespaced per user and per day so the blob store stays
// browsable, and carry a UUID so concurrent uploads of the same name
// never collide.
func GenerateStorageKey(userID primitive.ObjectID, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s/%s/%s%s",
		userID.Hex(),
		time.Now().Format("2006/01/02"),
		uuid.New().String(),
		ext,
	)
}

// GenerateStoredFilename derives the stored filename for an upload,
// keeping the original extension.
func GenerateStoredFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.New().String() + ext
}

// DetectMimeType resolves a content type from the client-provided
// value, falling back to the filename extension.
func DetectMimeType(contentType, filename string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
