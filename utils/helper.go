package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StringToObjectID converts string to MongoDB ObjectID
func StringToObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// IsValidObjectID checks if string is valid MongoDB ObjectID
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// MustObjectID converts a hex string already vetted with
// IsValidObjectID. Invalid input yields the zero ObjectID.
func MustObjectID(s string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(s)
	return id
}

// GenerateSecureToken generates a cryptographically secure random token
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	token := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(bytes)
	return strings.ToLower(token), nil
}

// SanitizeFilename strips path separators and control characters from
// a user-supplied filename.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	return strings.Map(func(r rune) rune {
		if r < 32 {
			return -1
		}
		return r
	}, name)
}
