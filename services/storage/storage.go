package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrForeignURL      = errors.New("url does not belong to this store")
)

// FileStore persists uploaded files and serves them at a public URL
type FileStore interface {
	// Save writes the file under key and returns its public URL. Local
	// stores return a path relative to the server root.
	Save(ctx context.Context, key string, data io.ReadSeeker, contentType string) (string, error)
	// Delete removes the file previously returned by Save. Missing files are not an error.
	Delete(ctx context.Context, url string) error
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExtension returns the file extension for an accepted image content type
func ImageExtension(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageTypes[ct]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return ext, nil
}

// NewAvatarKey generates a unique object key for a user's avatar
func NewAvatarKey(userID uint, ext string) string {
	return fmt.Sprintf("avatar-%d-%s%s", userID, uuid.New().String(), ext)
}

// IsAvatarOf reports whether url points at a key NewAvatarKey issued for userID
func IsAvatarOf(url string, userID uint) bool {
	return strings.HasPrefix(baseName(url), fmt.Sprintf("avatar-%d-", userID))
}

// baseName extracts the object name from a stored URL
func baseName(url string) string {
	return filepath.Base(strings.SplitN(url, "?", 2)[0])
}
