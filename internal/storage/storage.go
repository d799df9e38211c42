package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists uploaded catalog images and returns the key the record
// should reference.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// allowed upload extensions, lowercased
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// NewKey derives a collision-free storage key from an uploaded filename,
// keeping only the extension. Rejects extensions outside the image allowlist.
func NewKey(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	return uuid.New().String() + ext, nil
}
