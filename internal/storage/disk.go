package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DiskStore writes uploads under a local directory and generates a JPEG
// thumbnail next to each image under thumbs/.
type DiskStore struct {
	root          string
	thumbnailSize int
	logger        *slog.Logger
}

// NewDiskStore creates the upload and thumbnail directories if needed.
func NewDiskStore(root string, thumbnailSize int, logger *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "thumbs"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &DiskStore{
		root:          root,
		thumbnailSize: thumbnailSize,
		logger:        logger,
	}, nil
}

// Save writes the image to disk and generates its thumbnail. The returned key
// is relative to the upload root.
func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	key, err := NewKey(filename)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("cannot decode image: %w", err)
	}

	path := filepath.Join(s.root, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	if err := s.writeThumbnail(key, src); err != nil {
		// the original is already stored; a missing thumbnail is not fatal
		s.logger.Warn("failed to write thumbnail", slog.String("key", key), slog.Any("error", err))
	}

	return key, nil
}

// Delete removes an image and its thumbnail.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.root, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if err := os.Remove(thumbPath(s.root, key)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to delete thumbnail", slog.String("key", key), slog.Any("error", err))
	}
	return nil
}

// writeThumbnail scales the decoded image down to the configured bound and
// encodes it as JPEG under thumbs/.
func (s *DiskStore) writeThumbnail(key string, src image.Image) error {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	maxDim := width
	if height > maxDim {
		maxDim = height
	}

	scale := float64(s.thumbnailSize) / float64(maxDim)
	if scale > 1 {
		scale = 1
	}

	targetWidth := int(math.Round(float64(width) * scale))
	targetHeight := int(math.Round(float64(height) * scale))
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	out, err := os.OpenFile(thumbPath(s.root, key), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	encodeErr := jpeg.Encode(out, dst, &jpeg.Options{Quality: 90})
	closeErr := out.Close()
	if encodeErr != nil {
		return encodeErr
	}
	return closeErr
}

func thumbPath(root, key string) string {
	return filepath.Join(root, "thumbs", key+".jpg")
}
