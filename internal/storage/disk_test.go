package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestStore(t *testing.T, thumbnailSize int) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), thumbnailSize, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func TestNewKey(t *testing.T) {
	key, err := NewKey("photo.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	_, err = NewKey("script.exe")
	assert.Error(t, err)

	_, err = NewKey("noextension")
	assert.Error(t, err)
}

func TestDiskStore_Save(t *testing.T) {
	store := newTestStore(t, 64)

	key, err := store.Save(context.Background(), "photo.png", bytes.NewReader(testImage(t, 200, 100)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"))

	stored, err := os.ReadFile(filepath.Join(store.root, key))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	thumb, err := os.Open(thumbPath(store.root, key))
	require.NoError(t, err)
	defer thumb.Close()

	decoded, err := jpeg.Decode(thumb)
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 32, decoded.Bounds().Dy())
}

func TestDiskStore_Save_NotAnImage(t *testing.T) {
	store := newTestStore(t, 64)

	_, err := store.Save(context.Background(), "fake.png", strings.NewReader("not image bytes"))
	assert.Error(t, err)
}

func TestDiskStore_Save_SmallImageNotUpscaled(t *testing.T) {
	store := newTestStore(t, 256)

	key, err := store.Save(context.Background(), "tiny.png", bytes.NewReader(testImage(t, 10, 10)))
	require.NoError(t, err)

	thumb, err := os.Open(thumbPath(store.root, key))
	require.NoError(t, err)
	defer thumb.Close()

	decoded, err := jpeg.Decode(thumb)
	require.NoError(t, err)
	assert.Equal(t, 10, decoded.Bounds().Dx())
}

func TestDiskStore_Delete(t *testing.T) {
	store := newTestStore(t, 64)

	key, err := store.Save(context.Background(), "photo.png", bytes.NewReader(testImage(t, 50, 50)))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), key))

	_, err = os.Stat(filepath.Join(store.root, key))
	assert.True(t, os.IsNotExist(err))

	// deleting again is not an error
	assert.NoError(t, store.Delete(context.Background(), key))
}
