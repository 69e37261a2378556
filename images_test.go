package yolo2coco

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-yolo2coco/geometry"
)

func TestBuildImagesDimensions(t *testing.T) {

	dir := t.TempDir()

	tests := []struct {
		file   string
		width  int
		height int
	}{
		{"a.jpg", 100, 100},
		{"b.jpeg", 64, 48},
		{"c.png", 31, 77},
		{"d.PNG", 5, 9},
	}

	for _, tc := range tests {
		writeImage(t, dir, tc.file, tc.width, tc.height)
	}

	imgs, err := BuildImages(dir, CatalogOptions{Clock: fixedClock})
	require.NoError(t, err)
	require.Len(t, imgs, len(tests))

	for i, tc := range tests {
		assert.Equal(t, i, imgs[i].ID)
		assert.Equal(t, tc.file, imgs[i].FileName)
		assert.Equal(t, tc.width, imgs[i].Width, tc.file)
		assert.Equal(t, tc.height, imgs[i].Height, tc.file)
		assert.Equal(t, 1, imgs[i].License)
		assert.Equal(t, fixedTime, imgs[i].CapturedAt)
	}
}

func TestBuildImagesSortedAndFiltered(t *testing.T) {

	dir := t.TempDir()

	// create files out of name order
	writeImage(t, dir, "zebra.png", 4, 4)
	writeImage(t, dir, "apple.jpg", 4, 4)
	writeImage(t, dir, "mango.jpeg", 4, 4)
	writeFile(t, dir, "notes.txt", "not an image")
	writeFile(t, dir, "apple.txt", "0 0.1 0.1")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	imgs, err := BuildImages(dir, CatalogOptions{Clock: fixedClock})
	require.NoError(t, err)

	var names []string

	for _, img := range imgs {
		names = append(names, img.FileName)
	}

	assert.Equal(t, []string{"apple.jpg", "mango.jpeg", "zebra.png"}, names)

	// repeated builds assign the same IDs
	again, err := BuildImages(dir, CatalogOptions{Clock: fixedClock})
	require.NoError(t, err)
	assert.Equal(t, imgs, again)
}

func TestBuildImagesExtensions(t *testing.T) {

	dir := t.TempDir()
	writeImage(t, dir, "a.jpg", 4, 4)
	writeImage(t, dir, "b.png", 4, 4)

	imgs, err := BuildImages(dir, CatalogOptions{Extensions: []string{".PNG"}, Clock: fixedClock})
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.Equal(t, "b.png", imgs[0].FileName)
}

func TestBuildImagesDecodeFailure(t *testing.T) {

	dir := t.TempDir()
	writeImage(t, dir, "a.jpg", 10, 20)
	writeFile(t, dir, "b.jpg", "corrupt")
	writeImage(t, dir, "c.png", 30, 40)

	t.Run("abort", func(t *testing.T) {
		_, err := BuildImages(dir, CatalogOptions{Clock: fixedClock})
		require.ErrorIs(t, err, ErrImageDecode)

		var fe *FileError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "b.jpg", fe.File)
	})

	t.Run("skip", func(t *testing.T) {
		imgs, err := BuildImages(dir, CatalogOptions{OnError: Skip, Clock: fixedClock})
		require.NoError(t, err)
		require.Len(t, imgs, 2)
		assert.Equal(t, "a.jpg", imgs[0].FileName)
		assert.Equal(t, "c.png", imgs[1].FileName)
		assert.Equal(t, 1, imgs[1].ID)
	})
}

func TestBuildImagesCustomDecoder(t *testing.T) {

	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "x")

	decoder := DecoderFunc(func(path string) (geometry.Size, error) {
		return geometry.Size{Width: 640, Height: 480}, nil
	})

	imgs, err := BuildImages(dir, CatalogOptions{Decoder: decoder, Clock: fixedClock})
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.Equal(t, 640, imgs[0].Width)
	assert.Equal(t, 480, imgs[0].Height)

	failing := DecoderFunc(func(path string) (geometry.Size, error) {
		return geometry.Size{}, errors.New("boom")
	})

	_, err = BuildImages(dir, CatalogOptions{Decoder: failing})
	assert.ErrorIs(t, err, ErrImageDecode)
}

func TestBuildImagesMissingDirectory(t *testing.T) {

	_, err := BuildImages(filepath.Join(t.TempDir(), "missing"), CatalogOptions{})
	assert.ErrorIs(t, err, ErrInputFormat)
}
