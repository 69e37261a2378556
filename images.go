package yolo2coco

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultExtensions are the image file extensions picked up by the catalog
var DefaultExtensions = []string{"jpg", "jpeg", "png"}

// CatalogOptions configures BuildImages
type CatalogOptions struct {
	// Extensions lists the file extensions (without dot, case insensitive)
	// to include.  Defaults to DefaultExtensions
	Extensions []string
	// Decoder reads the image dimensions.  Defaults to ConfigDecoder
	Decoder ImageDecoder
	// OnError selects whether an undecodable image aborts the catalog
	// build or is skipped with a warning
	OnError FailurePolicy
	// Clock provides the capture timestamp.  Defaults to time.Now
	Clock func() time.Time
}

// BuildImages enumerates the image files in dir and records their
// dimensions.  Files are sorted by name before IDs are assigned so the ID of
// an image is the same on every run and platform.  Skipped files do not
// consume an ID.
func BuildImages(dir string, opts CatalogOptions) ([]Image, error) {

	log := GetLogger()

	exts := opts.Extensions

	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	extSet := make(map[string]struct{}, len(exts))

	for _, e := range exts {
		extSet[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}

	decoder := opts.Decoder

	if decoder == nil {
		decoder = ConfigDecoder{}
	}

	clock := opts.Clock

	if clock == nil {
		clock = time.Now
	}

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, &FileError{File: dir,
			Err: fmt.Errorf("%w: error reading image directory: %w", ErrInputFormat, err)}
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))

		if _, ok := extSet[ext]; ok {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	images := make([]Image, 0, len(names))

	for _, name := range names {
		size, err := decoder.DecodeSize(filepath.Join(dir, name))

		if err != nil {
			if opts.OnError == Skip {
				log.Warn("skipping undecodable image", "file", name, "error", err)
				continue
			}

			return nil, &FileError{File: name, Err: fmt.Errorf("%w: %w", ErrImageDecode, err)}
		}

		images = append(images, Image{
			ID:         len(images),
			License:    1,
			FileName:   name,
			Width:      size.Width,
			Height:     size.Height,
			CapturedAt: clock(),
		})

		log.Debug("catalogued image", "id", len(images)-1, "file", name,
			"width", size.Width, "height", size.Height)
	}

	return images, nil
}
