package yolo2coco

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/swdee/go-yolo2coco/geometry"
)

// MaxLabelLine is the longest label file line accepted, in bytes.  Dense
// polygons of several hundred thousand vertices fit
const MaxLabelLine = 64 * 1024 * 1024

// TextOptions configures a TextBuilder
type TextOptions struct {
	// LabelDir is the directory holding one label file per image
	LabelDir string
	// LabelExt is the label file extension, defaults to ".txt"
	LabelExt string
	// AxisOrder selects how normalized coordinates are scaled
	AxisOrder geometry.AxisOrder
	// OnMissing selects whether a missing label file aborts the run or the
	// image is skipped with a warning
	OnMissing FailurePolicy
}

// TextBuilder builds annotations from YOLO segmentation label files.  Each
// line of a label file is "<category id> <x1> <y1> <x2> <y2> ..." with
// coordinates normalized to the image size
type TextBuilder struct {
	opts       TextOptions
	categories map[int]struct{}
	ids        *IDGenerator
}

// NewTextBuilder returns a TextBuilder validating category IDs against cats
// and numbering annotations with ids
func NewTextBuilder(opts TextOptions, cats []Category, ids *IDGenerator) *TextBuilder {

	if opts.LabelExt == "" {
		opts.LabelExt = ".txt"
	}

	if !strings.HasPrefix(opts.LabelExt, ".") {
		opts.LabelExt = "." + opts.LabelExt
	}

	return &TextBuilder{
		opts:       opts,
		categories: categorySet(cats),
		ids:        ids,
	}
}

// LabelPath returns the label file for the given image file name, being the
// same base name with the label extension
func (b *TextBuilder) LabelPath(imageFile string) string {
	base := strings.TrimSuffix(imageFile, filepath.Ext(imageFile))
	return filepath.Join(b.opts.LabelDir, base+b.opts.LabelExt)
}

// Annotations implements Builder and returns one annotation per non-empty
// label file line
func (b *TextBuilder) Annotations(ctx context.Context, img Image) ([]Annotation, error) {

	path := b.LabelPath(img.FileName)

	f, err := os.Open(path)

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && b.opts.OnMissing == Skip {
			GetLogger().Warn("skipping image without label file",
				"image", img.FileName, "label", path)
			return nil, nil
		}

		return nil, fmt.Errorf("%w: label file for %s: %w", ErrInputFormat, img.FileName, err)
	}

	defer f.Close()

	size := geometry.Size{Width: img.Width, Height: img.Height}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLabelLine)
	anns := make([]Annotation, 0)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		ann, err := b.parseLine(line, size)

		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrInputFormat, path, lineNo, err)
		}

		ann.ID = b.ids.Next()
		ann.ImageID = img.ID
		anns = append(anns, ann)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: error reading %s: %w", ErrInputFormat, path, err)
	}

	return anns, nil
}

// parseLine converts a single label line into an annotation without IDs
func (b *TextBuilder) parseLine(line string, size geometry.Size) (Annotation, error) {

	fields := strings.Fields(line)

	classID, err := strconv.Atoi(fields[0])

	if err != nil {
		return Annotation{}, fmt.Errorf("invalid category id %q", fields[0])
	}

	if _, ok := b.categories[classID]; !ok {
		return Annotation{}, fmt.Errorf("unknown category id %d", classID)
	}

	coords, err := geometry.ParseNormalized(fields[1:])

	if err != nil {
		return Annotation{}, err
	}

	if len(coords) < 2 {
		return Annotation{}, errors.New("no polygon points")
	}

	pixels, err := geometry.NormalizedToPixel(coords, size, b.opts.AxisOrder)

	if err != nil {
		return Annotation{}, err
	}

	points, err := geometry.Pairs(pixels)

	if err != nil {
		return Annotation{}, err
	}

	box := geometry.BoundingBox(points)

	return Annotation{
		CategoryID:   classID,
		BBox:         box.XYWH(),
		Area:         box.Area(),
		Segmentation: [][]float64{geometry.Flatten(points)},
	}, nil
}
