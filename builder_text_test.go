package yolo2coco

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-yolo2coco/geometry"
)

var testCategories = []Category{{ID: 0, Name: "cat"}, {ID: 1, Name: "dog"}}

func TestTextBuilderSquare(t *testing.T) {

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "0 0.1 0.1 0.1 0.9 0.9 0.9 0.9 0.1\n")

	b := NewTextBuilder(TextOptions{LabelDir: dir}, testCategories, NewIDGenerator(0))

	anns, err := b.Annotations(context.Background(),
		Image{ID: 0, FileName: "a.jpg", Width: 100, Height: 100})
	require.NoError(t, err)
	require.Len(t, anns, 1)

	assert.Equal(t, Annotation{
		ID:           0,
		ImageID:      0,
		CategoryID:   0,
		BBox:         [4]int{10, 10, 80, 80},
		Area:         6400,
		Segmentation: [][]float64{{10, 10, 10, 90, 90, 90, 90, 10}},
		IsCrowd:      false,
	}, anns[0])
}

func TestTextBuilderAxisOrder(t *testing.T) {

	dir := t.TempDir()
	writeFile(t, dir, "wide.txt", "1 0.5 0.5 0.25 0.25 0.75 0.25\n")

	img := Image{ID: 3, FileName: "wide.png", Width: 200, Height: 100}

	tests := []struct {
		name  string
		order geometry.AxisOrder
		seg   []float64
		bbox  [4]int
	}{
		{
			name:  "width first",
			order: geometry.WidthFirst,
			seg:   []float64{100, 50, 50, 25, 150, 25},
			bbox:  [4]int{50, 25, 100, 25},
		},
		{
			name:  "height first",
			order: geometry.HeightFirst,
			seg:   []float64{50, 100, 25, 50, 75, 50},
			bbox:  [4]int{25, 50, 50, 50},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewTextBuilder(TextOptions{LabelDir: dir, AxisOrder: tc.order},
				testCategories, NewIDGenerator(0))

			anns, err := b.Annotations(context.Background(), img)
			require.NoError(t, err)
			require.Len(t, anns, 1)

			assert.Equal(t, 3, anns[0].ImageID)
			assert.Equal(t, 1, anns[0].CategoryID)
			assert.Equal(t, [][]float64{tc.seg}, anns[0].Segmentation)
			assert.Equal(t, tc.bbox, anns[0].BBox)
			assert.Equal(t, tc.bbox[2]*tc.bbox[3], anns[0].Area)
		})
	}
}

func TestTextBuilderLines(t *testing.T) {

	dir := t.TempDir()
	writeFile(t, dir, "multi.txt",
		"0 0.1 0.1 0.2 0.2 0.3 0.1\n\n   \n1 0.5 0.5 0.6 0.6 0.7 0.5\r\n")

	ids := NewIDGenerator(7)
	b := NewTextBuilder(TextOptions{LabelDir: dir}, testCategories, ids)

	anns, err := b.Annotations(context.Background(),
		Image{ID: 1, FileName: "multi.jpg", Width: 10, Height: 10})
	require.NoError(t, err)
	require.Len(t, anns, 2)

	assert.Equal(t, 7, anns[0].ID)
	assert.Equal(t, 8, anns[1].ID)
	assert.Equal(t, 0, anns[0].CategoryID)
	assert.Equal(t, 1, anns[1].CategoryID)

	// the id sequence continues on the next image
	assert.Equal(t, 9, ids.Next())
}

func TestTextBuilderLongLine(t *testing.T) {

	dir := t.TempDir()

	// a dense polygon well beyond the default scanner token size
	var sb strings.Builder
	sb.WriteString("1")

	points := 4000

	for i := 0; i < points; i++ {
		fmt.Fprintf(&sb, " 0.%06d 0.%06d", 100000+i*100, 500000)
	}

	sb.WriteString("\n")
	require.Greater(t, sb.Len(), 64*1024)

	writeFile(t, dir, "dense.txt", sb.String())

	b := NewTextBuilder(TextOptions{LabelDir: dir}, testCategories, NewIDGenerator(0))

	anns, err := b.Annotations(context.Background(),
		Image{FileName: "dense.jpg", Width: 1000, Height: 1000})
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Len(t, anns[0].Segmentation[0], points*2)
	assert.Equal(t, 1, anns[0].CategoryID)
}

func TestTextBuilderEmptyLabelFile(t *testing.T) {

	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "")

	b := NewTextBuilder(TextOptions{LabelDir: dir}, testCategories, NewIDGenerator(0))

	anns, err := b.Annotations(context.Background(),
		Image{FileName: "empty.jpg", Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Empty(t, anns)
}

func TestTextBuilderMalformed(t *testing.T) {

	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "non numeric category",
			content: "cat 0.1 0.1 0.2 0.2",
			errText: "invalid category id",
		},
		{
			name:    "unknown category",
			content: "5 0.1 0.1 0.2 0.2",
			errText: "unknown category id 5",
		},
		{
			name:    "non numeric coordinate",
			content: "0 0.1 x 0.2 0.2",
			errText: "position 2",
		},
		{
			name:    "odd coordinate count",
			content: "0 0.1 0.1 0.2",
			errText: "x,y pairs",
		},
		{
			name:    "nan coordinate",
			content: "0 NaN 0.1 0.1 0.9 0.9 0.9",
			errText: "non finite coordinate",
		},
		{
			name:    "infinite coordinate",
			content: "0 0.1 0.1 Inf 0.9 0.9 0.9",
			errText: "non finite coordinate",
		},
		{
			name:    "coordinate overflowing pixel range",
			content: "0 0.1 0.1 0.1 0.9 0.9 0.9 1e300 0.1",
			errText: "out of pixel range",
		},
		{
			name:    "category only",
			content: "0",
			errText: "no polygon points",
		},
		{
			name:    "error on later line",
			content: "0 0.1 0.1 0.2 0.2\n0 0.1",
			errText: "line 2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "bad.txt", tc.content)

			b := NewTextBuilder(TextOptions{LabelDir: dir}, testCategories, NewIDGenerator(0))

			_, err := b.Annotations(context.Background(),
				Image{FileName: "bad.jpg", Width: 10, Height: 10})
			require.ErrorIs(t, err, ErrInputFormat)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestTextBuilderMissingLabel(t *testing.T) {

	dir := t.TempDir()
	img := Image{FileName: "nolabel.jpg", Width: 10, Height: 10}

	b := NewTextBuilder(TextOptions{LabelDir: dir}, testCategories, NewIDGenerator(0))
	_, err := b.Annotations(context.Background(), img)
	require.ErrorIs(t, err, ErrInputFormat)
	assert.Contains(t, err.Error(), "nolabel.jpg")

	b = NewTextBuilder(TextOptions{LabelDir: dir, OnMissing: Skip}, testCategories, NewIDGenerator(0))
	anns, err := b.Annotations(context.Background(), img)
	require.NoError(t, err)
	assert.Empty(t, anns)
}

func TestTextBuilderLabelPath(t *testing.T) {

	b := NewTextBuilder(TextOptions{LabelDir: "labels"}, testCategories, NewIDGenerator(0))
	assert.Equal(t, filepath.Join("labels", "img.001.txt"), b.LabelPath("img.001.jpg"))

	b = NewTextBuilder(TextOptions{LabelDir: "labels", LabelExt: "lbl"}, testCategories,
		NewIDGenerator(0))
	assert.Equal(t, filepath.Join("labels", "a.lbl"), b.LabelPath("a.png"))
}
