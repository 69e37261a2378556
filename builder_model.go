package yolo2coco

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/swdee/go-yolo2coco/geometry"
)

// Detection is a single object found by a Predictor
type Detection struct {
	// Class is the index of the object class in the class list
	Class int
	// Box is the detection box in pixel units of the source image
	Box geometry.CenterBox
	// Polygons is the outline of the segment mask in pixel units of the
	// source image.  It is empty when the model produced no mask for the
	// object
	Polygons [][]geometry.PointF
}

// Predictor runs an object detection model on an image file
type Predictor interface {
	Predict(ctx context.Context, imagePath string) ([]Detection, error)
}

// ModelOptions configures a ModelBuilder
type ModelOptions struct {
	// ImageDir is the directory the catalogued image files are read from
	ImageDir string
	// Precision is the number of decimal places segmentation coordinates
	// are rounded to
	Precision int
	// MaskOffset grows (or shrinks when negative) each mask polygon by the
	// given number of pixels.  Zero keeps the polygons as predicted
	MaskOffset float64
	// BoxOnly emits an annotation with an empty segmentation for detections
	// without a mask instead of dropping them
	BoxOnly bool
}

// DefaultPrecision is the number of decimal places mask coordinates are
// rounded to
const DefaultPrecision = 3

// MaxDetections is the most objects a Predictor may report for one image,
// segment masks label each object with a single byte
const MaxDetections = 255

// ModelBuilder builds annotations from the output of a segmentation model
type ModelBuilder struct {
	opts       ModelOptions
	predictor  Predictor
	categories map[int]struct{}
	ids        *IDGenerator
}

// NewModelBuilder returns a ModelBuilder running predictor over each image
func NewModelBuilder(opts ModelOptions, predictor Predictor, cats []Category,
	ids *IDGenerator) *ModelBuilder {

	if opts.Precision <= 0 {
		opts.Precision = DefaultPrecision
	}

	return &ModelBuilder{
		opts:       opts,
		predictor:  predictor,
		categories: categorySet(cats),
		ids:        ids,
	}
}

// Annotations implements Builder.  The bounding box is taken from the model
// box output rather than derived from the mask.  Detections without a mask
// polygon are dropped unless BoxOnly is set, so an image where the model
// produced no masks yields no annotations
func (b *ModelBuilder) Annotations(ctx context.Context, img Image) ([]Annotation, error) {

	dets, err := b.predictor.Predict(ctx, filepath.Join(b.opts.ImageDir, img.FileName))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPredictor, err)
	}

	anns := make([]Annotation, 0, len(dets))
	dropped := 0

	for _, det := range dets {
		if _, ok := b.categories[det.Class]; !ok {
			return nil, fmt.Errorf("%w: model returned class id %d not in the class list",
				ErrPredictor, det.Class)
		}

		seg := b.segmentation(det.Polygons)

		if len(seg) == 0 && !b.opts.BoxOnly {
			dropped++
			continue
		}

		box := det.Box.TopLeft()

		anns = append(anns, Annotation{
			ID:           b.ids.Next(),
			ImageID:      img.ID,
			CategoryID:   det.Class,
			BBox:         box.XYWH(),
			Area:         box.Area(),
			Segmentation: seg,
		})
	}

	if dropped > 0 {
		GetLogger().Debug("dropped detections without mask",
			"image", img.FileName, "dropped", dropped, "detections", len(dets))
	}

	return anns, nil
}

// segmentation flattens the mask polygons of a detection, applying the mask
// offset if configured
func (b *ModelBuilder) segmentation(polys [][]geometry.PointF) [][]float64 {

	seg := make([][]float64, 0, len(polys))

	for _, poly := range polys {
		if len(poly) == 0 {
			continue
		}

		if b.opts.MaskOffset == 0 {
			seg = append(seg, geometry.FlattenRounded(poly, b.opts.Precision))
			continue
		}

		for _, grown := range geometry.Offset(geometry.ToPoints(poly), b.opts.MaskOffset) {
			seg = append(seg, geometry.FlattenRounded(geometry.ToPointsF(grown), b.opts.Precision))
		}
	}

	return seg
}
