package rknn

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/swdee/go-yolo2coco/geometry"
)

// MaskPolygons traces the outline of each object in a combined segment mask.
// The mask holds one byte per image pixel where the value is the 1-based
// index of the object covering that pixel, or 0 for background.  The result
// is indexed by object (mask value - 1) and holds the outer contours of that
// object, contours with an area below minArea are dropped as noise from the
// mask upscaling.  When epsilon is greater than zero each contour is
// simplified with the Douglas-Peucker algorithm using epsilon as the maximum
// distance in pixels.
func MaskPolygons(mask []uint8, width, height, count int,
	minArea, epsilon float64) ([][][]geometry.PointF, error) {

	if len(mask) != width*height {
		return nil, fmt.Errorf("mask size %d does not match image %dx%d",
			len(mask), width, height)
	}

	if count > MaxObjects {
		return nil, fmt.Errorf("%d objects exceed the %d a segment mask can label",
			count, MaxObjects)
	}

	polys := make([][][]geometry.PointF, count)

	if count == 0 {
		return polys, nil
	}

	maskMat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8U, mask)

	if err != nil {
		return nil, fmt.Errorf("error creating mask Mat: %w", err)
	}

	defer maskMat.Close()

	objMask := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)
	defer objMask.Close()

	for objID := 1; objID <= count; objID++ {
		polys[objID-1] = objectContours(maskMat, &objMask, objID, minArea, epsilon)
	}

	return polys, nil
}

// objectContours isolates a single object from the combined mask into
// objMask and returns its outer contours
func objectContours(maskMat gocv.Mat, objMask *gocv.Mat, objID int,
	minArea, epsilon float64) [][]geometry.PointF {

	bound := gocv.Scalar{Val1: float64(objID)}
	gocv.InRangeWithScalar(maskMat, bound, bound, objMask)

	contours := gocv.FindContours(*objMask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var out [][]geometry.PointF

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		// filter out small contours picked up from aliasing/noise in binary mask
		if gocv.ContourArea(contour) < minArea {
			continue
		}

		pts := contour.ToPoints()

		if epsilon > 0 {
			approx := gocv.ApproxPolyDP(contour, epsilon, true)
			pts = approx.ToPoints()
			approx.Close()
		}

		// a polygon needs at least three vertices
		if len(pts) < 3 {
			continue
		}

		poly := make([]geometry.PointF, len(pts))

		for j, pt := range pts {
			poly[j] = geometry.PointF{X: float64(pt.X), Y: float64(pt.Y)}
		}

		out = append(out, poly)
	}

	return out
}
