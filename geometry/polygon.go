package geometry

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats/scalar"
)

// PointF is a polygon vertex in floating point pixel coordinates
type PointF struct {
	X float64
	Y float64
}

// Pairs groups a flat [x1, y1, x2, y2, ...] list into points
func Pairs(flat []int) ([]image.Point, error) {

	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("%w: %d coordinates do not form x,y pairs",
			ErrGeometry, len(flat))
	}

	points := make([]image.Point, 0, len(flat)/2)

	for i := 0; i < len(flat); i += 2 {
		points = append(points, image.Pt(flat[i], flat[i+1]))
	}

	return points, nil
}

// BoundingBox returns the minimum axis aligned rectangle covering all polygon
// vertices.  Degenerate polygons (no points, a single point, or collinear
// points) produce a zero width and/or zero height box rather than an error
func BoundingBox(points []image.Point) Box {

	if len(points) == 0 {
		return Box{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY

	for _, pt := range points[1:] {
		minX = min(minX, pt.X)
		minY = min(minY, pt.Y)
		maxX = max(maxX, pt.X)
		maxY = max(maxY, pt.Y)
	}

	return GenerateBoxByTlbr(minX, minY, maxX, maxY)
}

// Flatten converts points to a flat [x1, y1, x2, y2, ...] COCO segmentation
// polygon
func Flatten(points []image.Point) []float64 {

	flat := make([]float64, 0, len(points)*2)

	for _, pt := range points {
		flat = append(flat, float64(pt.X), float64(pt.Y))
	}

	return flat
}

// FlattenRounded converts floating point vertices to a flat COCO segmentation
// polygon with each value rounded to the given number of decimal places.
// Halfway values round to even
func FlattenRounded(poly []PointF, places int) []float64 {

	flat := make([]float64, 0, len(poly)*2)

	for _, pt := range poly {
		flat = append(flat, Round(pt.X, places), Round(pt.Y, places))
	}

	return flat
}

// Round rounds v to the given number of decimal places, halfway values round
// to even
func Round(v float64, places int) float64 {
	return scalar.RoundEven(v, places)
}

// ToPoints rounds floating point vertices to the nearest whole pixel
func ToPoints(poly []PointF) []image.Point {

	points := make([]image.Point, len(poly))

	for i, pt := range poly {
		points[i] = image.Pt(int(scalar.Round(pt.X, 0)), int(scalar.Round(pt.Y, 0)))
	}

	return points
}

// ToPointsF converts whole pixel vertices to floating point vertices
func ToPointsF(points []image.Point) []PointF {

	poly := make([]PointF, len(points))

	for i, pt := range points {
		poly[i] = PointF{X: float64(pt.X), Y: float64(pt.Y)}
	}

	return poly
}
