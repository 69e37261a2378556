/*
Package geometry converts YOLO style coordinates into the pixel space values
stored in COCO annotations.

YOLO label files store polygon vertices as fractions of the image dimensions
while COCO expects absolute pixel coordinates, an axis aligned bounding box
in (x, y, width, height) form and the box area.  Model output on the other
hand provides boxes in (center x, center y, width, height) form.  The
functions here convert between these representations.
*/
package geometry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGeometry is returned when a coordinate list can not be interpreted as
// a polygon
var ErrGeometry = errors.New("geometry error")

// Size is the pixel size of an image
type Size struct {
	Width  int
	Height int
}

// AxisOrder selects which image dimension is used to scale each element of
// a flat normalized coordinate list
type AxisOrder int

const (
	// WidthFirst scales even indexed elements by the image width and odd
	// indexed elements by the image height, ie: x,y pairs
	WidthFirst AxisOrder = iota
	// HeightFirst scales even indexed elements by the image height and odd
	// indexed elements by the image width.  Datasets produced by earlier
	// conversions that transposed the scaling need this to be reproduced
	// bit for bit
	HeightFirst
)

// String returns the configuration name of the axis order
func (a AxisOrder) String() string {
	switch a {
	case WidthFirst:
		return "width-first"
	case HeightFirst:
		return "height-first"
	}

	return fmt.Sprintf("AxisOrder(%d)", int(a))
}

// ParseAxisOrder returns the AxisOrder for the given configuration name
func ParseAxisOrder(s string) (AxisOrder, error) {

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "width-first":
		return WidthFirst, nil
	case "height-first":
		return HeightFirst, nil
	}

	return WidthFirst, fmt.Errorf("unknown axis order %q, expected width-first or height-first", s)
}
