package geometry

import (
	"fmt"
	"math"
	"strconv"
)

// MaxPixel bounds the magnitude of a scaled coordinate so box arithmetic on
// the result can not overflow
const MaxPixel = math.MaxInt32

// ParseNormalized parses the coordinate fields of a YOLO label line.  NaN and
// infinite values are rejected
func ParseNormalized(fields []string) ([]float64, error) {

	coords := make([]float64, len(fields))

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)

		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q at position %d: %w", f, i+1, err)
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non finite coordinate %q at position %d",
				ErrGeometry, f, i+1)
		}

		coords[i] = v
	}

	return coords, nil
}

// NormalizedToPixel scales a flat list of normalized coordinates to pixel
// units.  Elements alternate between the two image dimensions starting with
// the one selected by order, and each value is rounded up to the next whole
// pixel.  A value that is not finite or scales beyond MaxPixel is an error.
func NormalizedToPixel(points []float64, size Size, order AxisOrder) ([]int, error) {

	even := float64(size.Width)
	odd := float64(size.Height)

	if order == HeightFirst {
		even, odd = odd, even
	}

	pixels := make([]int, len(points))

	for i, p := range points {
		scale := even

		if i%2 == 1 {
			scale = odd
		}

		v := math.Ceil(p * scale)

		if math.IsNaN(v) || math.Abs(v) > MaxPixel {
			return nil, fmt.Errorf("%w: coordinate %g at position %d is out of pixel range",
				ErrGeometry, p, i+1)
		}

		pixels[i] = int(v)
	}

	return pixels, nil
}
