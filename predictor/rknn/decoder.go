package rknn

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/swdee/go-yolo2coco/geometry"
)

// GocvDecoder reads image dimensions by fully decoding the file with OpenCV,
// which matches the pixel size the Model sees for formats the header based
// decoder does not handle
type GocvDecoder struct{}

// DecodeSize implements yolo2coco.ImageDecoder
func (GocvDecoder) DecodeSize(path string) (geometry.Size, error) {

	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()

	if img.Empty() {
		return geometry.Size{}, fmt.Errorf("error decoding image %s", path)
	}

	return geometry.Size{Width: img.Cols(), Height: img.Rows()}, nil
}
