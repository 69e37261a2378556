package yolo2coco

import (
	"fmt"
	"image"
	"os"

	// register decoders for image.DecodeConfig
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/swdee/go-yolo2coco/geometry"
)

// ImageDecoder returns the pixel dimensions of an image file
type ImageDecoder interface {
	DecodeSize(path string) (geometry.Size, error)
}

// DecoderFunc adapts a function to the ImageDecoder interface
type DecoderFunc func(path string) (geometry.Size, error)

// DecodeSize calls f(path)
func (f DecoderFunc) DecodeSize(path string) (geometry.Size, error) {
	return f(path)
}

// ConfigDecoder reads only the image header to obtain its dimensions.  It
// handles JPEG, PNG, BMP, TIFF and WebP files
type ConfigDecoder struct{}

// DecodeSize implements ImageDecoder
func (ConfigDecoder) DecodeSize(path string) (geometry.Size, error) {

	f, err := os.Open(path)

	if err != nil {
		return geometry.Size{}, fmt.Errorf("error opening image: %w", err)
	}

	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)

	if err != nil {
		return geometry.Size{}, fmt.Errorf("error decoding image header: %w", err)
	}

	return geometry.Size{Width: cfg.Width, Height: cfg.Height}, nil
}
