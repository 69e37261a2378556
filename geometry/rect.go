package geometry

// Box represents an axis aligned rectangle in pixel units where X and Y are
// the top-left corner
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewBox creates a new Box with given coordinates
func NewBox(x, y, width, height int) Box {
	return Box{X: x, Y: y, Width: width, Height: height}
}

// GenerateBoxByTlbr creates a Box from its top-left and bottom-right corners
func GenerateBoxByTlbr(left, top, right, bottom int) Box {
	return NewBox(left, top, right-left, bottom-top)
}

// BRX returns the bottom-right x coordinate of the box
func (b Box) BRX() int {
	return b.X + b.Width
}

// BRY returns the bottom-right y coordinate of the box
func (b Box) BRY() int {
	return b.Y + b.Height
}

// Area returns width * height.  The box is not clipped against the image so
// a box partly outside of the image still reports its full area
func (b Box) Area() int {
	return b.Width * b.Height
}

// XYWH returns the box in COCO bbox order
func (b Box) XYWH() [4]int {
	return [4]int{b.X, b.Y, b.Width, b.Height}
}

// CenterBox is a box in (center x, center y, width, height) form as output
// by YOLO models
type CenterBox struct {
	CX     float64
	CY     float64
	Width  float64
	Height float64
}

// CenterBoxFromTlbr creates a CenterBox from top-left and bottom-right corners
func CenterBoxFromTlbr(left, top, right, bottom float64) CenterBox {
	w := right - left
	h := bottom - top

	return CenterBox{
		CX:     left + w/2,
		CY:     top + h/2,
		Width:  w,
		Height: h,
	}
}

// TopLeft converts the box to top-left form.  The width and height are
// truncated to whole pixels first, then the corner is computed from the
// truncated size and truncated itself, values are never rounded
func (c CenterBox) TopLeft() Box {

	w := int(c.Width)
	h := int(c.Height)

	return Box{
		X:      int(c.CX - float64(w)/2),
		Y:      int(c.CY - float64(h)/2),
		Width:  w,
		Height: h,
	}
}
