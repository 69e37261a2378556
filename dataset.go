package yolo2coco

import (
	"fmt"
	"time"
)

// Info is the COCO dataset info block
type Info struct {
	Year        int    `json:"year"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Contributor string `json:"contributor"`
	URL         string `json:"url"`
	DateCreated string `json:"date_created"`
}

// NewInfo returns an Info block with version 1.0 created at the given time
func NewInfo(created time.Time) Info {
	return Info{
		Year:        created.Year(),
		Version:     "1.0",
		DateCreated: created.Format(time.RFC3339),
	}
}

// Category is an object class.  ID is the 0-based position of the class in
// the class list
type Category struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory"`
}

// Image is a source image.  ID is the position of the image in the sorted
// image catalog
type Image struct {
	ID         int       `json:"id"`
	License    int       `json:"license"`
	FileName   string    `json:"file_name"`
	Height     int       `json:"height"`
	Width      int       `json:"width"`
	CapturedAt time.Time `json:"date_captured"`
}

// Crowd is the COCO iscrowd flag, serialized as 0 or 1
type Crowd bool

// MarshalJSON implements json.Marshaler
func (c Crowd) MarshalJSON() ([]byte, error) {
	if c {
		return []byte("1"), nil
	}

	return []byte("0"), nil
}

// UnmarshalJSON implements json.Unmarshaler and accepts 0/1 or true/false
func (c *Crowd) UnmarshalJSON(b []byte) error {

	switch string(b) {
	case "0", "false":
		*c = false
	case "1", "true":
		*c = true
	default:
		return fmt.Errorf("invalid iscrowd value %s", b)
	}

	return nil
}

// Annotation is a single labeled shape on an image
type Annotation struct {
	ID         int    `json:"id"`
	ImageID    int    `json:"image_id"`
	CategoryID int    `json:"category_id"`
	BBox       [4]int `json:"bbox"`
	Area       int    `json:"area"`
	// Segmentation holds one or more polygons, each a flat
	// [x1, y1, x2, y2, ...] list of pixel coordinates
	Segmentation [][]float64 `json:"segmentation"`
	IsCrowd      Crowd       `json:"iscrowd"`
}

// Dataset is the COCO annotation collection built up over the conversion
// stages.  Records are only ever appended
type Dataset struct {
	Info        Info         `json:"info"`
	Categories  []Category   `json:"categories"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
}

// NewDataset returns an empty dataset with the given info block
func NewDataset(info Info) *Dataset {
	return &Dataset{
		Info:        info,
		Categories:  make([]Category, 0),
		Images:      make([]Image, 0),
		Annotations: make([]Annotation, 0),
	}
}

// AddCategories appends categories to the dataset
func (d *Dataset) AddCategories(cats ...Category) {
	d.Categories = append(d.Categories, cats...)
}

// AddImages appends images to the dataset
func (d *Dataset) AddImages(imgs ...Image) {
	d.Images = append(d.Images, imgs...)
}

// AddAnnotations appends annotations to the dataset
func (d *Dataset) AddAnnotations(anns ...Annotation) {
	d.Annotations = append(d.Annotations, anns...)
}

// Validate checks every annotation references an existing image and
// category
func (d *Dataset) Validate() error {

	images := make(map[int]struct{}, len(d.Images))

	for _, img := range d.Images {
		images[img.ID] = struct{}{}
	}

	cats := categorySet(d.Categories)

	for _, ann := range d.Annotations {
		if _, ok := images[ann.ImageID]; !ok {
			return fmt.Errorf("%w: annotation %d references unknown image %d",
				ErrReference, ann.ID, ann.ImageID)
		}

		if _, ok := cats[ann.CategoryID]; !ok {
			return fmt.Errorf("%w: annotation %d references unknown category %d",
				ErrReference, ann.ID, ann.CategoryID)
		}
	}

	return nil
}

// categorySet returns the set of category IDs
func categorySet(cats []Category) map[int]struct{} {

	set := make(map[int]struct{}, len(cats))

	for _, c := range cats {
		set[c.ID] = struct{}{}
	}

	return set
}
