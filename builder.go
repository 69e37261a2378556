package yolo2coco

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects where annotations are sourced from
type Mode int

const (
	// ModeFromModel runs a segmentation model over each image
	ModeFromModel Mode = iota
	// ModeFromText reads YOLO polygon label files
	ModeFromText
)

// String returns the command line name of the mode
func (m Mode) String() string {
	switch m {
	case ModeFromModel:
		return "from-model"
	case ModeFromText:
		return "from-txt"
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode for the given command line name
func ParseMode(s string) (Mode, error) {

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "from-model":
		return ModeFromModel, nil
	case "from-txt", "from-text":
		return ModeFromText, nil
	}

	return ModeFromModel, fmt.Errorf("unknown conversion mode %q, expected from-model or from-txt", s)
}

// Builder produces the annotations for a single catalogued image
type Builder interface {
	Annotations(ctx context.Context, img Image) ([]Annotation, error)
}
