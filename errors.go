package yolo2coco

import (
	"errors"
	"fmt"
	"strings"

	"github.com/swdee/go-yolo2coco/geometry"
)

var (
	// ErrInputFormat is returned for a missing or malformed class list or
	// label file
	ErrInputFormat = errors.New("input format error")
	// ErrImageDecode is returned when an image file can not be decoded
	ErrImageDecode = errors.New("image decode error")
	// ErrPredictor wraps failures from the detection model
	ErrPredictor = errors.New("predictor error")
	// ErrGeometry is returned when coordinates can not form a polygon
	ErrGeometry = geometry.ErrGeometry
	// ErrReference is returned when an annotation references an image or
	// category that does not exist in the dataset
	ErrReference = errors.New("dangling reference")
)

// Stage is one of the sequential build phases of a conversion run
type Stage string

const (
	StageCategories  Stage = "categories"
	StageImages      Stage = "images"
	StageAnnotations Stage = "annotations"
)

// FileError records the file an error relates to
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// StageError is returned by Converter.Run and identifies the stage and file
// that failed
type StageError struct {
	Stage Stage
	File  string
	Err   error
}

func (e *StageError) Error() string {

	if e.File == "" {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}

	// avoid repeating the file name when the wrapped error already leads
	// with it
	msg := e.Err.Error()

	if strings.HasPrefix(msg, e.File+": ") {
		return fmt.Sprintf("stage %s: %s", e.Stage, msg)
	}

	return fmt.Sprintf("stage %s: %s: %s", e.Stage, e.File, msg)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// newStageError wraps err for the given stage, taking the file name from a
// FileError in the chain if there is one
func newStageError(stage Stage, file string, err error) *StageError {

	var fe *FileError

	if errors.As(err, &fe) {
		file = fe.File
	}

	return &StageError{Stage: stage, File: file, Err: err}
}

// FailurePolicy selects what happens when a single input can not be used
type FailurePolicy int

const (
	// Abort stops the run with an error
	Abort FailurePolicy = iota
	// Skip logs a warning and continues with the next input
	Skip
)

// String returns the configuration name of the policy
func (p FailurePolicy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	}

	return fmt.Sprintf("FailurePolicy(%d)", int(p))
}

// ParseFailurePolicy returns the FailurePolicy for the given configuration
// name
func ParseFailurePolicy(s string) (FailurePolicy, error) {

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	}

	return Abort, fmt.Errorf("unknown failure policy %q, expected abort or skip", s)
}
