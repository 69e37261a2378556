package yolo2coco

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// DefaultOutputFile is the annotation file name written to the output
// directory
const DefaultOutputFile = "label.json"

// Writer persists a Dataset as an indented COCO JSON file
type Writer struct {
	path string
}

// NewWriter returns a Writer for the given destination file
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the destination file
func (w *Writer) Path() string {
	return w.path
}

// Write serializes the whole dataset and replaces the destination file.  The
// replacement is atomic, an interrupted write leaves the previous file in
// place.  A newly created file is readable by everyone, an existing file
// keeps its permissions
func (w *Writer) Write(ds *Dataset) error {

	data, err := json.MarshalIndent(ds, "", "    ")

	if err != nil {
		return fmt.Errorf("error encoding dataset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	_, statErr := os.Stat(w.path)
	created := errors.Is(statErr, fs.ErrNotExist)

	if err := atomic.WriteFile(w.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("error writing %s: %w", w.path, err)
	}

	if created {
		if err := os.Chmod(w.path, 0o644); err != nil {
			return fmt.Errorf("error setting permissions on %s: %w", w.path, err)
		}
	}

	return nil
}
