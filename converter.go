package yolo2coco

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// PredictorFactory creates the Predictor used in ModeFromModel.  It is
// called at the start of the annotations stage with the loaded categories,
// so the model is only loaded once the catalog stages have been persisted
type PredictorFactory func(cats []Category) (Predictor, error)

// Options configures a Converter
type Options struct {
	// ClassesFile is the class list, one class name per line
	ClassesFile string
	// ImageDir is the directory of source images
	ImageDir string
	// OutputPath is the COCO annotation file to write
	OutputPath string
	// Mode selects the annotation source
	Mode Mode
	// Catalog configures the image catalog
	Catalog CatalogOptions
	// Text configures the label file source used in ModeFromText
	Text TextOptions
	// Model configures the model source used in ModeFromModel
	Model ModelOptions
	// NewPredictor creates the model used in ModeFromModel.  If the returned
	// Predictor implements io.Closer it is closed when the run finishes
	NewPredictor PredictorFactory
	// ModelFile is the model path NewPredictor loads, reported with errors
	// creating the predictor
	ModelFile string
	// Info is the dataset info block
	Info Info
	// PersistEachImage writes the dataset after each image of the
	// annotations stage instead of once at the end of the stage
	PersistEachImage bool
}

// Converter runs the categories, images and annotations stages in order and
// persists the dataset after each stage
type Converter struct {
	opts   Options
	writer *Writer
}

// NewConverter returns a Converter for the given options
func NewConverter(opts Options) (*Converter, error) {

	if opts.ClassesFile == "" {
		return nil, errors.New("class list file not set")
	}

	if opts.ImageDir == "" {
		return nil, errors.New("image directory not set")
	}

	if opts.OutputPath == "" {
		return nil, errors.New("output path not set")
	}

	if opts.Mode == ModeFromModel && opts.NewPredictor == nil {
		return nil, errors.New("mode from-model requires a predictor")
	}

	if opts.Model.ImageDir == "" {
		opts.Model.ImageDir = opts.ImageDir
	}

	if opts.Info == (Info{}) {
		opts.Info = NewInfo(time.Now())
	}

	return &Converter{
		opts:   opts,
		writer: NewWriter(opts.OutputPath),
	}, nil
}

// Writer returns the writer the dataset is persisted with
func (c *Converter) Writer() *Writer {
	return c.writer
}

// Run executes all stages.  On failure the returned error is a *StageError
// and the output file holds the dataset as of the last completed stage; the
// partially built dataset is returned as well
func (c *Converter) Run(ctx context.Context) (*Dataset, error) {

	log := GetLogger()
	start := time.Now()
	ds := NewDataset(c.opts.Info)

	// categories
	cats, err := LoadCategories(c.opts.ClassesFile)

	if err != nil {
		return ds, newStageError(StageCategories, c.opts.ClassesFile, err)
	}

	ds.AddCategories(cats...)

	if err := c.persist(StageCategories, ds); err != nil {
		return ds, err
	}

	log.Info("categories stage complete", "categories", len(ds.Categories))

	// images
	if err := ctx.Err(); err != nil {
		return ds, newStageError(StageImages, c.opts.ImageDir, err)
	}

	imgs, err := BuildImages(c.opts.ImageDir, c.opts.Catalog)

	if err != nil {
		return ds, newStageError(StageImages, c.opts.ImageDir, err)
	}

	ds.AddImages(imgs...)

	if err := c.persist(StageImages, ds); err != nil {
		return ds, err
	}

	log.Info("images stage complete", "images", len(ds.Images))

	// annotations
	if err := c.annotate(ctx, ds); err != nil {
		return ds, err
	}

	log.Info("annotations stage complete", "annotations", len(ds.Annotations),
		"output", c.writer.Path(), "duration", time.Since(start).String())

	return ds, nil
}

// annotate runs the annotations stage
func (c *Converter) annotate(ctx context.Context, ds *Dataset) error {

	log := GetLogger()
	ids := NewIDGenerator(0)

	var builder Builder

	switch c.opts.Mode {
	case ModeFromText:
		builder = NewTextBuilder(c.opts.Text, ds.Categories, ids)

	case ModeFromModel:
		predictor, perr := c.opts.NewPredictor(ds.Categories)

		if perr != nil {
			return newStageError(StageAnnotations, c.opts.ModelFile,
				fmt.Errorf("%w: error creating predictor: %w", ErrPredictor, perr))
		}

		if closer, ok := predictor.(io.Closer); ok {
			defer func() {
				if cerr := closer.Close(); cerr != nil {
					log.Error("error closing predictor", "error", cerr)
				}
			}()
		}

		builder = NewModelBuilder(c.opts.Model, predictor, ds.Categories, ids)

	default:
		return newStageError(StageAnnotations, "",
			fmt.Errorf("unsupported mode %s", c.opts.Mode))
	}

	for i, img := range ds.Images {
		if err := ctx.Err(); err != nil {
			return newStageError(StageAnnotations, img.FileName, err)
		}

		anns, err := builder.Annotations(ctx, img)

		if err != nil {
			return newStageError(StageAnnotations, img.FileName, err)
		}

		ds.AddAnnotations(anns...)

		log.Debug("annotated image", "image", img.FileName,
			"annotations", len(anns), "progress", fmt.Sprintf("%d/%d", i+1, len(ds.Images)))

		if c.opts.PersistEachImage {
			if err := c.persist(StageAnnotations, ds); err != nil {
				return err
			}
		}
	}

	if err := ds.Validate(); err != nil {
		return newStageError(StageAnnotations, "", err)
	}

	return c.persist(StageAnnotations, ds)
}

// persist writes the dataset, wrapping any failure as a StageError
func (c *Converter) persist(stage Stage, ds *Dataset) error {

	if err := c.writer.Write(ds); err != nil {
		return newStageError(stage, c.writer.Path(), err)
	}

	return nil
}
