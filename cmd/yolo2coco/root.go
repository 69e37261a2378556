package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	yolo2coco "github.com/swdee/go-yolo2coco"
	"github.com/swdee/go-yolo2coco/geometry"
	"github.com/swdee/go-yolo2coco/internal/config"
	"github.com/swdee/go-yolo2coco/internal/logging"
	"github.com/swdee/go-yolo2coco/predictor/rknn"
)

// flagKeys maps command line flags to their configuration key
var flagKeys = map[string]string{
	"mode":             "mode",
	"model":            "model.file",
	"platform":         "model.platform",
	"images":           "images.dir",
	"labels":           "labels.dir",
	"output":           "output",
	"output-file":      "output-file",
	"classes":          "classes",
	"axis-order":       "labels.axis-order",
	"on-missing-label": "labels.on-missing",
	"on-decode-error":  "images.on-error",
	"decoder":          "images.decoder",
	"debug":            "debug",
	"log-file":         "log-file",
}

// rootCommand creates the yolo2coco command
func rootCommand() *cobra.Command {

	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "yolo2coco",
		Short: "Convert YOLO segmentation labels or Model output into a COCO annotation file",
		Long: `yolo2coco builds a COCO annotation file from a class list, a directory of
images and either YOLO polygon label files (--mode from-txt) or a YOLOv8
segmentation Model run on the Rockchip NPU (--mode from-model).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(v, configFile)

			if err != nil {
				return err
			}

			return run(cmd, settings)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "YAML config file")
	flags.StringP("mode", "m", "from-model", "Annotation source [from-model|from-txt]")
	flags.StringP("model", "M", "model.rknn", "RKNN compiled YOLOv8-seg Model file")
	flags.StringP("platform", "p", "rk3588", "Rockchip CPU Model number [rk3562|rk3566|rk3568|rk3576|rk3582|rk3588]")
	flags.StringP("images", "i", "data/images/", "Directory of source images")
	flags.StringP("labels", "l", "data/labels/", "Directory of YOLO label files")
	flags.StringP("output", "o", "output/", "Directory the annotation file is written to")
	flags.String("output-file", yolo2coco.DefaultOutputFile, "Annotation file name")
	flags.StringP("classes", "c", "classes.txt", "Text file containing the class names, one per line")
	flags.String("axis-order", "width-first", "Scaling of normalized label coordinates [width-first|height-first]")
	flags.String("on-missing-label", "abort", "Image without label file [abort|skip]")
	flags.String("on-decode-error", "abort", "Undecodable image [abort|skip]")
	flags.String("decoder", "header", "Image size decoder [header|opencv]")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("log-file", "", "Also write JSON logs to this rotated file")

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("error binding flag %s: %v", flag, err))
		}
	}

	return cmd
}

// run executes a conversion with the loaded settings
func run(cmd *cobra.Command, settings *config.Settings) error {

	log, closeLog, err := logging.New(logging.Options{
		Debug:  settings.Debug,
		Writer: cmd.ErrOrStderr(),
		File:   settings.LogFile,
	})

	if err != nil {
		return err
	}

	defer closeLog()

	yolo2coco.SetLogger(log.With("module", "yolo2coco"))
	rknn.SetLogger(log.With("module", "rknn"))

	opts, err := buildOptions(settings, time.Now())

	if err != nil {
		return err
	}

	log.Info("starting conversion", "mode", opts.Mode.String(),
		"classes", opts.ClassesFile, "images", opts.ImageDir, "output", opts.OutputPath)

	conv, err := yolo2coco.NewConverter(opts)

	if err != nil {
		return err
	}

	ds, err := conv.Run(cmd.Context())

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d categories, %d images, %d annotations to %s\n",
		len(ds.Categories), len(ds.Images), len(ds.Annotations), conv.Writer().Path())

	return nil
}

// buildOptions maps the settings onto converter options
func buildOptions(s *config.Settings, now time.Time) (yolo2coco.Options, error) {

	mode, err := yolo2coco.ParseMode(s.Mode)

	if err != nil {
		return yolo2coco.Options{}, err
	}

	axis, err := geometry.ParseAxisOrder(s.Labels.AxisOrder)

	if err != nil {
		return yolo2coco.Options{}, err
	}

	onMissing, err := yolo2coco.ParseFailurePolicy(s.Labels.OnMissing)

	if err != nil {
		return yolo2coco.Options{}, err
	}

	onDecode, err := yolo2coco.ParseFailurePolicy(s.Images.OnError)

	if err != nil {
		return yolo2coco.Options{}, err
	}

	var decoder yolo2coco.ImageDecoder = yolo2coco.ConfigDecoder{}

	if strings.EqualFold(s.Images.Decoder, "opencv") {
		decoder = rknn.GocvDecoder{}
	}

	info := yolo2coco.NewInfo(now)
	info.Description = s.Info.Description
	info.Contributor = s.Info.Contributor
	info.URL = s.Info.URL

	if s.Info.Version != "" {
		info.Version = s.Info.Version
	}

	opts := yolo2coco.Options{
		ClassesFile: s.Classes,
		ImageDir:    s.Images.Dir,
		OutputPath:  s.OutputPath(),
		Mode:        mode,
		Catalog: yolo2coco.CatalogOptions{
			Extensions: s.Images.Extensions,
			Decoder:    decoder,
			OnError:    onDecode,
		},
		Text: yolo2coco.TextOptions{
			LabelDir:  s.Labels.Dir,
			LabelExt:  s.Labels.Ext,
			AxisOrder: axis,
			OnMissing: onMissing,
		},
		Model: yolo2coco.ModelOptions{
			ImageDir:   s.Images.Dir,
			Precision:  s.Model.Precision,
			MaskOffset: s.Model.MaskOffset,
			BoxOnly:    s.Model.BoxOnly,
		},
		Info:             info,
		PersistEachImage: s.PersistEach,
	}

	if mode == yolo2coco.ModeFromModel {
		opts.NewPredictor = predictorFactory(s.Model)
		opts.ModelFile = s.Model.File
	}

	return opts, nil
}

// predictorFactory loads the RKNN Model sized to the class list
func predictorFactory(m config.ModelSettings) yolo2coco.PredictorFactory {
	return func(cats []yolo2coco.Category) (yolo2coco.Predictor, error) {

		params := rknn.DefaultParams()
		params.Platform = m.Platform
		params.BoxThreshold = m.BoxThreshold
		params.NMSThreshold = m.NMSThreshold
		params.ClassNum = len(cats)
		params.MaxObjects = m.MaxObjects
		params.MinContourArea = m.MinContourArea
		params.ApproxEpsilon = m.ApproxEpsilon

		rknn.GetLogger().Debug("loading model", "file", m.File, "classes", len(cats))

		p, err := rknn.New(m.File, params)

		if err != nil {
			return nil, err
		}

		return p, nil
	}
}
