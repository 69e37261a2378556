// Package config holds the command line tool settings, loaded from defaults,
// an optional YAML file, YOLO2COCO_ environment variables and flags
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	yolo2coco "github.com/swdee/go-yolo2coco"
	"github.com/swdee/go-yolo2coco/geometry"
)

// EnvPrefix is prepended to environment variable names, so the key
// model.box-threshold is read from YOLO2COCO_MODEL_BOX_THRESHOLD
const EnvPrefix = "YOLO2COCO"

// Settings is the full tool configuration
type Settings struct {
	Debug   bool   `mapstructure:"debug"`
	LogFile string `mapstructure:"log-file"`

	Mode        string `mapstructure:"mode"`
	Classes     string `mapstructure:"classes"`
	Output      string `mapstructure:"output"`
	OutputFile  string `mapstructure:"output-file"`
	PersistEach bool   `mapstructure:"persist-each-image"`

	Images ImageSettings `mapstructure:"images"`
	Labels LabelSettings `mapstructure:"labels"`
	Model  ModelSettings `mapstructure:"model"`
	Info   InfoSettings  `mapstructure:"info"`
}

// ImageSettings configures the image catalog
type ImageSettings struct {
	Dir        string   `mapstructure:"dir"`
	Extensions []string `mapstructure:"extensions"`
	// Decoder is header or opencv
	Decoder string `mapstructure:"decoder"`
	OnError string `mapstructure:"on-error"`
}

// LabelSettings configures the YOLO label file source
type LabelSettings struct {
	Dir       string `mapstructure:"dir"`
	Ext       string `mapstructure:"ext"`
	AxisOrder string `mapstructure:"axis-order"`
	OnMissing string `mapstructure:"on-missing"`
}

// ModelSettings configures the segmentation Model source
type ModelSettings struct {
	File           string  `mapstructure:"file"`
	Platform       string  `mapstructure:"platform"`
	BoxThreshold   float32 `mapstructure:"box-threshold"`
	NMSThreshold   float32 `mapstructure:"nms-threshold"`
	MaxObjects     int     `mapstructure:"max-objects"`
	MinContourArea float64 `mapstructure:"min-contour-area"`
	ApproxEpsilon  float64 `mapstructure:"approx-epsilon"`
	MaskOffset     float64 `mapstructure:"mask-offset"`
	Precision      int     `mapstructure:"precision"`
	BoxOnly        bool    `mapstructure:"box-only"`
}

// InfoSettings overrides the dataset info block
type InfoSettings struct {
	Description string `mapstructure:"description"`
	Contributor string `mapstructure:"contributor"`
	URL         string `mapstructure:"url"`
	Version     string `mapstructure:"version"`
}

// SetDefaults sets the default value of every setting
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log-file", "")

	v.SetDefault("mode", "from-model")
	v.SetDefault("classes", "classes.txt")
	v.SetDefault("output", "output/")
	v.SetDefault("output-file", yolo2coco.DefaultOutputFile)
	v.SetDefault("persist-each-image", false)

	v.SetDefault("images.dir", "data/images/")
	v.SetDefault("images.extensions", yolo2coco.DefaultExtensions)
	v.SetDefault("images.decoder", "header")
	v.SetDefault("images.on-error", "abort")

	v.SetDefault("labels.dir", "data/labels/")
	v.SetDefault("labels.ext", ".txt")
	v.SetDefault("labels.axis-order", "width-first")
	v.SetDefault("labels.on-missing", "abort")

	v.SetDefault("model.file", "model.rknn")
	v.SetDefault("model.platform", "rk3588")
	v.SetDefault("model.box-threshold", 0.25)
	v.SetDefault("model.nms-threshold", 0.45)
	v.SetDefault("model.max-objects", 64)
	v.SetDefault("model.min-contour-area", 10.0)
	v.SetDefault("model.approx-epsilon", 1.0)
	v.SetDefault("model.mask-offset", 0.0)
	v.SetDefault("model.precision", yolo2coco.DefaultPrecision)
	v.SetDefault("model.box-only", false)

	v.SetDefault("info.description", "")
	v.SetDefault("info.contributor", "")
	v.SetDefault("info.url", "")
	v.SetDefault("info.version", "1.0")
}

// Load reads the optional YAML config file and environment overrides into
// Settings and validates them.  Flags bound to v before calling Load take
// precedence over both
func Load(v *viper.Viper, configFile string) (*Settings, error) {

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	settings := &Settings{}

	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// Validate checks the enumerated settings
func (s *Settings) Validate() error {

	var errs []error

	if _, err := yolo2coco.ParseMode(s.Mode); err != nil {
		errs = append(errs, err)
	}

	if _, err := geometry.ParseAxisOrder(s.Labels.AxisOrder); err != nil {
		errs = append(errs, err)
	}

	if _, err := yolo2coco.ParseFailurePolicy(s.Labels.OnMissing); err != nil {
		errs = append(errs, fmt.Errorf("labels.on-missing: %w", err))
	}

	if _, err := yolo2coco.ParseFailurePolicy(s.Images.OnError); err != nil {
		errs = append(errs, fmt.Errorf("images.on-error: %w", err))
	}

	switch strings.ToLower(s.Images.Decoder) {
	case "header", "opencv":
	default:
		errs = append(errs, fmt.Errorf("unknown image decoder %q, expected header or opencv",
			s.Images.Decoder))
	}

	if s.Classes == "" {
		errs = append(errs, errors.New("classes file not set"))
	}

	if s.Images.Dir == "" {
		errs = append(errs, errors.New("image directory not set"))
	}

	if s.OutputFile == "" || filepath.Base(s.OutputFile) != s.OutputFile {
		errs = append(errs, fmt.Errorf("output file %q must be a plain file name", s.OutputFile))
	}

	if s.Model.Precision < 1 {
		errs = append(errs, fmt.Errorf("model.precision %d must be at least 1", s.Model.Precision))
	}

	if s.Model.MaxObjects < 1 || s.Model.MaxObjects > yolo2coco.MaxDetections {
		errs = append(errs, fmt.Errorf("model.max-objects %d must be between 1 and %d",
			s.Model.MaxObjects, yolo2coco.MaxDetections))
	}

	return errors.Join(errs...)
}

// OutputPath returns the annotation file path
func (s *Settings) OutputPath() string {
	return filepath.Join(s.Output, s.OutputFile)
}
