// Package config - Parser configuration loaded from YAML and the environment.
package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/nvr-ai/go-yoloparse/logging"
	"github.com/nvr-ai/go-yoloparse/models"
	"github.com/nvr-ai/go-yoloparse/models/postprocess"
	"github.com/nvr-ai/go-yoloparse/models/yolov7"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvNetworkWidth     = "YOLOPARSE_NET_WIDTH"
	EnvNetworkHeight    = "YOLOPARSE_NET_HEIGHT"
	EnvDefaultThreshold = "YOLOPARSE_DEFAULT_THRESHOLD"
	EnvObjectnessFloor  = "YOLOPARSE_OBJECTNESS_FLOOR"
	EnvLogLevel         = "YOLOPARSE_LOG_LEVEL"
	EnvLogFile          = "YOLOPARSE_LOG_FILE"
	EnvMetricsFile      = "YOLOPARSE_METRICS_FILE"
)

// Network is the network input resolution.
type Network struct {
	Width  uint32 `json:"width"  yaml:"width"  validate:"gt=0"`
	Height uint32 `json:"height" yaml:"height" validate:"gt=0"`
}

// Thresholds configures the per-class threshold table.
type Thresholds struct {
	// Family selects the label set class names are resolved against.
	Family models.ModelFamily `json:"family" yaml:"family" validate:"required"`
	// NumClasses is the table length. Zero means the size of the label set.
	NumClasses int `json:"numClasses" yaml:"numClasses" validate:"gte=0"`
	// Default applies to every class not listed in Classes.
	Default float32 `json:"default" yaml:"default" validate:"gte=0,lte=1"`
	// Classes overrides Default by class name.
	Classes map[string]float32 `json:"classes" yaml:"classes" validate:"dive,gte=0,lte=1"`
}

// Config is the complete parser configuration.
type Config struct {
	Network         Network        `json:"network"         yaml:"network"`
	Thresholds      Thresholds     `json:"thresholds"      yaml:"thresholds"`
	ObjectnessFloor float32        `json:"objectnessFloor" yaml:"objectnessFloor" validate:"gte=0,lte=1"`
	Log             logging.Config `json:"log"             yaml:"log"`
	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `json:"metricsFile" yaml:"metricsFile"`
}

// Default returns the configuration for a 640x640 COCO-trained YOLOv7.
func Default() *Config {
	return &Config{
		Network: Network{Width: 640, Height: 640},
		Thresholds: Thresholds{
			Family:  models.ModelFamilyYOLO,
			Default: 0.25,
		},
		ObjectnessFloor: yolov7.DefaultObjectnessFloor,
		Log:             logging.DefaultConfig(),
	}
}

// Load reads the configuration.
//
// Values are layered: defaults, then the YAML file at path (if non-empty),
// then variables from envFiles, then the process environment.
//
// Arguments:
//   - path: Optional YAML file.
//   - envFiles: Optional .env files loaded with godotenv. Existing process
//     variables are not overwritten by them.
//
// Returns:
//   - The validated configuration.
//   - An error if a file cannot be read, a value cannot be parsed, or validation fails.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, errors.Wrap(err, "load env files")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if err := envUint32(EnvNetworkWidth, &c.Network.Width); err != nil {
		return err
	}
	if err := envUint32(EnvNetworkHeight, &c.Network.Height); err != nil {
		return err
	}
	if err := envFloat32(EnvDefaultThreshold, &c.Thresholds.Default); err != nil {
		return err
	}
	if err := envFloat32(EnvObjectnessFloor, &c.ObjectnessFloor); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := os.LookupEnv(EnvMetricsFile); ok {
		c.MetricsFile = v
	}
	return nil
}

func envUint32(key string, dst *uint32) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return errors.Wrapf(err, "parse %s", key)
	}
	*dst = uint32(n)
	return nil
}

func envFloat32(key string, dst *float32) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return errors.Wrapf(err, "parse %s", key)
	}
	*dst = float32(f)
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and that every named class exists in the label set.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if _, err := c.ThresholdTable(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// Frame returns the network frame boxes are clamped into.
func (c *Config) Frame() postprocess.Frame {
	return postprocess.Frame{Width: c.Network.Width, Height: c.Network.Height}
}

// ParserOptions returns the YOLOv7 parser options.
func (c *Config) ParserOptions() yolov7.Options {
	return yolov7.Options{ObjectnessFloor: c.ObjectnessFloor}
}

// ThresholdTable builds the per-class threshold table.
//
// Returns:
//   - A table of NumClasses entries (or the label set size), all Default
//     except the classes named in Classes.
//   - An error if the family is unknown, or a class name is unknown or
//     outside the table.
func (c *Config) ThresholdTable() (postprocess.Thresholds, error) {
	set, err := models.LookupClassSet(c.Thresholds.Family)
	if err != nil {
		return nil, err
	}

	n := c.Thresholds.NumClasses
	if n == 0 {
		n = set.Len()
	}

	table := postprocess.UniformThresholds(n, c.Thresholds.Default)
	for name, threshold := range c.Thresholds.Classes {
		idx, err := set.Index(name)
		if err != nil {
			return nil, err
		}
		if idx >= n {
			return nil, errors.Errorf("class %q (%d) is outside a table of %d classes", name, idx, n)
		}
		table[idx] = threshold
	}
	return table, nil
}

// DetectionParams returns the runtime detection parameters for this configuration.
func (c *Config) DetectionParams() (postprocess.DetectionParams, error) {
	table, err := c.ThresholdTable()
	if err != nil {
		return postprocess.DetectionParams{}, err
	}
	return postprocess.DetectionParams{
		NumClassesConfigured:        len(table),
		PerClassPreclusterThreshold: table,
	}, nil
}
