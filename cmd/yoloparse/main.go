// Command yoloparse decodes raw YOLOv7 output tensors dumped to disk.
//
// Each input file holds little-endian float32 values in row-major order, as
// written by numpy's tofile() or a Triton raw output dump.
//
// Usage:
//
//	yoloparse -shape 1,25200,85 -config parser.yaml frame-0001.bin frame-0002.bin
//	yoloparse -shape 1,25200,85 ./dumps/
//
// Directories are expanded to their .bin, .raw and .f32 files in frame order.
package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/nvr-ai/go-yoloparse/config"
	"github.com/nvr-ai/go-yoloparse/logging"
	"github.com/nvr-ai/go-yoloparse/metrics"
	"github.com/nvr-ai/go-yoloparse/models"
	"github.com/nvr-ai/go-yoloparse/models/postprocess"
	"github.com/nvr-ai/go-yoloparse/models/yolov7"
	"github.com/nvr-ai/go-yoloparse/tensors"
	"github.com/nvr-ai/go-yoloparse/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// labeledObject is an Object plus its class name, as printed.
type labeledObject struct {
	postprocess.Object
	Label string `json:"label,omitempty"`
}

// frameResult is one line of output per input file.
type frameResult struct {
	File    string          `json:"file"`
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Objects []labeledObject `json:"objects"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code: 0 when every
// frame parsed, 1 when a frame or the setup failed, 2 on usage errors.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("yoloparse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configFile = fs.String("config", "", "Path to parser configuration file (YAML)")
		envFile    = fs.String("env", "", "Optional .env file with YOLOPARSE_* overrides")
		shapeFlag  = fs.String("shape", "1,25200,85", "Output tensor shape, comma separated")
		parserName = fs.String("parser", models.CustomParseFuncName, "Registered parse function name")
		labels     = fs.Bool("labels", true, "Add class names to the output")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: yoloparse [flags] tensor.bin [tensor.bin...]")
		fs.PrintDefaults()
		return 2
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(*configFile, envFiles...)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.NewWithOutput(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}

	shape, err := parseShape(*shapeFlag)
	if err != nil {
		logger.Errorf("Invalid -shape: %v", err)
		return 2
	}

	params, err := cfg.DetectionParams()
	if err != nil {
		logger.Errorf("Invalid thresholds: %v", err)
		return 1
	}

	recorder := metrics.New()
	parse, err := newParseFunc(*parserName, cfg, logger, recorder)
	if err != nil {
		logger.Errorf("Failed to create parser: %v", err)
		return 1
	}

	paths, err := util.ExpandTensorPaths(fs.Args())
	if err != nil {
		logger.Errorf("Failed to list inputs: %v", err)
		return 1
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)

	failed := 0
	for _, path := range paths {
		log := logger.WithFields(logrus.Fields{"trace_id": uuid.NewString(), "file": path})

		result := frameResult{File: path, Objects: []labeledObject{}}
		buf, err := readTensor(path)
		if err != nil {
			log.WithError(err).Error("failed to read tensor")
			result.Error = err.Error()
		} else {
			var objects []postprocess.Object
			layers := []tensors.Layer{{Name: path, Buffer: buf, Shape: shape}}
			result.OK = parse(layers, cfg.Frame(), params, &objects)
			if !result.OK {
				result.Error = "output could not be parsed"
			}
			for _, o := range objects {
				lo := labeledObject{Object: o}
				if *labels {
					lo.Label = models.LookupName(cfg.Thresholds.Family, o.Class)
				}
				result.Objects = append(result.Objects, lo)
			}
			log.WithField("objects", len(objects)).Debug("frame done")
		}

		if !result.OK {
			failed++
		}
		if err := enc.Encode(result); err != nil {
			logger.Errorf("Failed to write result: %v", err)
			return 1
		}
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.WithError(err).Error("failed to write metrics")
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// newParseFunc binds the built-in YOLOv7 parser to this run's logger and
// recorder, and resolves any other name through the default registry.
func newParseFunc(
	name string,
	cfg *config.Config,
	logger *logrus.Logger,
	recorder *metrics.Recorder,
) (models.ParseFunc, error) {
	if name != models.CustomParseFuncName && name != string(models.ModelNameYOLOv7) {
		return models.NewParser(name)
	}

	options := cfg.ParserOptions()
	p, err := yolov7.NewParser(yolov7.NewParserArgs{
		Options:  &options,
		Logger:   logger,
		Recorder: recorder,
	})
	if err != nil {
		return nil, err
	}

	registry := models.NewRegistry()
	if err := registry.Register(name, p.ParseInto); err != nil {
		return nil, err
	}
	return registry.Lookup(name)
}

func parseShape(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "dimension %q", p)
		}
		shape = append(shape, d)
	}
	return shape, nil
}

// readTensor reads a file of little-endian float32 values.
func readTensor(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, errors.Errorf("%s: size %d is not a multiple of 4", path, len(data))
	}

	buf := make([]float32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, buf); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return buf, nil
}
