// Package yolov7 - YOLOv7 output tensor parser.
package yolov7

import (
	"io"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// ChannelsProcessed is the row width of the post-processed format:
	// [x1, y1, x2, y2, confidence, classId].
	ChannelsProcessed = 6
	// ChannelsRaw is the row width of the raw format:
	// [cx, cy, w, h, objectness, p0..p79].
	ChannelsRaw = 85
	// RawClasses is the length of the per-class probability vector in the raw format.
	RawClasses = ChannelsRaw - 5

	// DefaultObjectnessFloor is the objectness below which raw rows are skipped.
	DefaultObjectnessFloor float32 = 0.1
)

// Options is the options for the YOLOv7 parser.
type Options struct {
	// ObjectnessFloor skips raw-format rows whose objectness is below it.
	// It is independent of the per-class threshold table.
	ObjectnessFloor float32 `json:"objectnessFloor" yaml:"objectnessFloor"`
}

// DefaultOptions returns the options the parser uses when none are given.
func DefaultOptions() Options {
	return Options{
		ObjectnessFloor: DefaultObjectnessFloor,
	}
}

// Recorder receives per-call parse statistics.
type Recorder interface {
	// ObserveParse is called once per successful call.
	ObserveParse(format string, rows, rejected, dropped, objects int)
	// ObserveFailure is called once per failed call with the failure reason.
	ObserveFailure(reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveParse(string, int, int, int, int) {}
func (nopRecorder) ObserveFailure(string)                   {}

// NewParserArgs is the arguments for creating a new parser.
type NewParserArgs struct {
	// Options overrides DefaultOptions when non-nil.
	Options *Options
	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger logrus.FieldLogger
	// Recorder receives parse statistics. Defaults to a no-op.
	Recorder Recorder
}

// Parser decodes YOLOv7 output layers into objects.
//
// A Parser holds no per-call state and may be shared between goroutines.
type Parser struct {
	options  Options
	log      logrus.FieldLogger
	recorder Recorder
}

// NewParser creates a new parser.
//
// Arguments:
//   - args: The arguments for creating a new parser.
//
// Returns:
//   - The parser.
//   - An error if the options are out of range.
func NewParser(args NewParserArgs) (*Parser, error) {
	options := DefaultOptions()
	if args.Options != nil {
		options = *args.Options
	}

	if math32.IsNaN(options.ObjectnessFloor) || options.ObjectnessFloor < 0 || options.ObjectnessFloor > 1 {
		return nil, errors.Errorf("objectness floor must be within [0, 1], got %v", options.ObjectnessFloor)
	}

	logger := args.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	recorder := args.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Parser{
		options:  options,
		log:      logger.WithField("parser", "yolov7"),
		recorder: recorder,
	}, nil
}

// Options returns the options of the parser.
func (p *Parser) Options() Options {
	return p.options
}
