// Package yolov7 - postprocess YOLOv7 model outputs.
package yolov7

import (
	"github.com/nvr-ai/go-yoloparse/models/postprocess"
	"github.com/nvr-ai/go-yoloparse/tensors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMissingInput is returned when no output layer is supplied.
	ErrMissingInput = errors.New("could not find output layer")
	// ErrUnsupportedChannelCount is returned when rows are neither 6 nor 85 values wide.
	ErrUnsupportedChannelCount = errors.New("unsupported channel count")
)

// Failure reasons reported to the Recorder.
const (
	ReasonMissingInput       = "missing_input"
	ReasonUnsupportedLayout  = "unsupported_layout"
	ReasonUnsupportedChannel = "unsupported_channel_count"
	ReasonBufferTooSmall     = "buffer_too_small"
	ReasonUnknown            = "unknown"
)

// FailureReason maps a Parse error to a short, stable reason label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingInput):
		return ReasonMissingInput
	case errors.Is(err, tensors.ErrUnsupportedLayout):
		return ReasonUnsupportedLayout
	case errors.Is(err, ErrUnsupportedChannelCount):
		return ReasonUnsupportedChannel
	case errors.Is(err, tensors.ErrBufferTooSmall):
		return ReasonBufferTooSmall
	default:
		return ReasonUnknown
	}
}

// Parse decodes the first output layer into objects.
//
// Rows that fail their class threshold, or whose clamped box is smaller than
// postprocess.MinBoxSize, are skipped. Objects keep row order.
//
// Arguments:
//   - layers: The output layers. Only the first one is read.
//   - frame: The network frame boxes are clamped into.
//   - thresholds: The per-class confidence table.
//
// Returns:
//   - The decoded objects, possibly empty.
//   - An error if the layer is missing, its layout is not [N, C] or [B, N, C],
//     the channel count is not 6 or 85, or the buffer is shorter than the shape.
func (p *Parser) Parse(
	layers []tensors.Layer,
	frame postprocess.Frame,
	thresholds postprocess.Thresholds,
) ([]postprocess.Object, error) {
	if len(layers) == 0 {
		return nil, p.fail(ErrMissingInput)
	}
	layer := layers[0]

	log := p.log.WithFields(logrus.Fields{
		"layer": layer.Name,
		"dims":  len(layer.Shape),
		"shape": layer.Shape,
	})

	layout, err := tensors.ResolveLayout(layer.Shape)
	if err != nil {
		return nil, p.fail(err)
	}
	if len(layer.Shape) == 3 {
		log = log.WithField("batch", layout.Batch)
	}
	log = log.WithFields(logrus.Fields{
		"size":     layout.Detections,
		"channels": layout.Channels,
	})
	log.Debug("resolved output dimensions")

	f, err := formatFor(layout.Channels, p.options)
	if err != nil {
		return nil, p.fail(err)
	}
	if f.Name() == formatRaw {
		log.Warn("raw output detected, using fallback parsing; model needs a DeepStream output layer")
	}

	view, err := tensors.NewView(layer.Buffer, layout)
	if err != nil {
		return nil, p.fail(err)
	}

	acc := postprocess.NewAccumulator(frame, min(view.Rows(), 256))
	rejected := 0
	for row := 0; row < view.Rows(); row++ {
		c, ok := f.Candidate(view.Row(row), thresholds)
		if !ok {
			rejected++
			continue
		}
		acc.Add(c.rect, c.class, c.confidence)
	}

	p.recorder.ObserveParse(f.Name(), view.Rows(), rejected, acc.Dropped(), acc.Len())
	log.WithFields(logrus.Fields{
		"format":   f.Name(),
		"objects":  acc.Len(),
		"rejected": rejected,
		"dropped":  acc.Dropped(),
	}).Infof("parsed %d objects from %d detections", acc.Len(), view.Rows())

	return acc.Objects(), nil
}

// fail reports a structural failure once and returns it.
func (p *Parser) fail(err error) error {
	reason := FailureReason(err)
	p.recorder.ObserveFailure(reason)
	p.log.WithField("reason", reason).Error(err.Error())
	return err
}

// ParseInto is Parse behind the fixed parse-function signature of the
// hosting runtime.
//
// Arguments:
//   - layers: The output layers. Only the first one is read.
//   - frame: The network frame boxes are clamped into.
//   - params: The detection parameters carrying the per-class thresholds. A
//     NumClassesConfigured that differs from the table length is logged as a warning.
//   - objects: Receives the decoded objects. Emptied on failure.
//
// Returns:
//   - true if the layer was parsed. On false the frame has no authoritative detections.
func (p *Parser) ParseInto(
	layers []tensors.Layer,
	frame postprocess.Frame,
	params postprocess.DetectionParams,
	objects *[]postprocess.Object,
) bool {
	if objects == nil {
		p.log.Error("nil object list")
		return false
	}

	if n := params.NumClassesConfigured; n > 0 && n != len(params.PerClassPreclusterThreshold) {
		p.log.WithFields(logrus.Fields{
			"configured": n,
			"thresholds": len(params.PerClassPreclusterThreshold),
		}).Warn("threshold table does not match configured class count; classes outside the table are rejected")
	}

	parsed, err := p.Parse(layers, frame, params.PerClassPreclusterThreshold)
	if err != nil {
		*objects = (*objects)[:0]
		return false
	}

	*objects = parsed
	return true
}

var defaultParser = func() *Parser {
	p, err := NewParser(NewParserArgs{Logger: logrus.StandardLogger()})
	if err != nil {
		panic(err)
	}
	return p
}()

// ParseYolov7 parses YOLOv7 output with the default options, logging to the
// standard logrus logger.
func ParseYolov7(
	layers []tensors.Layer,
	frame postprocess.Frame,
	params postprocess.DetectionParams,
	objects *[]postprocess.Object,
) bool {
	return defaultParser.ParseInto(layers, frame, params, objects)
}
