package yolov7

import (
	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-yoloparse/images"
	"github.com/nvr-ai/go-yoloparse/models/postprocess"
	"github.com/pkg/errors"
)

const (
	formatProcessed = "processed"
	formatRaw       = "raw"
)

// candidate is a row that passed its class threshold and still needs clamping.
type candidate struct {
	rect       images.Rect
	class      int
	confidence float32
}

// format decodes one row layout. Rows are capacity-limited slices of exactly
// the format's channel count.
type format interface {
	Name() string
	Candidate(row []float32, thresholds postprocess.Thresholds) (candidate, bool)
}

// formatFor selects the row format for a channel count.
func formatFor(channels int, options Options) (format, error) {
	switch channels {
	case ChannelsProcessed:
		return processedFormat{}, nil
	case ChannelsRaw:
		return rawFormat{floor: options.ObjectnessFloor}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedChannelCount,
			"expected %d channels [x1,y1,x2,y2,conf,class] or %d channels [raw], got %d",
			ChannelsProcessed, ChannelsRaw, channels)
	}
}

// processedFormat reads rows of [x1, y1, x2, y2, confidence, classId].
type processedFormat struct{}

func (processedFormat) Name() string {
	return formatProcessed
}

func (processedFormat) Candidate(row []float32, thresholds postprocess.Thresholds) (candidate, bool) {
	confidence := row[4]

	// Compare before converting so huge or NaN ids never reach int().
	id := math32.Floor(row[5])
	if math32.IsNaN(id) || id < 0 || id >= float32(len(thresholds)) {
		return candidate{}, false
	}
	class := int(id)

	if !thresholds.Accepts(class, confidence) {
		return candidate{}, false
	}

	return candidate{
		rect:       images.Rect{X1: row[0], Y1: row[1], X2: row[2], Y2: row[3]},
		class:      class,
		confidence: confidence,
	}, true
}

// rawFormat reads rows of [cx, cy, w, h, objectness, p0..p79].
type rawFormat struct {
	floor float32
}

func (rawFormat) Name() string {
	return formatRaw
}

func (f rawFormat) Candidate(row []float32, thresholds postprocess.Thresholds) (candidate, bool) {
	objectness := row[4]
	if objectness < f.floor || math32.IsNaN(objectness) {
		return candidate{}, false
	}

	class, best := argmax(row[5:ChannelsRaw])
	confidence := objectness * best

	if !thresholds.Accepts(class, confidence) {
		return candidate{}, false
	}

	return candidate{
		rect:       images.RectFromCenter(row[0], row[1], row[2], row[3]),
		class:      class,
		confidence: confidence,
	}, true
}

// argmax returns the index and value of the largest probability. It starts
// from (0, 0) and only moves on a strictly greater value, so ties keep the
// lowest index and an all-zero vector yields class 0 with probability 0.
func argmax(probs []float32) (int, float32) {
	class := 0
	best := float32(0)
	for i, p := range probs {
		if p > best {
			best = p
			class = i
		}
	}
	return class, best
}
