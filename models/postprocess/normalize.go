package postprocess

import "github.com/nvr-ai/go-yoloparse/images"

// MinBoxSize is the smallest width and height, in frame pixels, a box may have.
const MinBoxSize = 1

// Normalize clamps a corner-form box into the frame and validates its size.
//
// Arguments:
//   - r: The unclamped corner-form box.
//   - frame: The network frame the box is clamped into.
//   - class: The class id the box was accepted for.
//   - confidence: The score the box was accepted with.
//
// Returns:
//   - The object in left/top/width/height form.
//   - false if the clamped box is narrower or shorter than MinBoxSize.
func Normalize(r images.Rect, frame Frame, class int, confidence float32) (Object, bool) {
	w := float32(frame.Width)
	h := float32(frame.Height)

	c := r.Clamp(w, h)
	width := images.Clamp(c.Width(), 0, w)
	height := images.Clamp(c.Height(), 0, h)

	if width < MinBoxSize || height < MinBoxSize {
		return Object{}, false
	}

	return Object{
		Left:       c.X1,
		Top:        c.Y1,
		Width:      width,
		Height:     height,
		Class:      class,
		Confidence: confidence,
	}, true
}

// Accumulator collects normalized objects in the order they are added.
type Accumulator struct {
	frame   Frame
	objects []Object
	dropped int
}

// NewAccumulator returns an accumulator for boxes in the given frame.
//
// Arguments:
//   - frame: The network frame every added box is clamped into.
//   - capacity: The initial capacity hint of the result list.
func NewAccumulator(frame Frame, capacity int) *Accumulator {
	if capacity < 0 {
		capacity = 0
	}
	return &Accumulator{
		frame:   frame,
		objects: make([]Object, 0, capacity),
	}
}

// Add normalizes r and appends it. Degenerate boxes are counted and dropped.
//
// Returns:
//   - true if the box was kept.
func (a *Accumulator) Add(r images.Rect, class int, confidence float32) bool {
	obj, ok := Normalize(r, a.frame, class, confidence)
	if !ok {
		a.dropped++
		return false
	}
	a.objects = append(a.objects, obj)
	return true
}

// Objects returns the accumulated objects. The caller owns the returned slice.
func (a *Accumulator) Objects() []Object {
	return a.objects
}

// Len returns the number of kept objects.
func (a *Accumulator) Len() int {
	return len(a.objects)
}

// Dropped returns the number of boxes rejected as degenerate.
func (a *Accumulator) Dropped() int {
	return a.dropped
}
