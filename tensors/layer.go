// Package tensors - Read-only views over raw network output layers.
package tensors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedLayout is returned when a layer shape is neither [N, C] nor [B, N, C].
	ErrUnsupportedLayout = errors.New("unsupported output layout")
	// ErrBufferTooSmall is returned when a layer buffer holds fewer values than its shape declares.
	ErrBufferTooSmall = errors.New("output buffer smaller than declared shape")
)

// Layer is a single output layer handed over by the inference runtime.
//
// The buffer is owned by the caller. Nothing in this module writes to it or
// keeps a reference to it once a call returns.
type Layer struct {
	// Name is the output binding name, used for diagnostics only.
	Name string
	// Buffer is the raw float32 output in row-major order.
	Buffer []float32
	// Shape is the ordered list of dimension sizes.
	Shape []int
}

// String formats the layer header for diagnostics.
func (l Layer) String() string {
	return fmt.Sprintf("layer %q shape=%v len=%d", l.Name, l.Shape, len(l.Buffer))
}

// Layout is the resolved detection layout of an output layer.
type Layout struct {
	// Batch is the leading batch dimension, 1 for the flat layout.
	Batch int
	// Detections is the number of candidate rows.
	Detections int
	// Channels is the number of values per row.
	Channels int
}

// ResolveLayout determines the detection count and channel count of a layer shape.
//
// Arguments:
//   - shape: Either [N, C] (flat) or [B, N, C] (batched).
//
// Returns:
//   - The resolved layout. For batched shapes only the first batch is addressed.
//   - ErrUnsupportedLayout if the rank is not 2 or 3, or a dimension is negative.
func ResolveLayout(shape []int) (Layout, error) {
	var layout Layout

	switch len(shape) {
	case 2:
		layout = Layout{Batch: 1, Detections: shape[0], Channels: shape[1]}
	case 3:
		layout = Layout{Batch: shape[0], Detections: shape[1], Channels: shape[2]}
	default:
		return Layout{}, errors.Wrapf(ErrUnsupportedLayout, "expected 2 or 3 dimensions, got %d", len(shape))
	}

	for i, d := range shape {
		if d < 0 {
			return Layout{}, errors.Wrapf(ErrUnsupportedLayout, "dimension %d is negative (%d)", i, d)
		}
	}

	return layout, nil
}
