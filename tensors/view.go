package tensors

import (
	"github.com/pkg/errors"
)

// View addresses a flat buffer as rows of a fixed stride.
type View struct {
	data   []float32
	rows   int
	stride int
}

// NewView creates a view over the first layout.Detections rows of buf.
//
// Arguments:
//   - buf: The raw output buffer.
//   - layout: The resolved layout; its channel count becomes the row stride.
//
// Returns:
//   - The view.
//   - ErrBufferTooSmall if buf holds fewer than Detections*Channels values.
func NewView(buf []float32, layout Layout) (View, error) {
	// Divide instead of multiplying so a huge declared shape cannot overflow.
	if layout.Detections < 0 || layout.Channels < 0 ||
		(layout.Channels > 0 && layout.Detections > len(buf)/layout.Channels) {
		return View{}, errors.Wrapf(ErrBufferTooSmall, "need %dx%d values, have %d",
			layout.Detections, layout.Channels, len(buf))
	}
	need := layout.Detections * layout.Channels

	return View{
		data:   buf[:need:need],
		rows:   layout.Detections,
		stride: layout.Channels,
	}, nil
}

// Rows returns the number of rows in the view.
func (v View) Rows() int {
	return v.rows
}

// Channels returns the row stride.
func (v View) Channels() int {
	return v.stride
}

// Row returns row r as a capacity-limited subslice of the underlying buffer.
// It panics if r is out of range.
func (v View) Row(r int) []float32 {
	if r < 0 || r >= v.rows {
		panic(errors.Errorf("tensors: row %d out of range [0, %d)", r, v.rows))
	}
	start := r * v.stride
	end := start + v.stride
	return v.data[start:end:end]
}

// At returns the value at (row, channel). It panics if either index is out of range.
func (v View) At(row, channel int) float32 {
	if channel < 0 || channel >= v.stride {
		panic(errors.Errorf("tensors: channel %d out of range [0, %d)", channel, v.stride))
	}
	return v.Row(row)[channel]
}
