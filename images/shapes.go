// Package images - Frame-space geometry for detection boxes.
package images

import "github.com/chewxy/math32"

// Rect is a corner-form box in network frame coordinates.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// RectFromCenter converts center-form geometry into corner form.
//
// Arguments:
//   - cx, cy: The box center.
//   - w, h: The box width and height.
//
// Returns:
//   - The box with X1 = cx - w/2, Y1 = cy - h/2, X2 = cx + w/2, Y2 = cy + h/2.
func RectFromCenter(cx, cy, w, h float32) Rect {
	return Rect{
		X1: cx - w*0.5,
		Y1: cy - h*0.5,
		X2: cx + w*0.5,
		Y2: cy + h*0.5,
	}
}

// Width returns X2 - X1, which may be negative for an inverted box.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns Y2 - Y1, which may be negative for an inverted box.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Clamp limits both X corners to [0, w] and both Y corners to [0, h].
//
// Clamping twice yields the same box as clamping once.
func (r Rect) Clamp(w, h float32) Rect {
	return Rect{
		X1: Clamp(r.X1, 0, w),
		Y1: Clamp(r.Y1, 0, h),
		X2: Clamp(r.X2, 0, w),
		Y2: Clamp(r.Y2, 0, h),
	}
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
//
// The caller must ensure lo <= hi.
func Clamp(v, lo, hi float32) float32 {
	if math32.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
