// Package postprocess - Postprocessing utilities shared by the output parsers.
package postprocess

import "fmt"

// Frame is the network input resolution that decoded boxes are clamped into.
type Frame struct {
	Width  uint32 `json:"width"  yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
}

// Object is a single decoded detection in frame coordinates.
type Object struct {
	// Left and Top are the clamped top-left corner.
	Left float32 `json:"left"`
	Top  float32 `json:"top"`
	// Width and Height are at least MinBoxSize.
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	// Class is the zero-based class index.
	Class int `json:"classId"`
	// Confidence is the score the object was accepted with.
	Confidence float32 `json:"confidence"`
}

func (o Object) String() string {
	return fmt.Sprintf("class %d (confidence %f): left=%.2f top=%.2f width=%.2f height=%.2f",
		o.Class, o.Confidence, o.Left, o.Top, o.Width, o.Height)
}

// DetectionParams carries the per-call detection parameters of the hosting runtime.
type DetectionParams struct {
	// NumClassesConfigured is the number of classes the runtime was configured with.
	// Zero means unknown. The threshold table alone decides which class ids are accepted.
	NumClassesConfigured int
	// PerClassPreclusterThreshold is the minimum score per class id, applied before clustering.
	PerClassPreclusterThreshold Thresholds
}
