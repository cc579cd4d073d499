package models

import (
	"sync"

	"github.com/pkg/errors"
)

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer index returned by the model.
	Index int
	// The human-readable label.
	Name string
}

// OutputClassSet ties a family to its full list of labels.
type OutputClassSet struct {
	// Class set identifier.
	Style ModelFamily
	// Classes that are supported and mappable, ordered by index.
	Classes []OutputClass

	once      sync.Once
	nameToIdx map[string]int
}

// Len returns the number of classes in the set.
func (s *OutputClassSet) Len() int {
	return len(s.Classes)
}

// Name returns the label for idx, or "" if idx is out of range.
func (s *OutputClassSet) Name(idx int) string {
	if idx < 0 || idx >= len(s.Classes) {
		return ""
	}
	return s.Classes[idx].Name
}

// Index returns the class index for name.
func (s *OutputClassSet) Index(name string) (int, error) {
	s.once.Do(func() {
		s.nameToIdx = make(map[string]int, len(s.Classes))
		for _, c := range s.Classes {
			s.nameToIdx[c.Name] = c.Index
		}
	})
	idx, ok := s.nameToIdx[name]
	if !ok {
		return -1, errors.Errorf("class %q not found in %q", name, s.Style)
	}
	return idx, nil
}

var cocoNames = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie",
	"suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

func classList(offset int, names ...string) []OutputClass {
	classes := make([]OutputClass, len(names))
	for i, name := range names {
		classes[i] = OutputClass{Index: i + offset, Name: name}
	}
	return classes
}

// COCOClasses is the 80 COCO classes plus "__background__" at index 0.
var COCOClasses = &OutputClassSet{
	Style:   ModelFamilyCOCO,
	Classes: classList(0, append([]string{"__background__"}, cocoNames...)...),
}

// YOLOClasses is the 80 COCO classes (no background).
// YOLO models, including the 85-channel raw output, index directly into this zero-based list.
var YOLOClasses = &OutputClassSet{
	Style:   ModelFamilyYOLO,
	Classes: classList(0, cocoNames...),
}

// AllClassSets collects every OutputClassSet in one place.
var AllClassSets = []*OutputClassSet{
	COCOClasses,
	YOLOClasses,
}

// LookupClassSet returns the class set registered for style.
func LookupClassSet(style ModelFamily) (*OutputClassSet, error) {
	for _, set := range AllClassSets {
		if set.Style == style {
			return set, nil
		}
	}
	return nil, errors.Errorf("class set %q not registered", style)
}

// LookupName returns the class name for a given style and index.
// If the style is unknown or the index is out of range, it returns an empty string.
func LookupName(style ModelFamily, idx int) string {
	set, err := LookupClassSet(style)
	if err != nil {
		return ""
	}
	return set.Name(idx)
}
