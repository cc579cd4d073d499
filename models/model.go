// Package models - Definitions for model output class styles, sets and parser registration.
package models

// ModelFamily is the family of models, which fixes the label set.
type ModelFamily string

const (
	// ModelFamilyCOCO is the 80 COCO classes + background.
	ModelFamilyCOCO ModelFamily = "coco"
	// ModelFamilyYOLO is the 80 COCO classes, no background.
	ModelFamilyYOLO ModelFamily = "yolo"
)

// ModelName is the unique identifier of a model output parser.
type ModelName string

const (
	// ModelNameYOLOv7 is the name of the YOLOv7 parser.
	ModelNameYOLOv7 ModelName = "yolov7"
)

// CustomParseFuncName is the symbol name DeepStream configs use to select the YOLOv7 parser.
const CustomParseFuncName = "NvDsInferParseYolov7"
