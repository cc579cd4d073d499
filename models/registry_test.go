package models

import (
	"testing"

	"github.com/nvr-ai/go-yoloparse/models/postprocess"
	"github.com/nvr-ai/go-yoloparse/models/yolov7"
	"github.com/nvr-ai/go-yoloparse/tensors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("yolov7", yolov7.ParseYolov7))

	err := r.Register("yolov7", yolov7.ParseYolov7)
	assert.True(t, errors.Is(err, ErrParserExists))

	assert.Error(t, r.Register("", yolov7.ParseYolov7))
	assert.Error(t, r.Register("nil", ParseFunc(nil)))
	assert.Error(t, r.Register("untyped", nil))

	wrongPrototype := func(layers []tensors.Layer, frame postprocess.Frame) bool { return true }
	assert.Error(t, r.Register("wrong", wrongPrototype))

	p, err := yolov7.NewParser(yolov7.NewParserArgs{})
	require.NoError(t, err)
	require.NoError(t, r.Register("bound", p.ParseInto))

	assert.Equal(t, []string{"bound", "yolov7"}, r.Names())
}

func TestRegistry_Lookup(t *testing.T) {
	_, err := NewRegistry().Lookup("missing")
	assert.True(t, errors.Is(err, ErrParserNotFound))

	for _, name := range []string{string(ModelNameYOLOv7), CustomParseFuncName} {
		t.Run(name, func(t *testing.T) {
			parse, err := NewParser(name)
			require.NoError(t, err)

			var objects []postprocess.Object
			ok := parse(
				[]tensors.Layer{{Buffer: []float32{0, 0, 10, 10, 0.6, 0}, Shape: []int{1, 6}}},
				postprocess.Frame{Width: 640, Height: 640},
				postprocess.DetectionParams{PerClassPreclusterThreshold: postprocess.Thresholds{0.5}},
				&objects,
			)
			require.True(t, ok)
			assert.Len(t, objects, 1)

			assert.False(t, parse(nil, postprocess.Frame{Width: 640, Height: 640}, postprocess.DetectionParams{}, &objects))
			assert.Empty(t, objects)
		})
	}
}

func TestClassSets(t *testing.T) {
	assert.Equal(t, 80, YOLOClasses.Len())
	assert.Equal(t, 81, COCOClasses.Len())
	assert.Equal(t, yolov7.RawClasses, YOLOClasses.Len())

	assert.Equal(t, "person", LookupName(ModelFamilyYOLO, 0))
	assert.Equal(t, "toothbrush", LookupName(ModelFamilyYOLO, 79))
	assert.Equal(t, "__background__", LookupName(ModelFamilyCOCO, 0))
	assert.Equal(t, "person", LookupName(ModelFamilyCOCO, 1))
	assert.Equal(t, "", LookupName(ModelFamilyYOLO, 80))
	assert.Equal(t, "", LookupName(ModelFamilyYOLO, -1))
	assert.Equal(t, "", LookupName("voc", 0))

	idx, err := YOLOClasses.Index("car")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	idx, err = COCOClasses.Index("car")
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	_, err = YOLOClasses.Index("unicorn")
	assert.Error(t, err)

	set, err := LookupClassSet(ModelFamilyYOLO)
	require.NoError(t, err)
	assert.Same(t, YOLOClasses, set)
}
