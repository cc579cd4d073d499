package postprocess

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-yoloparse/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frame640 = Frame{Width: 640, Height: 640}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		rect     images.Rect
		frame    Frame
		keep     bool
		expected Object
	}{
		{
			name:     "Inside frame",
			rect:     images.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10},
			frame:    frame640,
			keep:     true,
			expected: Object{Left: 0, Top: 0, Width: 10, Height: 10, Class: 2, Confidence: 0.6},
		},
		{
			name:     "Clamped on every side",
			rect:     images.Rect{X1: -20, Y1: -5, X2: 700, Y2: 650},
			frame:    frame640,
			keep:     true,
			expected: Object{Left: 0, Top: 0, Width: 640, Height: 640, Class: 2, Confidence: 0.6},
		},
		{
			name:     "Non square frame",
			rect:     images.Rect{X1: 600, Y1: 300, X2: 700, Y2: 500},
			frame:    Frame{Width: 640, Height: 360},
			keep:     true,
			expected: Object{Left: 600, Top: 300, Width: 40, Height: 60, Class: 2, Confidence: 0.6},
		},
		{
			name:  "Half pixel wide",
			rect:  images.Rect{X1: 10, Y1: 10, X2: 10.5, Y2: 30},
			frame: frame640,
		},
		{
			name:  "Exactly one pixel survives",
			rect:  images.Rect{X1: 10, Y1: 10, X2: 11, Y2: 11},
			frame: frame640,
			keep:  true,
			expected: Object{
				Left: 10, Top: 10, Width: 1, Height: 1, Class: 2, Confidence: 0.6,
			},
		},
		{
			name:  "Inverted box",
			rect:  images.Rect{X1: 50, Y1: 50, X2: 20, Y2: 80},
			frame: frame640,
		},
		{
			name:  "Entirely outside",
			rect:  images.Rect{X1: 700, Y1: 700, X2: 800, Y2: 800},
			frame: frame640,
		},
		{
			name:  "NaN corner",
			rect:  images.Rect{X1: 0, Y1: 0, X2: math32.NaN(), Y2: 20},
			frame: frame640,
		},
		{
			name:  "Zero sized frame",
			rect:  images.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10},
			frame: Frame{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, ok := Normalize(tt.rect, tt.frame, 2, 0.6)
			require.Equal(t, tt.keep, ok)
			if !tt.keep {
				return
			}
			assert.Equal(t, tt.expected, obj)

			assert.GreaterOrEqual(t, obj.Left, float32(0))
			assert.GreaterOrEqual(t, obj.Top, float32(0))
			assert.LessOrEqual(t, obj.Left+obj.Width, float32(tt.frame.Width))
			assert.LessOrEqual(t, obj.Top+obj.Height, float32(tt.frame.Height))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	obj, ok := Normalize(images.Rect{X1: -3, Y1: 12.25, X2: 644, Y2: 90}, frame640, 0, 0.9)
	require.True(t, ok)

	again, ok := Normalize(images.Rect{
		X1: obj.Left,
		Y1: obj.Top,
		X2: obj.Left + obj.Width,
		Y2: obj.Top + obj.Height,
	}, frame640, obj.Class, obj.Confidence)
	require.True(t, ok)
	assert.Equal(t, obj, again)
}

func TestThresholds_Accepts(t *testing.T) {
	table := Thresholds{0.5, 0.25}

	tests := []struct {
		name     string
		class    int
		score    float32
		expected bool
	}{
		{"Above", 0, 0.6, true},
		{"Equal", 1, 0.25, true},
		{"Below", 0, 0.49, false},
		{"Negative class", -1, 0.99, false},
		{"Class past table", 2, 0.99, false},
		{"NaN score", 0, math32.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.Accepts(tt.class, tt.score))
		})
	}

	assert.False(t, Thresholds(nil).Accepts(0, 1))
}

func TestUniformThresholds(t *testing.T) {
	table := UniformThresholds(80, 0.25)
	require.Len(t, table, 80)
	for _, v := range table {
		assert.Equal(t, float32(0.25), v)
	}
	assert.Empty(t, UniformThresholds(0, 0.25))
	assert.Empty(t, UniformThresholds(-4, 0.25))
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator(frame640, 4)

	assert.True(t, acc.Add(images.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}, 0, 0.9))
	assert.False(t, acc.Add(images.Rect{X1: 0, Y1: 0, X2: 0.5, Y2: 10}, 1, 0.8))
	assert.True(t, acc.Add(images.Rect{X1: 20, Y1: 20, X2: 40, Y2: 40}, 3, 0.7))

	objects := acc.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, 0, objects[0].Class)
	assert.Equal(t, 3, objects[1].Class)
	assert.Equal(t, 2, acc.Len())
	assert.Equal(t, 1, acc.Dropped())
}

func TestAccumulator_EmptyIsNotNil(t *testing.T) {
	acc := NewAccumulator(frame640, -1)
	assert.NotNil(t, acc.Objects())
	assert.Empty(t, acc.Objects())
}
