package tensors

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLayout(t *testing.T) {
	tests := []struct {
		name     string
		shape    []int
		expected Layout
		err      error
	}{
		{
			name:     "Flat post-processed",
			shape:    []int{25200, 6},
			expected: Layout{Batch: 1, Detections: 25200, Channels: 6},
		},
		{
			name:     "Batched raw",
			shape:    []int{1, 25200, 85},
			expected: Layout{Batch: 1, Detections: 25200, Channels: 85},
		},
		{
			name:     "Empty detections",
			shape:    []int{0, 6},
			expected: Layout{Batch: 1, Detections: 0, Channels: 6},
		},
		{
			name:  "Rank one",
			shape: []int{6},
			err:   ErrUnsupportedLayout,
		},
		{
			name:  "Rank four",
			shape: []int{1, 1, 10, 6},
			err:   ErrUnsupportedLayout,
		},
		{
			name:  "No dimensions",
			shape: nil,
			err:   ErrUnsupportedLayout,
		},
		{
			name:  "Negative dimension",
			shape: []int{-1, 6},
			err:   ErrUnsupportedLayout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := ResolveLayout(tt.shape)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "expected %v, got %v", tt.err, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, layout)
		})
	}
}

func TestNewView(t *testing.T) {
	buf := []float32{
		0, 1, 2,
		3, 4, 5,
		6, 7, 8,
	}

	t.Run("Addresses rows and channels", func(t *testing.T) {
		view, err := NewView(buf, Layout{Batch: 1, Detections: 3, Channels: 3})
		require.NoError(t, err)

		assert.Equal(t, 3, view.Rows())
		assert.Equal(t, 3, view.Channels())
		assert.Equal(t, []float32{3, 4, 5}, view.Row(1))
		assert.Equal(t, float32(8), view.At(2, 2))
	})

	t.Run("Row cannot grow into the next row", func(t *testing.T) {
		view, err := NewView(buf, Layout{Batch: 1, Detections: 3, Channels: 3})
		require.NoError(t, err)

		row := view.Row(0)
		assert.Equal(t, 3, cap(row))
	})

	t.Run("Extra trailing values are ignored", func(t *testing.T) {
		view, err := NewView(buf, Layout{Batch: 3, Detections: 1, Channels: 3})
		require.NoError(t, err)
		assert.Equal(t, 1, view.Rows())
		assert.Panics(t, func() { view.Row(1) })
	})

	t.Run("Short buffer", func(t *testing.T) {
		_, err := NewView(buf, Layout{Batch: 1, Detections: 4, Channels: 3})
		assert.True(t, errors.Is(err, ErrBufferTooSmall))
	})

	t.Run("Overflowing shape", func(t *testing.T) {
		for _, rows := range []int{math.MaxInt/3 + 1, math.MaxInt/3 + 2, math.MaxInt} {
			assert.NotPanics(t, func() {
				_, err := NewView(buf, Layout{Batch: 1, Detections: rows, Channels: 3})
				assert.True(t, errors.Is(err, ErrBufferTooSmall))
			})
		}
	})

	t.Run("Out of range channel panics", func(t *testing.T) {
		view, err := NewView(buf, Layout{Batch: 1, Detections: 3, Channels: 3})
		require.NoError(t, err)
		assert.Panics(t, func() { view.At(0, 3) })
		assert.Panics(t, func() { view.At(-1, 0) })
	})
}
