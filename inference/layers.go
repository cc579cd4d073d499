// Package inference - Adapters from inference runtime outputs to parser layers.
//
// The returned layers alias the runtime's memory. Keep the source tensor
// alive, and do not reuse it for another run, until parsing has returned.
package inference

import (
	"github.com/nvr-ai/go-yoloparse/tensors"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// ErrUnsupportedType is returned when an output is not a float32 tensor.
var ErrUnsupportedType = errors.New("output is not a float32 tensor")

// LayerFromORT wraps an onnxruntime output tensor.
//
// Arguments:
//   - name: The output binding name.
//   - t: A float32 output tensor.
//
// Returns:
//   - The layer, sharing t's data.
//   - An error if t is nil.
func LayerFromORT(name string, t *ort.Tensor[float32]) (tensors.Layer, error) {
	if t == nil {
		return tensors.Layer{}, errors.Errorf("output %q is nil", name)
	}

	dims := t.GetShape()
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}

	return tensors.Layer{Name: name, Buffer: t.GetData(), Shape: shape}, nil
}

// LayersFromValues wraps the outputs of an onnxruntime session run, as
// filled by DynamicAdvancedSession.Run.
//
// Arguments:
//   - names: The output names, in the same order as values.
//   - values: The output values. Each must be a *ort.Tensor[float32].
//
// Returns:
//   - One layer per value.
//   - ErrUnsupportedType if a value holds another element type.
func LayersFromValues(names []string, values []ort.Value) ([]tensors.Layer, error) {
	if len(names) != len(values) {
		return nil, errors.Errorf("got %d names for %d outputs", len(names), len(values))
	}

	layers := make([]tensors.Layer, 0, len(values))
	for i, v := range values {
		t, ok := v.(*ort.Tensor[float32])
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedType, "output %q is %T", names[i], v)
		}
		layer, err := LayerFromORT(names[i], t)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

// LayerFromDense wraps a gorgonia dense tensor, e.g. one built from a
// Triton raw output with tensor.WithBacking.
//
// Views are materialized first, so the layer always addresses the logical
// elements in row-major order.
func LayerFromDense(name string, t *tensor.Dense) (tensors.Layer, error) {
	if t == nil {
		return tensors.Layer{}, errors.Errorf("output %q is nil", name)
	}
	if t.Dtype() != tensor.Float32 {
		return tensors.Layer{}, errors.Wrapf(ErrUnsupportedType, "output %q is %v", name, t.Dtype())
	}

	if t.IsMaterializable() {
		m, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return tensors.Layer{}, errors.Errorf("output %q could not be materialized", name)
		}
		t = m
	}

	data, ok := t.Data().([]float32)
	if !ok {
		// Scalars hold a bare float32.
		v, isScalar := t.Data().(float32)
		if !isScalar {
			return tensors.Layer{}, errors.Wrapf(ErrUnsupportedType, "output %q holds %T", name, t.Data())
		}
		data = []float32{v}
	}

	return tensors.Layer{Name: name, Buffer: data, Shape: append([]int(nil), t.Shape()...)}, nil
}

// LayerFromMat wraps an OpenCV DNN output blob, as returned by Net.Forward.
//
// Arguments:
//   - name: The output layer name.
//   - m: A continuous CV_32F blob.
//
// Returns:
//   - The layer, sharing m's data.
//   - An error if m is empty, not CV_32F, or not continuous.
func LayerFromMat(name string, m gocv.Mat) (tensors.Layer, error) {
	if m.Empty() {
		return tensors.Layer{}, errors.Errorf("output %q is empty", name)
	}
	if m.Type() != gocv.MatTypeCV32FC1 {
		return tensors.Layer{}, errors.Wrapf(ErrUnsupportedType, "output %q has mat type %v", name, m.Type())
	}
	if !m.IsContinuous() {
		return tensors.Layer{}, errors.Errorf("output %q is not continuous", name)
	}

	data, err := m.DataPtrFloat32()
	if err != nil {
		return tensors.Layer{}, errors.Wrapf(err, "output %q", name)
	}

	return tensors.Layer{Name: name, Buffer: data, Shape: m.Size()}, nil
}
