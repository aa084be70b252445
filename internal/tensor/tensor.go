// Package tensor implements dense float64 tensors and the numerical kernels
// used by the network layers: matrix products (delegated to gonum), im2col
// convolution, max pooling and row softmax.
//
// Tensors are row-major and CPU-resident. Shape errors inside kernels are
// programmer errors and panic with a descriptive message; constructors that
// take caller-provided data return errors instead.
package tensor

import "fmt"

// Tensor is a dense row-major float64 tensor.
//
// Reshape returns a view sharing the underlying storage; Clone copies it.
type Tensor struct {
	data  []float64
	shape Shape
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		data:  make([]float64, shape.NumElements()),
		shape: shape.Clone(),
	}, nil
}

// Zeros creates a zero-filled tensor, panicking on an invalid shape.
//
// Intended for internal allocation where the shape is computed, not
// caller-provided.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return t
}

// FromSlice creates a tensor that takes ownership of data.
//
// The length of data must equal the number of elements implied by shape.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	return &Tensor{data: data, shape: shape.Clone()}, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying storage slice.
//
// WARNING: direct access to tensor memory. Mutations are visible through
// every view of this tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Reshape returns a view with the given dimensions sharing this tensor's
// storage. Panics if the element count changes.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	newShape := Shape(dims)
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, t.NumElements(), newShape, newShape.NumElements()))
	}
	return &Tensor{data: t.data, shape: newShape.Clone()}
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{data: data, shape: t.shape.Clone()}
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(idx ...int) float64 {
	return t.data[t.flatIndex(idx)]
}

// Set assigns the element at the given multi-dimensional index.
func (t *Tensor) Set(v float64, idx ...int) {
	t.data[t.flatIndex(idx)] = v
}

func (t *Tensor) flatIndex(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("index rank %d does not match tensor rank %d", len(idx), len(t.shape)))
	}
	flat := 0
	for i, stride := range t.shape.ComputeStrides() {
		if idx[i] < 0 || idx[i] >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d (size %d)", idx[i], i, t.shape[i]))
		}
		flat += idx[i] * stride
	}
	return flat
}
