package nn

import (
	"fmt"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer. It has no learnable parameters.
//
// Forward caches the argmax positions so Backward can route gradients to
// the inputs that produced each maximum.
type MaxPool2D struct {
	kernelSize int
	stride     int

	inputShape tensor.Shape
	maxIndices []int
}

// NewMaxPool2D creates a max pooling layer.
//
// The common configuration 2x2 with stride 2 halves each spatial dimension.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D{kernelSize: kernelSize, stride: stride}
}

// Forward performs the forward pass.
//
// Input: [batch, channels, height, width]
// Output: [batch, channels, out_height, out_width].
func (m *MaxPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	output, indices := tensor.MaxPool2D(input, m.kernelSize, m.stride)
	m.inputShape = input.Shape().Clone()
	m.maxIndices = indices
	return output
}

// Backward returns the gradient w.r.t. the cached input.
func (m *MaxPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if m.maxIndices == nil {
		panic("maxpool2d: Backward called before Forward")
	}
	inputGrad := tensor.MaxPool2DBackward(m.inputShape, grad, m.maxIndices)
	m.maxIndices = nil
	return inputGrad
}

// String returns a description of the layer configuration.
func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d)", m.kernelSize, m.stride)
}
