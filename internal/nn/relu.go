package nn

import "github.com/QaisarRajput/tensorflow-workshop/internal/tensor"

// ReLU applies max(0, x) element-wise. No learnable parameters.
//
// Forward caches the activation mask; Backward zeroes gradient where the
// input was non-positive.
type ReLU struct {
	mask []bool
}

// NewReLU creates a ReLU activation layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward performs the forward pass on a tensor of any shape.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input.Clone()
	data := output.Data()
	r.mask = make([]bool, len(data))
	for i, v := range data {
		if v > 0 {
			r.mask[i] = true
		} else {
			data[i] = 0
		}
	}
	return output
}

// Backward returns the gradient w.r.t. the input.
func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.mask == nil {
		panic("relu: Backward called before Forward")
	}
	inputGrad := grad.Clone()
	data := inputGrad.Data()
	for i := range data {
		if !r.mask[i] {
			data[i] = 0
		}
	}
	r.mask = nil
	return inputGrad
}
