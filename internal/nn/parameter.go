package nn

import (
	"fmt"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Parameter represents a trainable parameter in the network.
//
// Parameters are tensors whose gradients are accumulated during the backward
// pass. They represent the weights and biases of layers.
type Parameter struct {
	name  string
	value *tensor.Tensor
	grad  *tensor.Tensor // nil until the first backward pass after ZeroGrad
}

// NewParameter creates a new trainable parameter.
//
// The value tensor should be initialized before creating the Parameter.
// The gradient is allocated lazily on first accumulation.
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return &Parameter{name: name, value: value}
}

// Name returns the parameter name (e.g. "conv1.weight").
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Grad returns the accumulated gradient, or nil if none has been computed
// since the last ZeroGrad.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// AddGrad accumulates a gradient into the parameter, allocating the gradient
// buffer on first use. Panics on a shape mismatch.
func (p *Parameter) AddGrad(g *tensor.Tensor) {
	if !g.Shape().Equal(p.value.Shape()) {
		panic(fmt.Sprintf("parameter %s: gradient shape %v does not match value shape %v",
			p.name, g.Shape(), p.value.Shape()))
	}
	if p.grad == nil {
		p.grad = tensor.Zeros(p.value.Shape())
	}
	dst := p.grad.Data()
	for i, v := range g.Data() {
		dst[i] += v
	}
}

// ZeroGrad clears the accumulated gradient.
//
// Called before each training iteration so gradients from previous batches
// do not accumulate.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
