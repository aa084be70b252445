package nn

import (
	"fmt"
	"math/rand"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation y = x @ W.T + b where:
//   - x is the input with shape [batch, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights use Xavier initialization, biases start at zero.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter

	input *tensor.Tensor // cached by Forward for the backward pass
}

// NewLinear creates a fully connected layer.
//
// name prefixes the parameter names ("<name>.weight", "<name>.bias").
func NewLinear(name string, inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	weight := Xavier(rng, inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures})

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter(name+".weight", weight),
		bias:        NewParameter(name+".bias", Zeros(tensor.Shape{outFeatures})),
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch, in_features]
// Output shape: [batch, out_features].
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("linear: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	l.input = input
	output := tensor.MatMulTB(input, l.weight.Value())

	outData := output.Data()
	biasData := l.bias.Value().Data()
	for b := 0; b < inputShape[0]; b++ {
		row := outData[b*l.outFeatures : (b+1)*l.outFeatures]
		for i := range row {
			row[i] += biasData[i]
		}
	}
	return output
}

// Backward accumulates weight and bias gradients and returns the gradient
// w.r.t. the cached input.
//
//	dW = grad.T @ x
//	db = column sums of grad
//	dx = grad @ W
func (l *Linear) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if l.input == nil {
		panic("linear: Backward called before Forward")
	}

	l.weight.AddGrad(tensor.MatMulTA(grad, l.input))

	biasGrad := tensor.Zeros(tensor.Shape{l.outFeatures})
	biasData := biasGrad.Data()
	gradData := grad.Data()
	batch := grad.Shape()[0]
	for b := 0; b < batch; b++ {
		row := gradData[b*l.outFeatures : (b+1)*l.outFeatures]
		for i, v := range row {
			biasData[i] += v
		}
	}
	l.bias.AddGrad(biasGrad)

	inputGrad := tensor.MatMul(grad, l.weight.Value())
	l.input = nil
	return inputGrad
}

// Parameters returns the trainable parameters.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// String returns a description of the layer configuration.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in=%d, out=%d)", l.inFeatures, l.outFeatures)
}
