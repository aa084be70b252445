package nn

import (
	"fmt"
	"math/rand"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Weights use Xavier initialization, biases start at zero. Forward caches
// the input so Backward can compute the weight and input gradients.
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      int
	padding     int

	weight *Parameter
	bias   *Parameter

	input *tensor.Tensor // cached by Forward for the backward pass
}

// NewConv2D creates a convolutional layer.
//
// name prefixes the parameter names ("<name>.weight", "<name>.bias").
func NewConv2D(name string, inChannels, outChannels, kernelH, kernelW, stride, padding int, rng *rand.Rand) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", kernelH, kernelW))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	// fan_in = in_channels * kernel area, fan_out = out_channels * kernel area
	fanIn := inChannels * kernelH * kernelW
	fanOut := outChannels * kernelH * kernelW
	weight := Xavier(rng, fanIn, fanOut, tensor.Shape{outChannels, inChannels, kernelH, kernelW})

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		stride:      stride,
		padding:     padding,
		weight:      NewParameter(name+".weight", weight),
		bias:        NewParameter(name+".bias", Zeros(tensor.Shape{outChannels})),
	}
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", inputShape[1], c.inChannels))
	}

	c.input = input
	output := tensor.Conv2D(input, c.weight.Value(), c.stride, c.padding)

	// Broadcast bias over [N, C_out, H_out, W_out].
	outShape := output.Shape()
	plane := outShape[2] * outShape[3]
	outData := output.Data()
	biasData := c.bias.Value().Data()
	for img := 0; img < outShape[0]; img++ {
		for ch := 0; ch < c.outChannels; ch++ {
			base := (img*c.outChannels + ch) * plane
			b := biasData[ch]
			for i := 0; i < plane; i++ {
				outData[base+i] += b
			}
		}
	}

	return output
}

// Backward accumulates weight and bias gradients and returns the gradient
// w.r.t. the cached input.
func (c *Conv2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if c.input == nil {
		panic("conv2d: Backward called before Forward")
	}

	kernelGrad := tensor.Conv2DKernelBackward(c.input, grad, c.weight.Value().Shape(), c.stride, c.padding)
	c.weight.AddGrad(kernelGrad)

	// Bias gradient: sum of grad over batch and spatial dimensions.
	gradShape := grad.Shape()
	plane := gradShape[2] * gradShape[3]
	biasGrad := tensor.Zeros(tensor.Shape{c.outChannels})
	biasData := biasGrad.Data()
	gradData := grad.Data()
	for img := 0; img < gradShape[0]; img++ {
		for ch := 0; ch < c.outChannels; ch++ {
			base := (img*c.outChannels + ch) * plane
			sum := 0.0
			for i := 0; i < plane; i++ {
				sum += gradData[base+i]
			}
			biasData[ch] += sum
		}
	}
	c.bias.AddGrad(biasGrad)

	inputGrad := tensor.Conv2DInputBackward(c.input.Shape(), c.weight.Value(), grad, c.stride, c.padding)
	c.input = nil
	return inputGrad
}

// Parameters returns the trainable parameters.
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// String returns a description of the layer configuration.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=(%d, %d), stride=%d, padding=%d)",
		c.inChannels, c.outChannels, c.kernelSize[0], c.kernelSize[1], c.stride, c.padding)
}
