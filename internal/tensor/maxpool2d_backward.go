package tensor

import "fmt"

// MaxPool2DBackward computes the pooling gradient w.r.t. the input.
//
// Gradients flow only to the positions that held the maximum in the forward
// pass; all other positions in each pooling window receive zero. maxIndices
// is the flat-index slice produced by MaxPool2D.
func MaxPool2DBackward(inputShape Shape, grad *Tensor, maxIndices []int) *Tensor {
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d backward: expected 4D input shape, got %v", inputShape))
	}
	if grad.NumElements() != len(maxIndices) {
		panic(fmt.Sprintf("maxpool2d backward: grad has %d elements but maxIndices has %d",
			grad.NumElements(), len(maxIndices)))
	}

	inputGrad := Zeros(inputShape)
	inputGradData := inputGrad.Data()
	gradData := grad.Data()

	for i, pos := range maxIndices {
		inputGradData[pos] += gradData[i]
	}
	return inputGrad
}
