// Package nn implements the neural network layers of the digit classifier:
// convolution, max pooling, ReLU, fully connected, dropout, and the softmax
// cross-entropy loss. Each layer caches whatever its backward pass needs, so
// a Forward call must be paired with at most one Backward call.
package nn

import (
	"math"
	"math/rand"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Xavier creates a tensor initialized with Xavier/Glorot uniform values:
// U(-sqrt(6/(fan_in+fan_out)), +sqrt(6/(fan_in+fan_out))).
//
// This keeps the variance of activations roughly constant across layers.
// The caller provides the rng so initialization is reproducible under a
// fixed seed (weight init is not security-sensitive).
func Xavier(rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
	return t
}

// Zeros creates a zero-filled tensor. Commonly used for bias initialization.
func Zeros(shape tensor.Shape) *tensor.Tensor {
	return tensor.Zeros(shape)
}
