package nn

import (
	"fmt"
	"math/rand"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Dropout zeroes a random subset of activations during training.
//
// Uses inverted dropout: surviving activations are scaled by 1/(1-rate) at
// training time so the expected activation is unchanged and inference needs
// no rescaling. When train is false, Forward is the identity.
type Dropout struct {
	rate float64
	rng  *rand.Rand

	mask []float64 // nil when the last Forward ran in inference mode
}

// NewDropout creates a dropout layer. rate is the probability that an
// activation is dropped, in [0, 1).
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout: invalid rate %g (must be in [0, 1))", rate))
	}
	return &Dropout{rate: rate, rng: rng}
}

// Forward performs the forward pass. Masking is applied only when train is
// true; otherwise the input passes through untouched.
func (d *Dropout) Forward(input *tensor.Tensor, train bool) *tensor.Tensor {
	if !train || d.rate == 0 {
		d.mask = nil
		return input
	}

	scale := 1.0 / (1.0 - d.rate)
	output := input.Clone()
	data := output.Data()
	d.mask = make([]float64, len(data))
	for i := range data {
		if d.rng.Float64() < d.rate {
			data[i] = 0
		} else {
			d.mask[i] = scale
			data[i] *= scale
		}
	}
	return output
}

// Backward returns the gradient w.r.t. the input, applying the mask from the
// last training-mode Forward. After an inference-mode Forward it is the
// identity.
func (d *Dropout) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if d.mask == nil {
		return grad
	}
	inputGrad := grad.Clone()
	data := inputGrad.Data()
	for i := range data {
		data[i] *= d.mask[i]
	}
	d.mask = nil
	return inputGrad
}

// Rate returns the configured drop probability.
func (d *Dropout) Rate() float64 {
	return d.rate
}
