package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

func TestDropout_InferenceIsIdentity(t *testing.T) {
	drop := NewDropout(0.4, rand.New(rand.NewSource(1)))
	input, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)

	out := drop.Forward(input, false)
	assert.Equal(t, input.Data(), out.Data())
}

func TestDropout_TrainZeroesAndScales(t *testing.T) {
	rate := 0.4
	drop := NewDropout(rate, rand.New(rand.NewSource(7)))

	input := tensor.Zeros(tensor.Shape{1, 1000})
	for i := range input.Data() {
		input.Data()[i] = 1.0
	}

	out := drop.Forward(input, true)

	dropped := 0
	scale := 1.0 / (1.0 - rate)
	for _, v := range out.Data() {
		if v == 0 {
			dropped++
		} else {
			assert.InDelta(t, scale, v, 1e-12, "kept units must be scaled by 1/(1-rate)")
		}
	}
	// dropped fraction should be near the rate
	assert.InDelta(t, rate, float64(dropped)/1000.0, 0.05)
}

func TestDropout_BackwardUsesSameMask(t *testing.T) {
	drop := NewDropout(0.5, rand.New(rand.NewSource(3)))

	input := tensor.Zeros(tensor.Shape{1, 100})
	for i := range input.Data() {
		input.Data()[i] = 1.0
	}
	out := drop.Forward(input, true)

	grad := tensor.Zeros(tensor.Shape{1, 100})
	for i := range grad.Data() {
		grad.Data()[i] = 1.0
	}
	inputGrad := drop.Backward(grad)

	for i := range out.Data() {
		if out.Data()[i] == 0 {
			assert.Equal(t, 0.0, inputGrad.Data()[i], "dropped unit %d must block gradient", i)
		} else {
			assert.InDelta(t, 2.0, inputGrad.Data()[i], 1e-12, "kept unit %d must scale gradient", i)
		}
	}
}

func TestDropout_InvalidRatePanics(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Panics(t, func() { NewDropout(1.0, rng) })
	assert.Panics(t, func() { NewDropout(-0.1, rng) })
}

func TestXavier_Range(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	w := Xavier(rng, 100, 50, tensor.Shape{50, 100})

	limit := 0.2 // sqrt(6/150) ≈ 0.2
	nonZero := 0
	for _, v := range w.Data() {
		assert.LessOrEqual(t, v, limit+1e-9)
		assert.GreaterOrEqual(t, v, -limit-1e-9)
		if v != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 0)
}

func TestParameter_GradAccumulation(t *testing.T) {
	p := NewParameter("w", tensor.Zeros(tensor.Shape{2, 2}))
	assert.Nil(t, p.Grad())

	g, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	p.AddGrad(g)
	p.AddGrad(g)
	assert.Equal(t, []float64{2, 4, 6, 8}, p.Grad().Data())

	p.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestParameter_GradShapeMismatchPanics(t *testing.T) {
	p := NewParameter("w", tensor.Zeros(tensor.Shape{2, 2}))
	assert.Panics(t, func() { p.AddGrad(tensor.Zeros(tensor.Shape{4})) })
}
