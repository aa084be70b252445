package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QaisarRajput/tensorflow-workshop/internal/nn"
	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

func TestNewAdam_Defaults(t *testing.T) {
	opt := NewAdam(nil, AdamConfig{})
	assert.Equal(t, 0.001, opt.GetLR())
	assert.Equal(t, 0.9, opt.beta1)
	assert.Equal(t, 0.999, opt.beta2)
	assert.Equal(t, 1e-8, opt.eps)
}

func TestAdam_FirstStepMagnitude(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{1}))
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.1})

	g, err := tensor.FromSlice([]float64{5.0}, tensor.Shape{1})
	require.NoError(t, err)
	p.AddGrad(g)
	opt.Step()

	// after bias correction the first update is close to -lr * sign(grad)
	assert.InDelta(t, -0.1, p.Value().Data()[0], 1e-6)
	assert.Equal(t, 1, opt.GetTimestep())
}

func TestAdam_SkipsParamsWithoutGrad(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{2}))
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.1})

	opt.Step()
	assert.Equal(t, []float64{0, 0}, p.Value().Data())
}

func TestAdam_MinimizesQuadratic(t *testing.T) {
	// minimize f(w) = (w - 3)², df/dw = 2(w - 3)
	value, err := tensor.FromSlice([]float64{0.0}, tensor.Shape{1})
	require.NoError(t, err)
	p := nn.NewParameter("w", value)
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.1})

	for i := 0; i < 500; i++ {
		opt.ZeroGrad()
		w := p.Value().Data()[0]
		g, err := tensor.FromSlice([]float64{2 * (w - 3)}, tensor.Shape{1})
		require.NoError(t, err)
		p.AddGrad(g)
		opt.Step()
	}

	assert.InDelta(t, 3.0, p.Value().Data()[0], 0.05)
}

func TestAdam_ZeroGradClearsParams(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{1}))
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{})

	g, err := tensor.FromSlice([]float64{1.0}, tensor.Shape{1})
	require.NoError(t, err)
	p.AddGrad(g)
	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestAdam_StateDictRoundTrip(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{2}))
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.01})

	g, err := tensor.FromSlice([]float64{1.0, -2.0}, tensor.Shape{2})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		opt.ZeroGrad()
		p.AddGrad(g)
		opt.Step()
	}
	valueAfter3 := append([]float64(nil), p.Value().Data()...)
	state := opt.StateDict()

	// a fresh optimizer restored from the state continues identically
	p2 := nn.NewParameter("w", tensor.Zeros(tensor.Shape{2}))
	copy(p2.Value().Data(), valueAfter3)
	opt2 := NewAdam([]*nn.Parameter{p2}, AdamConfig{LR: 0.01})
	require.NoError(t, opt2.LoadStateDict(state))
	assert.Equal(t, 3, opt2.GetTimestep())

	step := func(o *Adam, param *nn.Parameter) {
		o.ZeroGrad()
		param.AddGrad(g)
		o.Step()
	}
	step(opt, p)
	step(opt2, p2)

	for i := range p.Value().Data() {
		assert.InDelta(t, p.Value().Data()[i], p2.Value().Data()[i], 1e-12)
	}
}

func TestAdam_LoadStateDictRejectsUnknownEntry(t *testing.T) {
	opt := NewAdam(nil, AdamConfig{})
	bogus, err := tensor.FromSlice([]float64{1}, tensor.Shape{1})
	require.NoError(t, err)
	assert.Error(t, opt.LoadStateDict(map[string]*tensor.Tensor{"bogus": bogus}))
}

func TestAdam_BiasCorrectionGrowth(t *testing.T) {
	// without bias correction the first update would be far smaller than lr
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{1}))
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.001})

	g, err := tensor.FromSlice([]float64{0.01}, tensor.Shape{1})
	require.NoError(t, err)
	p.AddGrad(g)
	opt.Step()

	assert.Greater(t, math.Abs(p.Value().Data()[0]), 0.0009)
}
