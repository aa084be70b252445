package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConv2D_HandComputed(t *testing.T) {
	// 3x3 input, 2x2 kernel picking the top-left and bottom-right corners.
	input, err := FromSlice([]float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, Shape{1, 1, 3, 3})
	require.NoError(t, err)

	kernel, err := FromSlice([]float64{
		1, 0,
		0, 1,
	}, Shape{1, 1, 2, 2})
	require.NoError(t, err)

	out := Conv2D(input, kernel, 1, 0)
	require.Equal(t, Shape{1, 1, 2, 2}, out.Shape())

	assert.InDelta(t, 1+5, out.At(0, 0, 0, 0), 1e-12)
	assert.InDelta(t, 2+6, out.At(0, 0, 0, 1), 1e-12)
	assert.InDelta(t, 4+8, out.At(0, 0, 1, 0), 1e-12)
	assert.InDelta(t, 5+9, out.At(0, 0, 1, 1), 1e-12)
}

func TestConv2D_SamePaddingShape(t *testing.T) {
	input := Zeros(Shape{2, 3, 8, 8})
	kernel := Zeros(Shape{16, 3, 5, 5})

	// padding (5-1)/2 keeps the spatial size
	out := Conv2D(input, kernel, 1, 2)
	assert.Equal(t, Shape{2, 16, 8, 8}, out.Shape())
}

func TestConv2D_Stride(t *testing.T) {
	input := Zeros(Shape{1, 1, 6, 6})
	kernel := Zeros(Shape{4, 1, 2, 2})

	out := Conv2D(input, kernel, 2, 0)
	assert.Equal(t, Shape{1, 4, 3, 3}, out.Shape())
}

func TestConv2D_ChannelMismatchPanics(t *testing.T) {
	input := Zeros(Shape{1, 2, 4, 4})
	kernel := Zeros(Shape{1, 3, 2, 2})
	assert.Panics(t, func() { Conv2D(input, kernel, 1, 0) })
}

// sumLoss treats the sum of all conv outputs as a scalar loss, so the
// upstream gradient is a tensor of ones.
func sumLoss(input, kernel *Tensor, stride, padding int) float64 {
	out := Conv2D(input, kernel, stride, padding)
	total := 0.0
	for _, v := range out.Data() {
		total += v
	}
	return total
}

func TestConv2DBackward_MatchesNumericalGradient(t *testing.T) {
	input, err := FromSlice([]float64{
		0.5, -1.0, 2.0,
		1.5, 0.0, -0.5,
		-2.0, 1.0, 0.75,
	}, Shape{1, 1, 3, 3})
	require.NoError(t, err)

	kernel, err := FromSlice([]float64{
		0.3, -0.7,
		1.1, 0.2,
		-0.4, 0.9,
		0.6, -1.2,
	}, Shape{2, 1, 2, 2})
	require.NoError(t, err)

	out := Conv2D(input, kernel, 1, 0)
	ones := Zeros(out.Shape())
	for i := range ones.Data() {
		ones.Data()[i] = 1.0
	}

	inputGrad := Conv2DInputBackward(input.Shape(), kernel, ones, 1, 0)
	kernelGrad := Conv2DKernelBackward(input, ones, kernel.Shape(), 1, 0)

	const eps = 1e-6
	for i := range input.Data() {
		orig := input.Data()[i]
		input.Data()[i] = orig + eps
		plus := sumLoss(input, kernel, 1, 0)
		input.Data()[i] = orig - eps
		minus := sumLoss(input, kernel, 1, 0)
		input.Data()[i] = orig

		numerical := (plus - minus) / (2 * eps)
		assert.InDelta(t, numerical, inputGrad.Data()[i], 1e-6, "input grad %d", i)
	}

	for i := range kernel.Data() {
		orig := kernel.Data()[i]
		kernel.Data()[i] = orig + eps
		plus := sumLoss(input, kernel, 1, 0)
		kernel.Data()[i] = orig - eps
		minus := sumLoss(input, kernel, 1, 0)
		kernel.Data()[i] = orig

		numerical := (plus - minus) / (2 * eps)
		assert.InDelta(t, numerical, kernelGrad.Data()[i], 1e-6, "kernel grad %d", i)
	}
}

func TestConv2DBackward_WithPaddingMatchesNumericalGradient(t *testing.T) {
	input, err := FromSlice([]float64{
		1.0, -0.5,
		0.25, 2.0,
	}, Shape{1, 1, 2, 2})
	require.NoError(t, err)

	kernel, err := FromSlice([]float64{
		0.5, -1.0, 0.3,
		0.8, 0.1, -0.6,
		-0.2, 0.9, 0.4,
	}, Shape{1, 1, 3, 3})
	require.NoError(t, err)

	out := Conv2D(input, kernel, 1, 1)
	require.Equal(t, Shape{1, 1, 2, 2}, out.Shape())

	ones := Zeros(out.Shape())
	for i := range ones.Data() {
		ones.Data()[i] = 1.0
	}
	inputGrad := Conv2DInputBackward(input.Shape(), kernel, ones, 1, 1)

	const eps = 1e-6
	for i := range input.Data() {
		orig := input.Data()[i]
		input.Data()[i] = orig + eps
		plus := sumLoss(input, kernel, 1, 1)
		input.Data()[i] = orig - eps
		minus := sumLoss(input, kernel, 1, 1)
		input.Data()[i] = orig

		numerical := (plus - minus) / (2 * eps)
		assert.InDelta(t, numerical, inputGrad.Data()[i], 1e-6, "input grad %d", i)
	}
}
