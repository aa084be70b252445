package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

func TestSoftmaxCrossEntropy_UniformLogits(t *testing.T) {
	logits := tensor.Zeros(tensor.Shape{4, 10})
	labels := []int{0, 3, 7, 9}

	loss, probs := SoftmaxCrossEntropy(logits, labels)

	// equal logits: loss is ln(10) and probabilities are uniform
	assert.InDelta(t, math.Log(10), loss, 1e-12)
	for _, p := range probs.Data() {
		assert.InDelta(t, 0.1, p, 1e-12)
	}
}

func TestSoftmaxCrossEntropy_ConfidentCorrect(t *testing.T) {
	logits, err := tensor.FromSlice([]float64{10, 0, 0}, tensor.Shape{1, 3})
	require.NoError(t, err)

	loss, _ := SoftmaxCrossEntropy(logits, []int{0})
	assert.Less(t, loss, 1e-3)

	lossWrong, _ := SoftmaxCrossEntropy(logits, []int{1})
	assert.Greater(t, lossWrong, 9.0)
}

func TestSoftmaxCrossEntropyBackward_MatchesNumericalGradient(t *testing.T) {
	logits, err := tensor.FromSlice([]float64{
		0.5, -1.0, 2.0,
		1.5, 0.3, -0.7,
	}, tensor.Shape{2, 3})
	require.NoError(t, err)
	labels := []int{2, 0}

	_, probs := SoftmaxCrossEntropy(logits, labels)
	grad := SoftmaxCrossEntropyBackward(probs, labels)

	const eps = 1e-6
	for i := range logits.Data() {
		orig := logits.Data()[i]
		logits.Data()[i] = orig + eps
		plus, _ := SoftmaxCrossEntropy(logits, labels)
		logits.Data()[i] = orig - eps
		minus, _ := SoftmaxCrossEntropy(logits, labels)
		logits.Data()[i] = orig

		numerical := (plus - minus) / (2 * eps)
		assert.InDelta(t, numerical, grad.Data()[i], 1e-6, "logit grad %d", i)
	}
}

func TestSoftmaxCrossEntropyBackward_SumsToZeroPerRow(t *testing.T) {
	logits, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{1, 4})
	require.NoError(t, err)

	_, probs := SoftmaxCrossEntropy(logits, []int{1})
	grad := SoftmaxCrossEntropyBackward(probs, []int{1})

	sum := 0.0
	for _, g := range grad.Data() {
		sum += g
	}
	assert.InDelta(t, 0.0, sum, 1e-12)
}

func TestAccuracy(t *testing.T) {
	scores, err := tensor.FromSlice([]float64{
		0.9, 0.1,
		0.2, 0.8,
		0.6, 0.4,
	}, tensor.Shape{3, 2})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, Accuracy(scores, []int{0, 1, 0}), 1e-12)
	assert.InDelta(t, 2.0/3.0, Accuracy(scores, []int{0, 1, 1}), 1e-12)
}

func TestSoftmaxCrossEntropy_LabelOutOfRangePanics(t *testing.T) {
	logits := tensor.Zeros(tensor.Shape{1, 3})
	assert.Panics(t, func() { SoftmaxCrossEntropy(logits, []int{3}) })
}
