package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax_RowsSumToOne(t *testing.T) {
	logits, err := FromSlice([]float64{
		1, 2, 3,
		-1, 0, 1,
	}, Shape{2, 3})
	require.NoError(t, err)

	probs := Softmax(logits)
	data := probs.Data()
	for r := 0; r < 2; r++ {
		sum := 0.0
		for c := 0; c < 3; c++ {
			v := data[r*3+c]
			assert.Greater(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
}

func TestSoftmax_LargeLogitsStable(t *testing.T) {
	logits, err := FromSlice([]float64{1000, 1001, 1002}, Shape{1, 3})
	require.NoError(t, err)

	probs := Softmax(logits)
	for _, v := range probs.Data() {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
	// shifted logits give the same distribution as [0, 1, 2]
	assert.InDelta(t, math.Exp(2)/(1+math.E+math.Exp(2)), probs.At(0, 2), 1e-9)
}

func TestLogSoftmaxRow(t *testing.T) {
	lp := LogSoftmaxRow([]float64{0, 0, 0})
	for _, v := range lp {
		assert.InDelta(t, -math.Log(3), v, 1e-12)
	}
}

func TestArgmaxRow(t *testing.T) {
	assert.Equal(t, 2, ArgmaxRow([]float64{0.1, 0.2, 0.5, 0.2}))
	assert.Equal(t, 0, ArgmaxRow([]float64{3, 1, 2}))
}
