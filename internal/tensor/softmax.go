package tensor

import (
	"fmt"
	"math"
)

// Softmax computes a row-wise softmax of a 2D tensor.
//
// Input: [batch, classes]. Each output row is a probability distribution:
// non-negative entries summing to 1. Uses the log-sum-exp trick so large
// logits do not overflow.
func Softmax(logits *Tensor) *Tensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax: expected 2D tensor [batch, classes], got %v", shape))
	}

	batch, classes := shape[0], shape[1]
	out := Zeros(shape)

	in := logits.Data()
	res := out.Data()

	for b := 0; b < batch; b++ {
		row := in[b*classes : (b+1)*classes]
		outRow := res[b*classes : (b+1)*classes]

		logProbs := LogSoftmaxRow(row)
		for i, lp := range logProbs {
			outRow[i] = math.Exp(lp)
		}
	}
	return out
}

// LogSoftmaxRow computes log(softmax(z)) for one row of logits.
//
// Formula:
//
//	LogSoftmax(z)[i] = z[i] - (max(z) + log(sum exp(z - max(z))))
//
// Subtracting max(z) before exponentiating prevents overflow.
func LogSoftmaxRow(z []float64) []float64 {
	result := make([]float64, len(z))

	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	sumExp := 0.0
	for _, v := range z {
		sumExp += math.Exp(v - maxZ)
	}
	logSumExp := maxZ + math.Log(sumExp)

	for i, v := range z {
		result[i] = v - logSumExp
	}
	return result
}

// ArgmaxRow returns the index of the maximum value in the slice.
func ArgmaxRow(z []float64) int {
	maxIdx := 0
	maxVal := z[0]
	for i, v := range z[1:] {
		if v > maxVal {
			maxVal = v
			maxIdx = i + 1
		}
	}
	return maxIdx
}
