package nn

import (
	"fmt"
	"math"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// SoftmaxCrossEntropy computes the mean cross-entropy loss between logits
// and integer class labels, equivalent to cross-entropy against one-hot
// encoded labels.
//
// Uses the LogSoftmax + NLL decomposition for numerical stability:
//
//	loss = mean_b( -log_probs[b][labels[b]] )
//
// Returns the scalar loss and the softmax probabilities, which callers reuse
// for the backward pass, accuracy, and prediction logging.
func SoftmaxCrossEntropy(logits *tensor.Tensor, labels []int) (float64, *tensor.Tensor) {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross entropy: logits must be 2D [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("cross entropy: %d labels for batch of %d", len(labels), batch))
	}

	logitsData := logits.Data()
	probs := tensor.Zeros(shape)
	probsData := probs.Data()

	totalLoss := 0.0
	for b := 0; b < batch; b++ {
		row := logitsData[b*classes : (b+1)*classes]
		logProbs := tensor.LogSoftmaxRow(row)

		target := labels[b]
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("cross entropy: label %d out of range [0, %d)", target, classes))
		}
		totalLoss += -logProbs[target]

		outRow := probsData[b*classes : (b+1)*classes]
		for i, lp := range logProbs {
			outRow[i] = math.Exp(lp)
		}
	}

	return totalLoss / float64(batch), probs
}

// SoftmaxCrossEntropyBackward computes the loss gradient w.r.t. the logits:
//
//	dL/dlogits[b][i] = (probs[b][i] - onehot(labels[b])[i]) / batch
//
// probs is the probability tensor returned by SoftmaxCrossEntropy.
func SoftmaxCrossEntropyBackward(probs *tensor.Tensor, labels []int) *tensor.Tensor {
	shape := probs.Shape()
	batch, classes := shape[0], shape[1]

	grad := probs.Clone()
	gradData := grad.Data()
	inv := 1.0 / float64(batch)
	for b := 0; b < batch; b++ {
		row := gradData[b*classes : (b+1)*classes]
		row[labels[b]] -= 1.0
		for i := range row {
			row[i] *= inv
		}
	}
	return grad
}

// Accuracy computes the fraction of rows whose argmax matches the label.
//
// scores may be logits or probabilities; argmax is invariant to softmax.
func Accuracy(scores *tensor.Tensor, labels []int) float64 {
	shape := scores.Shape()
	batch, classes := shape[0], shape[1]
	data := scores.Data()

	correct := 0
	for b := 0; b < batch; b++ {
		if tensor.ArgmaxRow(data[b*classes:(b+1)*classes]) == labels[b] {
			correct++
		}
	}
	return float64(correct) / float64(batch)
}
