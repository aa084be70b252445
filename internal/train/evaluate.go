package train

import (
	"fmt"

	"github.com/QaisarRajput/tensorflow-workshop/internal/mnist"
	"github.com/QaisarRajput/tensorflow-workshop/internal/model"
)

// Metrics summarizes one evaluation pass over a dataset.
type Metrics struct {
	Loss     float64
	Accuracy float64
	Samples  int
}

// String renders the metrics as a single line.
func (m Metrics) String() string {
	return fmt.Sprintf("{loss: %.4f, accuracy: %.4f, samples: %d}", m.Loss, m.Accuracy, m.Samples)
}

// Evaluate runs one unshuffled pass over the dataset in batches of
// batchSize and returns the sample-weighted mean loss and accuracy.
//
// The final partial batch is included, so every sample counts exactly once.
func Evaluate(net *model.Net, dataset *mnist.Dataset, batchSize int) Metrics {
	total := dataset.NumSamples()
	if total == 0 {
		return Metrics{}
	}

	indices := make([]int, total)
	for i := range indices {
		indices[i] = i
	}

	weightedLoss := 0.0
	correct := 0
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		images, labels := mnist.MakeBatch(dataset, indices[start:end])
		loss, batchCorrect := net.Evaluate(images, labels)
		weightedLoss += loss * float64(end-start)
		correct += batchCorrect
	}

	return Metrics{
		Loss:     weightedLoss / float64(total),
		Accuracy: float64(correct) / float64(total),
		Samples:  total,
	}
}
