package train

import (
	"fmt"
	"log"

	"github.com/QaisarRajput/tensorflow-workshop/internal/mnist"
	"github.com/QaisarRajput/tensorflow-workshop/internal/model"
)

// PredictExamples classifies the first n examples of a dataset and logs
// each predicted class against the true label.
func PredictExamples(net *model.Net, dataset *mnist.Dataset, n int) []model.Prediction {
	if n > dataset.NumSamples() {
		n = dataset.NumSamples()
	}
	if n == 0 {
		return nil
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	images, labels := mnist.MakeBatch(dataset, indices)
	predictions := net.Predict(images)

	for i, p := range predictions {
		marker := ""
		if p.Class != labels[i] {
			marker = "  (wrong)"
		}
		log.Printf("example %d: predicted=%d actual=%d confidence=%.3f%s",
			i, p.Class, labels[i], p.Probabilities[p.Class], marker)
	}
	return predictions
}

// FormatPrediction renders one prediction for display.
func FormatPrediction(p model.Prediction) string {
	return fmt.Sprintf("class=%d confidence=%.3f", p.Class, p.Probabilities[p.Class])
}
