package train

import (
	"fmt"
	"log"
	"strings"

	"github.com/QaisarRajput/tensorflow-workshop/internal/mnist"
	"github.com/QaisarRajput/tensorflow-workshop/internal/model"
	"github.com/QaisarRajput/tensorflow-workshop/internal/nn"
	"github.com/QaisarRajput/tensorflow-workshop/internal/optim"
)

// Trainer runs step-based mini-batch training of a network.
type Trainer struct {
	net       *model.Net
	optimizer optim.Optimizer
	batcher   *mnist.Batcher
	config    Config
	history   History
}

// NewTrainer wires a network, optimizer and batch source together.
func NewTrainer(net *model.Net, optimizer optim.Optimizer, batcher *mnist.Batcher, config Config) *Trainer {
	return &Trainer{
		net:       net,
		optimizer: optimizer,
		batcher:   batcher,
		config:    config,
	}
}

// Run executes config.Steps optimization steps.
//
// Every LogEvery steps (and on the final step) it logs the running loss and
// batch accuracy plus the softmax probabilities of the first example in the
// batch, and appends a record to the history.
func (t *Trainer) Run() error {
	if err := t.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log.Printf("training for %d steps, batch size %d, lr %g",
		t.config.Steps, t.config.BatchSize, t.optimizer.GetLR())

	runningLoss := 0.0
	runningCorrect := 0
	runningSamples := 0

	for step := 1; step <= t.config.Steps; step++ {
		t.optimizer.ZeroGrad()

		images, labels := t.batcher.Next()
		loss, probs := t.net.Train(images, labels)
		t.optimizer.Step()

		runningLoss += loss
		runningCorrect += int(nn.Accuracy(probs, labels)*float64(len(labels)) + 0.5)
		runningSamples += len(labels)

		if step%t.config.LogEvery == 0 || step == t.config.Steps {
			avgLoss := runningLoss / float64(runningSamples/t.config.BatchSize)
			accuracy := float64(runningCorrect) / float64(runningSamples)

			log.Printf("step %d: loss=%.4f accuracy=%.4f", step, avgLoss, accuracy)
			log.Printf("step %d: probabilities=%s", step, formatProbabilities(probs.Data(), model.NumClasses))

			t.history.Append(Record{Step: step, Loss: avgLoss, Accuracy: accuracy})
			runningLoss, runningCorrect, runningSamples = 0, 0, 0
		}
	}

	log.Printf("training complete after %d steps", t.config.Steps)
	return nil
}

// History returns the records logged so far.
func (t *Trainer) History() *History {
	return &t.history
}

// formatProbabilities renders the first row of a probability tensor.
func formatProbabilities(data []float64, classes int) string {
	parts := make([]string, classes)
	for i := 0; i < classes; i++ {
		parts[i] = fmt.Sprintf("%.3f", data[i])
	}
	return "[" + strings.Join(parts, " ") + "]"
}
