// Package model defines the convolutional network used for MNIST digit
// classification and its train/evaluate/predict entry points.
package model

import (
	"fmt"
	"math/rand"

	"github.com/QaisarRajput/tensorflow-workshop/internal/nn"
	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

const (
	// NumClasses is the number of digit classes.
	NumClasses = 10

	// InputFeatures is the flattened input size of one 28x28 image.
	InputFeatures = 784

	imageRows = 28
	imageCols = 28

	// flatFeatures is the flattened size after the second pooling layer:
	// 64 channels over a 7x7 plane.
	flatFeatures = 64 * 7 * 7

	dropoutRate = 0.4
)

// Net is a two-block convolutional network for MNIST classification.
//
// Architecture:
//
//	Input: [batch, 1, 28, 28] (grayscale MNIST images)
//	Conv1: 1 -> 32 channels, 5x5 kernel, same padding -> [batch, 32, 28, 28]
//	ReLU
//	MaxPool: 2x2, stride 2 -> [batch, 32, 14, 14]
//	Conv2: 32 -> 64 channels, 5x5 kernel, same padding -> [batch, 64, 14, 14]
//	ReLU
//	MaxPool: 2x2, stride 2 -> [batch, 64, 7, 7]
//	Flatten -> [batch, 3136]
//	FC1: 3136 -> 1024
//	ReLU
//	Dropout: rate 0.4 (training only)
//	FC2: 1024 -> 10 (class scores)
type Net struct {
	conv1 *nn.Conv2D
	relu1 *nn.ReLU
	pool1 *nn.MaxPool2D
	conv2 *nn.Conv2D
	relu2 *nn.ReLU
	pool2 *nn.MaxPool2D
	fc1   *nn.Linear
	relu3 *nn.ReLU
	drop  *nn.Dropout
	fc2   *nn.Linear
}

// Prediction is the classification result for a single example.
type Prediction struct {
	Class         int       // argmax of Probabilities
	Probabilities []float64 // softmax over the 10 classes
}

// New creates a network with Xavier-initialized weights.
//
// The seed drives both weight initialization and the dropout mask stream,
// so two models built from the same seed start identical.
func New(seed int64) *Net {
	rng := rand.New(rand.NewSource(seed))
	return &Net{
		conv1: nn.NewConv2D("conv1", 1, 32, 5, 5, 1, 2, rng), // same padding: (5-1)/2
		relu1: nn.NewReLU(),
		pool1: nn.NewMaxPool2D(2, 2),
		conv2: nn.NewConv2D("conv2", 32, 64, 5, 5, 1, 2, rng),
		relu2: nn.NewReLU(),
		pool2: nn.NewMaxPool2D(2, 2),
		fc1:   nn.NewLinear("fc1", flatFeatures, 1024, rng),
		relu3: nn.NewReLU(),
		drop:  nn.NewDropout(dropoutRate, rng),
		fc2:   nn.NewLinear("fc2", 1024, NumClasses, rng),
	}
}

// forward runs the network and returns logits [batch, 10].
//
// Dropout is active only when train is true.
func (n *Net) forward(images *tensor.Tensor, train bool) *tensor.Tensor {
	shape := images.Shape()
	if len(shape) != 2 || shape[1] != InputFeatures {
		panic(fmt.Sprintf("model: expected input [batch, %d], got %v", InputFeatures, shape))
	}
	batch := shape[0]

	x := images.Reshape(batch, 1, imageRows, imageCols)

	x = n.conv1.Forward(x) // [batch, 32, 28, 28]
	x = n.relu1.Forward(x)
	x = n.pool1.Forward(x) // [batch, 32, 14, 14]

	x = n.conv2.Forward(x) // [batch, 64, 14, 14]
	x = n.relu2.Forward(x)
	x = n.pool2.Forward(x) // [batch, 64, 7, 7]

	x = x.Reshape(batch, flatFeatures)

	x = n.fc1.Forward(x) // [batch, 1024]
	x = n.relu3.Forward(x)
	x = n.drop.Forward(x, train)
	x = n.fc2.Forward(x) // [batch, 10]

	return x
}

// backward propagates the loss gradient through every layer, accumulating
// parameter gradients.
func (n *Net) backward(grad *tensor.Tensor) {
	batch := grad.Shape()[0]

	g := n.fc2.Backward(grad)
	g = n.drop.Backward(g)
	g = n.relu3.Backward(g)
	g = n.fc1.Backward(g)

	g = g.Reshape(batch, 64, 7, 7)

	g = n.pool2.Backward(g)
	g = n.relu2.Backward(g)
	g = n.conv2.Backward(g)

	g = n.pool1.Backward(g)
	g = n.relu1.Backward(g)
	n.conv1.Backward(g)
}

// Train runs one forward/backward step on a batch.
//
// images is [batch, 784]; labels holds one class per row. Gradients are
// accumulated on the parameters; the caller applies them with an optimizer.
// Returns the mean loss and the softmax probabilities for logging.
func (n *Net) Train(images *tensor.Tensor, labels []int) (float64, *tensor.Tensor) {
	logits := n.forward(images, true)
	loss, probs := nn.SoftmaxCrossEntropy(logits, labels)
	n.backward(nn.SoftmaxCrossEntropyBackward(probs, labels))
	return loss, probs
}

// Evaluate runs inference on a batch and returns the mean loss and the
// number of correctly classified examples.
func (n *Net) Evaluate(images *tensor.Tensor, labels []int) (float64, int) {
	logits := n.forward(images, false)
	loss, probs := nn.SoftmaxCrossEntropy(logits, labels)
	correct := int(nn.Accuracy(probs, labels)*float64(len(labels)) + 0.5)
	return loss, correct
}

// Predict classifies a batch of images [batch, 784].
func (n *Net) Predict(images *tensor.Tensor) []Prediction {
	logits := n.forward(images, false)
	batch := logits.Shape()[0]
	probs := tensor.Softmax(logits)
	probsData := probs.Data()

	predictions := make([]Prediction, batch)
	for b := 0; b < batch; b++ {
		row := probsData[b*NumClasses : (b+1)*NumClasses]
		predictions[b] = Prediction{
			Class:         tensor.ArgmaxRow(row),
			Probabilities: append([]float64(nil), row...),
		}
	}
	return predictions
}

// Parameters returns all trainable parameters in a fixed order.
func (n *Net) Parameters() []*nn.Parameter {
	// 4 layers x 2 params (weight + bias) = 8 params.
	params := make([]*nn.Parameter, 0, 8)
	params = append(params, n.conv1.Parameters()...)
	params = append(params, n.conv2.Parameters()...)
	params = append(params, n.fc1.Parameters()...)
	params = append(params, n.fc2.Parameters()...)
	return params
}

// StateDict exports a copy of all parameter tensors keyed by name.
func (n *Net) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor, 8)
	for _, p := range n.Parameters() {
		state[p.Name()] = p.Value().Clone()
	}
	return state
}

// LoadStateDict restores parameter values from a StateDict export.
//
// Every parameter of the network must be present with a matching shape.
func (n *Net) LoadStateDict(state map[string]*tensor.Tensor) error {
	for _, p := range n.Parameters() {
		t, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("model: missing parameter %q in state", p.Name())
		}
		if !t.Shape().Equal(p.Value().Shape()) {
			return fmt.Errorf("model: parameter %q shape mismatch: got %v, want %v",
				p.Name(), t.Shape(), p.Value().Shape())
		}
		copy(p.Value().Data(), t.Data())
	}
	return nil
}

// String returns a description of the model architecture.
func (n *Net) String() string {
	return fmt.Sprintf(`Net(
  %s
  ReLU()
  %s
  %s
  ReLU()
  %s
  %s
  ReLU()
  Dropout(rate=%.1f)
  %s
)`,
		n.conv1.String(),
		n.pool1.String(),
		n.conv2.String(),
		n.pool2.String(),
		n.fc1.String(),
		n.drop.Rate(),
		n.fc2.String(),
	)
}
