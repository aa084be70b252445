package train

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QaisarRajput/tensorflow-workshop/internal/mnist"
	"github.com/QaisarRajput/tensorflow-workshop/internal/model"
	"github.com/QaisarRajput/tensorflow-workshop/internal/optim"
)

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	config.ModelDir = t.TempDir()
	assert.NoError(t, config.Validate())

	bad := config
	bad.Steps = 0
	assert.Error(t, bad.Validate())

	bad = config
	bad.BatchSize = -1
	assert.Error(t, bad.Validate())

	bad = config
	bad.LearningRate = 0
	assert.Error(t, bad.Validate())

	bad = config
	bad.ModelDir = ""
	assert.Error(t, bad.Validate())
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 20000, config.Steps)
	assert.Equal(t, 5000, config.LogEvery)
	assert.Equal(t, 100, config.BatchSize)
	assert.InDelta(t, 1e-4, config.LearningRate, 1e-12)
	assert.Equal(t, "/tmp/MNIST_data", config.DataDir)
}

func TestTrainer_RunRecordsHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping training loop in short mode")
	}

	config := Config{
		ModelDir:     t.TempDir(),
		Steps:        10,
		LogEvery:     5,
		BatchSize:    8,
		LearningRate: 1e-3,
		Seed:         1,
	}

	net := model.New(config.Seed)
	dataset := mnist.Synthetic(2)
	optimizer := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: config.LearningRate})
	batcher := mnist.NewBatcher(dataset, config.BatchSize, rand.New(rand.NewSource(config.Seed)))
	trainer := NewTrainer(net, optimizer, batcher, config)

	require.NoError(t, trainer.Run())

	history := trainer.History()
	require.Equal(t, 2, history.Len())
	assert.Equal(t, 5, history.Records()[0].Step)
	assert.Equal(t, 10, history.Records()[1].Step)
	for _, r := range history.Records() {
		assert.Greater(t, r.Loss, 0.0)
		assert.GreaterOrEqual(t, r.Accuracy, 0.0)
		assert.LessOrEqual(t, r.Accuracy, 1.0)
	}
}

func TestTrainer_RejectsInvalidConfig(t *testing.T) {
	config := Config{ModelDir: t.TempDir()}
	trainer := NewTrainer(model.New(1), optim.NewAdam(nil, optim.AdamConfig{}), nil, config)
	assert.Error(t, trainer.Run())
}

func TestEvaluate_CountsEverySampleOnce(t *testing.T) {
	net := model.New(3)
	dataset := mnist.Synthetic(3) // 30 samples

	// batch size 7 does not divide 30; the tail batch must still count
	metrics := Evaluate(net, dataset, 7)
	assert.Equal(t, 30, metrics.Samples)
	assert.Greater(t, metrics.Loss, 0.0)
	assert.GreaterOrEqual(t, metrics.Accuracy, 0.0)
	assert.LessOrEqual(t, metrics.Accuracy, 1.0)
}

func TestEvaluate_EmptyDataset(t *testing.T) {
	metrics := Evaluate(model.New(1), &mnist.Dataset{}, 10)
	assert.Equal(t, Metrics{}, metrics)
}

func TestMetrics_String(t *testing.T) {
	m := Metrics{Loss: 0.1234, Accuracy: 0.9876, Samples: 10000}
	assert.Equal(t, "{loss: 0.1234, accuracy: 0.9876, samples: 10000}", m.String())
}

func TestPredictExamples(t *testing.T) {
	net := model.New(5)
	dataset := mnist.Synthetic(1)

	predictions := PredictExamples(net, dataset, 20)
	// only 10 samples exist; the request is clamped
	require.Len(t, predictions, 10)
	for _, p := range predictions {
		assert.GreaterOrEqual(t, p.Class, 0)
		assert.Less(t, p.Class, model.NumClasses)
	}
}

func TestSavePlot(t *testing.T) {
	var history History
	history.Append(Record{Step: 100, Loss: 2.3, Accuracy: 0.1})
	history.Append(Record{Step: 200, Loss: 1.1, Accuracy: 0.6})
	history.Append(Record{Step: 300, Loss: 0.4, Accuracy: 0.9})

	path := filepath.Join(t.TempDir(), "training.svg")
	require.NoError(t, SavePlot(&history, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestSavePlot_EmptyHistory(t *testing.T) {
	var history History
	assert.Error(t, SavePlot(&history, filepath.Join(t.TempDir(), "x.svg")))
}
