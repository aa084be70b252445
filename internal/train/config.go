// Package train drives the MNIST training loop: mini-batch optimization
// with periodic logging, checkpointing, evaluation, and loss curve plots.
package train

import "fmt"

// Config holds the training run settings. Values are fixed once the run
// starts.
type Config struct {
	DataDir      string  // directory with the MNIST IDX files
	ModelDir     string  // output directory for checkpoints, plots and exports
	Steps        int     // number of optimization steps
	LogEvery     int     // log softmax probabilities every N steps
	BatchSize    int     // examples per step
	LearningRate float64 // Adam learning rate
	Seed         int64   // seeds weight init, dropout and batch shuffling
}

// DefaultConfig returns the standard run settings: 20000 steps of batch 100
// with Adam at 1e-4, logging every 5000 steps.
func DefaultConfig() Config {
	return Config{
		DataDir:      "/tmp/MNIST_data",
		Steps:        20000,
		LogEvery:     5000,
		BatchSize:    100,
		LearningRate: 1e-4,
		Seed:         42,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.LogEvery <= 0 {
		return fmt.Errorf("log interval must be positive, got %d", c.LogEvery)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", c.LearningRate)
	}
	if c.ModelDir == "" {
		return fmt.Errorf("model dir must be set")
	}
	return nil
}
