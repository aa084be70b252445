// Command mnist-cnn trains a convolutional network on MNIST, evaluates it
// on the test set, predicts a few examples, and exports a serving bundle.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/QaisarRajput/tensorflow-workshop/internal/export"
	"github.com/QaisarRajput/tensorflow-workshop/internal/mnist"
	"github.com/QaisarRajput/tensorflow-workshop/internal/model"
	"github.com/QaisarRajput/tensorflow-workshop/internal/optim"
	"github.com/QaisarRajput/tensorflow-workshop/internal/train"
)

const numPredictions = 20

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	config := train.DefaultConfig()

	root := &cobra.Command{
		Use:   "mnist-cnn",
		Short: "Train a convolutional MNIST classifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ModelDir == "" {
				config.ModelDir = filepath.Join("/tmp/mnist-cnn-models",
					strconv.FormatInt(time.Now().Unix(), 10))
			}
			return run(config)
		},
	}

	root.Flags().StringVar(&config.DataDir, "data-dir", config.DataDir, "directory with the MNIST IDX files")
	root.Flags().StringVar(&config.ModelDir, "model-dir", "", "output directory (default /tmp/mnist-cnn-models/<timestamp>)")
	root.Flags().IntVar(&config.Steps, "steps", config.Steps, "number of training steps")
	root.Flags().IntVar(&config.LogEvery, "log-every", config.LogEvery, "log every N steps")
	return root
}

func run(config train.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(config.ModelDir, 0o755); err != nil {
		return fmt.Errorf("failed to create model dir: %w", err)
	}

	log.Printf("loading MNIST data from %s", config.DataDir)
	splits, err := mnist.Load(config.DataDir)
	if err != nil {
		return fmt.Errorf("failed to load MNIST: %w", err)
	}
	log.Printf("train: %d, validation: %d, test: %d samples",
		splits.Train.NumSamples(), splits.Validation.NumSamples(), splits.Test.NumSamples())

	net := model.New(config.Seed)
	log.Printf("model:\n%s", net)

	optimizer := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: config.LearningRate})
	batcher := mnist.NewBatcher(splits.Train, config.BatchSize, rand.New(rand.NewSource(config.Seed)))
	trainer := train.NewTrainer(net, optimizer, batcher, config)

	if err := trainer.Run(); err != nil {
		return err
	}

	history := trainer.History()
	if history.Len() > 0 {
		last := history.Records()[history.Len()-1]
		checkpointPath := filepath.Join(config.ModelDir, "checkpoint.mcnn")
		err := export.SaveCheckpoint(checkpointPath, net.StateDict(), optimizer.StateDict(),
			export.CheckpointMeta{Step: last.Step, Loss: last.Loss, OptimizerType: "Adam"})
		if err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}
		log.Printf("saved checkpoint to %s", checkpointPath)

		plotPath := filepath.Join(config.ModelDir, "training.svg")
		if err := train.SavePlot(history, plotPath); err != nil {
			return fmt.Errorf("failed to save training plot: %w", err)
		}
		log.Printf("saved training plot to %s", plotPath)
	}

	valMetrics := train.Evaluate(net, splits.Validation, config.BatchSize)
	log.Printf("validation metrics: %s", valMetrics)

	metrics := train.Evaluate(net, splits.Test, config.BatchSize)
	log.Printf("test metrics: %s", metrics)

	log.Printf("predicting %d test examples", numPredictions)
	train.PredictExamples(net, splits.Test, numPredictions)

	bundleDir, err := export.SaveBundle(net, config.ModelDir)
	if err != nil {
		return fmt.Errorf("failed to export model: %w", err)
	}
	log.Printf("exported serving bundle to %s", bundleDir)
	return nil
}
