package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/QaisarRajput/tensorflow-workshop/internal/model"
	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Manifest describes the serving contract of an exported bundle.
//
// Consumers feed a flat float vector named "x" with 784 values per example
// and read back the predicted class and the per-class probabilities.
type Manifest struct {
	RunID      string       `yaml:"run_id"`
	ExportedAt time.Time    `yaml:"exported_at"`
	Input      TensorSpec   `yaml:"input"`
	Outputs    []TensorSpec `yaml:"outputs"`
}

// TensorSpec names one input or output of the serving contract.
type TensorSpec struct {
	Name  string `yaml:"name"`
	DType string `yaml:"dtype"`
	Shape []int  `yaml:"shape"`
}

// SaveBundle exports a trained network under modelDir in a fresh
// timestamped subdirectory, the version layout serving systems expect:
//
//	<modelDir>/<unix-timestamp>/weights.mcnn
//	<modelDir>/<unix-timestamp>/serving.yaml
//
// Returns the bundle directory.
func SaveBundle(net *model.Net, modelDir string) (string, error) {
	dir := filepath.Join(modelDir, strconv.FormatInt(time.Now().Unix(), 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create bundle dir: %w", err)
	}

	err := WriteStateDict(filepath.Join(dir, WeightsFile), net.StateDict(), Header{
		ModelType: "mnist-cnn",
	})
	if err != nil {
		return "", fmt.Errorf("failed to write weights: %w", err)
	}

	manifest := Manifest{
		RunID:      uuid.NewString(),
		ExportedAt: time.Now().UTC(),
		Input: TensorSpec{
			Name:  "x",
			DType: dtypeFloat64,
			Shape: []int{model.InputFeatures},
		},
		Outputs: []TensorSpec{
			{Name: "classes", DType: "int64", Shape: []int{1}},
			{Name: "probabilities", DType: dtypeFloat64, Shape: []int{model.NumClasses}},
		},
	}
	manifestYAML, err := yaml.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), manifestYAML, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return dir, nil
}

// LoadBundle restores network weights from a bundle directory and returns
// its manifest.
func LoadBundle(dir string, net *model.Net) (*Manifest, error) {
	state, _, err := ReadStateDict(filepath.Join(dir, WeightsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}
	if err := net.LoadStateDict(state); err != nil {
		return nil, err
	}

	manifestYAML, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(manifestYAML, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}

const optimizerPrefix = "optimizer."

// SaveCheckpoint writes model weights plus optimizer state to a single
// .mcnn file for later resumption.
//
// Optimizer tensors are stored under an "optimizer." name prefix so they
// cannot collide with parameter names.
func SaveCheckpoint(path string, modelState, optimizerState map[string]*tensor.Tensor, meta CheckpointMeta) error {
	combined := make(map[string]*tensor.Tensor, len(modelState)+len(optimizerState))
	for name, t := range modelState {
		combined[name] = t
	}
	for name, t := range optimizerState {
		combined[optimizerPrefix+name] = t
	}
	return WriteStateDict(path, combined, Header{
		ModelType:  "mnist-cnn",
		Checkpoint: &meta,
	})
}

// LoadCheckpoint reads a checkpoint file and splits it back into model and
// optimizer state.
func LoadCheckpoint(path string) (modelState, optimizerState map[string]*tensor.Tensor, meta CheckpointMeta, err error) {
	state, header, err := ReadStateDict(path)
	if err != nil {
		return nil, nil, meta, err
	}
	if header.Checkpoint == nil {
		return nil, nil, meta, fmt.Errorf("%s is not a checkpoint file", path)
	}

	modelState = make(map[string]*tensor.Tensor)
	optimizerState = make(map[string]*tensor.Tensor)
	for name, t := range state {
		if strings.HasPrefix(name, optimizerPrefix) {
			optimizerState[strings.TrimPrefix(name, optimizerPrefix)] = t
		} else {
			modelState[name] = t
		}
	}
	return modelState, optimizerState, *header.Checkpoint, nil
}
