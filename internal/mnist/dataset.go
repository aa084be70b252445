package mnist

import (
	"fmt"
	"path/filepath"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

const (
	// ImageSize is the number of pixels per flattened 28x28 image.
	ImageSize = 784

	// ImageRows and ImageCols are the spatial dimensions of each image.
	ImageRows = 28
	ImageCols = 28

	// NumClasses is the number of digit classes.
	NumClasses = 10

	// ValidationSize is the number of training examples carved off the
	// front of the training set for validation.
	ValidationSize = 5000
)

// Dataset holds a set of MNIST images and labels.
type Dataset struct {
	Images [][]float64 // [num_samples][784], pixels in [0, 1]
	Labels []int       // [num_samples], values 0-9
}

// NumSamples returns the total number of samples in the dataset.
func (d *Dataset) NumSamples() int {
	return len(d.Images)
}

// Splits holds the three standard MNIST partitions.
//
// The validation set is the first ValidationSize examples of the official
// training file; Train holds the remainder.
type Splits struct {
	Train      *Dataset
	Validation *Dataset
	Test       *Dataset
}

// Load reads the four official IDX files from dataDir and returns the
// train/validation/test splits with pixels normalized to [0, 1].
//
// Expected files in dataDir (plain or with a .gz suffix):
//   - train-images-idx3-ubyte, train-labels-idx1-ubyte
//   - t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte
//
// Download MNIST from: http://yann.lecun.com/exdb/mnist/
func Load(dataDir string) (*Splits, error) {
	trainFull, err := loadPair(dataDir, "train-images-idx3-ubyte", "train-labels-idx1-ubyte")
	if err != nil {
		return nil, fmt.Errorf("failed to load training set: %w", err)
	}
	test, err := loadPair(dataDir, "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte")
	if err != nil {
		return nil, fmt.Errorf("failed to load test set: %w", err)
	}

	if trainFull.NumSamples() <= ValidationSize {
		return nil, fmt.Errorf("training set too small: %d samples, need more than %d",
			trainFull.NumSamples(), ValidationSize)
	}

	return &Splits{
		Validation: &Dataset{
			Images: trainFull.Images[:ValidationSize],
			Labels: trainFull.Labels[:ValidationSize],
		},
		Train: &Dataset{
			Images: trainFull.Images[ValidationSize:],
			Labels: trainFull.Labels[ValidationSize:],
		},
		Test: test,
	}, nil
}

// loadPair reads one image/label file pair and normalizes pixels.
func loadPair(dataDir, imageName, labelName string) (*Dataset, error) {
	imagesRaw, err := readIDXImages(filepath.Join(dataDir, imageName))
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	labelsRaw, err := readIDXLabels(filepath.Join(dataDir, labelName))
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}

	if len(imagesRaw) != len(labelsRaw) {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", len(imagesRaw), len(labelsRaw))
	}

	images := make([][]float64, len(imagesRaw))
	labels := make([]int, len(labelsRaw))
	for i := range imagesRaw {
		if len(imagesRaw[i]) != ImageSize {
			return nil, fmt.Errorf("image %d has %d pixels, want %d", i, len(imagesRaw[i]), ImageSize)
		}
		images[i] = make([]float64, ImageSize)
		for j, pixel := range imagesRaw[i] {
			// Normalize: 0-255 -> 0.0-1.0
			images[i][j] = float64(pixel) / 255.0
		}
		label := int(labelsRaw[i])
		if label < 0 || label >= NumClasses {
			return nil, fmt.Errorf("label out of range [0, %d) at sample %d: %d", NumClasses, i, label)
		}
		labels[i] = label
	}

	return &Dataset{Images: images, Labels: labels}, nil
}

// MakeBatch packs the samples at the given indices into a [len(indices), 784]
// tensor plus a label slice.
func MakeBatch(d *Dataset, indices []int) (*tensor.Tensor, []int) {
	images := tensor.Zeros(tensor.Shape{len(indices), ImageSize})
	data := images.Data()
	labels := make([]int, len(indices))

	for i, idx := range indices {
		copy(data[i*ImageSize:(i+1)*ImageSize], d.Images[idx])
		labels[i] = d.Labels[idx]
	}
	return images, labels
}
