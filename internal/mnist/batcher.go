package mnist

import (
	"fmt"
	"math/rand"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Batcher serves shuffled mini-batches from a dataset, cycling forever.
//
// Each pass over the data uses a fresh random permutation, so every sample
// is visited exactly once per epoch. The permutation sequence is fully
// determined by the seed.
type Batcher struct {
	dataset   *Dataset
	batchSize int
	rng       *rand.Rand
	perm      []int
	cursor    int
}

// NewBatcher creates a batcher over the dataset.
//
// batchSize must be positive and no larger than the dataset.
func NewBatcher(dataset *Dataset, batchSize int, rng *rand.Rand) *Batcher {
	if batchSize <= 0 {
		panic(fmt.Sprintf("batcher: batch size must be positive, got %d", batchSize))
	}
	if batchSize > dataset.NumSamples() {
		panic(fmt.Sprintf("batcher: batch size %d exceeds dataset size %d",
			batchSize, dataset.NumSamples()))
	}
	b := &Batcher{
		dataset:   dataset,
		batchSize: batchSize,
		rng:       rng,
	}
	b.reshuffle()
	return b
}

func (b *Batcher) reshuffle() {
	b.perm = b.rng.Perm(b.dataset.NumSamples())
	b.cursor = 0
}

// Next returns the next mini-batch as a [batchSize, 784] image tensor and
// a label slice.
//
// A partial tail shorter than batchSize is dropped; the epoch ends and the
// data is reshuffled instead.
func (b *Batcher) Next() (*tensor.Tensor, []int) {
	if b.cursor+b.batchSize > len(b.perm) {
		b.reshuffle()
	}
	indices := b.perm[b.cursor : b.cursor+b.batchSize]
	b.cursor += b.batchSize
	return MakeBatch(b.dataset, indices)
}

// BatchSize returns the configured batch size.
func (b *Batcher) BatchSize() int {
	return b.batchSize
}
