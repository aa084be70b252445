package export

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// WriteStateDict writes a named tensor map to a .mcnn file.
//
// Tensors are serialized as little-endian float64 in name order, so the
// same state always yields the same bytes apart from the timestamp.
func WriteStateDict(path string, state map[string]*tensor.Tensor, header Header) error {
	header.FormatVersion = FormatVersion
	header.CreatedAt = time.Now().UTC()
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	var offset int64
	header.Tensors = make([]TensorMeta, 0, len(state))
	var data []byte
	for _, name := range names {
		t := state[name]
		size := int64(t.NumElements() * 8)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeFloat64,
			Shape:  append([]int(nil), t.Shape()...),
			Offset: offset,
			Size:   size,
		})
		offset += size

		buf := make([]byte, size)
		for i, v := range t.Data() {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
		data = append(data, buf...)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	checksum := sha256.Sum256(data)

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))
	binary.LittleEndian.PutUint64(fixed[8:16], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(data)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	currentPos := int64(FixedHeaderSize) + int64(len(headerJSON))
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}
