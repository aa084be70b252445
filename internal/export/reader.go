package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Sentinel errors for format problems.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes, not a .mcnn file")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch, file is corrupted")
)

// ReadStateDict reads a .mcnn file and returns its tensors and header.
//
// The SHA-256 checksum of the data section is always verified.
func ReadStateDict(path string) (map[string]*tensor.Tensor, Header, error) {
	var header Header

	file, err := os.Open(path)
	if err != nil {
		return nil, header, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(file, fixed); err != nil {
		return nil, header, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, header, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, header, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	headerSize := binary.LittleEndian.Uint64(fixed[8:16])
	dataSize := binary.LittleEndian.Uint64(fixed[16:24])
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > 100*1024*1024 {
		return nil, header, fmt.Errorf("header too large: %d bytes", headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerJSON); err != nil {
		return nil, header, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, header, fmt.Errorf("failed to parse header: %w", err)
	}

	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := io.CopyN(io.Discard, file, padding); err != nil {
			return nil, header, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, header, fmt.Errorf("failed to read tensor data: %w", err)
	}

	checksum := sha256.Sum256(data)
	if !bytes.Equal(checksum[:], stored[:]) {
		return nil, header, ErrChecksumMismatch
	}

	state := make(map[string]*tensor.Tensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		if meta.DType != dtypeFloat64 {
			return nil, header, fmt.Errorf("tensor %s: unsupported dtype %q", meta.Name, meta.DType)
		}
		end := meta.Offset + meta.Size
		if meta.Offset < 0 || end > int64(len(data)) {
			return nil, header, fmt.Errorf("tensor %s: range [%d, %d) outside data section of %d bytes",
				meta.Name, meta.Offset, end, len(data))
		}

		shape := tensor.Shape(meta.Shape)
		if int64(shape.NumElements()*8) != meta.Size {
			return nil, header, fmt.Errorf("tensor %s: shape %v does not match %d bytes",
				meta.Name, shape, meta.Size)
		}

		values := make([]float64, shape.NumElements())
		raw := data[meta.Offset:end]
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		t, err := tensor.FromSlice(values, shape)
		if err != nil {
			return nil, header, fmt.Errorf("tensor %s: %w", meta.Name, err)
		}
		state[meta.Name] = t
	}

	return state, header, nil
}
