// Package export persists trained models in a compact binary weight format
// and writes serving bundles with a versioned layout and manifest.
//
// A .mcnn file starts with a 64-byte fixed header, followed by a JSON
// header describing the tensors, alignment padding, and the raw float64
// tensor payload:
//
//	0x00-0x03  magic bytes "MCNN"
//	0x04-0x07  format version (little endian uint32)
//	0x08-0x0F  JSON header size (little endian uint64)
//	0x10-0x17  data section size (little endian uint64)
//	0x18-0x37  SHA-256 checksum of the data section
//	0x38-0x3F  reserved
//
// Tensor data is aligned to a 64-byte boundary and laid out in the order
// given by the header, which lists tensors sorted by name so identical
// state produces identical files.
package export

import "time"

// Format constants.
const (
	MagicBytes      = "MCNN"
	FormatVersion   = 1
	FixedHeaderSize = 64   // fixed header length in bytes
	HeaderAlignment = 64   // tensor data alignment
	ChecksumOffset  = 0x18 // SHA-256 offset in the fixed header
	ChecksumSize    = 32

	// WeightsFile is the weight file name inside a serving bundle.
	WeightsFile = "weights.mcnn"

	// ManifestFile is the serving manifest name inside a bundle.
	ManifestFile = "serving.yaml"
)

// Header is the JSON header of a .mcnn file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ModelType     string            `json:"model_type"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata"`
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// CheckpointMeta carries training state for resumable checkpoints.
type CheckpointMeta struct {
	Step          int     `json:"step"`
	Loss          float64 `json:"loss"`
	OptimizerType string  `json:"optimizer_type"`
}

const dtypeFloat64 = "float64"
