// Package mnist loads the MNIST handwritten digit dataset and serves
// shuffled mini-batches for training.
//
// Images come from the official IDX binary files, either uncompressed or
// gzipped (the .gz form is how the dataset is distributed). Pixels are
// normalized to [0, 1] at load time.
package mnist

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	imageMagic = 2051
	labelMagic = 2049
)

// openIDX opens an IDX file, trying the plain name first and falling back
// to "<name>.gz". The returned reader is decompressed when needed.
func openIDX(filename string) (io.ReadCloser, error) {
	if file, err := os.Open(filename); err == nil {
		return file, nil
	}

	file, err := os.Open(filename + ".gz")
	if err != nil {
		return nil, fmt.Errorf("open %s (or .gz): %w", filename, err)
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open %s.gz: %w", filename, err)
	}
	return &gzipFile{gz: gz, file: file}, nil
}

type gzipFile struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipFile) Close() error {
	gzErr := g.gz.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}

// readIDXImages reads an MNIST image file in IDX format.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
func readIDXImages(filename string) ([][]byte, error) {
	file, err := openIDX(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var magic uint32
	if err := binary.Read(file, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != imageMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", magic, imageMagic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(file, binary.BigEndian, &numImages); err != nil {
		return nil, err
	}
	if err := binary.Read(file, binary.BigEndian, &numRows); err != nil {
		return nil, err
	}
	if err := binary.Read(file, binary.BigEndian, &numCols); err != nil {
		return nil, err
	}

	imageSize := int(numRows * numCols)
	images := make([][]byte, numImages)

	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(file, images[i]); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
	}

	return images, nil
}

// readIDXLabels reads an MNIST label file in IDX format.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func readIDXLabels(filename string) ([]byte, error) {
	file, err := openIDX(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var magic uint32
	if err := binary.Read(file, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != labelMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", magic, labelMagic)
	}

	var numLabels uint32
	if err := binary.Read(file, binary.BigEndian, &numLabels); err != nil {
		return nil, err
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(file, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	return labels, nil
}
