// Package dataset parses the MNIST-style binary image/label format:
// big-endian magic numbers and header fields, followed by raw pixel
// or label bytes. The network engine itself never sees this format —
// it only consumes the input/target vectors this package produces.
package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/MattanMohel/net-rs/pkg/matrix"
	"gonum.org/v1/gonum/stat"
)

const (
	labelMagic = 2049
	imageMagic = 2051

	numClasses = 10
)

// ErrCorruptDataset signals a decoded file failed a magic-number or
// length invariant.
var ErrCorruptDataset = fmt.Errorf("dataset: corrupt dataset file")

func readBE32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadLabels parses a label file: magic 2049, uint32 count, then
// count unsigned bytes each in [0, 9].
func ReadLabels(r io.Reader) ([]byte, error) {
	magic, err := readBE32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorruptDataset, err)
	}
	if magic != labelMagic {
		return nil, fmt.Errorf("%w: label magic number %d, want %d", ErrCorruptDataset, magic, labelMagic)
	}
	count, err := readBE32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorruptDataset, err)
	}

	body := make([]byte, count)
	n, err := io.ReadFull(r, body)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: body: %v", ErrCorruptDataset, err)
	}
	if n != int(count) {
		return nil, fmt.Errorf("%w: label body length %d, want %d", ErrCorruptDataset, n, count)
	}
	return body, nil
}

// ReadImages parses an image file: magic 2051, uint32 count, uint32
// rows, uint32 cols, then count*rows*cols unsigned bytes. It returns
// one []byte of length rows*cols per image.
func ReadImages(r io.Reader) (images [][]byte, rows, cols int, err error) {
	magic, err := readBE32(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: header: %v", ErrCorruptDataset, err)
	}
	if magic != imageMagic {
		return nil, 0, 0, fmt.Errorf("%w: image magic number %d, want %d", ErrCorruptDataset, magic, imageMagic)
	}
	count, err := readBE32(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: header: %v", ErrCorruptDataset, err)
	}
	rowsU, err := readBE32(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: header: %v", ErrCorruptDataset, err)
	}
	colsU, err := readBE32(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: header: %v", ErrCorruptDataset, err)
	}
	rows, cols = int(rowsU), int(colsU)

	perImage := rows * cols
	body := make([]byte, int(count)*perImage)
	n, err := io.ReadFull(r, body)
	if err != nil && err != io.EOF {
		return nil, 0, 0, fmt.Errorf("%w: body: %v", ErrCorruptDataset, err)
	}
	if n != len(body) {
		return nil, 0, 0, fmt.Errorf("%w: image body length %d, want %d", ErrCorruptDataset, n, len(body))
	}

	images = make([][]byte, count)
	for i := range images {
		images[i] = body[i*perImage : (i+1)*perImage]
	}
	return images, rows, cols, nil
}

// Load reads an image file and a label file and produces the
// network's input/target vectors: inputs are raw pixel intensities
// as float64 components (no normalization applied — see Standardize
// for an opt-in alternative); targets are one-hot vectors of length
// 10 with 1.0 at the label index.
func Load(imagesPath, labelsPath string) (inputs, targets []matrix.Vector[float64], err error) {
	imgFile, err := os.Open(imagesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: %w", err)
	}
	defer imgFile.Close()

	labFile, err := os.Open(labelsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: %w", err)
	}
	defer labFile.Close()

	images, rows, cols, err := ReadImages(imgFile)
	if err != nil {
		return nil, nil, err
	}
	labels, err := ReadLabels(labFile)
	if err != nil {
		return nil, nil, err
	}
	if len(images) != len(labels) {
		return nil, nil, fmt.Errorf("%w: %d images, %d labels", ErrCorruptDataset, len(images), len(labels))
	}

	perImage := rows * cols
	inputs = make([]matrix.Vector[float64], len(images))
	targets = make([]matrix.Vector[float64], len(labels))

	for i, img := range images {
		buf := make([]float64, perImage)
		for j, px := range img {
			buf[j] = float64(px)
		}
		v, err := matrix.VectorFromSlice(buf)
		if err != nil {
			return nil, nil, err
		}
		inputs[i] = v

		t, err := matrix.OneHot[float64](numClasses, int(labels[i]))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: label %d out of range", ErrCorruptDataset, labels[i])
		}
		targets[i] = t
	}

	return inputs, targets, nil
}

// Standardize rescales every input vector's components column-wise to
// zero mean and unit variance using gonum/stat, returning a new slice
// and leaving the inputs argument untouched. Normalization is not
// applied by default anywhere in this package — the dataset binary
// format's parsed components are raw byte intensities, matching the
// reference behavior — this is an opt-in helper for activations (like
// tanh) that saturate on raw pixel-byte magnitudes.
func Standardize(inputs []matrix.Vector[float64]) ([]matrix.Vector[float64], error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	dim := inputs[0].Rows()

	means := make([]float64, dim)
	stddevs := make([]float64, dim)
	col := make([]float64, len(inputs))

	for j := 0; j < dim; j++ {
		for i, v := range inputs {
			col[i] = v.At(j)
		}
		mean, std := stat.MeanStdDev(col, nil)
		means[j] = mean
		if std == 0 {
			std = 1
		}
		stddevs[j] = std
	}

	out := make([]matrix.Vector[float64], len(inputs))
	for i, v := range inputs {
		buf := make([]float64, dim)
		for j := 0; j < dim; j++ {
			buf[j] = (v.At(j) - means[j]) / stddevs[j]
		}
		sv, err := matrix.VectorFromSlice(buf)
		if err != nil {
			return nil, err
		}
		out[i] = sv
	}
	return out, nil
}
