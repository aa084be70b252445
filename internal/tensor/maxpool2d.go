package tensor

import (
	"fmt"
	"math"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width  = (width - kernelSize) / stride + 1
//
// The second return value records, for each output position, the flat index
// into the input's storage where the maximum was found. The backward pass
// routes gradients through exactly these positions.
func MaxPool2D(input *Tensor, kernelSize, stride int) (*Tensor, []int) {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}

	n := inputShape[0]
	c := inputShape[1]
	h := inputShape[2]
	w := inputShape[3]

	if kernelSize > h || kernelSize > w {
		panic(fmt.Sprintf("maxpool2d: kernel size %d too large for input %dx%d", kernelSize, h, w))
	}

	hOut := (h-kernelSize)/stride + 1
	wOut := (w-kernelSize)/stride + 1

	output := Zeros(Shape{n, c, hOut, wOut})
	maxIndices := make([]int, n*c*hOut*wOut)

	inputData := input.Data()
	outputData := output.Data()

	outIdx := 0
	for img := 0; img < n; img++ {
		for ch := 0; ch < c; ch++ {
			chanOffset := (img*c + ch) * h * w
			for outH := 0; outH < hOut; outH++ {
				hStart := outH * stride
				for outW := 0; outW < wOut; outW++ {
					wStart := outW * stride

					maxVal := math.Inf(-1)
					maxPos := -1
					for kh := 0; kh < kernelSize; kh++ {
						rowStart := chanOffset + (hStart+kh)*w
						for kw := 0; kw < kernelSize; kw++ {
							pos := rowStart + wStart + kw
							if inputData[pos] > maxVal {
								maxVal = inputData[pos]
								maxPos = pos
							}
						}
					}

					outputData[outIdx] = maxVal
					maxIndices[outIdx] = maxPos
					outIdx++
				}
			}
		}
	}

	return output, maxIndices
}
