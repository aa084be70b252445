package tensor

import "fmt"

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// Algorithm:
//  1. Transform input patches into columns (im2col)
//  2. Multiply the column matrix with the reshaped kernel (one GEMM)
//  3. Rearrange the result to [N, C_out, H_out, W_out]
//
// Im2col converts convolution into a single large matrix product, which is
// cache-friendly and lets the BLAS routines do the heavy lifting.
//
// Reference: "High Performance Convolutional Neural Networks for Document
// Processing" (Chellapilla et al., 2006).
func Conv2D(input, kernel *Tensor, stride, padding int) *Tensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	n := inputShape[0]
	cIn := inputShape[1]
	h := inputShape[2]
	w := inputShape[3]
	cOut := kernelShape[0]
	kh := kernelShape[2]
	kw := kernelShape[3]

	if cIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", cIn, kernelShape[1]))
	}

	hOut := (h+2*padding-kh)/stride + 1
	wOut := (w+2*padding-kw)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions %dx%d (check stride/padding)", hOut, wOut))
	}

	// col: [N * H_out * W_out, C_in * K_h * K_w], one row per output position.
	col := im2col(input, kh, kw, hOut, wOut, stride, padding)

	// Kernel is already laid out as [C_out, C_in * K_h * K_w] in row-major order.
	kernel2d := kernel.Reshape(cOut, cIn*kh*kw)

	// [N*H_out*W_out, CKK] @ [C_out, CKK].T -> [N*H_out*W_out, C_out]
	out2d := MatMulTB(col, kernel2d)

	return rowsToNCHW(out2d, n, cOut, hOut, wOut)
}

// im2col transforms input patches into a column matrix.
//
// Input: [N, C, H, W]
// Output: [N * H_out * W_out, C * K_h * K_w]
//
// Each row corresponds to one output position; each column to one kernel
// weight. Out-of-bounds positions (padding) contribute zeros.
func im2col(input *Tensor, kh, kw, hOut, wOut, stride, padding int) *Tensor {
	shape := input.Shape()
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]

	colWidth := c * kh * kw
	col := Zeros(Shape{n * hOut * wOut, colWidth})

	inputData := input.Data()
	colData := col.Data()

	rowIdx := 0
	for img := 0; img < n; img++ {
		for outH := 0; outH < hOut; outH++ {
			for outW := 0; outW < wOut; outW++ {
				hStart := outH*stride - padding
				wStart := outW*stride - padding
				bufIdx := rowIdx * colWidth

				for ch := 0; ch < c; ch++ {
					chanOffset := (img*c + ch) * h * w
					for ki := 0; ki < kh; ki++ {
						hPos := hStart + ki
						for kj := 0; kj < kw; kj++ {
							wPos := wStart + kj
							if hPos >= 0 && hPos < h && wPos >= 0 && wPos < w {
								colData[bufIdx] = inputData[chanOffset+hPos*w+wPos]
							}
							bufIdx++
						}
					}
				}
				rowIdx++
			}
		}
	}
	return col
}

// col2im is the adjoint of im2col: it scatter-adds a column matrix back into
// an input-shaped tensor. Overlapping patches accumulate.
func col2im(col *Tensor, inputShape Shape, kh, kw, hOut, wOut, stride, padding int) *Tensor {
	n, c, h, w := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	colWidth := c * kh * kw

	out := Zeros(inputShape)
	outData := out.Data()
	colData := col.Data()

	rowIdx := 0
	for img := 0; img < n; img++ {
		for outH := 0; outH < hOut; outH++ {
			for outW := 0; outW < wOut; outW++ {
				hStart := outH*stride - padding
				wStart := outW*stride - padding
				bufIdx := rowIdx * colWidth

				for ch := 0; ch < c; ch++ {
					chanOffset := (img*c + ch) * h * w
					for ki := 0; ki < kh; ki++ {
						hPos := hStart + ki
						for kj := 0; kj < kw; kj++ {
							wPos := wStart + kj
							if hPos >= 0 && hPos < h && wPos >= 0 && wPos < w {
								outData[chanOffset+hPos*w+wPos] += colData[bufIdx]
							}
							bufIdx++
						}
					}
				}
				rowIdx++
			}
		}
	}
	return out
}

// rowsToNCHW rearranges [N*H_out*W_out, C_out] rows (position-major, matching
// im2col row order) into [N, C_out, H_out, W_out].
func rowsToNCHW(rows *Tensor, n, cOut, hOut, wOut int) *Tensor {
	out := Zeros(Shape{n, cOut, hOut, wOut})
	outData := out.Data()
	rowData := rows.Data()

	for img := 0; img < n; img++ {
		for pos := 0; pos < hOut*wOut; pos++ {
			srcRow := (img*hOut*wOut + pos) * cOut
			for ch := 0; ch < cOut; ch++ {
				outData[(img*cOut+ch)*hOut*wOut+pos] = rowData[srcRow+ch]
			}
		}
	}
	return out
}

// nchwToRows is the inverse of rowsToNCHW: [N, C, H_out, W_out] into
// position-major rows [N*H_out*W_out, C].
func nchwToRows(t *Tensor) *Tensor {
	shape := t.Shape()
	n, c, hOut, wOut := shape[0], shape[1], shape[2], shape[3]

	rows := Zeros(Shape{n * hOut * wOut, c})
	rowData := rows.Data()
	tData := t.Data()

	for img := 0; img < n; img++ {
		for pos := 0; pos < hOut*wOut; pos++ {
			dstRow := (img*hOut*wOut + pos) * c
			for ch := 0; ch < c; ch++ {
				rowData[dstRow+ch] = tData[(img*c+ch)*hOut*wOut+pos]
			}
		}
	}
	return rows
}
