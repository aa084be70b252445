package tensor

import "fmt"

// Conv2DInputBackward computes the convolution gradient w.r.t. the input.
//
// Every output position that read an input pixel in the forward pass sends
// kernel-weighted gradient back to it. Expressed through the im2col buffer
// this is one GEMM followed by a col2im scatter-add:
//
//	colGrad = grad_rows @ kernel2d    // [N*H_out*W_out, C_in*K_h*K_w]
//	inputGrad = col2im(colGrad)
//
// Reference: "A guide to convolution arithmetic for deep learning"
// (Dumoulin & Visin, 2016).
func Conv2DInputBackward(inputShape Shape, kernel, grad *Tensor, stride, padding int) *Tensor {
	kernelShape := kernel.Shape()
	gradShape := grad.Shape()
	validateConvBackward(inputShape, kernelShape, gradShape)

	cOut := kernelShape[0]
	cIn := kernelShape[1]
	kh := kernelShape[2]
	kw := kernelShape[3]
	hOut := gradShape[2]
	wOut := gradShape[3]

	gradRows := nchwToRows(grad) // [N*H_out*W_out, C_out]
	kernel2d := kernel.Reshape(cOut, cIn*kh*kw)

	colGrad := MatMul(gradRows, kernel2d)
	return col2im(colGrad, inputShape, kh, kw, hOut, wOut, stride, padding)
}

// Conv2DKernelBackward computes the convolution gradient w.r.t. the kernel.
//
// The kernel gradient is the correlation of the input with the output
// gradient, summed over the batch:
//
//	kernelGrad2d = grad_rows.T @ im2col(input)   // [C_out, C_in*K_h*K_w]
func Conv2DKernelBackward(input, grad *Tensor, kernelShape Shape, stride, padding int) *Tensor {
	inputShape := input.Shape()
	gradShape := grad.Shape()
	validateConvBackward(inputShape, kernelShape, gradShape)

	cOut := kernelShape[0]
	cIn := kernelShape[1]
	kh := kernelShape[2]
	kw := kernelShape[3]
	hOut := gradShape[2]
	wOut := gradShape[3]

	col := im2col(input, kh, kw, hOut, wOut, stride, padding) // [N*H_out*W_out, CKK]
	gradRows := nchwToRows(grad)                              // [N*H_out*W_out, C_out]

	kernelGrad2d := MatMulTA(gradRows, col) // [C_out, CKK]
	return kernelGrad2d.Reshape(cOut, cIn, kh, kw)
}

func validateConvBackward(inputShape, kernelShape, gradShape Shape) {
	if len(inputShape) != 4 || len(kernelShape) != 4 || len(gradShape) != 4 {
		panic(fmt.Sprintf("conv2d backward: expected 4D shapes, got input %v kernel %v grad %v",
			inputShape, kernelShape, gradShape))
	}
	if inputShape[1] != kernelShape[1] {
		panic(fmt.Sprintf("conv2d backward: input channels %d != kernel channels %d",
			inputShape[1], kernelShape[1]))
	}
	if gradShape[0] != inputShape[0] {
		panic(fmt.Sprintf("conv2d backward: grad batch %d != input batch %d",
			gradShape[0], inputShape[0]))
	}
	if gradShape[1] != kernelShape[0] {
		panic(fmt.Sprintf("conv2d backward: grad channels %d != kernel output channels %d",
			gradShape[1], kernelShape[0]))
	}
}
