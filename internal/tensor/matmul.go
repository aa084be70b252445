package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// asDense wraps a 2D tensor's storage in a gonum matrix without copying.
func asDense(t *Tensor) *mat.Dense {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensor, got shape %v", shape))
	}
	return mat.NewDense(shape[0], shape[1], t.Data())
}

// MatMul computes a @ b for 2D tensors.
//
// a: [m, k], b: [k, n] -> [m, n].
func MatMul(a, b *Tensor) *Tensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v @ %v", as, bs))
	}

	out := Zeros(Shape{as[0], bs[1]})
	asDense(out).Mul(asDense(a), asDense(b))
	return out
}

// MatMulTB computes a @ b.T.
//
// a: [m, k], b: [n, k] -> [m, n].
func MatMulTB(a, b *Tensor) *Tensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[1] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v @ %v.T", as, bs))
	}

	out := Zeros(Shape{as[0], bs[0]})
	asDense(out).Mul(asDense(a), asDense(b).T())
	return out
}

// MatMulTA computes a.T @ b.
//
// a: [k, m], b: [k, n] -> [m, n].
func MatMulTA(a, b *Tensor) *Tensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", as, bs))
	}
	if as[0] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v.T @ %v", as, bs))
	}

	out := Zeros(Shape{as[1], bs[1]})
	asDense(out).Mul(asDense(a).T(), asDense(b))
	return out
}
