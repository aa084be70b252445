package optim

import (
	"fmt"
	"math"

	"github.com/QaisarRajput/tensorflow-workshop/internal/nn"
	"github.com/QaisarRajput/tensorflow-workshop/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam combines ideas from RMSprop and momentum:
//   - Maintains exponential moving averages of gradients (first moment)
//   - Maintains exponential moving averages of squared gradients (second moment)
//   - Applies bias correction to compensate for initialization at zero
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)   // Parameter update
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int // Timestep for bias correction
	m      map[string][]float64
	v      map[string][]float64
}

// AdamConfig holds configuration for the Adam optimizer.
//
// Zero-valued fields fall back to the standard defaults:
// LR 0.001, Betas [0.9, 0.999], Eps 1e-8.
type AdamConfig struct {
	LR    float64
	Betas [2]float64
	Eps   float64
}

// NewAdam creates a new Adam optimizer over the given parameters.
//
// Moment estimates are allocated lazily the first time a parameter
// receives a gradient.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		t:      0,
		m:      make(map[string][]float64),
		v:      make(map[string][]float64),
	}
}

// Step performs a single Adam optimization step.
//
// Applies the update to every parameter that has an accumulated gradient:
//  1. Update biased first moment estimate
//  2. Update biased second moment estimate
//  3. Compute bias-corrected moment estimates
//  4. Update the parameter in place
//
// Parameters with no gradient are skipped.
func (a *Adam) Step() {
	a.t++

	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			// Parameter didn't participate in the forward pass, skip
			continue
		}

		name := param.Name()
		paramData := param.Value().Data()
		gradData := grad.Data()

		m, ok := a.m[name]
		if !ok {
			m = make([]float64, len(paramData))
			a.m[name] = m
		}
		v, ok := a.v[name]
		if !ok {
			v = make([]float64, len(paramData))
			a.v[name] = v
		}

		for i := range paramData {
			g := gradData[i]

			// m_t = beta1 * m_{t-1} + (1-beta1) * grad
			m[i] = a.beta1*m[i] + (1.0-a.beta1)*g

			// v_t = beta2 * v_{t-1} + (1-beta2) * grad²
			v[i] = a.beta2*v[i] + (1.0-a.beta2)*g*g

			mHat := m[i] / biasCorrection1
			vHat := v[i] / biasCorrection2

			// param = param - lr * m_hat / (sqrt(v_hat) + eps)
			paramData[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}

// StateDict exports the optimizer state as flat tensors for checkpointing.
//
// Moment estimates are keyed "m.<param>" and "v.<param>"; the timestep is
// stored as a single-element "t" tensor.
func (a *Adam) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor, 2*len(a.m)+1)
	for name, m := range a.m {
		t, err := tensor.FromSlice(append([]float64(nil), m...), tensor.Shape{len(m)})
		if err != nil {
			panic(fmt.Sprintf("adam: export first moment %q: %v", name, err))
		}
		state["m."+name] = t
	}
	for name, v := range a.v {
		t, err := tensor.FromSlice(append([]float64(nil), v...), tensor.Shape{len(v)})
		if err != nil {
			panic(fmt.Sprintf("adam: export second moment %q: %v", name, err))
		}
		state["v."+name] = t
	}
	step, err := tensor.FromSlice([]float64{float64(a.t)}, tensor.Shape{1})
	if err != nil {
		panic(fmt.Sprintf("adam: export timestep: %v", err))
	}
	state["t"] = step
	return state
}

// LoadStateDict restores optimizer state saved by StateDict.
func (a *Adam) LoadStateDict(state map[string]*tensor.Tensor) error {
	if step, ok := state["t"]; ok {
		a.t = int(step.Data()[0])
	}
	for name, t := range state {
		switch {
		case len(name) > 2 && name[:2] == "m.":
			a.m[name[2:]] = append([]float64(nil), t.Data()...)
		case len(name) > 2 && name[:2] == "v.":
			a.v[name[2:]] = append([]float64(nil), t.Data()...)
		case name == "t":
			// handled above
		default:
			return fmt.Errorf("adam: unknown state entry %q", name)
		}
	}
	return nil
}
