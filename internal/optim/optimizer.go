// Package optim implements optimization algorithms for training neural networks.
//
// Optimizers own the parameters they update. After a backward pass has
// accumulated gradients on the parameters, a single Step() applies the update
// rule in place and ZeroGrad() clears the gradients for the next iteration.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 1e-4})
//
//	for step := 0; step < steps; step++ {
//	    optimizer.ZeroGrad()
//	    loss := model.Train(images, labels)
//	    optimizer.Step()
//	}
package optim

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply accumulated gradients to parameters
//   - ZeroGrad: Clear gradients before the next iteration
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	//
	// Parameters with no accumulated gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called before each backward pass to prevent
	// gradient accumulation from previous iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}
