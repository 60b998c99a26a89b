// Package optim implements the first-order optimizers used by the
// fixed-epoch training path.
//
// Unlike tape-based trainers that hand the optimizer a gradient map,
// the training closure here attaches gradients directly to each
// Parameter (one differentiation call per loss evaluation, assigned
// positionally). Step reads those attached gradients and updates the
// parameter data in place.
//
// Example usage:
//
//	opt := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//	for range epochs {
//	    opt.ZeroGrad()
//	    loss := evaluateAndAttachGrads(model)
//	    opt.Step()
//	}
package optim

import (
	"github.com/pinn-ml/pinn/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to all parameters, reading each
	// parameter's attached gradient. Parameters without an attached
	// gradient are skipped.
	Step()

	// ZeroGrad clears all attached parameter gradients. Call before each
	// loss evaluation to prevent stale gradients from previous
	// iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// zeroGrads clears attached gradients on a parameter list.
func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
