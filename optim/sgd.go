package optim

import (
	"github.com/pinn-ml/pinn/nn"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities [][]float64
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make([][]float64, len(params)),
	}
}

// Step performs a single optimization step over all parameters with an
// attached gradient.
func (s *SGD) Step() {
	for i, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			// Parameter didn't participate in the loss, skip.
			continue
		}

		data := param.Tensor().Data()
		gd := grad.Data()

		if s.momentum == 0 {
			for j := range data {
				data[j] -= s.lr * gd[j]
			}
			continue
		}

		v := s.velocities[i]
		if v == nil {
			v = make([]float64, len(data))
			s.velocities[i] = v
		}
		for j := range data {
			v[j] = s.momentum*v[j] + gd[j]
			data[j] -= s.lr * v[j]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
