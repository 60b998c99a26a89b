package optim

import (
	"math"

	"github.com/pinn-ml/pinn/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int         // Timestep for bias correction
	m      [][]float64 // First moment estimates
	v      [][]float64 // Second moment estimates
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Running average coefficients (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over the given parameters, with
// the usual defaults for unset config fields.
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
		m:      make([][]float64, len(params)),
		v:      make([][]float64, len(params)),
	}
}

// Step performs a single Adam update over all parameters with an
// attached gradient.
func (a *Adam) Step() {
	a.t++
	bc1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for i, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		data := param.Tensor().Data()
		gd := grad.Data()

		if a.m[i] == nil {
			a.m[i] = make([]float64, len(data))
			a.v[i] = make([]float64, len(data))
		}
		m, v := a.m[i], a.v[i]

		for j := range data {
			g := gd[j]
			m[j] = a.beta1*m[j] + (1-a.beta1)*g
			v[j] = a.beta2*v[j] + (1-a.beta2)*g*g

			mHat := m[j] / bc1
			vHat := v[j] / bc2
			data[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}
