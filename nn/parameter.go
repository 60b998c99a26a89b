package nn

import (
	"github.com/pinn-ml/pinn/tensor"
)

// Parameter represents a trainable parameter: a gradient-tracked tensor
// plus the gradient slot the optimizer driver fills before each step.
//
// Example:
//
//	weight := nn.NewParameter("w0", tensor.XavierNormal(2, 20, src))
//	weight.SetGrad(g)   // attached by the training closure
//	grad := weight.Grad()
type Parameter struct {
	name   string
	tensor *tensor.Tensor
	grad   *tensor.Tensor
}

// NewParameter creates a new trainable parameter. The tensor is marked
// as requiring gradients.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t.RequireGrad(),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the attached gradient, or nil before the first
// evaluation (or after ZeroGrad).
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// SetGrad attaches a gradient to the parameter. Called by the training
// closure after its single differentiation pass.
func (p *Parameter) SetGrad(grad *tensor.Tensor) {
	p.grad = grad
}

// ZeroGrad clears the attached gradient. Called at the start of every
// loss evaluation so gradients never accumulate across iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
