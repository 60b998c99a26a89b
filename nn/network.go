// Package nn provides the trainable network for the physics-informed
// solver: an ordered store of weight/bias parameters, the tanh MLP
// forward pass, and the derivative evaluators built on nested automatic
// differentiation.
package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/pinn-ml/pinn/autodiff"
	"github.com/pinn-ml/pinn/tensor"
)

// Network is a fully connected network u(x, y) with tanh hidden layers
// and a strictly affine output layer.
//
// Parameters are ordered per layer transition: weight l has shape
// (layers[l], layers[l+1]) and bias l has shape (1, layers[l+1]).
// Weights are Xavier-normal initialized, biases start at zero.
type Network struct {
	layers  []int
	weights []*Parameter
	biases  []*Parameter
}

// NewNetwork creates a network for the given layer sizes, e.g.
// [2, 20, 20, 1] for two inputs, two tanh hidden layers of width 20 and
// one output. At least two sizes (input and output) are required.
//
// A nil src uses the global random source.
func NewNetwork(layers []int, src rand.Source) (*Network, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("nn: need at least 2 layer sizes, got %d", len(layers))
	}
	for i, n := range layers {
		if n < 1 {
			return nil, fmt.Errorf("nn: invalid layer size %d at index %d", n, i)
		}
	}

	n := &Network{layers: append([]int(nil), layers...)}
	for l := 0; l < len(layers)-1; l++ {
		in, out := layers[l], layers[l+1]
		w := tensor.XavierNormal(in, out, src)
		b := tensor.Zeros(tensor.Shape{1, out})
		n.weights = append(n.weights, NewParameter(fmt.Sprintf("w%d", l), w))
		n.biases = append(n.biases, NewParameter(fmt.Sprintf("b%d", l), b))
	}
	return n, nil
}

// Layers returns the layer size list.
func (n *Network) Layers() []int {
	return n.layers
}

// Weights returns the weight parameters in layer order.
func (n *Network) Weights() []*Parameter {
	return n.weights
}

// Biases returns the bias parameters in layer order.
func (n *Network) Biases() []*Parameter {
	return n.biases
}

// Parameters returns all trainable parameters, weights first then
// biases. The order is stable: optimizer drivers rely on it when
// attaching gradients positionally.
func (n *Network) Parameters() []*Parameter {
	params := make([]*Parameter, 0, len(n.weights)+len(n.biases))
	params = append(params, n.weights...)
	params = append(params, n.biases...)
	return params
}

// NumParameters returns the total number of scalar parameters.
func (n *Network) NumParameters() int {
	total := 0
	for _, p := range n.Parameters() {
		total += p.Tensor().NumElements()
	}
	return total
}

// Evaluate computes u(x, y) for (n,1) coordinate columns, returning an
// (n,1) output. The input columns are concatenated into an (n,2) matrix,
// each hidden transition applies tanh(H@W + b) and the final transition
// is affine.
//
// Evaluate is deterministic given fixed parameters and inputs.
func (n *Network) Evaluate(x, y *tensor.Tensor) *tensor.Tensor {
	h := tensor.Cat2(x, y)
	last := len(n.weights) - 1
	for l, w := range n.weights {
		h = h.MatMul(w.Tensor()).Add(n.biases[l].Tensor())
		if l != last {
			h = h.Tanh()
		}
	}
	return h
}

// FirstDerivatives computes du/dx and du/dy at the given coordinates via
// reverse-mode differentiation of sum(u). The returned derivatives stay
// attached to the graph so they can be differentiated again.
//
// Both coordinate tensors must be gradient-tracked, otherwise the
// derivative is undefined and an error is returned.
func (n *Network) FirstDerivatives(x, y *tensor.Tensor) (ux, uy *tensor.Tensor, err error) {
	u := n.Evaluate(x, y)
	grads, err := autodiff.Grad(u.Sum(), []*tensor.Tensor{x, y}, true)
	if err != nil {
		return nil, nil, err
	}
	return grads[0], grads[1], nil
}

// PDEResidual computes the Laplacian residual f = d²u/dx² + d²u/dy² by
// differentiating the first derivatives a second time. The residual
// remains differentiable so it can feed the training loss.
//
// The operator is hard-wired: targeting a different PDE means changing
// this formula.
func (n *Network) PDEResidual(x, y *tensor.Tensor) (*tensor.Tensor, error) {
	ux, uy, err := n.FirstDerivatives(x, y)
	if err != nil {
		return nil, err
	}

	gxx, err := autodiff.Grad(ux.Sum(), []*tensor.Tensor{x}, true)
	if err != nil {
		return nil, err
	}
	gyy, err := autodiff.Grad(uy.Sum(), []*tensor.Tensor{y}, true)
	if err != nil {
		return nil, err
	}

	return gxx[0].Add(gyy[0]), nil
}
