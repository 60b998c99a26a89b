// Package autodiff implements reverse-mode automatic differentiation
// over the computation graph recorded by the tensor package.
//
// Grad walks the graph backwards from a scalar output, applying each
// node's vector-Jacobian product and accumulating gradients where a
// tensor fans out into several consumers.
//
// Passing createGraph=true keeps the returned gradients attached to the
// graph so they can be differentiated again. This is how second
// derivatives are obtained for the PDE residual:
//
//	u := net.Evaluate(x, y)
//	gs, _ := autodiff.Grad(u.Sum(), []*tensor.Tensor{x}, true)
//	ux := gs[0]
//	gs, _ = autodiff.Grad(ux.Sum(), []*tensor.Tensor{x}, true)
//	uxx := gs[0]
package autodiff

import (
	"fmt"

	"github.com/pinn-ml/pinn/tensor"
)

// Grad computes the gradients of a scalar output with respect to each of
// the given inputs. Gradients are returned positionally aligned with
// inputs; an input with no path to the output receives a zero tensor of
// its own shape.
//
// Every input must be gradient-tracked: differentiating with respect to
// an untracked tensor is undefined and returns an error. The output must
// hold a single element (sum or mean first).
//
// With createGraph=true the returned gradients remain differentiable;
// otherwise they are detached from the graph.
func Grad(output *tensor.Tensor, inputs []*tensor.Tensor, createGraph bool) ([]*tensor.Tensor, error) {
	if output == nil {
		return nil, fmt.Errorf("autodiff: nil output")
	}
	if output.NumElements() != 1 {
		return nil, fmt.Errorf("autodiff: output must be a scalar, got shape %v", output.Shape())
	}
	for i, in := range inputs {
		if in == nil || !in.RequiresGrad() {
			return nil, fmt.Errorf("autodiff: input %d does not track gradients (derivative undefined)", i)
		}
	}

	grads := backward(output, tensor.Ones(output.Shape()))

	results := make([]*tensor.Tensor, len(inputs))
	for i, in := range inputs {
		g, ok := grads[in]
		if !ok {
			g = tensor.Zeros(in.Shape())
		}
		if !createGraph {
			g = g.Detach()
		}
		results[i] = g
	}
	return results, nil
}

// Backward computes gradients of a scalar output with respect to every
// gradient-tracked leaf reachable from it and attaches each gradient to
// its tensor's grad slot. Gradients are detached (not differentiable).
//
// This is a convenience for tests and simple training loops; the
// optimizer drivers use Grad against an explicit parameter list instead.
func Backward(output *tensor.Tensor) error {
	if output == nil {
		return fmt.Errorf("autodiff: nil output")
	}
	if output.NumElements() != 1 {
		return fmt.Errorf("autodiff: output must be a scalar, got shape %v", output.Shape())
	}

	grads := backward(output, tensor.Ones(output.Shape()))
	for t, g := range grads {
		if t.IsLeaf() && t.RequiresGrad() {
			t.SetGrad(g.Detach())
		}
	}
	return nil
}

// backward runs the reverse-mode sweep: topological order over the
// recorded graph, then one VJP application per node, accumulating into a
// per-tensor gradient map.
func backward(output, seed *tensor.Tensor) map[*tensor.Tensor]*tensor.Tensor {
	order := topoSort(output)

	grads := make(map[*tensor.Tensor]*tensor.Tensor, len(order))
	grads[output] = seed

	// Walk in reverse topological order so a node's gradient is complete
	// before its VJP distributes it to the inputs.
	for i := len(order) - 1; i >= 0; i-- {
		node := order[i]
		g, ok := grads[node]
		if !ok || node.IsLeaf() {
			continue
		}

		inputGrads := node.VJP(g)
		inputs := node.Inputs()
		for j, in := range inputs {
			if j >= len(inputGrads) || inputGrads[j] == nil || !in.RequiresGrad() {
				continue
			}
			if existing, ok := grads[in]; ok {
				grads[in] = existing.Add(inputGrads[j])
			} else {
				grads[in] = inputGrads[j]
			}
		}
	}

	return grads
}

// topoSort returns the gradient-tracked subgraph reachable from root in
// topological order (inputs before outputs).
func topoSort(root *tensor.Tensor) []*tensor.Tensor {
	var order []*tensor.Tensor
	visited := make(map[*tensor.Tensor]bool)

	var visit func(t *tensor.Tensor)
	visit = func(t *tensor.Tensor) {
		if visited[t] || !t.RequiresGrad() {
			return
		}
		visited[t] = true
		for _, in := range t.Inputs() {
			visit(in)
		}
		order = append(order, t)
	}
	visit(root)

	return order
}
