// Package tensor provides dense float64 tensors with a define-by-run
// automatic differentiation graph.
//
// Tensors are 2-D in practice: point coordinates and network outputs are
// (n,1) columns, weights are (in,out) matrices, biases are (1,out) rows
// and reduced losses are (1,1) scalars.
//
// Every operation whose inputs track gradients records a graph node
// holding the inputs and a vector-Jacobian-product closure. Because each
// closure is written in terms of tensor operations, the gradients
// produced by a backward pass are themselves graph nodes and can be
// differentiated again. The pinn packages rely on this to evaluate
// second-order PDE residuals (gradient of a gradient).
//
// Gradient traversal lives in the autodiff package; this package only
// records the graph.
package tensor
