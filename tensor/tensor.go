package tensor

import "fmt"

// Tensor is a dense float64 tensor that participates in a define-by-run
// computation graph. Every operation that consumes a gradient-tracked
// tensor records its inputs and a vector-Jacobian-product closure on the
// result, so reverse-mode differentiation can walk the graph backwards.
//
// The VJP closures are themselves built from tensor operations. This is
// what allows differentiating through a gradient: the output of a
// backward pass is an ordinary graph node that can be differentiated
// again (needed for second-order PDE residuals).
//
// Example:
//
//	x := tensor.Column([]float64{2.0}).RequireGrad()
//	y := x.Mul(x) // y = x²
//	grads, _ := autodiff.Grad(y.Sum(), []*tensor.Tensor{x}, false)
//	fmt.Println(grads[0].At(0, 0)) // dy/dx = 2x = 4.0
type Tensor struct {
	shape        Shape
	data         []float64
	requiresGrad bool

	// Graph node. Leaf tensors have op == "" and vjp == nil.
	op     string
	inputs []*Tensor
	vjp    func(grad *Tensor) []*Tensor

	grad *Tensor // Gradient tensor (populated by autodiff.Backward)
}

// New creates a tensor with the given shape, zero-filled.
// Panics if the shape is invalid.
func New(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Data returns the tensor's flat data slice (row-major, zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	strides := t.shape.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// Item returns the value of a single-element tensor.
// Panics if the tensor holds more than one element.
func (t *Tensor) Item() float64 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("tensor: Item() only works for single-element tensors, got shape %v", t.shape))
	}
	return t.data[0]
}

// RequireGrad marks this tensor for gradient computation. Operations
// consuming it will be recorded in the computation graph.
//
// Returns the tensor itself for method chaining.
func (t *Tensor) RequireGrad() *Tensor {
	t.requiresGrad = true
	return t
}

// RequiresGrad returns true if this tensor requires gradient computation.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// Detach returns a new tensor that shares the same data but does not
// track gradients. Operations on the detached tensor are not recorded,
// so gradient flow stops at this point.
func (t *Tensor) Detach() *Tensor {
	return &Tensor{
		shape: t.shape,
		data:  t.data, // Share data (zero-copy)
	}
}

// Clone creates a deep copy of the tensor's data. The clone is a leaf:
// it carries no graph node and no gradient tracking.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{
		shape: t.shape.Clone(),
		data:  data,
	}
}

// Grad returns the gradient tensor attached by autodiff.Backward,
// or nil if none has been computed.
func (t *Tensor) Grad() *Tensor {
	return t.grad
}

// SetGrad sets the gradient tensor.
func (t *Tensor) SetGrad(grad *Tensor) {
	t.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

// IsLeaf returns true if this tensor is not the output of a recorded
// operation.
func (t *Tensor) IsLeaf() bool {
	return t.vjp == nil
}

// Op returns the name of the operation that produced this tensor,
// or "" for leaves.
func (t *Tensor) Op() string {
	return t.op
}

// Inputs returns the tensors the producing operation consumed.
// Leaves return nil.
func (t *Tensor) Inputs() []*Tensor {
	return t.inputs
}

// VJP applies the producing operation's vector-Jacobian product to the
// given output gradient, returning one gradient per input (nil entries
// for inputs that do not track gradients). Leaves return nil.
//
// The returned gradients are ordinary graph nodes, so they can be
// differentiated again.
func (t *Tensor) VJP(grad *Tensor) []*Tensor {
	if t.vjp == nil {
		return nil
	}
	return t.vjp(grad)
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	if t.op != "" {
		return fmt.Sprintf("Tensor%v op=%s", t.shape, t.op)
	}
	return fmt.Sprintf("Tensor%v", t.shape)
}

// node attaches graph metadata to an op result when any input tracks
// gradients. The vjp closure must return gradients positionally aligned
// with inputs.
func node(out *Tensor, op string, inputs []*Tensor, vjp func(grad *Tensor) []*Tensor) *Tensor {
	for _, in := range inputs {
		if in.requiresGrad {
			out.requiresGrad = true
			out.op = op
			out.inputs = inputs
			out.vjp = vjp
			return out
		}
	}
	return out
}
