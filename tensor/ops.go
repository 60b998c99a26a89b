package tensor

import (
	"fmt"
	"math"
)

// Operations record themselves on the computation graph whenever any
// input tracks gradients. Each VJP is expressed with tensor operations
// (not raw buffers), so backward outputs remain differentiable.
//
// Shape violations panic: mismatched operands are a programming error
// and are not recovered.

// Add performs element-wise addition. A (1,k) operand is broadcast over
// the rows of an (n,k) operand, which is how layer biases are applied.
func (t *Tensor) Add(other *Tensor) *Tensor {
	a, b := t, other

	switch {
	case a.shape.Equal(b.shape):
		out := New(a.shape)
		for i := range out.data {
			out.data[i] = a.data[i] + b.data[i]
		}
		return node(out, "add", []*Tensor{a, b}, func(grad *Tensor) []*Tensor {
			var ga, gb *Tensor
			if a.requiresGrad {
				ga = grad
			}
			if b.requiresGrad {
				gb = grad
			}
			return []*Tensor{ga, gb}
		})

	case broadcastsOver(b.shape, a.shape):
		out := addBroadcast(a, b)
		return node(out, "add", []*Tensor{a, b}, func(grad *Tensor) []*Tensor {
			var ga, gb *Tensor
			if a.requiresGrad {
				ga = grad
			}
			if b.requiresGrad {
				gb = grad.SumRows()
			}
			return []*Tensor{ga, gb}
		})

	case broadcastsOver(a.shape, b.shape):
		out := addBroadcast(b, a)
		return node(out, "add", []*Tensor{a, b}, func(grad *Tensor) []*Tensor {
			var ga, gb *Tensor
			if a.requiresGrad {
				ga = grad.SumRows()
			}
			if b.requiresGrad {
				gb = grad
			}
			return []*Tensor{ga, gb}
		})

	default:
		panic(fmt.Sprintf("tensor: Add shape mismatch: %v vs %v", a.shape, b.shape))
	}
}

// broadcastsOver reports whether a (1,k) row can be broadcast over an
// (n,k) matrix.
func broadcastsOver(row, full Shape) bool {
	return len(row) == 2 && len(full) == 2 && row[0] == 1 && row[1] == full[1]
}

func addBroadcast(full, row *Tensor) *Tensor {
	n, k := full.shape[0], full.shape[1]
	out := New(Shape{n, k})
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out.data[i*k+j] = full.data[i*k+j] + row.data[j]
		}
	}
	return out
}

// Sub performs element-wise subtraction. Shapes must match.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor: Sub shape mismatch: %v vs %v", t.shape, other.shape))
	}
	a, b := t, other
	out := New(a.shape)
	for i := range out.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return node(out, "sub", []*Tensor{a, b}, func(grad *Tensor) []*Tensor {
		var ga, gb *Tensor
		if a.requiresGrad {
			ga = grad
		}
		if b.requiresGrad {
			gb = grad.Neg()
		}
		return []*Tensor{ga, gb}
	})
}

// Mul performs element-wise multiplication. Shapes must match.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor: Mul shape mismatch: %v vs %v", t.shape, other.shape))
	}
	a, b := t, other
	out := New(a.shape)
	for i := range out.data {
		out.data[i] = a.data[i] * b.data[i]
	}
	return node(out, "mul", []*Tensor{a, b}, func(grad *Tensor) []*Tensor {
		var ga, gb *Tensor
		if a.requiresGrad {
			ga = grad.Mul(b)
		}
		if b.requiresGrad {
			gb = grad.Mul(a)
		}
		return []*Tensor{ga, gb}
	})
}

// Div performs element-wise division. Shapes must match.
func (t *Tensor) Div(other *Tensor) *Tensor {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor: Div shape mismatch: %v vs %v", t.shape, other.shape))
	}
	a, b := t, other
	out := New(a.shape)
	for i := range out.data {
		out.data[i] = a.data[i] / b.data[i]
	}
	return node(out, "div", []*Tensor{a, b}, func(grad *Tensor) []*Tensor {
		var ga, gb *Tensor
		if a.requiresGrad {
			ga = grad.Div(b)
		}
		if b.requiresGrad {
			// d(a/b)/db = -a/b²
			gb = grad.Mul(a).Div(b.Square()).Neg()
		}
		return []*Tensor{ga, gb}
	})
}

// MatMul performs matrix multiplication: (n,m) @ (m,k) -> (n,k).
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	a, b := t, other
	if len(a.shape) != 2 || len(b.shape) != 2 {
		panic(fmt.Sprintf("tensor: MatMul requires 2-D operands, got %v and %v", a.shape, b.shape))
	}
	if a.shape[1] != b.shape[0] {
		panic(fmt.Sprintf("tensor: MatMul shape mismatch: %v @ %v", a.shape, b.shape))
	}

	n, m, k := a.shape[0], a.shape[1], b.shape[1]
	out := New(Shape{n, k})
	for i := 0; i < n; i++ {
		for l := 0; l < m; l++ {
			av := a.data[i*m+l]
			if av == 0 {
				continue
			}
			for j := 0; j < k; j++ {
				out.data[i*k+j] += av * b.data[l*k+j]
			}
		}
	}

	return node(out, "matmul", []*Tensor{a, b}, func(grad *Tensor) []*Tensor {
		var ga, gb *Tensor
		if a.requiresGrad {
			ga = grad.MatMul(b.T()) // dL/dA = G @ Bᵀ
		}
		if b.requiresGrad {
			gb = a.T().MatMul(grad) // dL/dB = Aᵀ @ G
		}
		return []*Tensor{ga, gb}
	})
}

// T returns the transpose of a 2-D tensor.
func (t *Tensor) T() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: T requires a 2-D tensor, got %v", t.shape))
	}
	in := t
	n, k := t.shape[0], t.shape[1]
	out := New(Shape{k, n})
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out.data[j*n+i] = in.data[i*k+j]
		}
	}
	return node(out, "transpose", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		return []*Tensor{grad.T()}
	})
}

// Scale multiplies every element by a scalar constant.
func (t *Tensor) Scale(s float64) *Tensor {
	in := t
	out := New(t.shape)
	for i := range out.data {
		out.data[i] = in.data[i] * s
	}
	return node(out, "scale", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		return []*Tensor{grad.Scale(s)}
	})
}

// Neg negates every element.
func (t *Tensor) Neg() *Tensor {
	return t.Scale(-1)
}

// Square squares every element.
func (t *Tensor) Square() *Tensor {
	in := t
	out := New(t.shape)
	for i := range out.data {
		out.data[i] = in.data[i] * in.data[i]
	}
	return node(out, "square", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		// d(x²)/dx = 2x
		return []*Tensor{grad.Mul(in).Scale(2)}
	})
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor) Tanh() *Tensor {
	in := t
	out := New(t.shape)
	for i := range out.data {
		out.data[i] = math.Tanh(in.data[i])
	}
	return node(out, "tanh", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		// d(tanh(x))/dx = 1 - tanh²(x); the output node keeps this
		// derivative differentiable for second-order use.
		one := Ones(out.shape)
		return []*Tensor{grad.Mul(one.Sub(out.Square()))}
	})
}

// Cat2 concatenates two (n,1) columns into an (n,2) matrix.
func Cat2(x, y *Tensor) *Tensor {
	if len(x.shape) != 2 || x.shape[1] != 1 || !x.shape.Equal(y.shape) {
		panic(fmt.Sprintf("tensor: Cat2 requires matching (n,1) columns, got %v and %v", x.shape, y.shape))
	}
	n := x.shape[0]
	out := New(Shape{n, 2})
	for i := 0; i < n; i++ {
		out.data[2*i] = x.data[i]
		out.data[2*i+1] = y.data[i]
	}
	return node(out, "cat2", []*Tensor{x, y}, func(grad *Tensor) []*Tensor {
		var gx, gy *Tensor
		if x.requiresGrad {
			gx = grad.Col(0)
		}
		if y.requiresGrad {
			gy = grad.Col(1)
		}
		return []*Tensor{gx, gy}
	})
}

// Col extracts column j of a 2-D tensor as an (n,1) column.
func (t *Tensor) Col(j int) *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: Col requires a 2-D tensor, got %v", t.shape))
	}
	if j < 0 || j >= t.shape[1] {
		panic(fmt.Sprintf("tensor: column %d out of bounds for shape %v", j, t.shape))
	}
	in := t
	n, k := t.shape[0], t.shape[1]
	out := New(Shape{n, 1})
	for i := 0; i < n; i++ {
		out.data[i] = in.data[i*k+j]
	}
	return node(out, "col", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		return []*Tensor{padCols(grad, j, k)}
	})
}

// padCols scatters an (n,1) column back into an (n,k) matrix at column j,
// zero elsewhere. Inverse of Col under the VJP.
func padCols(t *Tensor, j, cols int) *Tensor {
	in := t
	n := t.shape[0]
	out := New(Shape{n, cols})
	for i := 0; i < n; i++ {
		out.data[i*cols+j] = in.data[i]
	}
	return node(out, "padcols", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		return []*Tensor{grad.Col(j)}
	})
}

// SumRows reduces an (n,k) tensor to a (1,k) row by summing rows.
func (t *Tensor) SumRows() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: SumRows requires a 2-D tensor, got %v", t.shape))
	}
	in := t
	n, k := t.shape[0], t.shape[1]
	out := New(Shape{1, k})
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out.data[j] += in.data[i*k+j]
		}
	}
	return node(out, "sumrows", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		// Broadcast the (1,k) gradient back over n rows.
		return []*Tensor{Zeros(in.shape).Add(grad)}
	})
}

// Sum reduces the tensor to a (1,1) scalar by summing all elements.
func (t *Tensor) Sum() *Tensor {
	in := t
	out := New(Shape{1, 1})
	for _, v := range in.data {
		out.data[0] += v
	}
	return node(out, "sum", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		return []*Tensor{grad.Expand(in.shape)}
	})
}

// Mean reduces the tensor to a (1,1) scalar holding the arithmetic mean.
func (t *Tensor) Mean() *Tensor {
	return t.Sum().Scale(1.0 / float64(t.NumElements()))
}

// Expand broadcasts a (1,1) scalar tensor to the given shape.
func (t *Tensor) Expand(shape Shape) *Tensor {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("tensor: Expand requires a single-element tensor, got %v", t.shape))
	}
	in := t
	out := Full(shape, in.data[0])
	return node(out, "expand", []*Tensor{in}, func(grad *Tensor) []*Tensor {
		return []*Tensor{grad.Sum()}
	})
}
