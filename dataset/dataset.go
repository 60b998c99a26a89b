// Package dataset generates and prepares the training data for the
// Laplace problem: the analytical reference solution, grid helpers,
// boundary/interior sampling, Latin hypercube collocation points,
// coordinate normalization and the text export of predictions.
//
// Everything here is plain numerics over gonum matrices; gradient
// tracking happens later, at the pinn.LoadPointSet boundary.
package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Linspace returns n evenly spaced values over [lo, hi], inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Meshgrid expands coordinate axes into full (len(y), len(x)) grids:
// X[i,j] = x[j] and Y[i,j] = y[i].
func Meshgrid(x, y []float64) (X, Y *mat.Dense) {
	nx, ny := len(x), len(y)
	X = mat.NewDense(ny, nx, nil)
	Y = mat.NewDense(ny, nx, nil)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			X.Set(i, j, x[j])
			Y.Set(i, j, y[i])
		}
	}
	return X, Y
}

// FlattenGrid stacks two equal-shape grids into an (r*c, 2) point
// matrix, row-major, one (x, y) pair per row.
func FlattenGrid(X, Y *mat.Dense) *mat.Dense {
	r, c := X.Dims()
	pts := mat.NewDense(r*c, 2, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			pts.Set(i*c+j, 0, X.At(i, j))
			pts.Set(i*c+j, 1, Y.At(i, j))
		}
	}
	return pts
}

// Analytical evaluates the closed-form solution of the reference
// Laplace problem on the grid spanned by the x and y axes:
//
//	p(x, y) = sinh(1.5πy/xₘ)·sin(1.5πx/xₘ) / sinh(1.5πyₘ/xₘ)
//
// where xₘ and yₘ are the domain extents. The function is harmonic
// (zero Laplacian) and satisfies dp/dx = 0 on the right boundary, which
// is the Neumann condition the training data encodes.
//
// The returned grid has len(y) rows and len(x) columns.
func Analytical(x, y []float64) *mat.Dense {
	xm := x[len(x)-1]
	ym := y[len(y)-1]
	k := 1.5 * math.Pi / xm
	norm := math.Sinh(k * ym)

	p := mat.NewDense(len(y), len(x), nil)
	for i := range y {
		sy := math.Sinh(k*y[i]) / norm
		for j := range x {
			p.Set(i, j, sy*math.Sin(k*x[j]))
		}
	}
	return p
}

// Shift affinely maps coordinates to [-1, 1] per column:
//
//	X' = 2(X - lb)/(ub - lb) - 1
//
// so that lb maps to -1 and ub to 1. Degenerate bounds (ub == lb) are
// not checked and divide by zero; avoiding them is the caller's
// responsibility.
func Shift(X *mat.Dense, lb, ub []float64) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		span := ub[j] - lb[j]
		for i := 0; i < r; i++ {
			out.Set(i, j, 2.0*(X.At(i, j)-lb[j])/span-1.0)
		}
	}
	return out
}
