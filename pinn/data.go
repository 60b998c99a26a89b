package pinn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pinn-ml/pinn/dataset"
	"github.com/pinn-ml/pinn/tensor"
)

// LoadPointSet is the handoff between external point generation and the
// trainable core: it takes raw (r,2) coordinates with per-point targets
// and domain bounds, normalizes the coordinates to [-1, 1], and wraps
// them into gradient-tracked column tensors. The target column stays a
// plain tensor.
func LoadPointSet(pts *mat.Dense, targets []float64, lb, ub []float64) (*PointSet, error) {
	r, c := pts.Dims()
	if c != 2 {
		return nil, fmt.Errorf("pinn: expected (n,2) point matrix, got (%d,%d)", r, c)
	}
	if len(targets) != r {
		return nil, fmt.Errorf("pinn: %d points but %d targets", r, len(targets))
	}
	if len(lb) != 2 || len(ub) != 2 {
		return nil, fmt.Errorf("pinn: domain bounds must have 2 components, got %d and %d", len(lb), len(ub))
	}

	shifted := dataset.Shift(pts, lb, ub)

	x := tensor.Column(colData(shifted, 0)).RequireGrad()
	y := tensor.Column(colData(shifted, 1)).RequireGrad()
	u := tensor.Column(targets)

	return &PointSet{X: x, Y: y, U: u}, nil
}

// Predict evaluates the network at pre-normalized (r,2) coordinates and
// returns plain, non-differentiable output values for export.
func (m *Model) Predict(pts *mat.Dense) []float64 {
	x := tensor.Column(colData(pts, 0))
	y := tensor.Column(colData(pts, 1))

	u := m.net.Evaluate(x, y).Detach()

	out := make([]float64, u.NumElements())
	copy(out, u.Data())
	return out
}

// colData copies column j of a matrix into a slice.
func colData(m *mat.Dense, j int) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	mat.Col(out, j, m)
	return out
}
