package pinn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestLoadPointSet(t *testing.T) {
	pts := mat.NewDense(3, 2, []float64{
		0, 0,
		0.5, 1,
		1, 0.25,
	})
	targets := []float64{1, 2, 3}

	set, err := LoadPointSet(pts, targets, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	// Bounds map to the ends of [-1, 1].
	assert.InDelta(t, -1, set.X.At(0, 0), 1e-15, "lb -> -1")
	assert.InDelta(t, 0, set.X.At(1, 0), 1e-15, "midpoint -> 0")
	assert.InDelta(t, 1, set.X.At(2, 0), 1e-15, "ub -> 1")
	assert.InDelta(t, 1, set.Y.At(1, 0), 1e-15, "y ub -> 1")
	assert.InDelta(t, -0.5, set.Y.At(2, 0), 1e-15, "y quarter -> -0.5")

	// Coordinates are gradient-tracked, targets are plain.
	assert.True(t, set.X.RequiresGrad())
	assert.True(t, set.Y.RequiresGrad())
	assert.False(t, set.U.RequiresGrad())
	assert.Equal(t, targets, set.U.Data())
}

func TestLoadPointSetValidation(t *testing.T) {
	pts3 := mat.NewDense(2, 3, nil)
	_, err := LoadPointSet(pts3, []float64{0, 0}, []float64{0, 0}, []float64{1, 1})
	require.Error(t, err, "non (n,2) points must fail")

	pts := mat.NewDense(2, 2, nil)
	_, err = LoadPointSet(pts, []float64{0}, []float64{0, 0}, []float64{1, 1})
	require.Error(t, err, "target length mismatch must fail")

	_, err = LoadPointSet(pts, []float64{0, 0}, []float64{0}, []float64{1, 1})
	require.Error(t, err, "bad bounds must fail")
}

func TestPredict(t *testing.T) {
	m, err := New([]int{2, 1}, rand.NewSource(1))
	require.NoError(t, err)
	w := m.Network().Weights()[0].Tensor().Data()
	w[0], w[1] = 1, -1 // u = x - y

	pts := mat.NewDense(2, 2, []float64{
		0.5, 0.2,
		-0.3, -0.3,
	})
	out := m.Predict(pts)
	require.Len(t, out, 2)
	assert.InDelta(t, 0.3, out[0], 1e-12)
	assert.InDelta(t, 0, out[1], 1e-12)
}
