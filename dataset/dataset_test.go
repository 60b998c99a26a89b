package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if len(got) != len(want) {
		t.Fatalf("Linspace returned %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	single := Linspace(2, 7, 1)
	if len(single) != 1 || single[0] != 2 {
		t.Errorf("Linspace with n=1 = %v, want [2]", single)
	}
}

func TestMeshgrid(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{10, 20}
	X, Y := Meshgrid(x, y)

	r, c := X.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("Meshgrid dims = (%d, %d), want (2, 3)", r, c)
	}
	for i := range y {
		for j := range x {
			if X.At(i, j) != x[j] {
				t.Errorf("X[%d,%d] = %v, want %v", i, j, X.At(i, j), x[j])
			}
			if Y.At(i, j) != y[i] {
				t.Errorf("Y[%d,%d] = %v, want %v", i, j, Y.At(i, j), y[i])
			}
		}
	}
}

func TestFlattenGrid(t *testing.T) {
	X, Y := Meshgrid([]float64{0, 1}, []float64{10, 20})
	pts := FlattenGrid(X, Y)

	r, c := pts.Dims()
	if r != 4 || c != 2 {
		t.Fatalf("FlattenGrid dims = (%d, %d), want (4, 2)", r, c)
	}
	// Row-major: x varies fastest.
	want := [][2]float64{{0, 10}, {1, 10}, {0, 20}, {1, 20}}
	for i, w := range want {
		if pts.At(i, 0) != w[0] || pts.At(i, 1) != w[1] {
			t.Errorf("row %d = (%v, %v), want (%v, %v)", i, pts.At(i, 0), pts.At(i, 1), w[0], w[1])
		}
	}
}

func TestAnalyticalBottomEdgeZero(t *testing.T) {
	x := Linspace(0, 1, 11)
	y := Linspace(0, 1, 11)
	p := Analytical(x, y)

	for j := range x {
		if v := p.At(0, j); math.Abs(v) > 1e-15 {
			t.Errorf("p(x=%v, y=0) = %v, want 0", x[j], v)
		}
	}
}

func TestAnalyticalRightEdgeNeumann(t *testing.T) {
	// dp/dx vanishes at x = xmax: central finite difference around the
	// right edge must be ~0.
	const h = 1e-6
	xm, ym := 1.0, 1.0
	k := 1.5 * math.Pi / xm
	eval := func(x, y float64) float64 {
		return math.Sinh(k*y) * math.Sin(k*x) / math.Sinh(k*ym)
	}
	for _, y := range []float64{0.25, 0.5, 0.9} {
		d := (eval(xm+h, y) - eval(xm-h, y)) / (2 * h)
		if math.Abs(d) > 1e-4 {
			t.Errorf("dp/dx at (xmax, %v) = %v, want ~0", y, d)
		}
	}
}

func TestAnalyticalIsHarmonic(t *testing.T) {
	// Five-point finite-difference Laplacian of the closed form must be
	// ~0 at interior points.
	const h = 1e-4
	xm, ym := 1.0, 1.0
	k := 1.5 * math.Pi / xm
	eval := func(x, y float64) float64 {
		return math.Sinh(k*y) * math.Sin(k*x) / math.Sinh(k*ym)
	}
	for _, p := range [][2]float64{{0.3, 0.4}, {0.7, 0.2}, {0.5, 0.8}} {
		c := eval(p[0], p[1])
		lap := (eval(p[0]+h, p[1])-2*c+eval(p[0]-h, p[1]))/(h*h) +
			(eval(p[0], p[1]+h)-2*c+eval(p[0], p[1]-h))/(h*h)
		if math.Abs(lap) > 1e-3 {
			t.Errorf("Laplacian at (%v, %v) = %v, want ~0", p[0], p[1], lap)
		}
	}
}

func TestShift(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 2,
		2, 4,
	})
	out := Shift(X, []float64{0, 0}, []float64{2, 4})

	want := []float64{-1, -1, 0, 0, 1, 1}
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if v := out.At(i, j); math.Abs(v-want[i*2+j]) > 1e-15 {
				t.Errorf("Shift[%d,%d] = %v, want %v", i, j, v, want[i*2+j])
			}
		}
	}

	// Input is left untouched.
	if X.At(1, 0) != 1 || X.At(2, 1) != 4 {
		t.Error("Shift must not mutate its input")
	}
}

func TestSampleRowsJointAlignment(t *testing.T) {
	// Values column equals 10x the coordinate, so alignment survives any
	// permutation and is easy to check.
	pts := mat.NewDense(8, 1, nil)
	vals := mat.NewDense(8, 1, nil)
	for i := 0; i < 8; i++ {
		pts.Set(i, 0, float64(i))
		vals.Set(i, 0, float64(i)*10)
	}

	out, err := SampleRows(5, rand.NewSource(42), pts, vals)
	if err != nil {
		t.Fatalf("SampleRows: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("SampleRows returned %d matrices, want 2", len(out))
	}

	r, _ := out[0].Dims()
	if r != 5 {
		t.Fatalf("sampled %d rows, want 5", r)
	}
	seen := make(map[float64]bool)
	for i := 0; i < 5; i++ {
		p := out[0].At(i, 0)
		if out[1].At(i, 0) != p*10 {
			t.Errorf("row %d: value %v does not match coordinate %v", i, out[1].At(i, 0), p)
		}
		if seen[p] {
			t.Errorf("row %v sampled twice", p)
		}
		seen[p] = true
	}
}

func TestSampleRowsErrors(t *testing.T) {
	if _, err := SampleRows(1, nil); err == nil {
		t.Error("no matrices must fail")
	}

	a := mat.NewDense(3, 1, nil)
	b := mat.NewDense(4, 1, nil)
	if _, err := SampleRows(2, nil, a, b); err == nil {
		t.Error("unequal row counts must fail")
	}
	if _, err := SampleRows(5, nil, a); err == nil {
		t.Error("oversampling without replacement must fail")
	}
}

func TestLatinHypercube(t *testing.T) {
	bounds := []r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}}
	const n = 20
	src := rand.NewSource(7)
	pts := LatinHypercube(n, bounds, src)

	r, c := pts.Dims()
	if r != n || c != 2 {
		t.Fatalf("LatinHypercube dims = (%d, %d), want (%d, 2)", r, c, n)
	}

	// Every point inside the box, and every stratum hit exactly once
	// per dimension.
	for j := 0; j < 2; j++ {
		strata := make(map[int]bool)
		for i := 0; i < n; i++ {
			v := pts.At(i, j)
			if v < 0 || v > 1 {
				t.Fatalf("point (%d, %d) = %v outside bounds", i, j, v)
			}
			s := int(v * n)
			if s == n {
				s = n - 1
			}
			if strata[s] {
				t.Errorf("dimension %d: stratum %d hit twice", j, s)
			}
			strata[s] = true
		}
	}
}

func TestSaveText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "u_pred.txt")
	values := []float64{1.5, -2.25, 0, 1e-12}

	if err := SaveText(path, values); err != nil {
		t.Fatalf("SaveText: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Fields(string(raw))
	if len(lines) != len(values) {
		t.Fatalf("wrote %d lines, want %d", len(lines), len(values))
	}
	for i, line := range lines {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if v != values[i] {
			t.Errorf("line %d = %v, want %v", i, v, values[i])
		}
	}
}
