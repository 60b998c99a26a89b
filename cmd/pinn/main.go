// Command pinn trains a physics-informed network on the 2-D Laplace
// problem: Dirichlet data on the top, left and bottom boundaries, a
// zero-flux Neumann condition on the right boundary and a zero PDE
// residual at Latin hypercube collocation points. The analytical
// solution provides the synthetic targets and the validation reference.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/pinn-ml/pinn/dataset"
	"github.com/pinn-ml/pinn/optim"
	"github.com/pinn-ml/pinn/pinn"
)

func main() {
	nx := flag.Int("nx", 64, "Grid points along x")
	ny := flag.Int("ny", 64, "Grid points along y")
	nDiri := flag.Int("ndiri", 100, "Dirichlet boundary points")
	nNuem := flag.Int("nnuem", 30, "Neumann boundary points")
	nData := flag.Int("nu", 100, "Direct measurement points")
	nColl := flag.Int("nf", 200, "PDE collocation points")
	layersArg := flag.String("layers", "2,20,20,20,20,20,20,1", "Comma-separated layer sizes")
	mode := flag.String("mode", "lbfgs", "Training mode: lbfgs, adam or sgd")
	maxIter := flag.Int("maxiter", 300, "L-BFGS iteration budget")
	epochs := flag.Int("epochs", 1000, "Epochs for first-order modes")
	lr := flag.Float64("lr", 0.001, "Learning rate for first-order modes")
	seed := flag.Uint64("seed", 1234, "Random seed")
	out := flag.String("out", "u_pred.txt", "Prediction output file")
	flag.Parse()

	layers, err := parseLayers(*layersArg)
	if err != nil {
		log.Fatalf("invalid -layers: %v", err)
	}
	src := rand.NewSource(*seed)

	// Reference solution on the full grid.
	x := dataset.Linspace(0, 1, *nx)
	y := dataset.Linspace(0, 1, *ny)
	exact := dataset.Analytical(x, y)
	X, Y := dataset.Meshgrid(x, y)

	xStar := dataset.FlattenGrid(X, Y)
	uStar := flatten(exact)
	lbs := []float64{0, 0}
	ubs := []float64{1, 1}

	// Dirichlet rows: top, left and bottom boundaries with exact values.
	topPts, topVals := gridRow(X, Y, exact, 0)
	leftPts, leftVals := gridCol(X, Y, exact, 0)
	botPts, botVals := gridRow(X, Y, exact, *ny-1)
	diriPts := stackDense(topPts, leftPts, botPts)
	diriVals := stackDense(topVals, leftVals, botVals)
	diriSel, err := dataset.SampleRows(*nDiri, src, diriPts, diriVals)
	if err != nil {
		log.Fatalf("sampling Dirichlet points: %v", err)
	}

	// Neumann rows: right boundary with zero du/dx target.
	nuemPts, _ := gridCol(X, Y, exact, *nx-1)
	r, _ := nuemPts.Dims()
	nuemSel, err := dataset.SampleRows(*nNuem, src, nuemPts, mat.NewDense(r, 1, nil))
	if err != nil {
		log.Fatalf("sampling Neumann points: %v", err)
	}

	// Direct measurement rows: interior grid points with exact values.
	dataPts, dataVals := interior(X, Y, exact)
	dataSel, err := dataset.SampleRows(*nData, src, dataPts, dataVals)
	if err != nil {
		log.Fatalf("sampling data points: %v", err)
	}

	// Collocation rows: Latin hypercube over the domain, zero residual.
	collPts := dataset.LatinHypercube(*nColl, []r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}}, src)
	collVals := make([]float64, *nColl)

	model, err := pinn.New(layers, src)
	if err != nil {
		log.Fatalf("building model: %v", err)
	}
	fmt.Printf("layers %v (%d parameters)\n", layers, model.Network().NumParameters())

	sets := map[pinn.Role]*pinn.PointSet{}
	for role, data := range map[pinn.Role]struct {
		pts  *mat.Dense
		vals []float64
	}{
		pinn.RoleData:      {dataSel[0], firstCol(dataSel[1])},
		pinn.RoleDirichlet: {diriSel[0], firstCol(diriSel[1])},
		pinn.RoleNeumann:   {nuemSel[0], firstCol(nuemSel[1])},
		pinn.RoleResidual:  {collPts, collVals},
	} {
		set, err := pinn.LoadPointSet(data.pts, data.vals, lbs, ubs)
		if err != nil {
			log.Fatalf("loading %q point set: %v", role, err)
		}
		sets[role] = set
	}

	start := time.Now()
	switch *mode {
	case "lbfgs":
		err = model.TrainLBFGS(sets, pinn.LBFGSConfig{MaxIterations: *maxIter})
	case "adam":
		opt := optim.NewAdam(model.Network().Parameters(), optim.AdamConfig{LR: *lr})
		err = model.Train(*epochs, sets, nil, opt)
	case "sgd":
		opt := optim.NewSGD(model.Network().Parameters(), optim.SGDConfig{LR: *lr})
		err = model.Train(*epochs, sets, nil, opt)
	default:
		log.Fatalf("unknown -mode %q", *mode)
	}
	if err != nil {
		log.Fatalf("training: %v", err)
	}
	fmt.Printf("training time: %.4fs, final loss %.6e (%d evaluations)\n",
		time.Since(start).Seconds(), model.Loss(), len(model.LossHistory()))

	// Relative L2 error against the analytical solution on the full grid.
	xPred := dataset.Shift(xStar, lbs, ubs)
	uPred := model.Predict(xPred)

	diff := make([]float64, len(uStar))
	copy(diff, uStar)
	floats.Sub(diff, uPred)
	relErr := floats.Norm(diff, 2) / floats.Norm(uStar, 2)
	fmt.Printf("relative L2 error: %e\n", relErr)

	if err := dataset.SaveText(*out, uPred); err != nil {
		log.Fatalf("writing predictions: %v", err)
	}
	fmt.Printf("predictions written to %s\n", *out)
}

// parseLayers parses a comma-separated layer size list.
func parseLayers(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	layers := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		layers = append(layers, n)
	}
	return layers, nil
}

// gridRow extracts grid row i as (nx,2) coordinates with (nx,1) values.
func gridRow(X, Y, P *mat.Dense, i int) (*mat.Dense, *mat.Dense) {
	_, c := X.Dims()
	pts := mat.NewDense(c, 2, nil)
	vals := mat.NewDense(c, 1, nil)
	for j := 0; j < c; j++ {
		pts.Set(j, 0, X.At(i, j))
		pts.Set(j, 1, Y.At(i, j))
		vals.Set(j, 0, P.At(i, j))
	}
	return pts, vals
}

// gridCol extracts grid column j as (ny,2) coordinates with (ny,1) values.
func gridCol(X, Y, P *mat.Dense, j int) (*mat.Dense, *mat.Dense) {
	r, _ := X.Dims()
	pts := mat.NewDense(r, 2, nil)
	vals := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pts.Set(i, 0, X.At(i, j))
		pts.Set(i, 1, Y.At(i, j))
		vals.Set(i, 0, P.At(i, j))
	}
	return pts, vals
}

// interior extracts all grid points excluding the outermost ring.
func interior(X, Y, P *mat.Dense) (*mat.Dense, *mat.Dense) {
	r, c := X.Dims()
	n := (r - 2) * (c - 2)
	pts := mat.NewDense(n, 2, nil)
	vals := mat.NewDense(n, 1, nil)
	k := 0
	for i := 1; i < r-1; i++ {
		for j := 1; j < c-1; j++ {
			pts.Set(k, 0, X.At(i, j))
			pts.Set(k, 1, Y.At(i, j))
			vals.Set(k, 0, P.At(i, j))
			k++
		}
	}
	return pts, vals
}

// stackDense vertically concatenates matrices with equal column counts.
func stackDense(ms ...*mat.Dense) *mat.Dense {
	total := 0
	_, c := ms[0].Dims()
	for _, m := range ms {
		r, _ := m.Dims()
		total += r
	}
	out := mat.NewDense(total, c, nil)
	offset := 0
	for _, m := range ms {
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				out.Set(offset+i, j, m.At(i, j))
			}
		}
		offset += r
	}
	return out
}

// firstCol copies the first column of a matrix into a slice.
func firstCol(m *mat.Dense) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	mat.Col(out, 0, m)
	return out
}

// flatten copies a matrix into a row-major slice, matching the ordering
// FlattenGrid uses for points.
func flatten(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}
