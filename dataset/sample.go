package dataset

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// SampleRows selects n rows uniformly without replacement, jointly
// across all given matrices: the same row indices are taken from each,
// so paired coordinate/value matrices stay aligned. All matrices must
// share their row count, and n must not exceed it.
//
// A nil src uses the global random source.
func SampleRows(n int, src rand.Source, ms ...*mat.Dense) ([]*mat.Dense, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("dataset: no matrices to sample")
	}
	r, _ := ms[0].Dims()
	for _, m := range ms[1:] {
		ri, _ := m.Dims()
		if ri != r {
			return nil, fmt.Errorf("dataset: joint sampling requires equal row counts, got %d and %d", r, ri)
		}
	}
	if n > r {
		return nil, fmt.Errorf("dataset: cannot sample %d of %d rows without replacement", n, r)
	}

	var perm []int
	if src == nil {
		perm = rand.Perm(r)
	} else {
		perm = rand.New(src).Perm(r)
	}

	out := make([]*mat.Dense, len(ms))
	for k, m := range ms {
		_, c := m.Dims()
		sel := mat.NewDense(n, c, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < c; j++ {
				sel.Set(i, j, m.At(perm[i], j))
			}
		}
		out[k] = sel
	}
	return out, nil
}

// LatinHypercube draws n quasi-random points from the box described by
// bounds (one interval per dimension) using Latin hypercube sampling:
// each dimension is divided into n strata and every stratum is hit
// exactly once, which covers the domain far more evenly than plain
// uniform sampling. Used for PDE collocation points.
func LatinHypercube(n int, bounds []r1.Interval, src rand.Source) *mat.Dense {
	sampler := samplemv.LatinHypercube{
		Q:   distmv.NewUniform(bounds, src),
		Src: src,
	}
	batch := mat.NewDense(n, len(bounds), nil)
	sampler.Sample(batch)
	return batch
}
