package tensor

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// FromSlice creates a tensor from a Go slice. The slice is copied.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t := New(shape)
	copy(t.data, data)
	return t, nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1.0)
}

// Full creates a tensor filled with the given value.
func Full(shape Shape, value float64) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Scalar creates a (1,1) tensor holding a single value.
func Scalar(value float64) *Tensor {
	return Full(Shape{1, 1}, value)
}

// Column creates an (n,1) column tensor from a slice. The slice is copied.
func Column(data []float64) *Tensor {
	t := New(Shape{len(data), 1})
	copy(t.data, data)
	return t
}

// XavierNormal creates a (fanIn, fanOut) weight tensor drawn from the
// Xavier/Glorot normal distribution: N(0, sqrt(2/(fanIn+fanOut))).
//
// A nil src uses the global random source.
func XavierNormal(fanIn, fanOut int, src rand.Source) *Tensor {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: math.Sqrt(2.0 / float64(fanIn+fanOut)),
		Src:   src,
	}

	t := New(Shape{fanIn, fanOut})
	for i := range t.data {
		t.data[i] = dist.Rand()
	}
	return t
}
