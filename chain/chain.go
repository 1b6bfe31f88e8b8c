// Package chain stores Markov chain samples and implements the
// post-processing operations used to turn a raw chain into posterior
// summaries: burn-in removal, equally spaced thinning, posterior mean,
// correlation matrix and quantiles.
package chain

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// Chain is an ordered collection of parameter vectors, one per MCMC
// iteration. Samples are stored row-major so the whole chain can be
// viewed as a dense matrix (rows are iterations, columns are
// parameters) without copying.
type Chain struct {
	dim  int
	rows int
	data []float64
}

// NewChain creates an empty chain for vectors of the given dimension.
// The capacity hint preallocates storage for that many samples.
func NewChain(dim, capacity int) *Chain {
	if dim < 1 {
		panic("chain: dimension should be positive")
	}
	if capacity < 0 {
		capacity = 0
	}
	return &Chain{
		dim:  dim,
		data: make([]float64, 0, dim*capacity),
	}
}

// Append adds a copy of theta as the next sample.
func (c *Chain) Append(theta []float64) {
	if len(theta) != c.dim {
		panic(fmt.Sprintf("chain: expected %d parameters, got %d", c.dim, len(theta)))
	}
	c.data = append(c.data, theta...)
	c.rows++
}

// Len returns the number of samples.
func (c *Chain) Len() int {
	return c.rows
}

// Dim returns the number of parameters per sample.
func (c *Chain) Dim() int {
	return c.dim
}

// Row returns the i-th sample. The slice aliases the chain storage and
// must not be modified.
func (c *Chain) Row(i int) []float64 {
	return c.data[i*c.dim : (i+1)*c.dim]
}

// Column returns a copy of the samples of the j-th parameter.
func (c *Chain) Column(j int) []float64 {
	if j < 0 || j >= c.dim {
		panic("chain: column out of range")
	}
	col := make([]float64, c.rows)
	for i := 0; i < c.rows; i++ {
		col[i] = c.data[i*c.dim+j]
	}
	return col
}

// Matrix returns the chain as a dense matrix sharing the chain storage.
func (c *Chain) Matrix() *mat64.Dense {
	return mat64.NewDense(c.rows, c.dim, c.data)
}

// FromRows creates a chain from a slice of samples.
func FromRows(rows [][]float64) *Chain {
	if len(rows) == 0 {
		panic("chain: no samples")
	}
	c := NewChain(len(rows[0]), len(rows))
	for _, r := range rows {
		c.Append(r)
	}
	return c
}
