package chain

import (
	"fmt"
	"math"
	"sort"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat"
)

// ConfigurationError reports a burn-in or thinning parameter that is
// inconsistent with the chain length. It is never clamped silently.
type ConfigurationError struct {
	Op     string
	Value  int
	Length int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("chain: %s of %d is not compatible with chain length %d", e.Op, e.Value, e.Length)
}

// DropBurnIn returns a new chain with the first burnIn samples removed.
// The burn-in must be non-negative and strictly smaller than the chain
// length.
func DropBurnIn(c *Chain, burnIn int) (*Chain, error) {
	if burnIn < 0 || burnIn >= c.Len() {
		return nil, &ConfigurationError{Op: "burn-in", Value: burnIn, Length: c.Len()}
	}
	out := NewChain(c.Dim(), c.Len()-burnIn)
	for i := burnIn; i < c.Len(); i++ {
		out.Append(c.Row(i))
	}
	return out, nil
}

// Thin selects target equally spaced samples spanning the whole chain.
// The first and the last sample are always included for target >= 2;
// target = 1 keeps the first sample. Intermediate indices are rounded
// to the nearest integer, which keeps the selection strictly increasing
// for any target not exceeding the chain length.
func Thin(c *Chain, target int) (*Chain, error) {
	if target < 1 || target > c.Len() {
		return nil, &ConfigurationError{Op: "thinning target", Value: target, Length: c.Len()}
	}
	out := NewChain(c.Dim(), target)
	if target == 1 {
		out.Append(c.Row(0))
		return out, nil
	}
	step := float64(c.Len()-1) / float64(target-1)
	for k := 0; k < target; k++ {
		i := int(math.Round(float64(k) * step))
		out.Append(c.Row(i))
	}
	return out, nil
}

// Mean returns the elementwise arithmetic mean of the samples.
func Mean(c *Chain) []float64 {
	mean := make([]float64, c.Dim())
	for i := 0; i < c.Len(); i++ {
		floats.Add(mean, c.Row(i))
	}
	floats.Scale(1/float64(c.Len()), mean)
	return mean
}

// Correlation returns the Pearson correlation matrix between all pairs
// of parameters. The matrix is symmetric by construction and the
// diagonal is set to exactly one.
func Correlation(c *Chain) *mat64.SymDense {
	corr := stat.CorrelationMatrix(nil, c.Matrix(), nil)
	for i := 0; i < c.Dim(); i++ {
		corr.SetSym(i, i, 1)
	}
	return corr
}

// Quantiles returns empirical quantiles of every parameter. The result
// has one row per parameter and one column per probability.
func Quantiles(c *Chain, probs []float64) *mat64.Dense {
	q := mat64.NewDense(c.Dim(), len(probs), nil)
	for j := 0; j < c.Dim(); j++ {
		col := c.Column(j)
		sort.Float64s(col)
		for k, p := range probs {
			q.Set(j, k, stat.Quantile(p, stat.Empirical, col, nil))
		}
	}
	return q
}
