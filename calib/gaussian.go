package calib

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

// GaussianTarget is a multivariate normal reference posterior. It is
// used to validate sampler behavior against a target with a known
// mean and covariance.
type GaussianTarget struct {
	normal *distmv.Normal
	dim    int
}

// NewGaussianTarget creates a reference target with the given mean
// and covariance.
func NewGaussianTarget(mean []float64, sigma *mat64.SymDense) (*GaussianTarget, error) {
	normal, ok := distmv.NewNormal(mean, sigma, nil)
	if !ok {
		return nil, fmt.Errorf("calib: reference covariance is not positive-definite")
	}
	return &GaussianTarget{
		normal: normal,
		dim:    len(mean),
	}, nil
}

// Dim returns the target dimension.
func (g *GaussianTarget) Dim() int {
	return g.dim
}

// LogPost evaluates the reference log density at theta.
func (g *GaussianTarget) LogPost(theta []float64) (float64, error) {
	if len(theta) != g.dim {
		return 0, fmt.Errorf("calib: expected %d parameters, got %d", g.dim, len(theta))
	}
	return g.normal.LogProb(theta), nil
}
