// The adaptation scheme implements the robust adaptive Metropolis
// algorithm by Matti Vihola (Statistics and Computing, 2012).

package mcmc

import (
	"math"

	"github.com/gonum/blas/blas64"
	"github.com/gonum/matrix"
	"github.com/gonum/matrix/mat64"
)

// Adapter maintains the lower-triangular factor of the proposal
// covariance and adapts it after every iteration so the observed
// acceptance rate approaches the target.
type Adapter struct {
	dim    int
	target float64
	gamma  float64

	chol mat64.Cholesky
	next mat64.Cholesky
	l    *mat64.TriDense
	v    *mat64.Vector
}

// NewAdapter symmetrizes and factorizes the initial proposal
// covariance. An InvalidCovarianceError is returned if the matrix is
// not square or not positive-definite.
func NewAdapter(sigma mat64.Matrix, settings *Settings) (*Adapter, error) {
	r, c := sigma.Dims()
	if r != c {
		return nil, &InvalidCovarianceError{
			Rows:   r,
			Cols:   c,
			Reason: "matrix is not square",
		}
	}
	if r < 1 {
		return nil, &InvalidCovarianceError{
			Rows:   r,
			Cols:   c,
			Reason: "matrix is empty",
		}
	}
	sym := mat64.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, (sigma.At(i, j)+sigma.At(j, i))/2)
		}
	}
	a := &Adapter{
		dim:    r,
		target: settings.TargetAcceptance,
		gamma:  settings.Gamma,
		l:      mat64.NewTriDense(r, matrix.Lower, nil),
		v:      mat64.NewVector(r, nil),
	}
	if !a.chol.Factorize(sym) {
		return nil, &InvalidCovarianceError{
			Rows:   r,
			Cols:   c,
			Reason: "matrix is not positive-definite",
		}
	}
	a.l.LFromCholesky(&a.chol)
	return a, nil
}

// NewAdapterFromFactor restores an adapter from a row-major dense copy
// of the lower-triangular factor, e.g. one taken from a checkpoint.
func NewAdapterFromFactor(factor []float64, dim int, settings *Settings) (*Adapter, error) {
	if len(factor) != dim*dim {
		return nil, &InvalidCovarianceError{
			Rows:   dim,
			Cols:   dim,
			Reason: "factor length does not match dimension",
		}
	}
	sym := mat64.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			var s float64
			for k := 0; k <= i; k++ {
				s += factor[i*dim+k] * factor[j*dim+k]
			}
			sym.SetSym(i, j, s)
		}
	}
	return NewAdapter(sym, settings)
}

// Dim returns the dimension of the proposal.
func (a *Adapter) Dim() int {
	return a.dim
}

// Lower returns the current lower-triangular factor. The returned
// matrix is owned by the adapter and must not be modified.
func (a *Adapter) Lower() *mat64.TriDense {
	return a.l
}

// Factor returns a row-major dense copy of the current factor.
func (a *Adapter) Factor() []float64 {
	f := make([]float64, a.dim*a.dim)
	for i := 0; i < a.dim; i++ {
		for j := 0; j <= i; j++ {
			f[i*a.dim+j] = a.l.At(i, j)
		}
	}
	return f
}

// Covariance reconstructs the proposal covariance from the factor.
func (a *Adapter) Covariance() *mat64.SymDense {
	var sym mat64.SymDense
	sym.FromCholesky(&a.chol)
	return &sym
}

// eta is the decaying adaptation step size.
func eta(dim, iter int, gamma float64) float64 {
	return math.Min(1, float64(dim)*math.Pow(float64(iter), -gamma))
}

// Update performs the rank-one factor update for iteration iter
// (1-based) given the standard normal increment u and the acceptance
// probability alpha of the proposal it generated. If the incremental
// update loses positive-definiteness, the covariance is rebuilt from
// the factor and refactorized; an AdaptationInstabilityError is
// returned when that fails too.
func (a *Adapter) Update(u *mat64.Vector, alpha float64, iter int) error {
	raw := u.RawVector()
	normSq := blas64.Dot(a.dim, raw, raw)
	if normSq == 0 {
		return nil
	}
	coef := eta(a.dim, iter, a.gamma) * (alpha - a.target) / normSq
	if coef == 0 {
		return nil
	}
	a.v.MulVec(a.l, u)
	if a.next.SymRankOne(&a.chol, coef, a.v) {
		a.chol, a.next = a.next, a.chol
		a.l.LFromCholesky(&a.chol)
		return nil
	}
	// The incremental downdate failed. Apply the update to the full
	// matrix and refactorize; SetSym keeps the result exactly
	// symmetric.
	var sym mat64.SymDense
	sym.FromCholesky(&a.chol)
	for i := 0; i < a.dim; i++ {
		vi := a.v.At(i, 0)
		for j := i; j < a.dim; j++ {
			sym.SetSym(i, j, sym.At(i, j)+coef*vi*a.v.At(j, 0))
		}
	}
	if !a.chol.Factorize(&sym) {
		return &AdaptationInstabilityError{Iter: iter}
	}
	a.l.LFromCholesky(&a.chol)
	return nil
}
