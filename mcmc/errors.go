package mcmc

import "fmt"

// InvalidCovarianceError is returned when the initial proposal
// covariance cannot be Cholesky-factorized, i.e. it is not square or
// not positive-definite even after symmetrization.
type InvalidCovarianceError struct {
	Rows, Cols int
	Reason     string
}

func (e *InvalidCovarianceError) Error() string {
	return fmt.Sprintf("mcmc: invalid proposal covariance (%dx%d): %s",
		e.Rows, e.Cols, e.Reason)
}

// AdaptationInstabilityError is returned when a rank-one update of the
// proposal factor destroys positive-definiteness and the factorization
// cannot be repaired by rebuilding from the full matrix.
type AdaptationInstabilityError struct {
	Iter int
}

func (e *AdaptationInstabilityError) Error() string {
	return fmt.Sprintf("mcmc: covariance adaptation lost positive-definiteness at iteration %d",
		e.Iter)
}

// ModelEvaluationError wraps a failure of the log-posterior function.
// It carries the parameter vector which triggered the failure so the
// offending state can be inspected or replayed. A sampling run stops at
// the first such error; states outside the posterior support must be
// signalled by a -Inf log-posterior instead, which is an ordinary
// rejection and not an error.
type ModelEvaluationError struct {
	Theta []float64
	Err   error
}

func (e *ModelEvaluationError) Error() string {
	return fmt.Sprintf("mcmc: log-posterior evaluation failed at theta=%v: %v",
		e.Theta, e.Err)
}

func (e *ModelEvaluationError) Unwrap() error {
	return e.Err
}
