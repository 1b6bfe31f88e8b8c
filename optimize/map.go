// Package optimize searches for the posterior mode. The mode is used
// as a starting point for sampling and as a point estimate in its own
// right.
package optimize

import (
	"fmt"
	"math"

	"github.com/op/go-logging"

	lbfgsb "github.com/idavydov/go-lbfgsb"
)

// log is the global logging variable.
var log = logging.MustGetLogger("optimize")

// margin keeps the search away from the exact support edges so that
// finite-difference points stay inside the support.
const margin = 1e-5

// boundClamp replaces infinite support bounds for the bounded
// optimizer.
const boundClamp = 1e10

// Objective evaluates the log posterior density at theta. A density of
// -Inf marks a point outside the support; an error marks a failed
// evaluation.
type Objective func(theta []float64) (float64, error)

// Result is the outcome of a mode search.
type Result struct {
	// X is the best point seen across all evaluations.
	X []float64
	// LogPost is the log posterior density at X.
	LogPost float64
	// Calls is the number of objective evaluations, gradients
	// included.
	Calls int
	// Status is the optimizer exit status.
	Status string
}

// MAP maximizes the log posterior with bounded L-BFGS-B using central
// finite-difference gradients.
type MAP struct {
	target Objective
	bounds [][2]float64
	dH     float64

	// Quiet disables per-iteration reporting.
	Quiet bool

	grad  []float64
	point []float64
	calls int
	best  []float64
	bestL float64
	err   error
}

// NewMAP creates a mode search for target within the given support
// bounds (one [min, max] pair per parameter, infinities allowed).
func NewMAP(target Objective, bounds [][2]float64) *MAP {
	return &MAP{
		target: target,
		bounds: bounds,
		dH:     1e-6,
		bestL:  math.Inf(-1),
	}
}

// EvaluateFunction returns the negated log posterior at x. Points
// outside the support and failed evaluations yield +Inf.
func (m *MAP) EvaluateFunction(x []float64) float64 {
	if !m.inBounds(x) {
		return math.Inf(+1)
	}
	lp := m.value(x)
	if lp > m.bestL {
		m.bestL = lp
		m.best = append(m.best[:0], x...)
	}
	return -lp
}

// EvaluateGradient returns the central finite-difference gradient of
// the negated log posterior at x.
func (m *MAP) EvaluateGradient(x []float64) []float64 {
	if m.grad == nil {
		m.grad = make([]float64, len(x))
		m.point = make([]float64, len(x))
	}
	grad := m.grad
	copy(m.point, x)
	for i := range x {
		m.point[i] = x[i] - m.dH
		l1 := m.value(m.point)
		m.point[i] = x[i] + m.dH
		l2 := m.value(m.point)
		m.point[i] = x[i]
		grad[i] = -(l2 - l1) / 2 / m.dH
	}
	return grad
}

func (m *MAP) value(x []float64) float64 {
	lp, err := m.target(x)
	m.calls++
	if err != nil {
		if m.err == nil {
			m.err = err
		}
		return math.Inf(-1)
	}
	if math.IsNaN(lp) {
		return math.Inf(-1)
	}
	return lp
}

func (m *MAP) inBounds(x []float64) bool {
	for i, v := range x {
		if v < m.bounds[i][0] || v > m.bounds[i][1] {
			return false
		}
	}
	return true
}

func (m *MAP) logProgress(info *lbfgsb.OptimizationIterationInformation) {
	if m.Quiet {
		return
	}
	log.Infof("%v: log posterior=%v", info.Iteration, -info.F)
}

// searchBounds shrinks the support by margin and clamps infinite
// bounds.
func (m *MAP) searchBounds() [][2]float64 {
	bounds := make([][2]float64, len(m.bounds))
	for i, b := range m.bounds {
		lower, upper := b[0], b[1]
		if math.IsInf(lower, -1) {
			lower = -boundClamp
		} else {
			lower += margin
		}
		if math.IsInf(upper, +1) {
			upper = boundClamp
		} else {
			upper -= margin
		}
		bounds[i] = [2]float64{lower, upper}
	}
	return bounds
}

// Run searches for the mode starting from start. The best point seen
// across all evaluations is returned, which is not necessarily the
// optimizer's final point.
func (m *MAP) Run(start []float64) (*Result, error) {
	if len(start) != len(m.bounds) {
		return nil, fmt.Errorf("optimize: expected %d parameters, got %d",
			len(m.bounds), len(start))
	}
	bounds := m.searchBounds()
	x0 := make([]float64, len(start))
	for i, v := range start {
		x0[i] = math.Min(math.Max(v, bounds[i][0]), bounds[i][1])
	}

	opt := new(lbfgsb.Lbfgsb)
	opt.SetApproximationSize(10)
	opt.SetFTolerance(1e-9)
	opt.SetGTolerance(1e-9)

	opt.SetBounds(bounds)
	opt.SetLogger(m.logProgress)

	_, exitStatus := opt.Minimize(m, x0)

	log.Notice("Exit status: ", exitStatus)

	if math.IsInf(m.bestL, -1) {
		if m.err != nil {
			return nil, m.err
		}
		return nil, fmt.Errorf("optimize: no point with finite log posterior found")
	}

	if !m.Quiet {
		log.Notice("Finished mode search")
		log.Noticef("Maximum log posterior: %v", m.bestL)
		log.Noticef("Function calls: %v", m.calls)
	}

	best := make([]float64, len(m.best))
	copy(best, m.best)
	return &Result{
		X:       best,
		LogPost: m.bestL,
		Calls:   m.calls,
		Status:  fmt.Sprint(exitStatus),
	}, nil
}
