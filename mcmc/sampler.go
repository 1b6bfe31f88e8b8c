package mcmc

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strings"

	"github.com/gonum/matrix/mat64"
	"github.com/op/go-logging"

	"github.com/cjvogel/ramcal/chain"
)

var log = logging.MustGetLogger("mcmc")

// LogPosterior evaluates the log posterior density at theta, up to an
// additive constant. A state with zero posterior density is reported
// as math.Inf(-1); only genuine evaluation failures are errors.
type LogPosterior func(theta []float64) (float64, error)

// Result is the outcome of a sampling run.
type Result struct {
	// Chain holds one row per iteration. The initial state is not
	// included.
	Chain *chain.Chain
	// AcceptanceRate is the fraction of accepted proposals.
	AcceptanceRate float64
	// Accepted is the number of accepted proposals.
	Accepted int
	// Calls is the number of log-posterior evaluations.
	Calls int
	// Covariance is the adapted proposal covariance.
	Covariance *mat64.SymDense
	// Factor is a row-major dense copy of the adapted proposal
	// factor.
	Factor []float64
	// FinalState and FinalLogPost describe the last state of the
	// chain.
	FinalState   []float64
	FinalLogPost float64
	// Interrupted reports that the run was stopped early by a
	// watched signal; Chain then has fewer rows than requested.
	Interrupted bool
}

// Sampler is a robust adaptive Metropolis sampler. The full parameter
// vector is proposed jointly from a multivariate normal whose
// covariance factor adapts towards the target acceptance rate.
type Sampler struct {
	target   LogPosterior
	settings *Settings
	sig      chan os.Signal
}

// NewSampler creates a sampler for the given log-posterior function.
// A nil settings uses the defaults.
func NewSampler(target LogPosterior, settings *Settings) *Sampler {
	if settings == nil {
		settings = NewSettings()
	}
	return &Sampler{
		target:   target,
		settings: settings,
	}
}

// WatchSignals makes a running sampler stop gracefully when one of the
// signals arrives; the partial result is returned with Interrupted
// set.
func (s *Sampler) WatchSignals(sigs ...os.Signal) {
	s.sig = make(chan os.Signal, 1)
	signal.Notify(s.sig, sigs...)
}

// Run samples for the given number of iterations starting from the
// initial state, proposing with the given covariance. Runs with equal
// seeds, settings and inputs produce bit-identical chains.
func (s *Sampler) Run(initial []float64, sigma mat64.Matrix, iterations int) (*Result, error) {
	if err := s.checkRun(initial, iterations); err != nil {
		return nil, err
	}
	adapter, err := NewAdapter(sigma, s.settings)
	if err != nil {
		return nil, err
	}
	if adapter.Dim() != len(initial) {
		return nil, &InvalidCovarianceError{
			Rows:   adapter.Dim(),
			Cols:   adapter.Dim(),
			Reason: fmt.Sprintf("dimension does not match state dimension %d", len(initial)),
		}
	}
	return s.run(initial, adapter, 0, iterations)
}

// RunFrom continues a run from a restored state: factor is the
// row-major proposal factor and done the number of iterations already
// performed, so the adaptation schedule resumes where it stopped.
func (s *Sampler) RunFrom(initial []float64, factor []float64, done, iterations int) (*Result, error) {
	if err := s.checkRun(initial, iterations); err != nil {
		return nil, err
	}
	if done < 0 {
		return nil, fmt.Errorf("mcmc: negative iteration offset %d", done)
	}
	adapter, err := NewAdapterFromFactor(factor, len(initial), s.settings)
	if err != nil {
		return nil, err
	}
	return s.run(initial, adapter, done, iterations)
}

func (s *Sampler) checkRun(initial []float64, iterations int) error {
	if err := s.settings.validate(); err != nil {
		return err
	}
	if len(initial) == 0 {
		return fmt.Errorf("mcmc: empty initial state")
	}
	if iterations < 1 {
		return fmt.Errorf("mcmc: iterations must be positive, got %d", iterations)
	}
	return nil
}

func (s *Sampler) run(initial []float64, adapter *Adapter, done, iterations int) (*Result, error) {
	set := s.settings
	rng := rand.New(rand.NewSource(set.Seed))
	dim := len(initial)

	cur := make([]float64, dim)
	copy(cur, initial)
	curLP, err := s.target(cur)
	if err != nil {
		return nil, &ModelEvaluationError{Theta: cur, Err: err}
	}
	calls := 1
	if math.IsInf(curLP, -1) {
		log.Warning("Initial state has zero posterior density.")
	}

	if !set.Quiet {
		log.Infof("Starting RAM sampling: %d iterations, %d parameters, seed %v",
			iterations, dim, set.Seed)
	}
	s.printHeader(dim)

	c := chain.NewChain(dim, iterations)
	u := mat64.NewVector(dim, nil)
	incr := mat64.NewVector(dim, nil)
	cand := make([]float64, dim)

	accepted := 0
	accWindow := 0
	lastReported := -1
	interrupted := false

Iter:
	for i := 1; i <= iterations; i++ {
		if set.AccPeriod > 0 && i > 1 && (i-1)%set.AccPeriod == 0 {
			if !set.Quiet {
				log.Infof("Acceptance rate %.2f%%",
					100*float64(accWindow)/float64(set.AccPeriod))
			}
			accWindow = 0
		}

		for j := 0; j < dim; j++ {
			u.SetVec(j, rng.NormFloat64())
		}
		incr.MulVec(adapter.Lower(), u)
		for j := 0; j < dim; j++ {
			cand[j] = cur[j] + incr.At(j, 0)
		}

		candLP, err := s.target(cand)
		if err != nil {
			theta := make([]float64, dim)
			copy(theta, cand)
			return nil, &ModelEvaluationError{Theta: theta, Err: err}
		}
		calls++

		alpha := acceptProb(curLP, candLP)
		if rng.Float64() < alpha {
			copy(cur, cand)
			curLP = candLP
			accepted++
			accWindow++
		}
		c.Append(cur)

		if err := adapter.Update(u, alpha, done+i); err != nil {
			return nil, err
		}

		if set.RepPeriod > 0 && i%set.RepPeriod == 0 {
			s.printLine(i, curLP, cur)
			lastReported = i
		}
		if set.Progress != nil && set.ProgressPeriod > 0 && i%set.ProgressPeriod == 0 {
			if err := s.report(adapter, done+i, cur, curLP, accepted); err != nil {
				return nil, err
			}
		}

		if s.sig != nil {
			select {
			case sig := <-s.sig:
				log.Warningf("Received signal %v, stopping after %d iterations.", sig, i)
				interrupted = true
				break Iter
			default:
			}
		}
	}

	n := c.Len()
	if n != lastReported {
		s.printLine(n, curLP, cur)
	}

	rate := float64(accepted) / float64(n)
	if !set.Quiet {
		log.Noticef("Sampling finished: %d/%d proposals accepted (rate %.4f).",
			accepted, n, rate)
	}

	final := make([]float64, dim)
	copy(final, cur)
	return &Result{
		Chain:          c,
		AcceptanceRate: rate,
		Accepted:       accepted,
		Calls:          calls,
		Covariance:     adapter.Covariance(),
		Factor:         adapter.Factor(),
		FinalState:     final,
		FinalLogPost:   curLP,
		Interrupted:    interrupted,
	}, nil
}

// acceptProb computes the Metropolis acceptance probability from the
// current and candidate log-posterior values. A candidate with zero
// posterior density (or a NaN value) is rejected outright; the
// exponential is only taken of negative differences, so it cannot
// overflow.
func acceptProb(cur, cand float64) float64 {
	if math.IsInf(cand, -1) || math.IsNaN(cand) {
		return 0
	}
	if cand >= cur {
		return 1
	}
	return math.Exp(cand - cur)
}

func (s *Sampler) report(a *Adapter, iter int, cur []float64, lp float64, accepted int) error {
	state := make([]float64, len(cur))
	copy(state, cur)
	p := &Progress{
		Iter:     iter,
		State:    state,
		LogPost:  lp,
		Accepted: accepted,
		Factor:   a.Factor(),
		Dim:      a.Dim(),
	}
	return s.settings.Progress(p)
}

func (s *Sampler) printHeader(dim int) {
	w := s.settings.Trajectory
	if w == nil {
		return
	}
	names := make([]string, dim)
	for j := range names {
		if j < len(s.settings.Names) {
			names[j] = s.settings.Names[j]
		} else {
			names[j] = fmt.Sprintf("p%d", j)
		}
	}
	fmt.Fprintf(w, "iteration\tposterior\t%s\n", strings.Join(names, "\t"))
}

func (s *Sampler) printLine(iter int, lp float64, theta []float64) {
	w := s.settings.Trajectory
	if w == nil {
		return
	}
	fmt.Fprintf(w, "%d\t%f", iter, lp)
	for _, v := range theta {
		fmt.Fprintf(w, "\t%f", v)
	}
	fmt.Fprintln(w)
}
