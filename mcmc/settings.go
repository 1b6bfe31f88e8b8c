package mcmc

import (
	"fmt"
	"io"
)

// Progress is a snapshot of a running sampler, handed to the progress
// callback. All reference fields are copies owned by the receiver.
type Progress struct {
	Iter     int
	State    []float64
	LogPost  float64
	Accepted int
	// Factor is the current lower-triangular proposal factor, stored
	// row-major (dim x dim).
	Factor []float64
	Dim    int
}

// ProgressFunc receives periodic sampler snapshots, e.g. for
// checkpointing. Returning an error aborts the run.
type ProgressFunc func(p *Progress) error

// Settings control the robust adaptive Metropolis sampler.
type Settings struct {
	// TargetAcceptance is the acceptance rate the adaptation steers
	// towards. The 0.234 default is the usual multivariate target.
	TargetAcceptance float64
	// Gamma is the decay exponent of the adaptation step size
	// eta_n = min(1, dim * n^-Gamma).
	Gamma float64
	// Seed for the sampler-owned random number generator. Runs with
	// equal seeds and settings reproduce bit-identical chains.
	Seed int64
	// AccPeriod is the period of acceptance-rate log messages.
	AccPeriod int
	// RepPeriod is the period of trajectory lines written to
	// Trajectory, when set.
	RepPeriod int
	// Quiet suppresses all info-level progress logging.
	Quiet bool
	// Trajectory optionally receives tab-separated sample lines.
	Trajectory io.Writer
	// Names are the parameter names used in the trajectory header;
	// unnamed parameters are printed as p0, p1, ...
	Names []string
	// Progress is called every ProgressPeriod iterations when set.
	Progress       ProgressFunc
	ProgressPeriod int
}

// NewSettings creates sampler settings with the default adaptation
// schedule.
func NewSettings() *Settings {
	return &Settings{
		TargetAcceptance: 0.234,
		Gamma:            2.0 / 3,
		Seed:             1,
		AccPeriod:        200,
		RepPeriod:        10,
		ProgressPeriod:   1000,
	}
}

func (s *Settings) String() string {
	return fmt.Sprintf("RAM settings <target acceptance=%v, gamma=%v, seed=%v>",
		s.TargetAcceptance, s.Gamma, s.Seed)
}

func (s *Settings) validate() error {
	if s.TargetAcceptance <= 0 || s.TargetAcceptance >= 1 {
		return fmt.Errorf("mcmc: target acceptance rate %v outside (0, 1)",
			s.TargetAcceptance)
	}
	if s.Gamma <= 0.5 || s.Gamma > 1 {
		return fmt.Errorf("mcmc: adaptation decay exponent %v outside (1/2, 1]",
			s.Gamma)
	}
	return nil
}
