package calib

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gonum/floats"
)

// ForwardModel maps calibrated parameters to a simulated annual
// series.
type ForwardModel interface {
	Run(params []float64) ([]float64, error)
	NumParams() int
	ParamNames() []string
	Steps() int
	Years() []int
}

// Noise model kinds.
const (
	NoiseIID = "iid"
	NoiseAR1 = "ar1"
)

// NoiseModel describes the residual model of a posterior. When
// Calibrate is set, sigma (and rho for ar1) are sampled along with the
// model parameters; otherwise the fixed values are used.
type NoiseModel struct {
	Kind      string
	Calibrate bool
	Sigma     float64
	Rho       float64
}

func (n NoiseModel) extra() int {
	if !n.Calibrate {
		return 0
	}
	if n.Kind == NoiseAR1 {
		return 2
	}
	return 1
}

// Posterior is the log posterior of the calibrated parameters given
// an observed series.
type Posterior struct {
	model  ForwardModel
	obs    []float64
	obsOff int
	priors []Prior
	names  []string

	noise NoiseModel

	resid []float64
}

// NewPosterior builds a posterior. The priors cover the model
// parameters followed by the calibrated noise parameters, if any.
// obs[0] is aligned with model output index obsOff.
func NewPosterior(model ForwardModel, obs []float64, obsOff int, noise NoiseModel, priors []Prior) (*Posterior, error) {
	if model == nil {
		return nil, fmt.Errorf("calib: nil forward model")
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("calib: empty observation series")
	}
	if noise.Kind != NoiseIID && noise.Kind != NoiseAR1 {
		return nil, fmt.Errorf("calib: unknown noise model %q", noise.Kind)
	}
	if obsOff < 0 || obsOff+len(obs) > model.Steps() {
		return nil, fmt.Errorf("calib: observation window [%d, %d) outside model output of %d steps",
			obsOff, obsOff+len(obs), model.Steps())
	}
	dim := model.NumParams() + noise.extra()
	if len(priors) != dim {
		return nil, fmt.Errorf("calib: expected %d priors, got %d", dim, len(priors))
	}
	if !noise.Calibrate {
		if noise.Sigma <= 0 {
			return nil, fmt.Errorf("calib: fixed noise sigma %v must be positive", noise.Sigma)
		}
		if noise.Kind == NoiseAR1 && (noise.Rho <= -1 || noise.Rho >= 1) {
			return nil, fmt.Errorf("calib: fixed noise rho %v outside (-1, 1)", noise.Rho)
		}
	}

	names := make([]string, 0, dim)
	names = append(names, model.ParamNames()...)
	if noise.Calibrate {
		names = append(names, "sigma")
		if noise.Kind == NoiseAR1 {
			names = append(names, "rho")
		}
	}

	return &Posterior{
		model:  model,
		obs:    obs,
		obsOff: obsOff,
		priors: priors,
		names:  names,
		noise:  noise,
		resid:  make([]float64, len(obs)),
	}, nil
}

// Dim returns the number of sampled parameters.
func (p *Posterior) Dim() int {
	return len(p.priors)
}

// Names returns the sampled parameter names, model parameters first.
func (p *Posterior) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// Bounds returns the prior support bounds of each sampled parameter.
func (p *Posterior) Bounds() [][2]float64 {
	b := make([][2]float64, len(p.priors))
	for i, prior := range p.priors {
		b[i] = [2]float64{prior.Min, prior.Max}
	}
	return b
}

// LnPrior evaluates the joint log prior density at theta.
func (p *Posterior) LnPrior(theta []float64) float64 {
	lp := 0.0
	for i, prior := range p.priors {
		lp += prior.Density(theta[i])
	}
	return lp
}

// LogPost evaluates the log posterior at theta, up to an additive
// constant. A state outside the prior or noise support yields
// math.Inf(-1) without running the model; model failures are returned
// as errors.
func (p *Posterior) LogPost(theta []float64) (float64, error) {
	if len(theta) != len(p.priors) {
		return 0, fmt.Errorf("calib: expected %d parameters, got %d",
			len(p.priors), len(theta))
	}
	lp := p.LnPrior(theta)
	if math.IsInf(lp, -1) {
		return lp, nil
	}

	sigma, rho := p.noise.Sigma, p.noise.Rho
	if p.noise.Calibrate {
		sigma = theta[p.model.NumParams()]
		if p.noise.Kind == NoiseAR1 {
			rho = theta[p.model.NumParams()+1]
		}
	}

	sim, err := p.model.Run(theta[:p.model.NumParams()])
	if err != nil {
		return 0, err
	}
	copy(p.resid, p.obs)
	floats.Sub(p.resid, sim[p.obsOff:p.obsOff+len(p.obs)])

	if p.noise.Kind == NoiseAR1 {
		return lp + LnLikeAR1(p.resid, sigma, rho), nil
	}
	return lp + LnLikeIID(p.resid, sigma), nil
}

// DrawStart draws a starting state from the priors by inverse
// transform sampling.
func (p *Posterior) DrawStart(rng *rand.Rand) []float64 {
	theta := make([]float64, len(p.priors))
	for i, prior := range p.priors {
		theta[i] = prior.Quantile(rng.Float64())
	}
	return theta
}
