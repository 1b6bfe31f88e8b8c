package calib

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/gonum/matrix/mat64"
	"gopkg.in/yaml.v3"

	"github.com/cjvogel/ramcal/artifact"
)

// Scenario describes a calibration run: the model window, the
// parameter priors, the noise model and the observation series.
type Scenario struct {
	Name    string        `yaml:"name"`
	EndYear int           `yaml:"end_year"`
	Params  []ParamConfig `yaml:"parameters"`
	Noise   NoiseConfig   `yaml:"noise"`
	Obs     ObsConfig     `yaml:"observations"`
}

// ParamConfig describes one calibrated model parameter.
type ParamConfig struct {
	Name  string      `yaml:"name"`
	Start float64     `yaml:"start"`
	Step  float64     `yaml:"step"`
	Prior PriorConfig `yaml:"prior"`
}

// PriorConfig is a serializable prior description. Kind selects the
// family: uniform (min, max), normal (mean, sd), truncnormal (mean,
// sd, min, max), beta (p, q) or lognormal (mu, sigma).
type PriorConfig struct {
	Kind  string  `yaml:"kind"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Mean  float64 `yaml:"mean"`
	SD    float64 `yaml:"sd"`
	P     float64 `yaml:"p"`
	Q     float64 `yaml:"q"`
	Mu    float64 `yaml:"mu"`
	Sigma float64 `yaml:"sigma"`
}

// NoiseConfig describes the residual model. The fixed sigma and rho
// apply unless calibrate is set, in which case the noise parameters
// join the sampled vector with the given priors.
type NoiseConfig struct {
	Kind       string       `yaml:"kind"`
	Calibrate  bool         `yaml:"calibrate"`
	Sigma      float64      `yaml:"sigma"`
	Rho        float64      `yaml:"rho"`
	SigmaPrior *PriorConfig `yaml:"sigma_prior"`
	RhoPrior   *PriorConfig `yaml:"rho_prior"`
}

// ObsConfig points at the observation series: either a two-column
// (year, value) CSV file or a synthetic series generated from known
// parameters. start_year places a synthetic window; it defaults to
// the first model year. For file observations the years come from the
// file itself.
type ObsConfig struct {
	File      string        `yaml:"file"`
	StartYear int           `yaml:"start_year"`
	Synthetic *SyntheticObs `yaml:"synthetic"`
}

// SyntheticObs generates observations by running the forward model
// with known parameters and adding AR(1) noise (rho 0 gives
// independent noise).
type SyntheticObs struct {
	Params []float64 `yaml:"params"`
	Sigma  float64   `yaml:"sigma"`
	Rho    float64   `yaml:"rho"`
	Seed   int64     `yaml:"seed"`
}

// Setup bundles everything a sampling run needs.
type Setup struct {
	Posterior  *Posterior
	Start      []float64
	Names      []string
	Covariance *mat64.SymDense
	Years      []int
	Obs        []float64
}

// LoadScenario loads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("calib: parsing scenario %s: %v", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scenario for inconsistencies that do not need
// the forward model.
func (s *Scenario) Validate() error {
	if len(s.Params) == 0 {
		return fmt.Errorf("calib: scenario has no parameters")
	}
	seen := make(map[string]bool, len(s.Params))
	for i, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("calib: parameter %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("calib: duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		if p.Step < 0 {
			return fmt.Errorf("calib: parameter %q has negative step", p.Name)
		}
		if _, err := p.Prior.build(); err != nil {
			return fmt.Errorf("calib: parameter %q: %v", p.Name, err)
		}
	}

	switch s.Noise.Kind {
	case NoiseIID, NoiseAR1:
	default:
		return fmt.Errorf("calib: unknown noise model %q", s.Noise.Kind)
	}
	if s.Noise.Calibrate {
		if s.Noise.SigmaPrior == nil {
			return fmt.Errorf("calib: calibrated noise needs a sigma prior")
		}
		if _, err := s.Noise.SigmaPrior.build(); err != nil {
			return fmt.Errorf("calib: sigma prior: %v", err)
		}
		if s.Noise.Kind == NoiseAR1 {
			if s.Noise.RhoPrior == nil {
				return fmt.Errorf("calib: calibrated ar1 noise needs a rho prior")
			}
			if _, err := s.Noise.RhoPrior.build(); err != nil {
				return fmt.Errorf("calib: rho prior: %v", err)
			}
		}
	} else {
		if s.Noise.Sigma <= 0 {
			return fmt.Errorf("calib: fixed noise sigma %v must be positive", s.Noise.Sigma)
		}
		if s.Noise.Kind == NoiseAR1 && (s.Noise.Rho <= -1 || s.Noise.Rho >= 1) {
			return fmt.Errorf("calib: fixed noise rho %v outside (-1, 1)", s.Noise.Rho)
		}
	}

	if s.Obs.File == "" && s.Obs.Synthetic == nil {
		return fmt.Errorf("calib: scenario needs an observation file or a synthetic series")
	}
	if syn := s.Obs.Synthetic; syn != nil {
		if syn.Sigma < 0 {
			return fmt.Errorf("calib: synthetic noise sigma %v must not be negative", syn.Sigma)
		}
		if syn.Rho <= -1 || syn.Rho >= 1 {
			return fmt.Errorf("calib: synthetic noise rho %v outside (-1, 1)", syn.Rho)
		}
	}
	return nil
}

func (c PriorConfig) build() (Prior, error) {
	switch c.Kind {
	case "uniform":
		if c.Max <= c.Min {
			return Prior{}, fmt.Errorf("uniform prior needs min < max")
		}
		return UniformPrior(c.Min, c.Max), nil
	case "normal":
		if c.SD <= 0 {
			return Prior{}, fmt.Errorf("normal prior needs sd > 0")
		}
		return NormalPrior(c.Mean, c.SD), nil
	case "truncnormal":
		if c.SD <= 0 {
			return Prior{}, fmt.Errorf("truncated normal prior needs sd > 0")
		}
		if c.Max <= c.Min {
			return Prior{}, fmt.Errorf("truncated normal prior needs min < max")
		}
		return TruncNormalPrior(c.Mean, c.SD, c.Min, c.Max), nil
	case "beta":
		if c.P <= 0 || c.Q <= 0 {
			return Prior{}, fmt.Errorf("beta prior needs p > 0 and q > 0")
		}
		return BetaPrior(c.P, c.Q), nil
	case "lognormal":
		if c.Sigma <= 0 {
			return Prior{}, fmt.Errorf("log-normal prior needs sigma > 0")
		}
		return LogNormalPrior(c.Mu, c.Sigma), nil
	}
	return Prior{}, fmt.Errorf("unknown prior kind %q", c.Kind)
}

// step returns the initial proposal standard deviation for a
// parameter: the configured step, or a tenth of the prior
// interquartile range.
func step(configured float64, prior Prior) float64 {
	if configured > 0 {
		return configured
	}
	return (prior.Quantile(0.75) - prior.Quantile(0.25)) / 10
}

// Build assembles the posterior and sampler inputs for the given
// forward model.
func (s *Scenario) Build(model ForwardModel) (*Setup, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(s.Params) != model.NumParams() {
		return nil, fmt.Errorf("calib: scenario has %d parameters, model expects %d",
			len(s.Params), model.NumParams())
	}
	for i, want := range model.ParamNames() {
		if s.Params[i].Name != want {
			return nil, fmt.Errorf("calib: parameter %d named %q, model expects %q",
				i, s.Params[i].Name, want)
		}
	}

	priors := make([]Prior, 0, len(s.Params)+2)
	start := make([]float64, 0, len(s.Params)+2)
	steps := make([]float64, 0, len(s.Params)+2)
	for _, p := range s.Params {
		prior, err := p.Prior.build()
		if err != nil {
			return nil, fmt.Errorf("calib: parameter %q: %v", p.Name, err)
		}
		priors = append(priors, prior)
		start = append(start, p.Start)
		steps = append(steps, step(p.Step, prior))
	}
	if s.Noise.Calibrate {
		sp, err := s.Noise.SigmaPrior.build()
		if err != nil {
			return nil, fmt.Errorf("calib: sigma prior: %v", err)
		}
		priors = append(priors, sp)
		start = append(start, sp.Quantile(0.5))
		steps = append(steps, step(0, sp))
		if s.Noise.Kind == NoiseAR1 {
			rp, err := s.Noise.RhoPrior.build()
			if err != nil {
				return nil, fmt.Errorf("calib: rho prior: %v", err)
			}
			priors = append(priors, rp)
			start = append(start, rp.Quantile(0.5))
			steps = append(steps, step(0, rp))
		}
	}

	years, obs, offset, err := s.observations(model)
	if err != nil {
		return nil, err
	}

	noise := NoiseModel{
		Kind:      s.Noise.Kind,
		Calibrate: s.Noise.Calibrate,
		Sigma:     s.Noise.Sigma,
		Rho:       s.Noise.Rho,
	}
	post, err := NewPosterior(model, obs, offset, noise, priors)
	if err != nil {
		return nil, err
	}
	if math.IsInf(post.LnPrior(start), -1) {
		return nil, fmt.Errorf("calib: starting state %v outside the prior support", start)
	}

	cov := mat64.NewSymDense(len(steps), nil)
	for i, st := range steps {
		cov.SetSym(i, i, st*st)
	}

	return &Setup{
		Posterior:  post,
		Start:      start,
		Names:      post.Names(),
		Covariance: cov,
		Years:      years,
		Obs:        obs,
	}, nil
}

// observations resolves the observed series and its offset into the
// model output.
func (s *Scenario) observations(model ForwardModel) ([]int, []float64, int, error) {
	modelYears := model.Years()

	if s.Obs.File != "" {
		years, vals, err := artifact.ReadSeries(s.Obs.File)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("calib: reading observations: %v", err)
		}
		if len(years) == 0 {
			return nil, nil, 0, fmt.Errorf("calib: empty observation file %s", s.Obs.File)
		}
		offset := years[0] - modelYears[0]
		if offset < 0 || offset+len(years) > len(modelYears) {
			return nil, nil, 0, fmt.Errorf("calib: observation years %d..%d outside model window %d..%d",
				years[0], years[len(years)-1], modelYears[0], modelYears[len(modelYears)-1])
		}
		for i, y := range years {
			if y != modelYears[offset+i] {
				return nil, nil, 0, fmt.Errorf("calib: observation years not contiguous at %d", y)
			}
		}
		return years, vals, offset, nil
	}

	syn := s.Obs.Synthetic
	startYear := s.Obs.StartYear
	if startYear == 0 {
		startYear = modelYears[0]
	}
	offset := startYear - modelYears[0]
	if offset < 0 || offset >= len(modelYears) {
		return nil, nil, 0, fmt.Errorf("calib: synthetic window start %d outside model window", startYear)
	}
	sim, err := model.Run(syn.Params)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("calib: generating synthetic observations: %v", err)
	}

	rng := rand.New(rand.NewSource(syn.Seed))
	innov := syn.Sigma * math.Sqrt(1-syn.Rho*syn.Rho)
	n := len(modelYears) - offset
	years := make([]int, n)
	obs := make([]float64, n)
	r := 0.0
	for i := 0; i < n; i++ {
		if i == 0 {
			r = syn.Sigma * rng.NormFloat64()
		} else {
			r = syn.Rho*r + innov*rng.NormFloat64()
		}
		years[i] = modelYears[offset+i]
		obs[i] = sim[offset+i] + r
	}
	return years, obs, offset, nil
}
