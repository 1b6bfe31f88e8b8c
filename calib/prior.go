// Package calib assembles priors, a forward model and observations
// into the log-posterior sampled during calibration.
package calib

import (
	"math"

	"github.com/cjvogel/ramcal/dist"
)

// PriorFunc is a log prior density up to an additive constant. It
// returns math.Inf(-1) outside the support.
type PriorFunc func(float64) float64

// Prior couples a parameter's log prior density with its support and
// a quantile function used to draw starting points.
type Prior struct {
	Density  PriorFunc
	Quantile func(prob float64) float64
	Min, Max float64
}

// UniformPrior returns a uniform prior on [min, max].
func UniformPrior(min, max float64) Prior {
	if max <= min {
		panic("max <= min")
	}
	return Prior{
		Density: func(x float64) float64 {
			if x < min || x > max {
				return math.Inf(-1)
			}
			return -math.Log(max - min)
		},
		Quantile: func(prob float64) float64 {
			return min + prob*(max-min)
		},
		Min: min,
		Max: max,
	}
}

// NormalPrior returns a normal prior with the given mean and standard
// deviation.
func NormalPrior(mean, sd float64) Prior {
	if sd <= 0 {
		panic("sd of normal prior must be > 0")
	}
	return Prior{
		Density: func(x float64) float64 {
			return dist.LnNormalDensity(x, mean, sd)
		},
		Quantile: func(prob float64) float64 {
			return mean + sd*dist.QuantileNormal(prob)
		},
		Min: math.Inf(-1),
		Max: math.Inf(1),
	}
}

// TruncNormalPrior returns a normal prior truncated to [min, max].
func TruncNormalPrior(mean, sd, min, max float64) Prior {
	if sd <= 0 {
		panic("sd of truncated normal prior must be > 0")
	}
	if max <= min {
		panic("max <= min")
	}
	lnZ := math.Log(dist.CDFNormal((max-mean)/sd) - dist.CDFNormal((min-mean)/sd))
	return Prior{
		Density: func(x float64) float64 {
			if x < min || x > max {
				return math.Inf(-1)
			}
			return dist.LnNormalDensity(x, mean, sd) - lnZ
		},
		Quantile: func(prob float64) float64 {
			return dist.QuantileTruncNormal(prob, mean, sd, min, max)
		},
		Min: min,
		Max: max,
	}
}

// BetaPrior returns a beta prior on (0, 1).
func BetaPrior(p, q float64) Prior {
	if p <= 0 || q <= 0 {
		panic("shape parameters of beta prior must be > 0")
	}
	lnB := dist.LnBeta(p, q)
	return Prior{
		Density: func(x float64) float64 {
			if x <= 0 || x >= 1 {
				return math.Inf(-1)
			}
			return (p-1)*math.Log(x) + (q-1)*math.Log(1-x) - lnB
		},
		Quantile: func(prob float64) float64 {
			return dist.QuantileBeta(prob, p, q)
		},
		Min: 0,
		Max: 1,
	}
}

// LogNormalPrior returns a log-normal prior: log(x) is normal with
// the given location and scale.
func LogNormalPrior(mu, sigma float64) Prior {
	if sigma <= 0 {
		panic("sigma of log-normal prior must be > 0")
	}
	return Prior{
		Density: func(x float64) float64 {
			if x <= 0 {
				return math.Inf(-1)
			}
			return dist.LnNormalDensity(math.Log(x), mu, sigma) - math.Log(x)
		},
		Quantile: func(prob float64) float64 {
			return math.Exp(mu + sigma*dist.QuantileNormal(prob))
		},
		Min: 0,
		Max: math.Inf(1),
	}
}
