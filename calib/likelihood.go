package calib

import (
	"math"

	"github.com/cjvogel/ramcal/dist"
)

// LnLikeIID returns the log likelihood of independent Gaussian
// residuals with standard deviation sigma.
func LnLikeIID(resid []float64, sigma float64) float64 {
	if sigma <= 0 {
		return math.Inf(-1)
	}
	s := 0.0
	for _, r := range resid {
		s += dist.LnNormalDensity(r, 0, sigma)
	}
	return s
}

// LnLikeAR1 returns the log likelihood of residuals following a
// stationary AR(1) process with lag-one correlation rho and
// stationary standard deviation sigma. The first residual uses the
// stationary variance, later ones the innovation variance
// sigma^2*(1-rho^2). With rho = 0 this matches LnLikeIID exactly.
func LnLikeAR1(resid []float64, sigma, rho float64) float64 {
	if sigma <= 0 || rho <= -1 || rho >= 1 {
		return math.Inf(-1)
	}
	if len(resid) == 0 {
		return 0
	}
	innov := sigma * math.Sqrt(1-rho*rho)
	s := dist.LnNormalDensity(resid[0], 0, sigma)
	for i := 1; i < len(resid); i++ {
		s += dist.LnNormalDensity(resid[i], rho*resid[i-1], innov)
	}
	return s
}
