// Package dist implements quantile and log-density helpers for the
// prior distributions used in calibration.
package dist

import (
	"math"

	"github.com/gonum/mathext"
)

// QuantileNormal returns the quantile of the standard normal
// distribution.
func QuantileNormal(prob float64) float64 {
	return mathext.NormalQuantile(prob)
}

// CDFNormal returns the distribution function of the standard normal
// distribution.
func CDFNormal(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// QuantileBeta calculates the quantile of the beta distribution.
func QuantileBeta(prob, p, q float64) float64 {
	return mathext.InvRegIncBeta(p, q, prob)
}

// CDFBeta returns the regularized incomplete beta ratio I_x(p,q), the
// distribution function of the standard form of the beta distribution.
func CDFBeta(x, p, q float64) float64 {
	return mathext.RegIncBeta(p, q, x)
}

// QuantileTruncNormal returns the quantile of a normal distribution
// with the given mean and standard deviation truncated to [lower,
// upper]. Infinite bounds are allowed. The result is clamped to the
// bounds to guard against rounding in the tails.
func QuantileTruncNormal(prob, mean, sd, lower, upper float64) float64 {
	a := CDFNormal((lower - mean) / sd)
	b := CDFNormal((upper - mean) / sd)
	x := mean + sd*QuantileNormal(a+prob*(b-a))
	return math.Max(lower, math.Min(upper, x))
}

// LnBeta returns log of Beta function.
func LnBeta(p, q float64) float64 {
	lgp, _ := math.Lgamma(p)
	lgq, _ := math.Lgamma(q)
	lgpq, _ := math.Lgamma(p + q)
	return lgp + lgq - lgpq
}

// LnNormalDensity returns the log density of a normal distribution
// with the given mean and standard deviation.
func LnNormalDensity(x, mean, sd float64) float64 {
	d := (x - mean) / sd
	return -d*d/2 - math.Log(sd) - math.Log(2*math.Pi)/2
}
