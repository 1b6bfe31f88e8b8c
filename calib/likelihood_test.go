package calib

import (
	"math"
	"testing"

	"github.com/cjvogel/ramcal/dist"
)

func TestLnLikeIID(tst *testing.T) {
	if !appreq(LnLikeIID([]float64{0, 0}, 1), 2*dist.LnNormalDensity(0, 0, 1)) {
		tst.Error("Unexpected likelihood for zero residuals")
	}
	want := dist.LnNormalDensity(1, 0, 0.5) + dist.LnNormalDensity(-0.2, 0, 0.5)
	if !appreq(LnLikeIID([]float64{1, -0.2}, 0.5), want) {
		tst.Error("Expected ", want, ", got", LnLikeIID([]float64{1, -0.2}, 0.5))
	}
	if !math.IsInf(LnLikeIID([]float64{1}, 0), -1) {
		tst.Error("Expected -Inf for sigma = 0")
	}
	if LnLikeIID(nil, 1) != 0 {
		tst.Error("Expected 0 for an empty series")
	}
}

func TestLnLikeAR1(tst *testing.T) {
	resid := []float64{1, 1}
	want := dist.LnNormalDensity(1, 0, 1) + dist.LnNormalDensity(1, 0.5, math.Sqrt(0.75))
	if !appreq(LnLikeAR1(resid, 1, 0.5), want) {
		tst.Error("Expected ", want, ", got", LnLikeAR1(resid, 1, 0.5))
	}

	if !math.IsInf(LnLikeAR1(resid, 1, 1), -1) || !math.IsInf(LnLikeAR1(resid, 1, -1), -1) {
		tst.Error("Expected -Inf for |rho| = 1")
	}
	if !math.IsInf(LnLikeAR1(resid, 0, 0.5), -1) {
		tst.Error("Expected -Inf for sigma = 0")
	}
	if LnLikeAR1(nil, 1, 0.5) != 0 {
		tst.Error("Expected 0 for an empty series")
	}
}

/*** With rho = 0 the AR(1) likelihood is the iid likelihood. ***/
func TestAR1MatchesIIDAtZeroRho(tst *testing.T) {
	resid := []float64{0.3, -1.2, 0.8, 0.05, -0.4}
	for _, sigma := range []float64{0.1, 0.8, 2.5} {
		if LnLikeAR1(resid, sigma, 0) != LnLikeIID(resid, sigma) {
			tst.Error("Expected exact match at rho = 0 for sigma ", sigma)
		}
	}
}

/*** Persistent residuals are better explained with correlation. ***/
func TestAR1PrefersPersistence(tst *testing.T) {
	resid := []float64{1, 0.9, 0.8, 0.75}
	if LnLikeAR1(resid, 1, 0.9) <= LnLikeAR1(resid, 1, 0) {
		tst.Error("Expected higher likelihood with correlated noise")
	}
}
