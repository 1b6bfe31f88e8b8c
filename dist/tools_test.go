package dist

import (
	"math"
	"testing"
)

const smallDiff = 1e-6

/*** Tests if a and b are approximately equal ***/
func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

func TestQuantileNormal(tst *testing.T) {
	if !appreq(QuantileNormal(0.5), 0) {
		tst.Error("Expected 0, got", QuantileNormal(0.5))
	}
	if !appreq(QuantileNormal(0.975), 1.9599639845400545) {
		tst.Error("Expected 1.959964, got", QuantileNormal(0.975))
	}
	if !appreq(QuantileNormal(0.025), -QuantileNormal(0.975)) {
		tst.Error("Expected symmetric quantiles")
	}
}

func TestCDFNormal(tst *testing.T) {
	if !appreq(CDFNormal(0), 0.5) {
		tst.Error("Expected 0.5, got", CDFNormal(0))
	}
	if CDFNormal(math.Inf(-1)) != 0 || CDFNormal(math.Inf(1)) != 1 {
		tst.Error("Expected 0 and 1 at the infinities")
	}
	for _, p := range []float64{0.01, 0.2, 0.5, 0.9, 0.999} {
		if !appreq(CDFNormal(QuantileNormal(p)), p) {
			tst.Error("Expected ", p, ", got", CDFNormal(QuantileNormal(p)))
		}
	}
}

func TestQuantileBeta(tst *testing.T) {
	if !appreq(QuantileBeta(0.5, 2, 2), 0.5) {
		tst.Error("Expected 0.5, got", QuantileBeta(0.5, 2, 2))
	}
	for _, x := range []float64{0.1, 0.35, 0.8} {
		got := QuantileBeta(CDFBeta(x, 2, 5), 2, 5)
		if !appreq(got, x) {
			tst.Error("Expected ", x, ", got", got)
		}
	}
}

func TestQuantileTruncNormal(tst *testing.T) {
	// without truncation this is the plain normal quantile
	got := QuantileTruncNormal(0.8, 1, 2, math.Inf(-1), math.Inf(1))
	want := 1 + 2*QuantileNormal(0.8)
	if !appreq(got, want) {
		tst.Error("Expected ", want, ", got", got)
	}

	// half-normal: the median is the 75% point of the parent
	got = QuantileTruncNormal(0.5, 0, 1, 0, math.Inf(1))
	if !appreq(got, 0.6744897501960817) {
		tst.Error("Expected 0.674490, got", got)
	}

	for _, p := range []float64{0, 0.001, 0.5, 0.999, 1} {
		x := QuantileTruncNormal(p, 0, 10, 1, 2)
		if x < 1 || x > 2 {
			tst.Error("Expected result within [1, 2], got", x)
		}
	}
}

func TestLnBeta(tst *testing.T) {
	if !appreq(LnBeta(1, 1), 0) {
		tst.Error("Expected 0, got", LnBeta(1, 1))
	}
	if !appreq(LnBeta(2, 2), math.Log(1.0/6)) {
		tst.Error("Expected log(1/6), got", LnBeta(2, 2))
	}
}

func TestLnNormalDensity(tst *testing.T) {
	if !appreq(LnNormalDensity(0, 0, 1), -0.9189385332046727) {
		tst.Error("Expected -0.918939, got", LnNormalDensity(0, 0, 1))
	}
	// scaling moves the mode density by log(sd)
	diff := LnNormalDensity(3, 3, 1) - LnNormalDensity(5, 5, 10)
	if !appreq(diff, math.Log(10)) {
		tst.Error("Expected log(10), got", diff)
	}
}
