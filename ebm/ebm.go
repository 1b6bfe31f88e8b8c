// Package ebm implements a small two-layer energy-balance climate
// model, the bundled forward model for calibration runs.
//
// The upper layer lumps the atmosphere and the ocean mixed layer, the
// lower layer the deep ocean. Layer heat capacities follow the CMIP5
// two-layer fits of Geoffroy et al. (2013), J. Climate 26. Greenhouse
// and aerosol forcing are smooth synthetic series, so the model is
// fully deterministic and self-contained.
package ebm

import (
	"fmt"
	"math"
)

// StartYear is the first simulated year. The temperature anomaly is
// zero at the start of the simulation.
const StartYear = 1850

const (
	// f2x is the radiative forcing of a CO2 doubling, W m^-2.
	f2x = 3.7
	// layer heat capacities, W yr m^-2 K^-1
	capUpper = 7.3
	capDeep  = 91.0
	// preindustrial CO2 concentration, ppm
	conc0 = 285.0
	// Euler substeps per year; keeps the integration stable for
	// sensitivities down to a few hundredths of a kelvin.
	substeps = 10
)

// Model is a two-layer energy-balance model with precomputed forcing
// series from StartYear to the configured end year.
type Model struct {
	endYear int
	fGHG    []float64
	fAer    []float64
}

// New creates a model integrating from StartYear to endYear inclusive.
func New(endYear int) (*Model, error) {
	if endYear <= StartYear {
		return nil, fmt.Errorf("ebm: end year %d not after %d", endYear, StartYear)
	}
	n := endYear - StartYear + 1
	m := &Model{
		endYear: endYear,
		fGHG:    make([]float64, n),
		fAer:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		y := float64(i)
		conc := conc0 + 0.0045*y*y
		m.fGHG[i] = f2x / math.Ln2 * math.Log(conc/conc0)
		m.fAer[i] = -0.45 * (1 - math.Exp(-y/100))
	}
	return m, nil
}

// NumParams returns the number of calibrated model parameters.
func (m *Model) NumParams() int {
	return 4
}

// ParamNames names the calibrated parameters in Run order.
func (m *Model) ParamNames() []string {
	return []string{"S", "kappa", "alpha", "T0"}
}

// Steps returns the number of annual values produced by Run.
func (m *Model) Steps() int {
	return m.endYear - StartYear + 1
}

// Years lists the simulated years.
func (m *Model) Years() []int {
	years := make([]int, m.Steps())
	for i := range years {
		years[i] = StartYear + i
	}
	return years
}

// Run integrates the model for parameters [S, kappa, alpha, T0]:
// equilibrium climate sensitivity (K), deep-ocean heat exchange
// coefficient (W m^-2 K^-1), aerosol forcing scale, and baseline
// temperature offset (K). It returns one surface temperature anomaly
// per year, StartYear first.
func (m *Model) Run(params []float64) ([]float64, error) {
	if len(params) != m.NumParams() {
		return nil, fmt.Errorf("ebm: expected %d parameters, got %d",
			m.NumParams(), len(params))
	}
	for _, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("ebm: non-finite parameter in %v", params)
		}
	}
	s, kappa, alpha, t0 := params[0], params[1], params[2], params[3]
	if s <= 0 {
		return nil, fmt.Errorf("ebm: climate sensitivity %v must be positive", s)
	}
	if kappa < 0 {
		return nil, fmt.Errorf("ebm: heat exchange coefficient %v must be non-negative", kappa)
	}

	lambda := f2x / s
	out := make([]float64, m.Steps())
	out[0] = t0
	dt := 1.0 / substeps
	var t, d float64
	for i := 1; i < m.Steps(); i++ {
		f := m.fGHG[i] + alpha*m.fAer[i]
		for k := 0; k < substeps; k++ {
			dT := (f - lambda*t - kappa*(t-d)) / capUpper
			dD := kappa * (t - d) / capDeep
			t += dt * dT
			d += dt * dD
		}
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("ebm: integration diverged at year %d", StartYear+i)
		}
		out[i] = t + t0
	}
	return out, nil
}
