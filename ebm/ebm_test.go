package ebm

import (
	"math"
	"testing"
)

func TestDeterminism(tst *testing.T) {
	m, err := New(2020)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	params := []float64{3, 0.7, 1, 0}
	a, err := m.Run(params)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	b, err := m.Run(params)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	for i := range a {
		if a[i] != b[i] {
			tst.Fatal("Expected identical runs, differ at year ", StartYear+i)
		}
	}
}

func TestShape(tst *testing.T) {
	m, err := New(1900)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if m.Steps() != 51 {
		tst.Error("Expected 51 steps, got", m.Steps())
	}
	years := m.Years()
	if len(years) != m.Steps() || years[0] != 1850 || years[50] != 1900 {
		tst.Error("Unexpected year range: ", years[0], "..", years[len(years)-1])
	}
	out, err := m.Run([]float64{3, 0.7, 1, 0})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(out) != m.Steps() {
		tst.Error("Expected ", m.Steps(), " values, got", len(out))
	}
	if out[0] != 0 {
		tst.Error("Expected zero anomaly at the start, got", out[0])
	}
}

func TestWarming(tst *testing.T) {
	m, err := New(2020)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	out, err := m.Run([]float64{3, 0.7, 1, 0})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	last := out[len(out)-1]
	if last < 0.5 || last > 2 {
		tst.Error("Expected present-day warming between 0.5 and 2 K, got", last)
	}
}

func TestParameterResponse(tst *testing.T) {
	m, err := New(2020)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	run := func(params []float64) float64 {
		out, err := m.Run(params)
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		return out[len(out)-1]
	}

	if run([]float64{5, 0.7, 1, 0}) <= run([]float64{2, 0.7, 1, 0}) {
		tst.Error("Expected more warming for higher sensitivity")
	}
	if run([]float64{3, 1.5, 1, 0}) >= run([]float64{3, 0.2, 1, 0}) {
		tst.Error("Expected less surface warming for stronger ocean uptake")
	}
	if run([]float64{3, 0.7, 2, 0}) >= run([]float64{3, 0.7, 0, 0}) {
		tst.Error("Expected cooling from stronger aerosol forcing")
	}
}

func TestOffset(tst *testing.T) {
	m, err := New(1950)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	base, err := m.Run([]float64{3, 0.7, 1, 0})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	shifted, err := m.Run([]float64{3, 0.7, 1, 0.5})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	for i := range base {
		if shifted[i] != base[i]+0.5 {
			tst.Error("Expected a pure baseline shift at year ", StartYear+i)
			break
		}
	}
}

func TestBadInputs(tst *testing.T) {
	if _, err := New(1840); err == nil {
		tst.Error("Expected error for end year before start year")
	}

	m, err := New(2000)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	bad := [][]float64{
		{3, 0.7, 1},
		{0, 0.7, 1, 0},
		{-2, 0.7, 1, 0},
		{3, -0.1, 1, 0},
		{3, 0.7, 1, math.NaN()},
	}
	for _, params := range bad {
		if _, err := m.Run(params); err == nil {
			tst.Error("Expected error for parameters ", params)
		}
	}
}
