package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/op/go-logging"

	"github.com/cjvogel/ramcal/artifact"
	"github.com/cjvogel/ramcal/calib"
	"github.com/cjvogel/ramcal/chain"
	"github.com/cjvogel/ramcal/ebm"
	"github.com/cjvogel/ramcal/mcmc"
)

func init() {
	for _, pkg := range []string{"ramcal", "mcmc", "calib", "optimize", "checkpoint"} {
		logging.SetLevel(logging.WARNING, pkg)
	}
}

// stdNormal is a standard bivariate Gaussian log-density.
func stdNormal(theta []float64) (float64, error) {
	s := 0.0
	for _, v := range theta {
		s += v * v
	}
	return -s / 2, nil
}

func sampleStdNormal(tst *testing.T, iterations int) *mcmc.Result {
	set := mcmc.NewSettings()
	set.Quiet = true
	smpl := mcmc.NewSampler(stdNormal, set)
	sigma := mat64.NewSymDense(2, []float64{1, 0, 0, 1})
	res, err := smpl.Run([]float64{1, 2}, sigma, iterations)
	if err != nil {
		tst.Fatal("Error running sampler:", err)
	}
	return res
}

func newSchema(tst *testing.T, names []string) *chain.Schema {
	s, err := chain.NewSchema(names)
	if err != nil {
		tst.Fatal("Error creating schema:", err)
	}
	return s
}

func TestPipeline(tst *testing.T) {
	res := sampleStdNormal(tst, 1000)
	if res.Chain.Len() != 1000 {
		tst.Fatal("Expected 1000 samples, got", res.Chain.Len())
	}

	dir := tst.TempDir()
	schema := newSchema(tst, []string{"a", "b"})
	paths, err := writeArtifacts(dir, schema, res, 100, []int{100})
	if err != nil {
		tst.Fatal("Error writing artifacts:", err)
	}
	if len(paths) != 6 {
		tst.Error("Expected 6 artifacts, got", len(paths))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			tst.Error("Missing artifact:", err)
		}
	}

	postChain, err := chain.DropBurnIn(res.Chain, 100)
	if err != nil {
		tst.Fatal("Error dropping burn-in:", err)
	}
	mean := chain.Mean(postChain)
	if math.Abs(mean[0]) > 0.6 || math.Abs(mean[1]) > 0.6 {
		tst.Error("Expected posterior mean near zero, got ", mean)
	}

	gotNames, thinned, err := artifact.ReadChain(filepath.Join(dir, "parameters_100.csv"))
	if err != nil {
		tst.Fatal("Error reading thinned chain:", err)
	}
	if len(gotNames) != 2 || gotNames[0] != "a" || gotNames[1] != "b" {
		tst.Error("Wrong parameter names: ", gotNames)
	}
	if thinned.Len() != 100 {
		tst.Fatal("Expected 100 thinned samples, got", thinned.Len())
	}
	// The thinned chain spans the whole post-burn-in chain.
	for j := 0; j < 2; j++ {
		if thinned.Row(0)[j] != postChain.Row(0)[j] {
			tst.Error("Thinned chain does not start at the first sample")
		}
		if thinned.Row(99)[j] != postChain.Row(899)[j] {
			tst.Error("Thinned chain does not end at the last sample")
		}
	}
}

func TestPipelineBadConfig(tst *testing.T) {
	res := sampleStdNormal(tst, 200)
	dir := tst.TempDir()
	schema := newSchema(tst, []string{"a", "b"})

	var cerr *chain.ConfigurationError
	_, err := writeArtifacts(filepath.Join(dir, "burnin"), schema, res, 200, nil)
	if !errors.As(err, &cerr) {
		tst.Error("Expected a configuration error for burn-in 200 of 200, got ", err)
	}
	_, err = writeArtifacts(filepath.Join(dir, "thin"), schema, res, 100, []int{101})
	if !errors.As(err, &cerr) {
		tst.Error("Expected a configuration error for thinning 101 of 100, got ", err)
	}
}

const calibScenario = `name: endtoend
end_year: 1880
parameters:
  - name: S
    start: 3.0
    prior:
      kind: uniform
      min: 1.0
      max: 6.0
  - name: kappa
    start: 0.7
    prior:
      kind: lognormal
      mu: -0.35
      sigma: 0.4
  - name: alpha
    start: 1.0
    prior:
      kind: truncnormal
      mean: 1.0
      sd: 0.5
      min: 0.0
      max: 3.0
  - name: T0
    start: 0.0
    prior:
      kind: normal
      mean: 0.0
      sd: 0.2
noise:
  kind: iid
  sigma: 0.1
observations:
  synthetic:
    params: [3.0, 0.7, 1.0, 0.0]
    sigma: 0.1
    seed: 7
`

func TestCalibrationEndToEnd(tst *testing.T) {
	dir := tst.TempDir()
	scenPath := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(scenPath, []byte(calibScenario), 0644); err != nil {
		tst.Fatal("Error writing scenario:", err)
	}

	scen, err := calib.LoadScenario(scenPath)
	if err != nil {
		tst.Fatal("Error loading scenario:", err)
	}
	model, err := ebm.New(scen.EndYear)
	if err != nil {
		tst.Fatal("Error creating model:", err)
	}
	setup, err := scen.Build(model)
	if err != nil {
		tst.Fatal("Error building posterior:", err)
	}

	set := mcmc.NewSettings()
	set.Quiet = true
	set.Names = setup.Names
	smpl := mcmc.NewSampler(setup.Posterior.LogPost, set)
	res, err := smpl.Run(setup.Start, setup.Covariance, 600)
	if err != nil {
		tst.Fatal("Error running sampler:", err)
	}
	if res.AcceptanceRate <= 0 || res.AcceptanceRate >= 1 {
		tst.Error("Implausible acceptance rate:", res.AcceptanceRate)
	}

	paths, err := writeArtifacts(dir, newSchema(tst, setup.Names), res, 100, []int{50})
	if err != nil {
		tst.Fatal("Error writing artifacts:", err)
	}
	if len(paths) != 6 {
		tst.Error("Expected 6 artifacts, got", len(paths))
	}

	names, thinned, err := artifact.ReadChain(filepath.Join(dir, "parameters_50.csv"))
	if err != nil {
		tst.Fatal("Error reading thinned chain:", err)
	}
	if thinned.Len() != 50 {
		tst.Error("Expected 50 thinned samples, got", thinned.Len())
	}
	if len(names) != 4 || names[0] != "S" || names[3] != "T0" {
		tst.Error("Wrong parameter names: ", names)
	}
}
