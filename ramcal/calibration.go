package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cjvogel/ramcal/artifact"
	"github.com/cjvogel/ramcal/calib"
	"github.com/cjvogel/ramcal/chain"
	"github.com/cjvogel/ramcal/checkpoint"
	"github.com/cjvogel/ramcal/ebm"
	"github.com/cjvogel/ramcal/mcmc"
	"github.com/cjvogel/ramcal/optimize"
)

// credibleProbs are the posterior quantiles reported for every
// parameter.
var credibleProbs = []float64{0.025, 0.05, 0.5, 0.95, 0.975}

func run() (summary *RunSummary) {
	startTime := time.Now()
	summary = &RunSummary{}

	scenario, err := calib.LoadScenario(*scenarioFileName)
	if err != nil {
		log.Fatal(err)
	}
	if *endYear > 0 {
		scenario.EndYear = *endYear
	}
	summary.Scenario = scenario.Name

	model, err := ebm.New(scenario.EndYear)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Energy balance model %d..%d (%d steps)",
		ebm.StartYear, scenario.EndYear, model.Steps())

	setup, err := scenario.Build(model)
	if err != nil {
		log.Fatal(err)
	}
	post := setup.Posterior
	schema, err := chain.NewSchema(setup.Names)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Posterior has %d parameters: %v", post.Dim(), setup.Names)
	log.Infof("Calibrating against %d observations (%d..%d)",
		len(setup.Obs), setup.Years[0], setup.Years[len(setup.Years)-1])

	if *burnIn < 0 {
		*burnIn = *finalLength / 5
	}
	iterations := *burnIn + *finalLength
	log.Infof("Sampling %d iterations (%d burn-in + %d final)",
		iterations, *burnIn, *finalLength)

	var store *checkpoint.Store
	if *checkpointFileName != "" {
		store, err = checkpoint.Open(*checkpointFileName, scenario.Name, *checkpointSeconds)
		if err != nil {
			log.Fatal("Error opening checkpoint database:", err)
		}
		defer store.Close()
	}

	// starting point: checkpoint, posterior mode, prior draw or the
	// scenario start, in that order of preference
	start := setup.Start
	var warmFactor []float64
	done := 0
	switch {
	case *resume:
		if store == nil {
			log.Fatal("Option -resume needs a checkpoint database (-checkpoint).")
		}
		state, err := store.Load()
		if err != nil {
			log.Fatal("Error loading checkpoint:", err)
		}
		if state == nil {
			log.Fatalf("No checkpoint found for run %q.", scenario.Name)
		}
		if state.Dim != post.Dim() {
			log.Fatalf("Checkpoint has %d parameters, posterior has %d.",
				state.Dim, post.Dim())
		}
		start = state.Theta
		warmFactor = state.Factor
		done = state.Iter
		summary.Resumed = done
		log.Noticef("Resuming %q from iteration %d", scenario.Name, done)
	case *mapStart:
		m := optimize.NewMAP(post.LogPost, post.Bounds())
		m.Quiet = *quiet
		res, err := m.Run(start)
		if err != nil {
			log.Fatal("Error searching for the posterior mode:", err)
		}
		log.Noticef("Posterior mode log density: %v", res.LogPost)
		start = res.X
		summary.Mode = &ModeSummary{
			X:       res.X,
			LogPost: res.LogPost,
			Calls:   res.Calls,
			Status:  res.Status,
		}
	case *randomize:
		log.Info("Drawing the starting point from the priors")
		start = post.DrawStart(rand.New(rand.NewSource(*seed)))
	}

	set := mcmc.NewSettings()
	set.Seed = *seed
	set.TargetAcceptance = *targetRate
	set.Gamma = *gamma
	set.AccPeriod = *accept
	set.RepPeriod = *report
	set.Quiet = *quiet
	set.Names = setup.Names

	if *outF != "" {
		f, err := os.Create(*outF)
		if err != nil {
			log.Fatal("Error creating trajectory file:", err)
		}
		defer f.Close()
		set.Trajectory = f
	}

	if store != nil {
		set.Progress = func(p *mcmc.Progress) error {
			if store.Old() {
				store.Save(&checkpoint.State{
					Run:      scenario.Name,
					Iter:     p.Iter,
					Theta:    p.State,
					LogPost:  p.LogPost,
					Accepted: p.Accepted,
					Factor:   p.Factor,
					Dim:      p.Dim,
					Seed:     *seed,
				})
			}
			return nil
		}
	}

	smpl := mcmc.NewSampler(post.LogPost, set)
	smpl.WatchSignals(os.Interrupt, syscall.SIGTERM)

	var res *mcmc.Result
	if warmFactor != nil {
		res, err = smpl.RunFrom(start, warmFactor, done, iterations)
	} else {
		res, err = smpl.Run(start, setup.Covariance, iterations)
	}
	if err != nil {
		log.Fatal(err)
	}

	store.Save(&checkpoint.State{
		Run:      scenario.Name,
		Iter:     done + res.Chain.Len(),
		Theta:    res.FinalState,
		LogPost:  res.FinalLogPost,
		Accepted: res.Accepted,
		Factor:   res.Factor,
		Dim:      post.Dim(),
		Seed:     *seed,
		Final:    !res.Interrupted,
	})

	summary.Iterations = res.Chain.Len()
	summary.BurnIn = *burnIn
	summary.AcceptanceRate = res.AcceptanceRate
	summary.Accepted = res.Accepted
	summary.Calls = res.Calls
	summary.FinalLogPost = res.FinalLogPost
	summary.Interrupted = res.Interrupted

	if res.Interrupted && res.Chain.Len() <= *burnIn {
		log.Error("Interrupted inside the burn-in, no artifacts written.")
		return
	}

	// An interrupted chain is shorter than configured, so thinning
	// targets it cannot fill any more are skipped instead of failing
	// the whole run.
	thin := *thinSizes
	if res.Interrupted {
		postLen := res.Chain.Len() - *burnIn
		kept := make([]int, 0, len(thin))
		for _, t := range thin {
			if t <= postLen {
				kept = append(kept, t)
			} else {
				log.Warningf("Skipping thinning to %d: only %d samples left.", t, postLen)
			}
		}
		thin = kept
	}

	paths, err := writeArtifacts(*outDir, schema, res, *burnIn, thin)
	if err != nil {
		log.Fatal(err)
	}
	summary.Artifacts = paths
	log.Noticef("Wrote %d artifacts to %s", len(paths), *outDir)

	endTime := time.Now()

	deltaT := endTime.Sub(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	return
}

// writeArtifacts drops the burn-in and writes every summary artifact
// into dir, returning the written paths. The schema labels every
// artifact, so columns and names cannot drift apart.
func writeArtifacts(dir string, schema *chain.Schema, res *mcmc.Result, burnIn int, thinSizes []int) ([]string, error) {
	if err := schema.Check(res.Chain); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	names := schema.Names()
	postChain, err := chain.DropBurnIn(res.Chain, burnIn)
	if err != nil {
		return nil, err
	}

	var paths []string

	path := filepath.Join(dir, "acceptance_rate.csv")
	if err := artifact.WriteValue(path, "acceptance_rate", res.AcceptanceRate); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	path = filepath.Join(dir, "proposal_covariance.csv")
	if err := artifact.WriteNamedMatrix(path, names, res.Covariance); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	path = filepath.Join(dir, "posterior_mean.csv")
	if err := artifact.WriteNamedValues(path, "mean", names, chain.Mean(postChain)); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	path = filepath.Join(dir, "posterior_correlation.csv")
	if err := artifact.WriteNamedMatrix(path, names, chain.Correlation(postChain)); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	path = filepath.Join(dir, "posterior_quantiles.csv")
	quantiles := chain.Quantiles(postChain, credibleProbs)
	if err := artifact.WriteQuantiles(path, names, credibleProbs, quantiles); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	for _, size := range thinSizes {
		thinned, err := chain.Thin(postChain, size)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, fmt.Sprintf("parameters_%d.csv", size))
		if err := artifact.WriteChain(path, names, thinned); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
