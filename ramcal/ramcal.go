/*

Ramcal calibrates climate-model parameters against an observed
temperature record. It samples the joint posterior with a robust
adaptive Metropolis (RAM) chain and condenses the chain into summary
artifacts: acceptance rate, adapted proposal covariance, posterior
mean, posterior correlation matrix, credible intervals and thinned
sample sets.

The basic usage of ramcal looks like this:

	ramcal scenario.yaml

, this will sample the posterior described by the scenario file and
write the artifacts into the current directory.

A longer production run with a posterior-mode start and checkpoints:

	ramcal -final 1000000 -burnin 200000 -mapstart -checkpoint run.db scenario.yaml

To see all the options run:

	ramcal -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("ramcal")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line options
var (
	// application
	app = kingpin.New("ramcal", "robust adaptive Metropolis calibration of climate-model parameters").Version(version)

	// scenario
	scenarioFileName = app.Arg("scenario", "calibration scenario file").Required().ExistingFile()
	endYear          = app.Flag("endyear", "override the scenario calibration end year").Int()

	// chain parameters
	finalLength = app.Flag("final", "number of post-burn-in samples").Default("100000").Int()
	burnIn      = app.Flag("burnin", "number of burn-in samples (final/5 by default)").Default("-1").Int()
	thinSizes   = app.Flag("thin", "thinned chain size, may be repeated").Default("10000", "100000").Ints()
	targetRate  = app.Flag("target", "target acceptance rate").Default("0.234").Float64()
	gamma       = app.Flag("gamma", "adaptation decay exponent").Default("0.6666666666666666").Float64()
	accept      = app.Flag("accept", "report acceptance rate every N iterations").Default("200").Int()
	report      = app.Flag("report", "write a trajectory line every N iterations").Default("10").Int()

	// starting point
	mapStart  = app.Flag("mapstart", "start the chain from the posterior mode (L-BFGS-B search)").Bool()
	randomize = app.Flag("randomize", "draw the starting point from the priors").Bool()

	// checkpoints
	checkpointFileName = app.Flag("checkpoint", "checkpoint database file").String()
	checkpointSeconds  = app.Flag("chkpsec", "minimum seconds between checkpoint saves").Default("30").Float64()
	resume             = app.Flag("resume", "continue an interrupted run from the checkpoint database").Bool()

	// technical
	seed = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()

	// input/output
	outDir   = app.Flag("outdir", "directory for the output artifacts").Default(".").String()
	outF     = app.Flag("trajectory", "write the sampling trajectory to a file").String()
	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file").String()
	quiet = app.Flag("quiet", "suppress progress reporting").Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLevel(level, "ramcal")
	logging.SetLevel(level, "mcmc")
	logging.SetLevel(level, "calib")
	logging.SetLevel(level, "optimize")
	logging.SetLevel(level, "checkpoint")

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)

	summary := run()
	summary.Version = version
	summary.CommandLine = os.Args
	summary.Seed = *seed

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
