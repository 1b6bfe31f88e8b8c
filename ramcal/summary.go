package main

// ModeSummary describes a posterior-mode search.
type ModeSummary struct {
	// X is the posterior mode.
	X []float64 `json:"x"`
	// LogPost is the log posterior density at the mode.
	LogPost float64 `json:"logPosterior"`
	// Calls is the number of log-posterior evaluations used.
	Calls int `json:"calls"`
	// Status is the optimizer exit status.
	Status string `json:"status"`
}

// RunSummary is storing ramcal run summary information.
type RunSummary struct {
	// Version stores ramcal version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// Scenario is the calibration run name.
	Scenario string `json:"scenario"`
	// Resumed is the iteration the run was resumed from, if it was.
	Resumed int `json:"resumed,omitempty"`
	// Mode is the posterior-mode search summary (-mapstart only).
	Mode *ModeSummary `json:"mode,omitempty"`
	// Iterations is the number of chain iterations performed.
	Iterations int `json:"iterations"`
	// BurnIn is the number of iterations dropped for the summaries.
	BurnIn int `json:"burnIn"`
	// AcceptanceRate is the fraction of accepted proposals.
	AcceptanceRate float64 `json:"acceptanceRate"`
	// Accepted is the number of accepted proposals.
	Accepted int `json:"accepted"`
	// Calls is the number of log-posterior evaluations.
	Calls int `json:"calls"`
	// FinalLogPost is the log posterior density of the last chain state.
	FinalLogPost float64 `json:"finalLogPosterior"`
	// Interrupted reports an early stop on a signal.
	Interrupted bool `json:"interrupted,omitempty"`
	// Artifacts lists the written artifact files.
	Artifacts []string `json:"artifacts,omitempty"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
}
