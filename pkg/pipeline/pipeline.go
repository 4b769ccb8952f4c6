// Package pipeline runs plan searches for the CLI and the HTTP service.
//
// This package implements the complete validate → search → render flow so
// that every entry point behaves the same way. By centralizing this logic,
// the CLI and the service share caching of heuristic estimates and of
// finished results.
//
// # Usage
//
// Create a Runner and execute a search:
//
//	runner := pipeline.NewRunner(store, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source:    6,
//	    Target:    8,
//	    Heuristic: pipeline.HeuristicNaive,
//	})
//	if err != nil {
//	    return err
//	}
//	out, err := pipeline.Render(ctx, res, pipeline.FormatText)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diceplan/pkg/dump"
	"github.com/matzehuels/diceplan/pkg/errors"
	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/plan"
	"github.com/matzehuels/diceplan/pkg/search"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSource is the die thrown when none is given.
	DefaultSource = 6

	// DefaultTarget is the die simulated when none is given.
	DefaultTarget = 8

	// DefaultHeuristic prices pending states at zero, which never prunes
	// an optimal plan.
	DefaultHeuristic = HeuristicZero
)

// Heuristic names.
const (
	HeuristicZero  = "zero"
	HeuristicNaive = "naive"
)

// Heuristics lists the supported heuristics.
var Heuristics = []string{HeuristicZero, HeuristicNaive}

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// =============================================================================
// Options - Search Configuration
// =============================================================================

// Options contains all configuration for one search.
// This struct supports JSON serialization for API requests.
type Options struct {
	Source        int    `json:"source"`
	Target        int    `json:"target"`
	Heuristic     string `json:"heuristic,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
	AcceptTies    bool   `json:"accept_ties,omitempty"`
	Refresh       bool   `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	ReportEvery int                       `json:"-"`
	Hooks       observability.SearchHooks `json:"-"`
	Dump        dump.Sink                 `json:"-"`
	Logger      *log.Logger               `json:"-"`
}

// ValidateAndSetDefaults fills in the default heuristic and checks the
// options against limits.
func (o *Options) ValidateAndSetDefaults(limits errors.Limits) error {
	if o.Heuristic == "" {
		o.Heuristic = DefaultHeuristic
	}
	if err := errors.ValidateDice(o.Source, o.Target, limits); err != nil {
		return err
	}
	if err := errors.ValidateIterations(o.MaxIterations); err != nil {
		return err
	}
	return errors.ValidateChoice(errors.ErrCodeInvalidHeuristic, "heuristic", o.Heuristic, Heuristics)
}

// ValidateFormat checks that format is a supported output format.
func ValidateFormat(format string) error {
	return errors.ValidateChoice(errors.ErrCodeInvalidFormat, "format", format, Formats)
}

// Start returns the initial state for the options' dice.
func (o Options) Start() plan.State { return plan.NewState(o.Source, o.Target) }

// =============================================================================
// Result
// =============================================================================

// Result contains the outcome of a search.
type Result struct {
	RunID     string      `json:"run_id"`
	Source    int         `json:"source"`
	Target    int         `json:"target"`
	Heuristic string      `json:"heuristic"`
	Plan      *plan.Graph `json:"plan"`

	// Cost is the exact expected number of throws of Plan.
	Cost float64 `json:"cost"`
	// InitialCost is the exact cost of the naive plan.
	InitialCost float64 `json:"initial_cost"`
	// HeuristicCost is the naive heuristic's estimate for the start state.
	HeuristicCost float64 `json:"heuristic_cost"`

	Optimal bool   `json:"optimal"`
	Stop    string `json:"stop"`
	Stats   Stats  `json:"stats"`

	// Cached reports whether the result was served from the cache.
	Cached bool `json:"cached"`
}

// Stats contains search execution statistics.
type Stats struct {
	Iterations   int           `json:"iterations"`
	Visited      int           `json:"visited"`
	Improvements int           `json:"improvements"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

func newResult(opts Options, res *search.Result) *Result {
	return &Result{
		RunID:       res.RunID,
		Source:      opts.Source,
		Target:      opts.Target,
		Heuristic:   opts.Heuristic,
		Plan:        res.Plan,
		Cost:        res.Cost,
		InitialCost: res.Initial,
		Optimal:     res.Optimal(),
		Stop:        res.Stop.String(),
		Stats: Stats{
			Iterations:   res.Iterations,
			Visited:      res.Visited,
			Improvements: res.Improvements,
			Elapsed:      res.Elapsed,
		},
	}
}
