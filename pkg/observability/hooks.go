// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on a specific backend. Consumers register hooks at startup
// and receive events about plan searches, heuristic lookups, and HTTP
// requests served.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// A search also accepts hooks directly through its options, which take
// precedence over the registry; tests use that to observe a single run.
//
// # Usage
//
//	func main() {
//	    observability.SetSearchHooks(observability.NewLogHooks(logger))
//	    // ... run searches
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Search().OnProgress(ctx, progress)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Search Hooks
// =============================================================================

// Progress is a snapshot of a running search.
type Progress struct {
	RunID     string        `json:"run_id"`
	Iteration int           `json:"iteration"`
	Queue     int           `json:"queue"`
	Visited   int           `json:"visited"`
	BestCost  float64       `json:"best_cost"`
	Elapsed   time.Duration `json:"elapsed"`
}

// SearchHooks receives events from the plan search.
type SearchHooks interface {
	// OnSearchStart is called once the initial naive plan has been priced.
	OnSearchStart(ctx context.Context, runID, start string, initialCost float64)

	// OnProgress is called every reporting interval.
	OnProgress(ctx context.Context, p Progress)

	// OnImprovement is called whenever a cheaper exact plan is found.
	OnImprovement(ctx context.Context, p Progress)

	// OnSearchComplete is called when the search stops for any reason.
	OnSearchComplete(ctx context.Context, p Progress, reason string)
}

// =============================================================================
// Heuristic Hooks
// =============================================================================

// HeuristicHooks receives events from the heuristic cache.
type HeuristicHooks interface {
	// OnHeuristicHit records an estimate served from memory or the store.
	OnHeuristicHit(ctx context.Context, source string)

	// OnHeuristicMiss records an estimate computed by the solver.
	OnHeuristicMiss(ctx context.Context, duration time.Duration)

	// OnStoreError records a failed read or write of the persistent store.
	OnStoreError(ctx context.Context, op string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnSearchStart(context.Context, string, string, float64) {}
func (NoopSearchHooks) OnProgress(context.Context, Progress)                   {}
func (NoopSearchHooks) OnImprovement(context.Context, Progress)                {}
func (NoopSearchHooks) OnSearchComplete(context.Context, Progress, string)     {}

// NoopHeuristicHooks is a no-op implementation of HeuristicHooks.
type NoopHeuristicHooks struct{}

func (NoopHeuristicHooks) OnHeuristicHit(context.Context, string)         {}
func (NoopHeuristicHooks) OnHeuristicMiss(context.Context, time.Duration) {}
func (NoopHeuristicHooks) OnStoreError(context.Context, string, error)    {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	searchHooks    SearchHooks    = NoopSearchHooks{}
	heuristicHooks HeuristicHooks = NoopHeuristicHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetSearchHooks registers custom search hooks.
// This should be called once at application startup before any search runs.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetHeuristicHooks registers custom heuristic hooks.
func SetHeuristicHooks(h HeuristicHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		heuristicHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Heuristic returns the registered heuristic hooks.
func Heuristic() HeuristicHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return heuristicHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	searchHooks = NoopSearchHooks{}
	heuristicHooks = NoopHeuristicHooks{}
	httpHooks = NoopHTTPHooks{}
}
