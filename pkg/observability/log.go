package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes search and heuristic events to a structured logger.
// Progress is logged at info level, heuristic traffic at debug level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to l, or to log.Default() if l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnSearchStart(_ context.Context, runID, start string, initialCost float64) {
	h.logger.Info("search started", "run", runID, "start", start, "initial_cost", initialCost)
}

func (h *LogHooks) OnProgress(_ context.Context, p Progress) {
	h.logger.Info("search progress",
		"iteration", p.Iteration,
		"queue", p.Queue,
		"visited", p.Visited,
		"best", p.BestCost,
		"elapsed", p.Elapsed.Round(time.Millisecond))
}

func (h *LogHooks) OnImprovement(_ context.Context, p Progress) {
	h.logger.Info("found better plan", "iteration", p.Iteration, "cost", p.BestCost)
}

func (h *LogHooks) OnSearchComplete(_ context.Context, p Progress, reason string) {
	h.logger.Info("search finished",
		"reason", reason,
		"iterations", p.Iteration,
		"visited", p.Visited,
		"cost", p.BestCost,
		"elapsed", p.Elapsed.Round(time.Millisecond))
}

func (h *LogHooks) OnHeuristicHit(_ context.Context, source string) {
	h.logger.Debug("heuristic hit", "source", source)
}

func (h *LogHooks) OnHeuristicMiss(_ context.Context, d time.Duration) {
	h.logger.Debug("heuristic computed", "duration", d)
}

func (h *LogHooks) OnStoreError(_ context.Context, op string, err error) {
	h.logger.Warn("heuristic store failed", "op", op, "err", err)
}

var (
	_ SearchHooks    = (*LogHooks)(nil)
	_ HeuristicHooks = (*LogHooks)(nil)
)
