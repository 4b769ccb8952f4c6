// Package dump writes snapshots of the plans a search has visited, for
// inspecting why a search explores what it does.
//
// A [Sink] receives a [Snapshot] every reporting interval and once more
// when the search stops. Each snapshot replaces the previous one:
//
//   - [FileSink] rewrites a text file, one plan per block
//   - [MongoSink] replaces the run's documents in a MongoDB collection
package dump

import (
	"context"
	"errors"
	"time"
)

// Snapshot is the set of distinct plans visited so far by one run.
type Snapshot struct {
	RunID     string
	Iteration int
	Time      time.Time
	// Plans holds the text rendering of every visited plan, sorted.
	Plans []string
}

// Sink stores snapshots.
type Sink interface {
	Dump(ctx context.Context, s Snapshot) error
}

// SinkFunc adapts a plain function to [Sink].
type SinkFunc func(context.Context, Snapshot) error

// Dump calls f(ctx, s).
func (f SinkFunc) Dump(ctx context.Context, s Snapshot) error { return f(ctx, s) }

// Multi returns a sink writing every snapshot to each of sinks in turn.
// Nil sinks are skipped. A failing sink does not stop the others; their
// errors are joined.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return multiSink(live)
}

type multiSink []Sink

func (m multiSink) Dump(ctx context.Context, s Snapshot) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Dump(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
