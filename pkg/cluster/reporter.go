package cluster

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Sweep describes one completed pass over the edge list.
type Sweep struct {
	Index   int           // 1-based sweep number
	Changed int           // labels lowered during the sweep
	Elapsed time.Duration // wall time spent in the sweep
}

// Reporter receives per-sweep progress. Implementations must not block for
// long; they run on the propagation goroutine between edge passes.
type Reporter interface {
	SweepStart(ctx context.Context, index int)
	SweepDone(ctx context.Context, s Sweep)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) SweepStart(context.Context, int)  {}
func (NopReporter) SweepDone(context.Context, Sweep) {}

// ReporterFunc adapts a function to a Reporter that only sees completed sweeps.
type ReporterFunc func(ctx context.Context, s Sweep)

func (ReporterFunc) SweepStart(context.Context, int) {}

func (f ReporterFunc) SweepDone(ctx context.Context, s Sweep) { f(ctx, s) }

// LogReporter writes sweep progress to a charmbracelet logger: a debug line
// when a sweep starts and an info line with the change count when it ends.
type LogReporter struct {
	Logger *log.Logger
}

// NewLogReporter returns a LogReporter; a nil logger means log.Default().
func NewLogReporter(l *log.Logger) *LogReporter {
	if l == nil {
		l = log.Default()
	}
	return &LogReporter{Logger: l}
}

func (r *LogReporter) SweepStart(_ context.Context, index int) {
	r.Logger.Debug("starting sweep", "sweep", index)
}

func (r *LogReporter) SweepDone(_ context.Context, s Sweep) {
	r.Logger.Info("sweep finished",
		"sweep", s.Index,
		"changed", s.Changed,
		"elapsed", s.Elapsed.Round(time.Microsecond))
}

// multiReporter fans progress out to several reporters in order.
type multiReporter []Reporter

func (m multiReporter) SweepStart(ctx context.Context, index int) {
	for _, r := range m {
		r.SweepStart(ctx, index)
	}
}

func (m multiReporter) SweepDone(ctx context.Context, s Sweep) {
	for _, r := range m {
		r.SweepDone(ctx, s)
	}
}

// MultiReporter combines reporters; nil entries are skipped.
func MultiReporter(rs ...Reporter) Reporter {
	var out multiReporter
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	switch len(out) {
	case 0:
		return NopReporter{}
	case 1:
		return out[0]
	}
	return out
}
