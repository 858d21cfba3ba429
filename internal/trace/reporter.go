package trace

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/memory"
)

// LogReporter writes every snapshot to the logger carried by the context.
type LogReporter struct{}

// Report implements memory.Reporter.
func (LogReporter) Report(ctx context.Context, s memory.Snapshot) error {
	r := FromSnapshot(s)

	names := make([]string, 0, len(r.Values))
	for name := range r.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := []any{"memory", r.Memory, "sim_time", s.Time, "delta", r.Delta}
	for _, name := range names {
		attrs = append(attrs, slog.Any(name, r.Values[name]))
	}
	ctxlog.FromContext(ctx).Info("Results written.", attrs...)
	return nil
}

// Fanout hands every snapshot to each of its reporters.
type Fanout []memory.Reporter

// Report implements memory.Reporter. Every reporter is called even when an
// earlier one fails.
func (f Fanout) Report(ctx context.Context, s memory.Snapshot) error {
	var errs []error
	for _, r := range f {
		if err := r.Report(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
