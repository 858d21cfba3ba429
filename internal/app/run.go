package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/kernel"
)

// Run executes the simulation and reports its statistics.
func (a *App) Run(ctx context.Context) (kernel.Stats, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	if a.emitter != nil {
		defer func() {
			a.logger.Debug("Closing trace stream.", "sent", a.emitter.Sent())
			_ = a.emitter.Close()
		}()
	}

	a.dumpGraph(ctx)

	a.logger.Info("🚀 Starting simulation...", "until", a.config.Until)
	stats, err := a.sim.Kernel.Run(ctx, a.config.Until)
	if err != nil {
		a.logger.Error("Simulation stopped.", "now", stats.Now, "error", fmt.Sprintf("%+v", err))
		return stats, fmt.Errorf("simulation failed: %w", err)
	}
	a.logger.Info("🏁 Simulation finished.",
		"now", stats.Now,
		"deltas", stats.Deltas,
		"activations", stats.Activations,
		"processes", stats.Processes,
	)

	a.report()
	a.logger.Debug("App.Run method finished.")
	return stats, nil
}

// dumpGraph logs every placed node and edge at debug level.
func (a *App) dumpGraph(ctx context.Context) {
	for _, u := range a.sim.Units {
		a.logger.Debug("Unit layout.", "unit", u.Name(), "x", u.X(), "y", u.Y(), "nodes", strings.Join(u.Dump(), "; "))
	}
	for _, e := range a.sim.Topology.Edges(ctx) {
		a.logger.Debug("Edge.", "from", e.From.String(), "slot", e.Slot, "to", e.To.String(), "input", e.Input, "remote", e.Remote)
	}
}

// report logs the resource usage collected during the run.
func (a *App) report() {
	for _, u := range a.sim.Units {
		s := u.Stats()
		a.logger.Info("Unit stats.", "unit", u.Name(), "nodes", s.Nodes, "grants", s.Grants, "queued", s.Queued, "busy", s.BusyTime)
	}
	for _, b := range a.sim.Branches {
		s := b.Stats()
		a.logger.Debug("Branch stats.", "branch", b.Name(), "then", s.Then, "else", s.Else)
	}
	for _, ic := range a.sim.Mesh.Interconnects() {
		s := ic.Stats()
		a.logger.Info("Interconnect stats.", "interconnect", ic.Name(), "routed", s.Routed, "rejected", s.Rejected, "hops", s.Hops)
		if n := ic.Pool().Outstanding(); n > 0 {
			a.logger.Warn("There are still payload objects in use.", "interconnect", ic.Name(), "count", n)
		}
	}
}
