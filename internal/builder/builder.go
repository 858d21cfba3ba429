package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/dfsim/internal/branch"
	"github.com/specialistvlad/dfsim/internal/config"
	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/inmemorytopology"
	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/memory"
	"github.com/specialistvlad/dfsim/internal/noc"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/nodeid"
	"github.com/specialistvlad/dfsim/internal/topologystore"
	"github.com/specialistvlad/dfsim/internal/unit"
	"github.com/specialistvlad/dfsim/internal/vertex"
)

// Simulation is an assembled accelerator ready to be run.
type Simulation struct {
	Kernel   *kernel.Kernel
	Mesh     *noc.Mesh
	Units    []*unit.Unit
	Memories []*memory.Memory
	Branches []*branch.Node
	Topology topologystore.Store
}

// placed is a top-level node together with the unit it lives on.
type placed struct {
	node  node.Node
	unit  *unit.Unit
	addr  nodeid.Address
	ports ports

	// memory slots by name
	values  map[string]int
	results map[string]int
}

type builder struct {
	ctx   context.Context
	sim   *Simulation
	units map[string]*unit.Unit
	nodes map[string]*placed
}

// Build constructs a simulation from a config model. Snapshots of every
// memory are handed to reporter, which may be nil. On error the partially
// built kernel is shut down.
func Build(ctx context.Context, model *config.Model, reporter memory.Reporter) (*Simulation, error) {
	b := &builder{
		ctx: ctx,
		sim: &Simulation{
			Kernel:   kernel.New(),
			Topology: inmemorytopology.New(),
		},
		units: make(map[string]*unit.Unit),
		nodes: make(map[string]*placed),
	}
	if err := b.build(model, reporter); err != nil {
		b.sim.Kernel.Shutdown()
		return nil, err
	}
	return b.sim, nil
}

func (b *builder) build(model *config.Model, reporter memory.Reporter) error {
	ctx := b.ctx
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting simulation construction.")

	if err := b.placeUnits(model); err != nil {
		return err
	}
	logger.Debug("Build: Units placed.", "units", len(b.sim.Units))

	for _, m := range model.Memories {
		if err := b.addMemory(m); err != nil {
			return err
		}
	}
	for _, v := range model.Vertices {
		if err := b.addVertex(v); err != nil {
			return err
		}
	}
	for _, br := range model.Branches {
		if err := b.addBranch(br); err != nil {
			return err
		}
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(b.sim.Topology.All(ctx)))

	for _, e := range model.Edges {
		if err := b.addEdge(e); err != nil {
			return err
		}
	}
	logger.Debug("Build: Linking complete.", "edges", len(b.sim.Topology.Edges(ctx)))

	for _, m := range b.sim.Memories {
		m.Start(reporter)
	}
	return nil
}

func (b *builder) placeUnits(model *config.Model) error {
	if len(model.Units) == 0 {
		return fmt.Errorf("no units declared")
	}

	units := make([]*config.Unit, len(model.Units))
	copy(units, model.Units)
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })

	mesh, err := noc.NewMesh(b.sim.Kernel, meshConfig(model.Mesh, units))
	if err != nil {
		return err
	}
	b.sim.Mesh = mesh

	for _, cu := range units {
		if _, ok := b.units[cu.Name]; ok {
			return fmt.Errorf("unit %q declared twice", cu.Name)
		}
		u := unit.New(b.sim.Kernel, unit.Config{ID: cu.ID, Name: cu.Name, X: cu.X, Y: cu.Y})
		if _, err := mesh.Attach(u); err != nil {
			return err
		}
		b.units[cu.Name] = u
		b.sim.Units = append(b.sim.Units, u)
	}
	return nil
}

// meshConfig returns the declared mesh, or a grid just large enough for the
// units with zero latencies when none is declared.
func meshConfig(m *config.Mesh, units []*config.Unit) noc.Config {
	if m != nil {
		return noc.Config{
			Width:          m.Width,
			Height:         m.Height,
			HopLatency:     m.HopLatency,
			RoutingLatency: m.RoutingLatency,
			Diagonal:       m.Diagonal,
		}
	}
	cfg := noc.Config{Width: 1, Height: 1}
	for _, u := range units {
		cfg.Width = max(cfg.Width, u.X+1)
		cfg.Height = max(cfg.Height, u.Y+1)
	}
	return cfg
}

func (b *builder) unit(name, owner string) (*unit.Unit, error) {
	u, ok := b.units[name]
	if !ok {
		return nil, fmt.Errorf("%s: unknown unit %q", owner, name)
	}
	return u, nil
}

// register records a top-level node under its short name and in the topology.
func (b *builder) register(name string, n node.Node, u *unit.Unit, addr nodeid.Address, pt ports) (*placed, error) {
	if _, ok := b.nodes[name]; ok {
		return nil, fmt.Errorf("node name %q declared twice", name)
	}
	if err := b.registerTopology(n, u, addr); err != nil {
		return nil, err
	}
	if err := u.AddNode(n); err != nil {
		return nil, err
	}
	p := &placed{node: n, unit: u, addr: addr, ports: pt}
	b.nodes[name] = p
	return p, nil
}

func (b *builder) registerTopology(n node.Node, u *unit.Unit, addr nodeid.Address) error {
	return b.sim.Topology.Register(b.ctx, topologystore.Entry{
		ID:      n.ID(),
		Address: addr,
		Class:   n.Class(),
		Unit:    u.Name(),
	})
}

func (b *builder) addMemory(m *config.Memory) error {
	u, err := b.unit(m.Unit, "memory "+m.Name)
	if err != nil {
		return err
	}
	addr := nodeid.New(nodeid.Named(u.Name())).Node(m.Name, m.ID)
	mem := memory.New(b.sim.Kernel, node.Attrs{ID: m.ID, Name: addr.String()})

	pt := portsOf(nil, nil)
	values := make(map[string]int, len(m.Values))
	for _, v := range m.Values {
		if err := mem.AddValue(v.ID, v.Name, v.Kind, v.Init); err != nil {
			return err
		}
		values[v.Name] = v.ID
		pt.out[v.ID] = v.Kind
	}
	results := make(map[string]int, len(m.Results))
	for _, r := range m.Results {
		if err := mem.AddResult(r.ID, r.Name, r.Kind); err != nil {
			return err
		}
		results[r.Name] = r.ID
		pt.in[r.ID] = r.Kind
	}

	p, err := b.register(m.Name, mem, u, addr, pt)
	if err != nil {
		return err
	}
	p.values, p.results = values, results
	b.sim.Memories = append(b.sim.Memories, mem)
	return nil
}

func (b *builder) newVertex(v *config.Vertex, u *unit.Unit, addr nodeid.Address) (*node.Operator, ports, error) {
	op, err := vertex.New(b.sim.Kernel, u.Core(), v.Kind, node.Attrs{
		ID:      v.ID,
		Name:    addr.String(),
		Cluster: v.Cluster,
		Cost:    v.Cost,
	})
	if err != nil {
		return nil, ports{}, err
	}
	in, out, err := vertex.Signature(v.Kind)
	if err != nil {
		return nil, ports{}, err
	}
	return op, portsOf(in, out), nil
}

func (b *builder) addVertex(v *config.Vertex) error {
	u, err := b.unit(v.Unit, "vertex "+v.Name)
	if err != nil {
		return err
	}
	addr := nodeid.New(nodeid.Named(u.Name())).Node(v.Name, v.ID)
	op, pt, err := b.newVertex(v, u, addr)
	if err != nil {
		return err
	}
	_, err = b.register(v.Name, op, u, addr, pt)
	return err
}

func (b *builder) newBranch(br *config.Branch, addr nodeid.Address) (*branch.Node, error) {
	n, err := branch.New(b.sim.Kernel, branch.Config{
		ID:      br.ID,
		Name:    addr.String(),
		Cluster: br.Cluster,
		Cost:    br.Cost,
		Inputs:  br.Inputs,
	})
	if err != nil {
		return nil, err
	}
	b.sim.Branches = append(b.sim.Branches, n)
	return n, nil
}

// branchPorts describes a branch: every output repeats the kind of the
// incoming edge with the same index.
func branchPorts(br *config.Branch) ports {
	return portsOf(br.Inputs, br.Inputs)
}

func (b *builder) addBranch(br *config.Branch) error {
	u, err := b.unit(br.Unit, "branch "+br.Name)
	if err != nil {
		return err
	}
	addr := nodeid.New(nodeid.Named(u.Name())).Node(br.Name, br.ID)
	n, err := b.newBranch(br, addr)
	if err != nil {
		return err
	}
	if _, err := b.register(br.Name, n, u, addr, branchPorts(br)); err != nil {
		return err
	}
	return b.buildScopes(n, br, u, addr)
}
