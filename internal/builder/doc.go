/*
Package builder is responsible for the architectural construction of a
simulation. It acts as the bridge between the static configuration model
(defined in the 'config' package) and the event kernel that runs it.

The primary artifact produced by this package is a ready-to-run *Simulation.

The construction is a multi-phase process:

 1. Placement: the builder creates the kernel, the mesh and one unit per
    `unit` block, and attaches every unit to the mesh.

 2. Node Creation: memories, vertices and branches are created on the core
    of their unit. Every node is registered in the topology store under its
    hierarchical name, which is where duplicate ids are caught. Branch scopes
    are built recursively, so a branch may live inside another branch.

 3. Linking: scope-local connections and begin/end bindings are made by the
    branches themselves; top-level edges are resolved by name and handed to
    the mesh, which links nodes of the same unit directly and routes the
    rest through the interconnects.

 4. Start: every memory spawns its publish and collect routines.

Any failure is a configuration error and the simulation must not be run.
*/
package builder
