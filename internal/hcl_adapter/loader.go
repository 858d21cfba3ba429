package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/dfsim/internal/config"
	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and parses any valid block from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{}

	hclFiles, err := fsutil.Collect(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.merge(ctx, model, &root); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.",
		"units", len(model.Units),
		"memories", len(model.Memories),
		"vertices", len(model.Vertices),
		"branches", len(model.Branches),
		"edges", len(model.Edges),
	)
	return model, nil
}

// merge translates every block of one file into the model.
func (l *Loader) merge(ctx context.Context, model *config.Model, root *fileRoot) error {
	for _, m := range root.Mesh {
		if model.Mesh != nil {
			return fmt.Errorf("mesh declared more than once")
		}
		mesh, err := translateMesh(m)
		if err != nil {
			return err
		}
		model.Mesh = mesh
	}
	for _, u := range root.Units {
		model.Units = append(model.Units, &config.Unit{Name: u.Name, ID: u.ID, X: u.X, Y: u.Y})
	}
	for _, m := range root.Memories {
		mem, err := translateMemory(ctx, m)
		if err != nil {
			return err
		}
		model.Memories = append(model.Memories, mem)
	}
	for _, v := range root.Vertices {
		vtx, err := translateVertex(v, "")
		if err != nil {
			return err
		}
		model.Vertices = append(model.Vertices, vtx)
	}
	for _, b := range root.Branches {
		br, err := translateBranch(ctx, b, "")
		if err != nil {
			return err
		}
		model.Branches = append(model.Branches, br)
	}
	for _, e := range root.Edges {
		edge, err := translateEdge(ctx, e)
		if err != nil {
			return err
		}
		model.Edges = append(model.Edges, edge)
	}
	return nil
}
