package graphfile

import (
	"context"
	"fmt"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/executor"
	"github.com/vk/dagstream/internal/node"
	"github.com/vk/dagstream/internal/registry"
	"github.com/vk/dagstream/internal/stream"
)

// Definition is the merged content of one or more graph files.
type Definition struct {
	Nodes []NodeSpec
	Run   RunSpec
}

// NodeSpec is a single `node` block.
type NodeSpec struct {
	Name        string
	Function    string
	DisplayName string
	// After lists nodes that must finish first.
	After []string
	// PipeFrom lists nodes that must finish first and whose results are
	// passed in as leading arguments.
	PipeFrom []string
}

// RunSpec is the optional `run` block.
type RunSpec struct {
	Mandatory []string
	FirstArgs []any
	Args      []any
	Kwargs    map[string]any
	SaveAll   bool
	// Workers selects the pool executor when positive.
	Workers int
}

// Options converts the run block into executor options.
func (r RunSpec) Options() executor.Options {
	opts := executor.Options{
		FirstArgs: r.FirstArgs,
		Args:      r.Args,
		SaveAll:   r.SaveAll,
	}
	if len(r.Kwargs) > 0 {
		opts.Kwargs = node.Kwargs(r.Kwargs)
	}
	return opts
}

// Assemble registers every node of the definition on a new builder, using
// functions looked up in reg, and wires their edges. It returns the builder
// and the nodes named by the run block's mandatory list.
func (d *Definition) Assemble(ctx context.Context, reg *registry.Registry) (*stream.Builder, []*node.Node, error) {
	logger := ctxlog.FromContext(ctx)
	b := stream.New()

	for _, decl := range d.Nodes {
		fn, ok := reg.Func(decl.Function)
		if !ok {
			return nil, nil, fmt.Errorf("node %q: unknown function %q", decl.Name, decl.Function)
		}
		n, err := b.EmplaceNamed(decl.Name, fn)
		if err != nil {
			return nil, nil, fmt.Errorf("node %q: %w", decl.Name, err)
		}
		if n.ID() != decl.Name {
			return nil, nil, fmt.Errorf("node %q: name already taken", decl.Name)
		}
		if decl.DisplayName != "" {
			n.SetDisplayName(decl.DisplayName)
		}
	}

	lookup := func(owner, ref string) (*node.Node, error) {
		n, ok := b.Node(ref)
		if !ok {
			return nil, fmt.Errorf("node %q: references unknown node %q", owner, ref)
		}
		return n, nil
	}
	for _, decl := range d.Nodes {
		target, _ := b.Node(decl.Name)
		for _, ref := range decl.PipeFrom {
			src, err := lookup(decl.Name, ref)
			if err != nil {
				return nil, nil, err
			}
			target.PipeFrom(src)
		}
		for _, ref := range decl.After {
			src, err := lookup(decl.Name, ref)
			if err != nil {
				return nil, nil, err
			}
			target.Succeed(src)
		}
	}

	mandatory := make([]*node.Node, 0, len(d.Run.Mandatory))
	for _, ref := range d.Run.Mandatory {
		n, ok := b.Node(ref)
		if !ok {
			return nil, nil, fmt.Errorf("run: mandatory node %q is not declared", ref)
		}
		mandatory = append(mandatory, n)
	}

	logger.Debug("Graph definition assembled.", "nodes", b.Len(), "mandatory", len(mandatory))
	return b, mandatory, nil
}
