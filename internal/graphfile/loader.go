package graphfile

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/fsutil"
)

// ErrNoFiles is returned when none of the given paths holds a .hcl file.
var ErrNoFiles = errors.New("no .hcl files found")

// Loader reads graph definitions from HCL files.
type Loader struct{}

// NewLoader creates a new HCL graph loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Nodes  []*nodeBlock `hcl:"node,block"`
	Runs   []*runBlock  `hcl:"run,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type nodeBlock struct {
	Name        string   `hcl:"name,label"`
	Function    string   `hcl:"function"`
	DisplayName *string  `hcl:"display_name,optional"`
	After       []string `hcl:"after,optional"`
	PipeFrom    []string `hcl:"pipe_from,optional"`
}

type runBlock struct {
	Mandatory []string       `hcl:"mandatory,optional"`
	FirstArgs hcl.Expression `hcl:"first_args,optional"`
	Args      hcl.Expression `hcl:"args,optional"`
	Kwargs    hcl.Expression `hcl:"kwargs,optional"`
	SaveAll   *bool          `hcl:"save_all,optional"`
	Workers   *int           `hcl:"workers,optional"`
}

// Load parses every .hcl file under paths and merges them into one
// Definition. Node names must be unique across files and at most one run
// block may exist.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	def := &Definition{}
	seen := make(map[string]string)
	runFile := ""
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

		for _, nb := range root.Nodes {
			if prev, dup := seen[nb.Name]; dup {
				return nil, fmt.Errorf("%s: node %q already declared in %s", file, nb.Name, prev)
			}
			seen[nb.Name] = file
			def.Nodes = append(def.Nodes, translateNode(nb))
		}
		for _, rb := range root.Runs {
			if runFile != "" {
				return nil, fmt.Errorf("%s: only one run block is allowed, first declared in %s", file, runFile)
			}
			runFile = file
			run, err := translateRun(ctx, rb)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			def.Run = run
		}
	}

	logger.Debug("HCL loading complete.", "nodes", len(def.Nodes), "has_run_block", runFile != "")
	return def, nil
}

func translateNode(nb *nodeBlock) NodeSpec {
	decl := NodeSpec{
		Name:     nb.Name,
		Function: nb.Function,
		After:    nb.After,
		PipeFrom: nb.PipeFrom,
	}
	if nb.DisplayName != nil {
		decl.DisplayName = *nb.DisplayName
	}
	return decl
}

func translateRun(ctx context.Context, rb *runBlock) (RunSpec, error) {
	run := RunSpec{Mandatory: rb.Mandatory}
	if rb.SaveAll != nil {
		run.SaveAll = *rb.SaveAll
	}
	if rb.Workers != nil {
		if *rb.Workers < 0 {
			return RunSpec{}, fmt.Errorf("run: workers must be >= 0, got %d", *rb.Workers)
		}
		run.Workers = *rb.Workers
	}

	var err error
	if run.FirstArgs, err = evalList(ctx, rb.FirstArgs, "first_args"); err != nil {
		return RunSpec{}, err
	}
	if run.Args, err = evalList(ctx, rb.Args, "args"); err != nil {
		return RunSpec{}, err
	}
	if run.Kwargs, err = evalObject(ctx, rb.Kwargs, "kwargs"); err != nil {
		return RunSpec{}, err
	}
	return run, nil
}
