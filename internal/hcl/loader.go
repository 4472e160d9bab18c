package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/petal/internal/config"
	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/fsutil"
)

// ErrNoPlanFiles is returned when none of the given paths holds a .hcl file.
var ErrNoPlanFiles = errors.New("no .hcl plan files found")

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL plan loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from paths and merges their blocks
// into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover plan files: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w in %v", ErrNoPlanFiles, paths)
	}
	logger.Debug("Discovered plan files.", "files", files)

	model := &config.Model{}
	seen := make(map[string]string)
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse plan file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode plan file %s: %w", file, diags)
		}

		for _, sb := range root.Schedulers {
			if model.Scheduler != nil {
				return nil, nil, fmt.Errorf("%s: scheduler block declared more than once", file)
			}
			settings, err := translateScheduler(sb)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Scheduler = settings
		}

		for _, mb := range root.Modules {
			if prev, dup := seen[mb.Name]; dup {
				return nil, nil, fmt.Errorf("%s: module %q already declared in %s", file, mb.Name, prev)
			}
			seen[mb.Name] = file
			mod, err := translateModule(mb, file)
			if err != nil {
				return nil, nil, err
			}
			model.Modules = append(model.Modules, mod)
		}
	}

	logger.Info("Plan loaded.", "files", len(files), "modules", len(model.Modules), "scheduler_block", model.Scheduler != nil)
	return model, NewConverter(), nil
}
