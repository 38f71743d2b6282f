package registry

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/fxgraph/internal/ctxlog"
	"github.com/vk/fxgraph/internal/fsutil"
	"github.com/vk/fxgraph/internal/node"
)

type manifestSource struct {
	filename string
	src      []byte
}

// AddManifestSource queues HCL manifest source for the next Bind. Modules use
// it from Register to ship manifests embedded in the binary.
func (r *Registry) AddManifestSource(filename string, src []byte) {
	r.pending = append(r.pending, manifestSource{filename: filename, src: src})
}

// LoadManifests queues every .hcl file found under root in fsys.
func (r *Registry) LoadManifests(ctx context.Context, fsys fs.FS, root string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading manifests from modules path...", "path", root)

	filePaths, err := fsutil.FindFiles(fsys, root, ".hcl")
	if err != nil {
		logger.Error("Failed to walk modules directory", "path", root, "error", err)
		return fmt.Errorf("failed to walk modules directory %s: %w", root, err)
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found in path", "path", root)
		return nil
	}
	logger.Debug("Found HCL files to load", "files", filePaths)

	for _, p := range filePaths {
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read manifest %s: %w", p, err)
		}
		r.AddManifestSource(p, src)
	}
	return nil
}

// Bind parses every queued manifest, checks it against the registered
// handlers and turns it into a definition.
func (r *Registry) Bind(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	pending := r.pending
	r.pending = nil

	parser := hclparse.NewParser()
	var loaded []*Manifest
	var diags hcl.Diagnostics
	for _, s := range pending {
		file, parseDiags := parser.ParseHCL(s.src, s.filename)
		diags = append(diags, parseDiags...)
		if parseDiags.HasErrors() {
			continue
		}
		manifests, fileDiags := r.parseManifestFile(file)
		diags = append(diags, fileDiags...)
		loaded = append(loaded, manifests...)
		logger.Debug("Successfully loaded manifests from HCL file", "file", s.filename, "nodes", len(manifests))
	}
	if diags.HasErrors() {
		return fmt.Errorf("failed to load node manifests: %w", diags)
	}

	r.manifests = append(r.manifests, loaded...)
	if err := r.ValidateRegistry(ctx); err != nil {
		return err
	}

	for _, m := range loaded {
		h := r.handlers[m.Handler]
		def, err := node.NewDefinition(node.Definition{
			ID:          m.ID,
			Description: m.Description,
			Inputs:      m.Inputs,
			Outputs:     m.Outputs,
			ConfigType:  m.ConfigType,
			Pure:        m.Pure,
			Eval:        h.Eval,
		})
		if err != nil {
			return fmt.Errorf("manifest %s: %w", m.DeclRange, err)
		}
		r.RegisterDefinition(def)
		r.bound[def.ID] = true
	}

	logger.Info("Registry loaded successfully.", "manifests_bound", len(loaded), "definitions", len(r.definitions))
	return nil
}
