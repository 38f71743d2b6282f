// Package testutil holds the harness and mock modules shared by the
// integration tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/app"
	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Out       *app.SafeBuffer
	Err       error
	App       *app.App
}

// RunIntegrationTest writes files (paths relative to a modules directory) to
// a temporary directory and starts an app that loads them as manifests. Only
// the given modules are registered. Startup errors and panics end up in Err.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	modulesDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(modulesDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := app.DefaultConfig()
	cfg.ModulesPath = modulesDir
	cfg.LogLevel = "debug"
	cfg.Workers = 4

	out, logs := &app.SafeBuffer{}, &app.SafeBuffer{}
	res := &HarnessResult{Out: out}

	func() {
		defer func() {
			if r := recover(); r != nil {
				res.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		res.App, res.Err = app.NewApp(out, logs, &cfg, modules...)
	}()

	res.LogOutput = logs.String()
	if os.Getenv("FXGRAPH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
	}
	return res
}

// Definition fetches a bound definition or fails the test.
func Definition(t *testing.T, r *registry.Registry, id string) *node.Definition {
	t.Helper()
	def, ok := r.Definition(id)
	require.True(t, ok, "definition %q is not registered", id)
	return def
}
