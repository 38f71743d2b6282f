package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. A nil cfg
// means DefaultConfig. It returns the app, its output buffer and its log
// buffer.
func SetupAppTest(t *testing.T, cfg *Config, modules ...registry.Module) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	cfg.LogLevel = "debug"

	out, logs := &SafeBuffer{}, &SafeBuffer{}
	testApp, err := NewApp(out, logs, cfg, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("FXGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return testApp, out, logs
}
