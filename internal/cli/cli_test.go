package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/graph"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestNodes(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "nodes")
	require.NoError(t, err)
	assert.Contains(t, out, "double")
	assert.Contains(t, out, "    input  in: number\n")
	assert.Contains(t, out, "projectile (pure)\n")
	assert.Contains(t, out, "    input  direction: direction\n")
	assert.Contains(t, out, "    config: object({damage=number,radius=number})\n")
}

func TestScenes(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "scenes")
	require.NoError(t, err)
	assert.Contains(t, out, "double     A constant 21 fed through double.\n")
	assert.Contains(t, out, "explosion")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "validate", "double")
	require.NoError(t, err)
	assert.Equal(t, "scene \"double\" is valid\n", out)

	_, err = execute(t, "validate", "cycle")
	exitErr := requireExitCode(t, err, 1)
	assert.Equal(t, "cycle detected: A -> B -> A", exitErr.Message)
}

func TestEval(t *testing.T) {
	t.Parallel()

	t.Run("default wants", func(t *testing.T) {
		out, err := execute(t, "eval", "double")
		require.NoError(t, err)
		assert.Equal(t, "d.out = 42\n", out)
	})

	t.Run("slots and wants", func(t *testing.T) {
		out, err := execute(t, "eval", "ratio", "--set", "divisor=4", "--want", "q.quotient")
		require.NoError(t, err)
		assert.Equal(t, "q.quotient = 2.5\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "eval", "shot", "--set", "aim=[0, 1]", "-o", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"landing.coords": [0, 10]}`, out)
	})

	t.Run("unbound slot", func(t *testing.T) {
		_, err := execute(t, "eval", "shot")
		var unbound *graph.UnboundInputError
		require.True(t, errors.As(err, &unbound), "got %v", err)
	})

	t.Run("malformed assignment", func(t *testing.T) {
		_, err := execute(t, "eval", "ratio", "--set", "divisor")
		requireExitCode(t, err, 2)
	})

	t.Run("invalid output format", func(t *testing.T) {
		_, err := execute(t, "eval", "double", "-o", "xml")
		requireExitCode(t, err, 2)
	})
}

func TestGraph(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "graph", "double")
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR\n")
	assert.Contains(t, out, `c -- "value:in" --> d`)

	t.Run("failed pass is highlighted", func(t *testing.T) {
		out, err := execute(t, "graph", "ratio", "--eval", "--set", "divisor=0")
		assert.ErrorIs(t, err, graph.ErrEvaluation)
		assert.Contains(t, out, "class q failed;")
		assert.Contains(t, out, "class ten evaluated;")
	})
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "suggest", "--steps", "2", "--limit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "const -> double\n    needs configuration\n")
}

func TestFlags(t *testing.T) {
	t.Parallel()

	t.Run("invalid log level", func(t *testing.T) {
		_, err := execute(t, "nodes", "--log-level", "loud")
		exitErr := requireExitCode(t, err, 2)
		assert.Contains(t, exitErr.Message, "invalid log-level")
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := execute(t, "nodes", "--this-is-not-a-valid-flag")
		exitErr := requireExitCode(t, err, 2)
		assert.Contains(t, exitErr.Message, "unknown flag: --this-is-not-a-valid-flag")
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fxgraph.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`output = "json"`), 0o600))

		out, err := execute(t, "eval", "double", "--config", path)
		require.NoError(t, err)
		assert.JSONEq(t, `{"d.out": 42}`, out)

		out, err = execute(t, "eval", "double", "--config", path, "-o", "text")
		require.NoError(t, err)
		assert.Equal(t, "d.out = 42\n", out, "flags win over the config file")
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := execute(t, "nodes", "--config", filepath.Join(t.TempDir(), "nope.hcl"))
		requireExitCode(t, err, 2)
	})
}
