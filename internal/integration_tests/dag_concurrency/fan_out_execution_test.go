package integration_tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// TestDagConcurrency_FanOutExecution validates that pure nodes in a fan-out
// structure run concurrently when the app has more than one worker.
func TestDagConcurrency_FanOutExecution(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	files := map[string]string{
		"source.hcl":  testutil.SourceManifest,
		"sleeper.hcl": testutil.SleeperManifest,
		"sum.hcl":     testutil.SumManifest,
	}
	sleeper := testutil.NewMockSleeperModule(100 * time.Millisecond)
	result := testutil.RunIntegrationTest(t, files, testutil.NewCountingModule(), sleeper)
	require.NoError(t, result.Err)
	reg := result.App.Registry()

	g := graph.New()
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "source"), "A", graph.WithConfig(cty.NumberIntVal(1))))
	for _, id := range []string{"B", "C"} {
		require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "sleeper"), id))
		require.NoError(t, g.Connect("A", "out", id, "in"))
	}
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "sum"), "D"))
	require.NoError(t, g.Connect("B", "out", "D", "a"))
	require.NoError(t, g.Connect("C", "out", "D", "b"))

	// --- Act ---
	res, err := result.App.Evaluate(context.Background(), g, nil, port.Ref{Instance: "D", Port: "out"})

	// --- Assert ---
	require.NoError(t, err)
	v, _ := res.Get("D", "out")
	require.True(t, v.RawEquals(cty.NumberIntVal(2)), "got %#v", v)

	records := sleeper.ExecutionTimes()
	require.Len(t, records, 2)
	recordB, recordC := records["B"], records["C"]
	require.True(t, recordB.Start.Before(recordC.End), "B should start before C finishes")
	require.True(t, recordC.Start.Before(recordB.End), "C should start before B finishes")
}
