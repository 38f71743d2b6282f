package render

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/evaluator"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty-debug/ctydebug"
	"github.com/zclconf/go-cty-yaml"
	"github.com/zclconf/go-cty/cty"
)

type point struct{ X, Y int }

var pointType = cty.CapsuleWithOps("point", reflect.TypeOf(point{}), &cty.CapsuleOps{
	GoString: func(v interface{}) string {
		p := v.(*point)
		return fmt.Sprintf("point(%d, %d)", p.X, p.Y)
	},
})

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	pass := func(_ context.Context, c node.Call) (node.Values, error) {
		return node.Values{"out": c.Inputs["in"]}, nil
	}
	pure := node.MustDefinition(node.Definition{
		ID:      "pass",
		Inputs:  []port.Descriptor{port.In("in", cty.Number)},
		Outputs: []port.Descriptor{port.Out("out", cty.Number)},
		Pure:    true,
		Eval:    pass,
	})
	impure := node.MustDefinition(node.Definition{
		ID:      "log",
		Inputs:  []port.Descriptor{port.In("in", cty.Number)},
		Outputs: []port.Descriptor{port.Out("out", cty.Number)},
		Eval:    pass,
	})

	g := graph.New()
	require.NoError(t, g.AddInstance(pure, "first"))
	require.NoError(t, g.AddInstance(impure, "second-step"))
	require.NoError(t, g.BindExternal("seed", "first", "in"))
	require.NoError(t, g.Connect("first", "out", "second-step", "in"))
	return g
}

func TestMermaid(t *testing.T) {
	g := testGraph(t)

	t.Run("plain", func(t *testing.T) {
		want := strings.Join([]string{
			"graph LR",
			`    slot_seed[/"seed: number"/]`,
			`    first["first<br/>pass"]`,
			`    second_step[["second-step<br/>log"]]`,
			`    slot_seed -. "in" .-> first`,
			`    first -- "out:in" --> second_step`,
			"",
		}, "\n")
		if diff := cmp.Diff(want, Mermaid(g, nil)); diff != "" {
			t.Errorf("Mermaid() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("overlay", func(t *testing.T) {
		out := Mermaid(g, &Overlay{Evaluated: []string{"first", "first"}, Failed: "second-step"})
		assert.Equal(t, 1, strings.Count(out, "class first evaluated;"))
		assert.Contains(t, out, "class second_step failed;")
	})
}

func TestText(t *testing.T) {
	cases := []struct {
		in   cty.Value
		want string
	}{
		{cty.NumberFloatVal(2.5), "2.5"},
		{cty.NumberIntVal(4), "4"},
		{cty.StringVal("hi"), `"hi"`},
		{cty.True, "true"},
		{cty.NullVal(cty.Number), "null"},
		{cty.UnknownVal(cty.String), "(unknown)"},
		{cty.CapsuleVal(pointType, &point{1, 2}), "point(1, 2)"},
		{cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("a")}), `[1,"a"]`},
		{cty.ListVal([]cty.Value{cty.CapsuleVal(pointType, &point{3, 4})}), `["point(3, 4)"]`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Text(tc.in), "%#v", tc.in)
	}
}

func TestWriteResult(t *testing.T) {
	res := evaluator.Result{
		{Instance: "b", Port: "out"}: cty.StringVal("x"),
		{Instance: "a", Port: "out"}: cty.NumberIntVal(2),
		{Instance: "p", Port: "at"}:  cty.CapsuleVal(pointType, &point{1, 2}),
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteResult(&buf, res, FormatText))
		assert.Equal(t, "a.out = 2\nb.out = \"x\"\np.at = point(1, 2)\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteResult(&buf, res, FormatJSON))
		assert.JSONEq(t, `{"a.out": 2, "b.out": "x", "p.at": "point(1, 2)"}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteResult(&buf, res, FormatYAML))

		ty := cty.Object(map[string]cty.Type{"a.out": cty.Number, "b.out": cty.String, "p.at": cty.String})
		got, err := yaml.Unmarshal(buf.Bytes(), ty)
		require.NoError(t, err)
		want := cty.ObjectVal(map[string]cty.Value{
			"a.out": cty.NumberIntVal(2),
			"b.out": cty.StringVal("x"),
			"p.at":  cty.StringVal("point(1, 2)"),
		})
		if diff := cmp.Diff(want, got, ctydebug.CmpOptions); diff != "" {
			t.Errorf("yaml round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.EqualError(t, err, `invalid output format "xml": must be one of text, json, yaml`)
}
