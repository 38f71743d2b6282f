package node

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

func noop(context.Context, Call) (Values, error) { return Values{}, nil }

func TestNewDefinition(t *testing.T) {
	t.Run("valid definition normalises directions", func(t *testing.T) {
		def, err := NewDefinition(Definition{
			ID:      "double",
			Inputs:  []port.Descriptor{{Name: "in", Type: cty.Number}},
			Outputs: []port.Descriptor{{Name: "out", Type: cty.Number}},
			Eval:    noop,
		})
		require.NoError(t, err)

		in, ok := def.Input("in")
		require.True(t, ok)
		assert.Equal(t, port.Input, in.Direction)

		out, ok := def.Output("out")
		require.True(t, ok)
		assert.Equal(t, port.Output, out.Direction)

		_, ok = def.Input("out")
		assert.False(t, ok, "input and output namespaces are independent")
		assert.False(t, def.HasConfig())
	})

	t.Run("the same name may appear as input and output", func(t *testing.T) {
		_, err := NewDefinition(Definition{
			ID:      "passthrough",
			Inputs:  []port.Descriptor{port.In("v", cty.String)},
			Outputs: []port.Descriptor{port.Out("v", cty.String)},
			Eval:    noop,
		})
		assert.NoError(t, err)
	})

	t.Run("error cases", func(t *testing.T) {
		tests := []struct {
			name    string
			def     Definition
			wantErr string
		}{
			{
				name:    "no outputs",
				def:     Definition{ID: "sink", Inputs: []port.Descriptor{port.In("v", cty.Number)}, Eval: noop},
				wantErr: "at least one output",
			},
			{
				name:    "missing eval",
				def:     Definition{ID: "x", Outputs: []port.Descriptor{port.Out("v", cty.Number)}},
				wantErr: "missing evaluation function",
			},
			{
				name: "duplicate input",
				def: Definition{
					ID:      "x",
					Inputs:  []port.Descriptor{port.In("a", cty.Number), port.In("a", cty.String)},
					Outputs: []port.Descriptor{port.Out("v", cty.Number)},
					Eval:    noop,
				},
				wantErr: `duplicate input port "a"`,
			},
			{
				name:    "untyped port",
				def:     Definition{ID: "x", Outputs: []port.Descriptor{{Name: "v"}}, Eval: noop},
				wantErr: `output port "v" has no type`,
			},
			{
				name:    "dotted id",
				def:     Definition{ID: "a.b", Outputs: []port.Descriptor{port.Out("v", cty.Number)}, Eval: noop},
				wantErr: "invalid definition id",
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewDefinition(tt.def)
				assert.ErrorContains(t, err, tt.wantErr)
			})
		}
	})
}

func TestMustDefinitionPanics(t *testing.T) {
	assert.Panics(t, func() { MustDefinition(Definition{ID: "bad"}) })
}

func TestCallGet(t *testing.T) {
	c := Call{Inputs: Values{"a": cty.NumberIntVal(1)}}

	v, err := c.Get("a")
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(1)))

	_, err = c.Get("b")
	assert.ErrorIs(t, err, ErrMissingInput)
}

type vec struct{ X, Y float64 }

func TestCodec(t *testing.T) {
	t.Run("primitives", func(t *testing.T) {
		v, err := Encode(2.5, cty.Number)
		require.NoError(t, err)

		var f float64
		require.NoError(t, Decode(v, &f))
		assert.Equal(t, 2.5, f)
	})

	t.Run("capsules", func(t *testing.T) {
		ty := cty.Capsule("vec", reflect.TypeOf(vec{}))
		v, err := Encode(&vec{X: 1, Y: 2}, ty)
		require.NoError(t, err)

		got, err := Capsule[vec](v)
		require.NoError(t, err)
		assert.Equal(t, vec{X: 1, Y: 2}, *got)

		var out vec
		require.NoError(t, Decode(v, &out))
		assert.Equal(t, 1.0, out.X)
	})

	t.Run("capsule encoding rejects non-pointers", func(t *testing.T) {
		ty := cty.Capsule("vec", reflect.TypeOf(vec{}))
		_, err := Encode(vec{}, ty)
		assert.Error(t, err)
	})

	t.Run("capsule accessor rejects primitives", func(t *testing.T) {
		_, err := Capsule[vec](cty.NumberIntVal(1))
		assert.Error(t, err)
	})
}
