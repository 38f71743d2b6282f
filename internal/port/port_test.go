package port

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type marker struct{}

func TestCompatible(t *testing.T) {
	position := cty.Capsule("position", reflect.TypeOf(marker{}))
	direction := cty.Capsule("direction", reflect.TypeOf(marker{}))

	tests := []struct {
		name string
		out  Descriptor
		in   Descriptor
		want bool
	}{
		{"equal primitives", Out("v", cty.Number), In("v", cty.Number), true},
		{"different primitives", Out("v", cty.Number), In("v", cty.String), false},
		{"same capsule", Out("p", position), In("p", position), true},
		{"distinct capsules over the same go type", Out("p", position), In("d", direction), false},
		{"equal structural types", Out("l", cty.List(cty.Number)), In("l", cty.List(cty.Number)), true},
		{"structural element mismatch", Out("l", cty.List(cty.Number)), In("l", cty.List(cty.String)), false},
		{"input used as source", In("v", cty.Number), In("v", cty.Number), false},
		{"output used as destination", Out("v", cty.Number), Out("v", cty.Number), false},
		{"nil type never matches", Out("v", cty.NilType), In("v", cty.NilType), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatible(tt.out, tt.in))
		})
	}
}

func TestParseRef(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ref, err := ParseRef("double.out")
		require.NoError(t, err)
		assert.Equal(t, Ref{Instance: "double", Port: "out"}, ref)
		assert.Equal(t, "double.out", ref.String())
	})

	t.Run("rejects malformed refs", func(t *testing.T) {
		for _, s := range []string{"", "double", ".out", "double.", "a.b.c"} {
			_, err := ParseRef(s)
			assert.Error(t, err, s)
		}
	})
}

func TestDescriptorString(t *testing.T) {
	assert.Equal(t, "input speed: number", In("speed", cty.Number).String())
	assert.Equal(t, "output out: string", Out("out", cty.String).String())
}
