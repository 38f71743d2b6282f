package spatial

import (
	"fmt"
	"math"
	"reflect"

	"github.com/vk/fxgraph/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Vec is a point or displacement on the 2D play field.
type Vec struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v * f.
func (v Vec) Scale(f float64) Vec { return Vec{X: v.X * f, Y: v.Y * f} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Unit returns v scaled to length one, or the zero vector.
func (v Vec) Unit() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return v.Scale(1 / l)
}

// EntityRef identifies an entity in a World.
type EntityRef struct {
	ID string
}

// coordsType is the structural form positions and directions convert to.
var coordsType = cty.Tuple([]cty.Type{cty.Number, cty.Number})

var (
	// Position is a location on the play field.
	Position = cty.CapsuleWithOps("position", reflect.TypeOf(Vec{}), vecOps("position"))
	// Direction is a unit vector.
	Direction = cty.CapsuleWithOps("direction", reflect.TypeOf(Vec{}), vecOps("direction"))
	// Entity refers to something living in the world.
	Entity = cty.CapsuleWithOps("entity", reflect.TypeOf(EntityRef{}), &cty.CapsuleOps{
		GoString: func(v interface{}) string {
			return fmt.Sprintf("entity(%q)", v.(*EntityRef).ID)
		},
		RawEquals: func(a, b interface{}) bool {
			return *a.(*EntityRef) == *b.(*EntityRef)
		},
		ConversionTo: func(src cty.Type) func(cty.Value, cty.Path) (interface{}, error) {
			if !src.Equals(cty.String) {
				return nil
			}
			return func(v cty.Value, _ cty.Path) (interface{}, error) {
				return &EntityRef{ID: v.AsString()}, nil
			}
		},
		ConversionFrom: func(dst cty.Type) func(interface{}, cty.Path) (cty.Value, error) {
			if !dst.Equals(cty.String) {
				return nil
			}
			return func(v interface{}, _ cty.Path) (cty.Value, error) {
				return cty.StringVal(v.(*EntityRef).ID), nil
			}
		},
	})
)

// vecOps lets a vector capsule be written as [x, y] or {x = .., y = ..} at
// the edges of the system, and rendered back as a two element tuple.
func vecOps(name string) *cty.CapsuleOps {
	return &cty.CapsuleOps{
		GoString: func(v interface{}) string {
			p := v.(*Vec)
			return fmt.Sprintf("%s(%g, %g)", name, p.X, p.Y)
		},
		RawEquals: func(a, b interface{}) bool {
			return *a.(*Vec) == *b.(*Vec)
		},
		ConversionTo: func(src cty.Type) func(cty.Value, cty.Path) (interface{}, error) {
			switch {
			case src.IsTupleType() || src.IsListType():
				return func(v cty.Value, path cty.Path) (interface{}, error) {
					if v.LengthInt() != 2 {
						return nil, path.NewErrorf("a %s needs exactly two coordinates", name)
					}
					return vecFromElems(v.Index(cty.NumberIntVal(0)), v.Index(cty.NumberIntVal(1)), path)
				}
			case src.IsObjectType() && src.HasAttribute("x") && src.HasAttribute("y"):
				return func(v cty.Value, path cty.Path) (interface{}, error) {
					return vecFromElems(v.GetAttr("x"), v.GetAttr("y"), path)
				}
			}
			return nil
		},
		ConversionFrom: func(dst cty.Type) func(interface{}, cty.Path) (cty.Value, error) {
			if !dst.Equals(coordsType) {
				return nil
			}
			return func(v interface{}, _ cty.Path) (cty.Value, error) {
				p := v.(*Vec)
				return cty.TupleVal([]cty.Value{cty.NumberFloatVal(p.X), cty.NumberFloatVal(p.Y)}), nil
			}
		},
	}
}

func vecFromElems(x, y cty.Value, path cty.Path) (*Vec, error) {
	var out Vec
	for i, c := range []cty.Value{x, y} {
		n, err := convert.Convert(c, cty.Number)
		if err != nil {
			return nil, path.NewError(err)
		}
		if n.IsNull() || !n.IsKnown() {
			return nil, path.NewErrorf("coordinate %d must be a known number", i)
		}
		f, _ := n.AsBigFloat().Float64()
		if i == 0 {
			out.X = f
		} else {
			out.Y = f
		}
	}
	return &out, nil
}

// PositionVal wraps a position.
func PositionVal(x, y float64) cty.Value {
	return cty.CapsuleVal(Position, &Vec{X: x, Y: y})
}

// DirectionVal wraps a direction, normalising it to unit length.
func DirectionVal(x, y float64) cty.Value {
	u := Vec{X: x, Y: y}.Unit()
	return cty.CapsuleVal(Direction, &u)
}

// EntityVal wraps an entity reference.
func EntityVal(id string) cty.Value {
	return cty.CapsuleVal(Entity, &EntityRef{ID: id})
}

// VecOf unwraps a position or direction value.
func VecOf(v cty.Value) (Vec, error) {
	p, err := node.Capsule[Vec](v)
	if err != nil {
		return Vec{}, err
	}
	return *p, nil
}

// EntityOf unwraps an entity value.
func EntityOf(v cty.Value) (EntityRef, error) {
	p, err := node.Capsule[EntityRef](v)
	if err != nil {
		return EntityRef{}, err
	}
	return *p, nil
}
