// Package spatial provides the game-facing nodes: entity lookup, aiming,
// projectiles and explosions, over the position, direction and entity
// value types.
//
// Port shapes live in manifest.hcl; this package registers the value types
// the manifest refers to and the Go handlers it binds to.
package spatial

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/vk/fxgraph/internal/ctxlog"
	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct {
	World *World
}

// New returns a module bound to w.
func New(w *World) *Module {
	return &Module{World: w}
}

// Register registers the value types, the handlers and the embedded manifest.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("position", Position)
	r.RegisterType("direction", Direction)
	r.RegisterType("entity", Entity)

	r.RegisterHandler("spatial.entity", &registry.Handler{
		Eval:    m.entity,
		Inputs:  []port.Descriptor{},
		Outputs: []port.Descriptor{port.Out("entity", Entity)},
	})
	r.RegisterHandler("spatial.location_of", &registry.Handler{
		Eval:    m.locationOf,
		Inputs:  []port.Descriptor{port.In("entity", Entity)},
		Outputs: []port.Descriptor{port.Out("position", Position)},
	})
	r.RegisterHandler("spatial.aim", &registry.Handler{
		Eval:    aim,
		Inputs:  []port.Descriptor{port.In("from", Position), port.In("to", Position)},
		Outputs: []port.Descriptor{port.Out("direction", Direction)},
	})
	r.RegisterHandler("spatial.projectile", &registry.Handler{
		Eval:    projectile,
		Inputs:  []port.Descriptor{port.In("origin", Position), port.In("direction", Direction)},
		Outputs: []port.Descriptor{port.Out("impact", Position)},
	})
	r.RegisterHandler("spatial.explosion", &registry.Handler{
		Eval:    m.explosion,
		Inputs:  []port.Descriptor{port.In("center", Position)},
		Outputs: []port.Descriptor{port.Out("hits", cty.Number)},
	})
	r.RegisterHandler("spatial.position_coords", &registry.Handler{
		Eval:    positionCoords,
		Inputs:  []port.Descriptor{port.In("position", Position)},
		Outputs: []port.Descriptor{port.Out("coords", coordsType)},
	})

	r.AddManifestSource("modules/spatial/manifest.hcl", manifest)
}

func (m *Module) entity(_ context.Context, call node.Call) (node.Values, error) {
	name := call.Config.AsString()
	b, ok := m.World.Find(name)
	if !ok {
		return nil, fmt.Errorf("no entity named %q", name)
	}
	return node.Values{"entity": EntityVal(b.ID)}, nil
}

func (m *Module) locationOf(_ context.Context, call node.Call) (node.Values, error) {
	ref, err := EntityOf(call.Inputs["entity"])
	if err != nil {
		return nil, err
	}
	b, ok := m.World.Lookup(ref.ID)
	if !ok {
		return nil, fmt.Errorf("entity %q no longer exists", ref.ID)
	}
	return node.Values{"position": PositionVal(b.Pos.X, b.Pos.Y)}, nil
}

func aim(_ context.Context, call node.Call) (node.Values, error) {
	from, err := VecOf(call.Inputs["from"])
	if err != nil {
		return nil, err
	}
	to, err := VecOf(call.Inputs["to"])
	if err != nil {
		return nil, err
	}
	d := to.Sub(from)
	if d.Len() == 0 {
		return nil, fmt.Errorf("cannot aim at the origin itself")
	}
	return node.Values{"direction": DirectionVal(d.X, d.Y)}, nil
}

func projectile(_ context.Context, call node.Call) (node.Values, error) {
	origin, err := VecOf(call.Inputs["origin"])
	if err != nil {
		return nil, err
	}
	dir, err := VecOf(call.Inputs["direction"])
	if err != nil {
		return nil, err
	}
	var rng float64
	if err := node.Decode(call.Config, &rng); err != nil {
		return nil, err
	}
	impact := origin.Add(dir.Unit().Scale(rng))
	return node.Values{"impact": PositionVal(impact.X, impact.Y)}, nil
}

type blast struct {
	Radius float64 `cty:"radius"`
	Damage float64 `cty:"damage"`
}

func (m *Module) explosion(ctx context.Context, call node.Call) (node.Values, error) {
	center, err := VecOf(call.Inputs["center"])
	if err != nil {
		return nil, err
	}
	var b blast
	if err := node.Decode(call.Config, &b); err != nil {
		return nil, err
	}
	hit := m.World.Damage(center, b.Radius, b.Damage)
	ctxlog.FromContext(ctx).Debug("Explosion applied.", "instance", call.Instance, "center", center, "hits", hit)
	return node.Values{"hits": cty.NumberIntVal(int64(len(hit)))}, nil
}

func positionCoords(_ context.Context, call node.Call) (node.Values, error) {
	coords, err := convert.Convert(call.Inputs["position"], coordsType)
	if err != nil {
		return nil, err
	}
	return node.Values{"coords": coords}, nil
}
