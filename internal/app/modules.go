package app

import (
	"github.com/vk/fxgraph/internal/registry"
	"github.com/vk/fxgraph/modules/adapt"
	"github.com/vk/fxgraph/modules/arith"
	"github.com/vk/fxgraph/modules/constant"
	"github.com/vk/fxgraph/modules/env_vars"
	"github.com/vk/fxgraph/modules/print"
	"github.com/vk/fxgraph/modules/spatial"
)

// coreModules is the definitive list of all modules that are compiled into
// the fxgraph binary. The spatial nodes operate on w; print writes to the
// app's output.
func (a *App) coreModules() []registry.Module {
	return []registry.Module{
		&constant.Module{},
		&arith.Module{},
		&adapt.Module{},
		&env_vars.Module{},
		&print.Module{Out: a.outW},
		spatial.New(a.world),
	}
}

// seedWorld places the entities the built-in scenes refer to.
func seedWorld(w *spatial.World) error {
	for _, e := range []struct {
		name   string
		pos    spatial.Vec
		health float64
	}{
		{"hero", spatial.Vec{X: 0, Y: 0}, 100},
		{"goblin", spatial.Vec{X: 10, Y: 0}, 50},
		{"bystander", spatial.Vec{X: 11, Y: 1}, 30},
		{"far", spatial.Vec{X: 30, Y: 30}, 10},
	} {
		if _, err := w.Spawn(e.name, e.pos, e.health); err != nil {
			return err
		}
	}
	return nil
}
