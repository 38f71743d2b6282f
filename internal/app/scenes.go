package app

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ErrUnknownScene is returned when no built-in scene has the requested name.
var ErrUnknownScene = errors.New("unknown scene")

// Scene is a named graph built from registered definitions.
type Scene struct {
	Name        string
	Description string
	// Want lists the outputs evaluated when the caller asks for none.
	Want  []port.Ref
	build func(b *sceneBuilder)
}

// Build instantiates the scene against r.
func (s Scene) Build(r *registry.Registry) (*graph.Graph, error) {
	b := &sceneBuilder{r: r, g: graph.New()}
	s.build(b)
	if b.err != nil {
		return nil, fmt.Errorf("scene %q: %w", s.Name, b.err)
	}
	return b.g, nil
}

// Wanted parses "instance.port" references, falling back to s.Want when
// wants is empty.
func (s Scene) Wanted(wants []string) ([]port.Ref, error) {
	if len(wants) == 0 {
		return s.Want, nil
	}
	out := make([]port.Ref, 0, len(wants))
	for _, w := range wants {
		r, err := port.ParseRef(w)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// sceneBuilder keeps the first wiring error so scene bodies stay linear.
type sceneBuilder struct {
	r   *registry.Registry
	g   *graph.Graph
	err error
}

func (b *sceneBuilder) add(defID, id string, config ...cty.Value) {
	if b.err != nil {
		return
	}
	def, ok := b.r.Definition(defID)
	if !ok {
		b.err = fmt.Errorf("unknown node definition %q", defID)
		return
	}
	var opts []graph.InstanceOption
	if len(config) > 0 {
		opts = append(opts, graph.WithConfig(config[0]))
	}
	b.err = b.g.AddInstance(def, id, opts...)
}

func (b *sceneBuilder) connect(from, to string) {
	if b.err != nil {
		return
	}
	f, err := port.ParseRef(from)
	if err != nil {
		b.err = err
		return
	}
	t, err := port.ParseRef(to)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.g.Connect(f.Instance, f.Port, t.Instance, t.Port)
}

func (b *sceneBuilder) bind(slot, to string) {
	if b.err != nil {
		return
	}
	t, err := port.ParseRef(to)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.g.BindExternal(slot, t.Instance, t.Port)
}

func ref(instance, p string) port.Ref { return port.Ref{Instance: instance, Port: p} }

var builtinScenes = []Scene{
	{
		Name:        "double",
		Description: "A constant 21 fed through double.",
		Want:        []port.Ref{ref("d", "out")},
		build: func(b *sceneBuilder) {
			b.add("const", "c", cty.NumberIntVal(21))
			b.add("double", "d")
			b.connect("c.value", "d.in")
		},
	},
	{
		Name:        "ratio",
		Description: "Divides 10 by the external slot \"divisor\" and labels the result.",
		Want:        []port.Ref{ref("label", "out")},
		build: func(b *sceneBuilder) {
			b.add("const", "ten", cty.NumberIntVal(10))
			b.add("divide", "q")
			b.add("number_to_string", "label")
			b.connect("ten.value", "q.a")
			b.bind("divisor", "q.b")
			b.connect("q.quotient", "label.in")
		},
	},
	{
		Name:        "shot",
		Description: "A projectile fired from the hero along the external slot \"aim\".",
		Want:        []port.Ref{ref("landing", "coords")},
		build: func(b *sceneBuilder) {
			b.add("entity", "hero", cty.StringVal("hero"))
			b.add("location_of", "hero_at")
			b.add("projectile", "shot", cty.NumberIntVal(10))
			b.add("position_coords", "landing")
			b.connect("hero.entity", "hero_at.entity")
			b.connect("hero_at.position", "shot.origin")
			b.bind("aim", "shot.direction")
			b.connect("shot.impact", "landing.position")
		},
	},
	{
		Name:        "explosion",
		Description: "The hero fires at the goblin; the blast damages everything within 2 units.",
		Want:        []port.Ref{ref("blast", "hits")},
		build: func(b *sceneBuilder) {
			b.add("entity", "hero", cty.StringVal("hero"))
			b.add("entity", "goblin", cty.StringVal("goblin"))
			b.add("location_of", "hero_at")
			b.add("location_of", "goblin_at")
			b.add("aim", "aim")
			b.add("projectile", "shot", cty.NumberIntVal(10))
			b.add("explosion", "blast", cty.ObjectVal(map[string]cty.Value{
				"radius": cty.NumberIntVal(2),
				"damage": cty.NumberIntVal(25),
			}))
			b.connect("hero.entity", "hero_at.entity")
			b.connect("goblin.entity", "goblin_at.entity")
			b.connect("hero_at.position", "aim.from")
			b.connect("goblin_at.position", "aim.to")
			b.connect("hero_at.position", "shot.origin")
			b.connect("aim.direction", "shot.direction")
			b.connect("shot.impact", "blast.center")
		},
	},
	{
		Name:        "cycle",
		Description: "Two doubles feeding each other; never valid.",
		build: func(b *sceneBuilder) {
			b.add("double", "A")
			b.add("double", "B")
			b.connect("A.out", "B.in")
			b.connect("B.out", "A.in")
		},
	},
	{
		Name:        "greeting",
		Description: "Prints the value of the USER environment variable.",
		Want:        []port.Ref{ref("shout", "value")},
		build: func(b *sceneBuilder) {
			b.add("env", "user", cty.StringVal("USER"))
			b.add("print", "shout")
			b.connect("user.value", "shout.value")
		},
	},
}

// Scenes returns the built-in scenes sorted by name.
func (a *App) Scenes() []Scene {
	out := make([]Scene, 0, len(a.scenes))
	for _, s := range a.scenes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Scene looks up a built-in scene by name.
func (a *App) Scene(name string) (Scene, error) {
	s, ok := a.scenes[name]
	if !ok {
		return Scene{}, fmt.Errorf("%w %q", ErrUnknownScene, name)
	}
	return s, nil
}
