package spatial

import (
	"fmt"
	"sort"
	"sync"
)

// Body is the state of one entity.
type Body struct {
	ID     string
	Name   string
	Pos    Vec
	Health float64
}

// World is a small in-memory entity store. Nodes reach it through the
// closures the Module captures; the graph engine never sees it.
type World struct {
	mu     sync.RWMutex
	bodies map[string]*Body
	byName map[string]string
	nextID int
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		bodies: make(map[string]*Body),
		byName: make(map[string]string),
	}
}

// Spawn adds an entity and returns its id. Names are unique.
func (w *World) Spawn(name string, pos Vec, health float64) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.byName[name]; exists {
		return "", fmt.Errorf("entity named %q already exists", name)
	}
	w.nextID++
	id := fmt.Sprintf("e%d", w.nextID)
	w.bodies[id] = &Body{ID: id, Name: name, Pos: pos, Health: health}
	w.byName[name] = id
	return id, nil
}

// Lookup returns the entity with the given id.
func (w *World) Lookup(id string) (Body, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// Find returns the entity with the given name.
func (w *World) Find(name string) (Body, bool) {
	w.mu.RLock()
	id, ok := w.byName[name]
	w.mu.RUnlock()
	if !ok {
		return Body{}, false
	}
	return w.Lookup(id)
}

// Damage subtracts amount from the health of every entity within radius of
// center and returns the ids hit, sorted.
func (w *World) Damage(center Vec, radius, amount float64) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var hit []string
	for id, b := range w.bodies {
		if b.Pos.Sub(center).Len() <= radius {
			b.Health -= amount
			hit = append(hit, id)
		}
	}
	sort.Strings(hit)
	return hit
}

// Bodies returns a snapshot of every entity sorted by id.
func (w *World) Bodies() []Body {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
