package scene

import (
	"iter"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kamstrup/intmap"
)

// Handler observes entities entering and leaving a scene. The scene's enter
// and exit broadcasts are the only callers.
type Handler interface {
	// TryAdd indexes e if it has the handler's capability and reports whether
	// it was newly indexed.
	TryAdd(e *Entity) bool
	// Remove drops e if it is indexed.
	Remove(e *Entity)
	Name() string
	Len() int
}

// CastFunc extracts a capability view from an entity.
type CastFunc[T any] func(e *Entity) (T, bool)

type registryEntry[T any] struct {
	entity *Entity
	value  T
}

// Registry is a typed index from entity to capability view. It never holds an
// entity that has left the scene.
type Registry[T any] struct {
	name    string
	cast    CastFunc[T]
	entries []registryEntry[T]
	slots   *intmap.Map[ID, int]
	subs    []Handler

	// OnAdd runs after e is indexed.
	OnAdd func(e *Entity, v T)
	// OnRemove runs before e is dropped, while Get still returns it.
	OnRemove func(e *Entity, v T)
}

// NewRegistry creates a registry. A nil cast matches entities that carry a
// component assignable to T.
func NewRegistry[T any](name string, cast CastFunc[T]) *Registry[T] {
	r := &Registry[T]{}
	r.setup(name, cast)
	return r
}

func (r *Registry[T]) setup(name string, cast CastFunc[T]) {
	if cast == nil {
		cast = Component[T]
	}
	if name == "" {
		var zero T
		name = reflect.TypeOf(&zero).Elem().String()
	}
	r.name = name
	r.cast = cast
	r.entries = r.entries[:0]
	r.slots = intmap.New[ID, int](64)
}

// Init binds a registry declared by value, for example as a system field, to
// s with the default cast. Called by the Scheduler during registration.
func (r *Registry[T]) Init(s *Scene) {
	r.setup(r.name, r.cast)
	s.RegisterHandler(r)
}

func (r *Registry[T]) Name() string { return r.name }
func (r *Registry[T]) Len() int     { return len(r.entries) }

// AddSub nests h below r. Sub-registries see every entity r sees, whether or
// not r's own cast succeeds.
func (r *Registry[T]) AddSub(h Handler) {
	r.subs = append(r.subs, h)
}

func (r *Registry[T]) Subs() []Handler { return r.subs }

func (r *Registry[T]) TryAdd(e *Entity) bool {
	for _, sub := range r.subs {
		sub.TryAdd(e)
	}

	if _, ok := r.slots.Get(e.id); ok {
		return false
	}
	v, ok := r.cast(e)
	if !ok {
		return false
	}

	r.slots.Put(e.id, len(r.entries))
	r.entries = append(r.entries, registryEntry[T]{entity: e, value: v})
	if r.OnAdd != nil {
		r.OnAdd(e, v)
	}
	return true
}

func (r *Registry[T]) Remove(e *Entity) {
	for _, sub := range r.subs {
		sub.Remove(e)
	}

	slot, ok := r.slots.Get(e.id)
	if !ok || r.entries[slot].entity != e {
		return
	}
	if r.OnRemove != nil {
		r.OnRemove(e, r.entries[slot].value)
	}

	last := len(r.entries) - 1
	if slot != last {
		r.entries[slot] = r.entries[last]
		r.slots.Put(r.entries[slot].entity.id, slot)
	}
	r.entries[last] = registryEntry[T]{}
	r.entries = r.entries[:last]
	r.slots.Del(e.id)
}

// Get returns the capability view indexed for id.
func (r *Registry[T]) Get(id ID) (T, bool) {
	slot, ok := r.slots.Get(id)
	if !ok {
		var zero T
		return zero, false
	}
	return r.entries[slot].value, true
}

func (r *Registry[T]) Contains(id ID) bool {
	_, ok := r.slots.Get(id)
	return ok
}

// All iterates over indexed entities and their capability views.
func (r *Registry[T]) All() iter.Seq2[*Entity, T] {
	return func(yield func(*Entity, T) bool) {
		for i := 0; i < len(r.entries); i++ {
			if !yield(r.entries[i].entity, r.entries[i].value) {
				return
			}
		}
	}
}

// Values iterates over capability views only.
func (r *Registry[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(r.entries); i++ {
			if !yield(r.entries[i].value) {
				return
			}
		}
	}
}

// Enabled is All restricted to hierarchy-enabled entities.
func (r *Registry[T]) Enabled() iter.Seq2[*Entity, T] {
	return func(yield func(*Entity, T) bool) {
		for e, v := range r.All() {
			if e.enabledHierarchy && !yield(e, v) {
				return
			}
		}
	}
}

// Pose is a copy of an entity's world state that can cross goroutines.
type Pose struct {
	ID      ID
	World   mgl32.Mat4
	Enabled bool
}

// Snapshot appends the world pose of every indexed entity to dst. Worker
// goroutines read the snapshot, never the entities.
func (r *Registry[T]) Snapshot(dst []Pose) []Pose {
	for _, entry := range r.entries {
		dst = append(dst, Pose{
			ID:      entry.entity.id,
			World:   entry.entity.worldMatrix,
			Enabled: entry.entity.enabledHierarchy,
		})
	}
	return dst
}
