package scene

import (
	"fmt"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// RootTag is the type tag of the scene root.
const RootTag = "Root"

// Scene is the application context around one entity tree: the root, the
// identity index, the capability handlers and the deferred command queue.
// Systems, the editor and the file loader receive it explicitly.
type Scene struct {
	root     *Entity
	index    *intmap.Map[ID, *Entity]
	handlers []Handler
	types    *TypeRegistry
	commands *Commands
	logger   *zap.Logger
	stats    sceneStats
}

type sceneStats struct {
	propagations int64
	sweeps       int64
	freed        int64
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger used for sweeps, skipped records and command
// failures. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scene) { s.logger = logger }
}

// WithTypes sets the type registry used by Deserialize.
func WithTypes(types *TypeRegistry) Option {
	return func(s *Scene) { s.types = types }
}

// New creates an empty scene with a fresh root entity.
func New(opts ...Option) *Scene {
	s := &Scene{
		index:    intmap.New[ID, *Entity](256),
		commands: NewCommands(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.types == nil {
		s.types = NewTypeRegistry()
	}

	s.root = NewEntity(RootTag)
	s.root.flags &^= FlagSerializable
	s.root.scene = s
	s.enter(s.root)
	return s
}

func (s *Scene) Root() *Entity        { return s.root }
func (s *Scene) Types() *TypeRegistry { return s.types }
func (s *Scene) Commands() *Commands  { return s.commands }
func (s *Scene) Logger() *zap.Logger  { return s.logger }
func (s *Scene) Handlers() []Handler  { return s.handlers }

// Len returns the number of entities in the tree, root included.
func (s *Scene) Len() int { return s.index.Len() }

// Find returns the live entity with the given id, or nil.
func (s *Scene) Find(id ID) *Entity {
	e, ok := s.index.Get(id)
	if !ok || e.freed {
		return nil
	}
	return e
}

// Resolve is Find with an ErrMissingIdentity error for absent ids.
func (s *Scene) Resolve(id ID) (*Entity, error) {
	if e := s.Find(id); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("entity %d: %w", id, ErrMissingIdentity)
}

// Add attaches e under the scene root.
func (s *Scene) Add(e *Entity) error {
	return e.SetParent(s.root)
}

// RegisterHandler adds h and offers it every entity already in the tree.
func (s *Scene) RegisterHandler(h Handler) {
	s.handlers = append(s.handlers, h)
	s.root.Walk(func(e *Entity) { h.TryAdd(e) }, false)
}

// FindRegistry returns the first registered handler that is a *Registry[T].
func FindRegistry[T any](s *Scene) *Registry[T] {
	for _, h := range s.handlers {
		if r, ok := h.(*Registry[T]); ok {
			return r
		}
	}
	return nil
}

func (s *Scene) enter(e *Entity) {
	if prev, ok := s.index.Get(e.id); ok && prev != e {
		s.logger.Warn("entity id already indexed, replacing",
			zap.Uint32("id", uint32(e.id)),
			zap.String("previous", prev.name),
			zap.String("entity", e.name))
	}
	s.index.Put(e.id, e)
	s.offer(e)
}

func (s *Scene) offer(e *Entity) {
	for _, h := range s.handlers {
		h.TryAdd(e)
	}
}

func (s *Scene) exit(e *Entity) {
	for _, h := range s.handlers {
		h.Remove(e)
	}
	if cur, ok := s.index.Get(e.id); ok && cur == e {
		s.index.Del(e.id)
	}
}

// Sweep detaches and frees every entity marked with Destroy. It must run after
// all systems have read the tree for the frame. The number of freed entities,
// descendants included, is returned.
func (s *Scene) Sweep() int {
	var pending []*Entity
	s.root.Walk(func(e *Entity) {
		if e != s.root && e.destroyQueued && !e.freed {
			pending = append(pending, e)
		}
	}, true)

	freed := 0
	for _, e := range pending {
		if e.freed {
			continue
		}
		if err := e.SetParent(nil); err != nil {
			s.logger.Warn("detach during sweep failed", zap.Uint32("id", uint32(e.id)), zap.Error(err))
			continue
		}
		freed += e.free()
	}

	if freed > 0 {
		s.stats.sweeps++
		s.stats.freed += int64(freed)
		s.logger.Debug("swept entities", zap.Int("freed", freed), zap.Int("remaining", s.Len()))
	}
	return freed
}

// Stats is a snapshot of the scene counters.
type Stats struct {
	Entities     int
	Propagations int64
	Sweeps       int64
	Freed        int64
}

func (s *Scene) Stats() Stats {
	return Stats{
		Entities:     s.Len(),
		Propagations: s.stats.propagations,
		Sweeps:       s.stats.sweeps,
		Freed:        s.stats.freed,
	}
}
