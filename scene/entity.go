package scene

import (
	"iter"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// ID is the run-time identity of an entity. IDs are dense, start at 1 and
// survive serialization when a scene is restored with RestoreIDs.
type ID uint32

var nextID atomic.Uint32

func allocID() ID {
	return ID(nextID.Add(1))
}

// reserveID advances the allocator past id so fresh entities never collide
// with a restored identity.
func reserveID(id ID) {
	for {
		cur := nextID.Load()
		if cur >= uint32(id) || nextID.CompareAndSwap(cur, uint32(id)) {
			return
		}
	}
}

// Flags is the editor and serialization bit-set of an entity.
type Flags uint32

const (
	// FlagEditor marks entities owned by editor tooling. They cannot be selected.
	FlagEditor Flags = 1 << iota
	// FlagExcludeFromTree hides the entity from hierarchy views.
	FlagExcludeFromTree
	// FlagSerializable includes the entity in Serialize output. Set by default.
	FlagSerializable

	FlagStaticPosX
	FlagStaticPosY
	FlagStaticPosZ
	FlagStaticRotX
	FlagStaticRotY
	FlagStaticRotZ
	FlagStaticScaleX
	FlagStaticScaleY
	FlagStaticScaleZ
)

const (
	FlagStaticPos   = FlagStaticPosX | FlagStaticPosY | FlagStaticPosZ
	FlagStaticRot   = FlagStaticRotX | FlagStaticRotY | FlagStaticRotZ
	FlagStaticScale = FlagStaticScaleX | FlagStaticScaleY | FlagStaticScaleZ
)

// Entity is a node of the scene tree. A parent owns its children; the parent
// pointer is a back reference only.
type Entity struct {
	id      ID
	name    string
	typeTag string
	flags   Flags

	local        *Transform
	world        *Transform
	worldMatrix  mgl32.Mat4
	parentMatrix mgl32.Mat4

	parent   *Entity
	children []*Entity
	scene    *Scene

	enabledSelf      bool
	enabledHierarchy bool
	destroyQueued    bool
	freed            bool
	silent           bool

	// pending holds the world poses planned by the last accepted local write.
	pending []worldPose

	components []any
	fields     []Field
}

// NewEntity creates an unparented, enabled entity. An empty type tag defaults
// to "Object". The name defaults to the type tag.
func NewEntity(typeTag string, components ...any) *Entity {
	if typeTag == "" {
		typeTag = "Object"
	}
	e := &Entity{
		id:               allocID(),
		name:             typeTag,
		typeTag:          typeTag,
		flags:            FlagSerializable,
		worldMatrix:      mgl32.Ident4(),
		parentMatrix:     mgl32.Ident4(),
		enabledSelf:      true,
		enabledHierarchy: true,
		components:       components,
	}
	e.local = NewTransform(e.onLocalChange)
	e.local.validate = e.planLocal
	e.world = NewTransform(nil)
	return e
}

func (e *Entity) ID() ID { return e.id }

// SetID reassigns the identity of e. When e is part of a scene the identity
// index is re-keyed.
func (e *Entity) SetID(id ID) {
	if id == e.id {
		return
	}
	s := e.Scene()
	if s != nil {
		s.exit(e)
	}
	e.id = id
	if s != nil {
		s.enter(e)
	}
	reserveID(id)
}

func (e *Entity) Name() string        { return e.name }
func (e *Entity) SetName(name string) { e.name = name }
func (e *Entity) TypeTag() string     { return e.typeTag }

// Local returns the mutable local transform. Writes propagate to the world
// transform of e and its descendants before returning.
func (e *Entity) Local() *Transform { return e.local }

// World returns a copy of the cached world transform.
func (e *Entity) World() Transform {
	w := *e.world
	w.onChange = nil
	return w
}

// WorldMatrix is parentMatrix * local as of the last propagation pass.
func (e *Entity) WorldMatrix() mgl32.Mat4  { return e.worldMatrix }
func (e *Entity) ParentMatrix() mgl32.Mat4 { return e.parentMatrix }

func (e *Entity) Parent() *Entity { return e.parent }

func (e *Entity) ChildCount() int { return len(e.children) }

// Child returns the i-th child or nil if i is out of range.
func (e *Entity) Child(i int) *Entity {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Children iterates over the direct children of e in order.
func (e *Entity) Children() iter.Seq2[int, *Entity] {
	return func(yield func(int, *Entity) bool) {
		for i, c := range e.children {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Walk calls fn for e and every descendant, parents first unless bottomUp is
// set. The child list is copied per level so fn may mark entities for
// destruction but must not reparent.
func (e *Entity) Walk(fn func(*Entity), bottomUp bool) {
	if !bottomUp {
		fn(e)
	}
	for _, c := range append([]*Entity(nil), e.children...) {
		c.Walk(fn, bottomUp)
	}
	if bottomUp {
		fn(e)
	}
}

// Root returns the top-most ancestor of e.
func (e *Entity) Root() *Entity {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Scene returns the scene e is attached to, or nil.
func (e *Entity) Scene() *Scene {
	return e.Root().scene
}

// IsAncestorOf reports whether e is a strict ancestor of other.
func (e *Entity) IsAncestorOf(other *Entity) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

func (e *Entity) Flags() Flags         { return e.flags }
func (e *Entity) HasFlag(f Flags) bool { return e.flags&f == f }

func (e *Entity) SetFlag(f Flags, on bool) {
	if on {
		e.flags |= f
	} else {
		e.flags &^= f
	}
}

func (e *Entity) EnabledSelf() bool      { return e.enabledSelf }
func (e *Entity) EnabledHierarchy() bool { return e.enabledHierarchy }
