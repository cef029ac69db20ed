package scene

import "github.com/go-gl/mathgl/mgl32"

// LocalChangeListener is told about every authored change to the local
// transform of its entity. Poses written through SyncLocalMatrix are not
// reported.
type LocalChangeListener interface {
	OnLocalTransformChange(e *Entity, kind ChangeKind)
}

// ExternalChangeListener is told when the world pose of its entity moved
// because an ancestor changed.
type ExternalChangeListener interface {
	OnExternalTransformChange(e *Entity, parentWorld mgl32.Mat4)
}

// EnableListener is told when the hierarchy-enabled flag of its entity flips.
type EnableListener interface {
	OnEnableChange(e *Entity, enabled bool)
}

// HierarchyObserver sees every entity that enters or leaves the subtree below
// its owner.
type HierarchyObserver interface {
	OnEnterHierarchy(owner, entered *Entity)
	OnExitHierarchy(owner, exited *Entity)
}

// Disposer releases resources when its entity is freed by a sweep.
type Disposer interface {
	Dispose()
}

// FieldEncoder contributes extra fields to a serialized record.
type FieldEncoder interface {
	EncodeFields() (map[string]string, error)
}

// FieldDecoder consumes extra fields from a serialized record.
type FieldDecoder interface {
	DecodeFields(fields map[string]string) error
}

// Component returns the first component of e assignable to T.
func Component[T any](e *Entity) (T, bool) {
	for _, c := range e.components {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// AddComponent attaches c to e. When e is already part of a scene it is
// offered to the scene's handlers again so new capabilities are indexed.
func (e *Entity) AddComponent(c any) {
	e.components = append(e.components, c)
	if s := e.Scene(); s != nil {
		s.offer(e)
	}
}

// Components returns the components of e in insertion order.
func (e *Entity) Components() []any {
	return e.components
}
