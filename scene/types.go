package scene

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Factory builds a new, unparented entity from the extra fields of a record.
type Factory func(fields map[string]string) (*Entity, error)

// TypeRegistry maps type tags to factories. Tags are registered once at
// startup, before any scene is deserialized.
type TypeRegistry struct {
	factories map[string]Factory
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{factories: make(map[string]Factory)}
}

// Register associates tag with f. Registering a tag twice panics.
func (r *TypeRegistry) Register(tag string, f Factory) {
	if _, exists := r.factories[tag]; exists {
		panic("scene: type tag " + tag + " registered twice")
	}
	r.factories[tag] = f
}

func (r *TypeRegistry) Has(tag string) bool {
	_, ok := r.factories[tag]
	return ok
}

// Tags returns the registered tags in sorted order.
func (r *TypeRegistry) Tags() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Instantiate builds an entity for tag and applies the name, local pose,
// enabled flag and extra fields of rec. Children of rec are ignored. An
// unknown tag yields a nil entity and an error wrapping ErrUnknownType, which
// callers treat as "skip this node".
func (r *TypeRegistry) Instantiate(tag string, rec Record) (*Entity, error) {
	f, ok := r.factories[tag]
	if !ok {
		return nil, fmt.Errorf("instantiate %q: %w", tag, ErrUnknownType)
	}

	e, err := f(rec.ExtraFields)
	if err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", tag, err)
	}
	e.typeTag = tag
	if rec.Name != "" {
		e.name = rec.Name
	} else {
		e.name = tag
	}

	for _, c := range e.components {
		if d, ok := c.(FieldDecoder); ok && len(rec.ExtraFields) > 0 {
			if err := d.DecodeFields(rec.ExtraFields); err != nil {
				return nil, fmt.Errorf("instantiate %q: %w", tag, err)
			}
		}
	}

	if err := e.local.SetScale(mgl32.Vec3(rec.LocalScale)); err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", tag, err)
	}
	if err := e.local.SetEuler(mgl32.Vec3(rec.LocalEulerRotation)); err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", tag, err)
	}
	if err := e.local.SetPosition(mgl32.Vec3(rec.LocalPosition)); err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", tag, err)
	}
	e.SetEnabled(rec.Enabled)
	return e, nil
}
