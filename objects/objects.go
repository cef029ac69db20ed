// Package objects provides the concrete entity kinds of a scene: plain
// objects, renderables, lights, cameras, rigid bodies and force volumes. Each
// kind is an entity with a capability component that the matching registry
// picks up when the entity enters a scene.
package objects

import "github.com/plus3/scenic/scene"

// Type tags used in scene files.
const (
	TagObject      = "Object"
	TagRender      = "RenderObject"
	TagLight       = "LightObject"
	TagRigid       = "RigidObject"
	TagForceVolume = "ForceVolume"
	TagCamera      = "Camera"
)

// NewObject creates an empty grouping entity.
func NewObject() *scene.Entity {
	return scene.NewEntity(TagObject)
}

// RegisterTypes registers a factory for every kind in this package.
// Component attributes are restored from the record's extra fields by the
// components themselves; factories only pick the structural variant.
func RegisterTypes(types *scene.TypeRegistry) {
	types.Register(TagObject, func(map[string]string) (*scene.Entity, error) {
		return NewObject(), nil
	})
	types.Register(TagRender, func(map[string]string) (*scene.Entity, error) {
		return NewRenderObject(PrimitiveNone), nil
	})
	types.Register(TagLight, func(fields map[string]string) (*scene.Entity, error) {
		kind := LightPoint
		if err := decodeEnum(fields, "kind", lightKindNames, &kind); err != nil {
			return nil, err
		}
		return NewLightObject(kind), nil
	})
	types.Register(TagRigid, func(map[string]string) (*scene.Entity, error) {
		return NewRigidObject(false), nil
	})
	types.Register(TagForceVolume, func(map[string]string) (*scene.Entity, error) {
		return NewForceVolumeObject(), nil
	})
	types.Register(TagCamera, func(map[string]string) (*scene.Entity, error) {
		return NewCameraObject(ProjectionPerspective), nil
	})
}

// NewTypes returns a type registry with every kind of this package.
func NewTypes() *scene.TypeRegistry {
	types := scene.NewTypeRegistry()
	RegisterTypes(types)
	return types
}

func addFields(e *scene.Entity, component any) {
	for _, f := range scene.FieldsOf(component) {
		e.AddField(f)
	}
}
