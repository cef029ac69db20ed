package objects

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
)

// Primitive selects a built-in mesh.
type Primitive uint8

const (
	PrimitiveNone Primitive = iota
	PrimitiveCube
	PrimitiveSphere
	PrimitiveCapsule
	PrimitivePlane
)

var primitiveNames = []string{"None", "Cube", "Sphere", "Capsule", "Plane"}

func (p Primitive) String() string { return enumName(primitiveNames, p) }

// ParsePrimitive is the inverse of Primitive.String, ignoring case.
func ParsePrimitive(s string) (Primitive, error) {
	return parseEnum[Primitive](primitiveNames, s)
}

// Renderer marks an entity as drawable. The graphics backend reads the
// owning entity's world matrix; the renderer only carries what to draw.
type Renderer struct {
	Primitive    Primitive  `mapstructure:"-" inspect:"-"`
	Color        mgl32.Vec4 `mapstructure:"color" inspect:"color,color"`
	ShadowCaster bool       `mapstructure:"shadow_caster" inspect:"shadow caster"`
}

func (r *Renderer) EncodeFields() (map[string]string, error) {
	return encodeWith(r, map[string]string{"primitive": r.Primitive.String()})
}

func (r *Renderer) DecodeFields(fields map[string]string) error {
	if err := decodeEnum(fields, "primitive", primitiveNames, &r.Primitive); err != nil {
		return err
	}
	return scene.DecodeFields(fields, r)
}

// NewRenderObject creates a drawable entity for p with a white color.
func NewRenderObject(p Primitive) *scene.Entity {
	r := &Renderer{Primitive: p, Color: mgl32.Vec4{1, 1, 1, 1}}
	e := scene.NewEntity(TagRender, r)
	e.AddField(enumField("primitive", primitiveNames, &r.Primitive))
	addFields(e, r)
	return e
}

// DrawItem is one renderable entity resolved for a frame.
type DrawItem struct {
	ID        scene.ID
	World     mgl32.Mat4
	Primitive Primitive
	Color     mgl32.Vec4
}

// RenderSystem collects the draw list of hierarchy-enabled renderers. It is
// registered in the render phase and the graphics backend reads Items after
// the frame.
type RenderSystem struct {
	Renderers scene.Registry[*Renderer]

	items []DrawItem
}

func (s *RenderSystem) Execute(frame *scene.UpdateFrame) {
	s.items = s.items[:0]
	for e, r := range s.Renderers.Enabled() {
		if r.Primitive == PrimitiveNone {
			continue
		}
		s.items = append(s.items, DrawItem{
			ID:        e.ID(),
			World:     e.WorldMatrix(),
			Primitive: r.Primitive,
			Color:     r.Color,
		})
	}
}

// Items returns the draw list of the last render phase. The slice is reused
// by the next frame.
func (s *RenderSystem) Items() []DrawItem { return s.items }
