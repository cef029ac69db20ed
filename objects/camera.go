package objects

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
)

type Projection uint8

const (
	ProjectionPerspective Projection = iota
	ProjectionOrthographic
)

var projectionNames = []string{"Perspective", "Orthographic"}

func (p Projection) String() string { return enumName(projectionNames, p) }

// Camera turns the world pose of its entity into view and projection
// matrices. The camera looks along the entity's forward axis.
type Camera struct {
	Projection Projection `mapstructure:"-" inspect:"-"`
	// FOV is the vertical field of view in degrees.
	FOV        float32 `mapstructure:"fov" inspect:"fov"`
	OrthoRange float32 `mapstructure:"ortho_range" inspect:"ortho range"`
	Near       float32 `mapstructure:"near" inspect:"near"`
	Far        float32 `mapstructure:"far" inspect:"far"`
	Aspect     float32 `mapstructure:"aspect" inspect:"aspect"`
}

func NewCamera(p Projection) *Camera {
	return &Camera{
		Projection: p,
		FOV:        90,
		OrthoRange: 50,
		Near:       0.1,
		Far:        200,
		Aspect:     1,
	}
}

func (c *Camera) EncodeFields() (map[string]string, error) {
	return encodeWith(c, map[string]string{"projection": c.Projection.String()})
}

func (c *Camera) DecodeFields(fields map[string]string) error {
	if err := decodeEnum(fields, "projection", projectionNames, &c.Projection); err != nil {
		return err
	}
	return scene.DecodeFields(fields, c)
}

func (c *Camera) ViewMatrix(e *scene.Entity) mgl32.Mat4 {
	w := e.World()
	pos := w.Position()
	return mgl32.LookAtV(pos, pos.Add(w.Forward()), w.Up())
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.Projection == ProjectionOrthographic {
		r := c.OrthoRange
		return mgl32.Ortho(-r*c.Aspect, r*c.Aspect, -r, r, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// WorldToScreen projects a world point into normalized device coordinates.
// ok is false for points behind a perspective camera.
func (c *Camera) WorldToScreen(e *scene.Entity, p mgl32.Vec3) (ndc mgl32.Vec2, ok bool) {
	clip := c.ProjectionMatrix().Mul4(c.ViewMatrix(e)).Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return mgl32.Vec2{}, false
	}
	return mgl32.Vec2{clip.X() / clip.W(), clip.Y() / clip.W()}, true
}

// ScreenToRay returns the unit world direction from the camera through a
// point in normalized device coordinates.
func (c *Camera) ScreenToRay(e *scene.Entity, ndc mgl32.Vec2) mgl32.Vec3 {
	w := e.World()
	if c.Projection == ProjectionOrthographic {
		return w.Forward()
	}
	inv := c.ProjectionMatrix().Mul4(c.ViewMatrix(e)).Inv()
	far := inv.Mul4x1(mgl32.Vec4{ndc.X(), ndc.Y(), 1, 1})
	if far.W() == 0 {
		return w.Forward()
	}
	return far.Vec3().Mul(1 / far.W()).Sub(w.Position()).Normalize()
}

func NewCameraObject(p Projection) *scene.Entity {
	c := NewCamera(p)
	e := scene.NewEntity(TagCamera, c)
	e.AddField(enumField("projection", projectionNames, &c.Projection))
	addFields(e, c)
	return e
}
