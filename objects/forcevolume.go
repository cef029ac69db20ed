package objects

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
)

// VolumeShape bounds the region a ForceVolume acts on, in the volume's local
// space.
type VolumeShape uint8

const (
	ShapeGlobal VolumeShape = iota
	ShapeBox
	ShapeSphere
)

var volumeShapeNames = []string{"Global", "Box", "Sphere"}

func (s VolumeShape) String() string { return enumName(volumeShapeNames, s) }

// ForceMode is the direction rule of a ForceVolume.
type ForceMode uint8

const (
	// ForceDirectional pushes along Vector.
	ForceDirectional ForceMode = iota
	// ForceRadial pushes away from the volume origin by Scalar.
	ForceRadial
	// ForceOrbital pushes around the volume's up axis by Scalar.
	ForceOrbital
)

var forceModeNames = []string{"Directional", "Radial", "Orbital"}

func (m ForceMode) String() string { return enumName(forceModeNames, m) }

// ApplyMode chooses whether the effect is a force, scaled by mass, or an
// acceleration applied to the velocity directly.
type ApplyMode uint8

const (
	ApplyForce ApplyMode = iota
	ApplyVelocity
)

var applyModeNames = []string{"Force", "Velocity"}

func (m ApplyMode) String() string { return enumName(applyModeNames, m) }

// ForceVolume affects every dynamic rigid body inside it once per fixed step.
type ForceVolume struct {
	Shape      VolumeShape `mapstructure:"-" inspect:"-"`
	HalfBounds mgl32.Vec3  `mapstructure:"half_bounds" inspect:"half bounds"`
	Radius     float32     `mapstructure:"radius" inspect:"radius"`
	Mode       ForceMode   `mapstructure:"-" inspect:"-"`
	Vector     mgl32.Vec3  `mapstructure:"vector" inspect:"vector"`
	Scalar     float32     `mapstructure:"scalar" inspect:"scalar"`
	Apply      ApplyMode   `mapstructure:"-" inspect:"-"`
}

func NewForceVolume() *ForceVolume {
	return &ForceVolume{
		HalfBounds: mgl32.Vec3{1, 1, 1},
		Radius:     1,
		Vector:     mgl32.Vec3{0, -12, 0},
		Apply:      ApplyVelocity,
	}
}

func (v *ForceVolume) EncodeFields() (map[string]string, error) {
	return encodeWith(v, map[string]string{
		"shape": v.Shape.String(),
		"mode":  v.Mode.String(),
		"apply": v.Apply.String(),
	})
}

func (v *ForceVolume) DecodeFields(fields map[string]string) error {
	if err := decodeEnum(fields, "shape", volumeShapeNames, &v.Shape); err != nil {
		return err
	}
	if err := decodeEnum(fields, "mode", forceModeNames, &v.Mode); err != nil {
		return err
	}
	if err := decodeEnum(fields, "apply", applyModeNames, &v.Apply); err != nil {
		return err
	}
	return scene.DecodeFields(fields, v)
}

// Contains reports whether the world point p lies inside the volume placed
// at world.
func (v *ForceVolume) Contains(world mgl32.Mat4, p mgl32.Vec3) bool {
	if v.Shape == ShapeGlobal {
		return true
	}
	local := world.Inv().Mul4x1(p.Vec4(1)).Vec3()
	switch v.Shape {
	case ShapeBox:
		return abs(local.X()) <= v.HalfBounds.X() &&
			abs(local.Y()) <= v.HalfBounds.Y() &&
			abs(local.Z()) <= v.HalfBounds.Z()
	case ShapeSphere:
		return local.Len() <= v.Radius
	}
	return false
}

// ForceAt is the vector the volume applies at the world point p.
func (v *ForceVolume) ForceAt(world mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	offset := p.Sub(world.Col(3).Vec3())
	switch v.Mode {
	case ForceRadial:
		if offset.Len() < 1e-6 {
			return mgl32.Vec3{}
		}
		return offset.Normalize().Mul(v.Scalar)
	case ForceOrbital:
		tangent := world.Col(1).Vec3().Cross(offset)
		if tangent.Len() < 1e-6 {
			return mgl32.Vec3{}
		}
		return tangent.Normalize().Mul(v.Scalar)
	default:
		return v.Vector
	}
}

// TryApply pushes the volume's effect into body for one step of dt seconds
// and reports whether the body was inside.
func (v *ForceVolume) TryApply(world mgl32.Mat4, body Body, dt float32) bool {
	pos, _ := body.Pose()
	if !v.Contains(world, pos) {
		return false
	}
	f := v.ForceAt(world, pos)
	if v.Apply == ApplyVelocity {
		body.AddVelocity(f.Mul(dt))
	} else {
		body.AddForce(f)
	}
	return true
}

func NewForceVolumeObject() *scene.Entity {
	v := NewForceVolume()
	e := scene.NewEntity(TagForceVolume, v)
	e.AddField(enumField("shape", volumeShapeNames, &v.Shape))
	e.AddField(enumField("mode", forceModeNames, &v.Mode))
	e.AddField(enumField("apply", applyModeNames, &v.Apply))
	addFields(e, v)
	return e
}
