package objects

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
)

type LightKind uint8

const (
	LightDirectional LightKind = iota
	LightCone
	LightPoint
)

var lightKindNames = []string{"Directional", "Cone", "Point"}

func (k LightKind) String() string { return enumName(lightKindNames, k) }

func ParseLightKind(s string) (LightKind, error) {
	return parseEnum[LightKind](lightKindNames, s)
}

// directionalBacktrack is how far behind its anchor a directional light's
// shadow camera sits.
const directionalBacktrack = 100

// Light is the emitter data read by a renderer. Angles are half-angles in
// degrees. Position and direction are derived from the owning entity's world
// pose by Sync and are stale until then.
type Light struct {
	Kind       LightKind  `mapstructure:"-" inspect:"-"`
	Color      mgl32.Vec3 `mapstructure:"color"`
	Range      float32    `mapstructure:"range"`
	NearClip   float32    `mapstructure:"near_clip" inspect:"near clip"`
	InnerAngle float32    `mapstructure:"angle_inner" inspect:"inner angle"`
	OuterAngle float32    `mapstructure:"angle_outer" inspect:"outer angle"`
	BiasMin    float32    `mapstructure:"bias_min" inspect:"bias min"`
	BiasMult   float32    `mapstructure:"bias_mult" inspect:"bias mult"`

	position  mgl32.Vec3
	direction mgl32.Vec3
	dirty     bool
	sublights []*Light
}

func NewLight(kind LightKind) *Light {
	return &Light{
		Kind:       kind,
		Color:      mgl32.Vec3{1, 1, 1},
		Range:      15,
		NearClip:   1,
		InnerAngle: 25,
		OuterAngle: 40,
		BiasMin:    0.005,
		BiasMult:   0.05,
		direction:  mgl32.Vec3{0, 0, 1},
		dirty:      true,
	}
}

func (l *Light) OnLocalTransformChange(*scene.Entity, scene.ChangeKind) { l.dirty = true }

func (l *Light) OnExternalTransformChange(*scene.Entity, mgl32.Mat4) { l.dirty = true }

func (l *Light) EncodeFields() (map[string]string, error) {
	return encodeWith(l, map[string]string{"kind": l.Kind.String()})
}

func (l *Light) DecodeFields(fields map[string]string) error {
	if err := decodeEnum(fields, "kind", lightKindNames, &l.Kind); err != nil {
		return err
	}
	return scene.DecodeFields(fields, l)
}

func (l *Light) Position() mgl32.Vec3  { return l.position }
func (l *Light) Direction() mgl32.Vec3 { return l.direction }
func (l *Light) Dirty() bool           { return l.dirty }

// Sublights returns the cone lights a point light renders its shadow cube
// with.
func (l *Light) Sublights() []*Light { return l.sublights }

// Sync copies the shared attributes into the sublights and, when the pose of
// e changed since the last call, refreshes position and direction. It
// reports whether the pose was refreshed.
func (l *Light) Sync(e *scene.Entity) bool {
	for _, sub := range l.sublights {
		sub.Color = l.Color
		sub.Range = l.Range
		sub.NearClip = l.NearClip
		sub.BiasMin = l.BiasMin
		sub.BiasMult = l.BiasMult
	}
	if !l.dirty {
		return false
	}
	w := e.World()
	l.position = w.Position()
	l.direction = w.Forward()
	l.dirty = false
	return true
}

// ViewMatrix is the shadow camera view for the last synced pose.
func (l *Light) ViewMatrix() mgl32.Mat4 {
	switch l.Kind {
	case LightCone:
		target := l.position.Add(l.direction.Mul(l.Range))
		return mgl32.LookAtV(l.position, target, upFor(l.direction))
	case LightDirectional:
		eye := l.position.Sub(l.direction.Mul(directionalBacktrack))
		return mgl32.LookAtV(eye, l.position, upFor(l.direction))
	default:
		return mgl32.Ident4()
	}
}

func (l *Light) ProjectionMatrix() mgl32.Mat4 {
	switch l.Kind {
	case LightCone:
		fov := clamp(2*l.OuterAngle, 1, 179)
		return mgl32.Perspective(mgl32.DegToRad(fov), 1, l.NearClip, l.Range)
	case LightDirectional:
		return mgl32.Ortho(-l.Range, l.Range, -l.Range, l.Range, 0, l.Range+directionalBacktrack)
	default:
		return mgl32.Ident4()
	}
}

func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if abs(dir.Y()) > 0.999 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

var cubeFaces = [6]mgl32.Vec3{
	{0, 0, 1}, {0, 0, -1},
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
}

// NewLightObject creates a light entity. Point lights get six cone children,
// one per cube face, that are hidden from the tree, never selected and never
// serialized: they are rebuilt by the factory.
func NewLightObject(kind LightKind) *scene.Entity {
	l := NewLight(kind)
	e := scene.NewEntity(TagLight, l)
	addFields(e, l)

	if kind != LightPoint {
		return e
	}
	for _, dir := range cubeFaces {
		sub := NewLight(LightCone)
		sub.InnerAngle, sub.OuterAngle = 45, 45

		child := scene.NewEntity(TagLight, sub)
		child.SetName("sublight")
		child.SetFlag(scene.FlagExcludeFromTree|scene.FlagEditor, true)
		child.SetFlag(scene.FlagSerializable, false)
		_ = child.Local().SetRotation(mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, dir))
		_ = child.SetParent(e)
		l.sublights = append(l.sublights, sub)
	}
	return e
}

// LightSystem refreshes derived light data before rendering.
type LightSystem struct {
	Lights scene.Registry[*Light]

	refreshed int
}

func (s *LightSystem) Execute(frame *scene.UpdateFrame) {
	s.refreshed = 0
	for e, l := range s.Lights.Enabled() {
		if l.Sync(e) {
			s.refreshed++
		}
	}
}

// Refreshed is the number of lights whose pose was refreshed last frame.
func (s *LightSystem) Refreshed() int { return s.refreshed }
