package objects

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// PointMassWorld is a minimal PhysicsBackend: unconstrained point masses
// integrated with semi-implicit Euler. There is no collision, and rotation
// is carried through unchanged.
type PointMassWorld struct {
	Gravity mgl32.Vec3
	// Damping is the fraction of velocity lost per second.
	Damping float32

	bodies []*pointMass
}

func NewPointMassWorld(gravity mgl32.Vec3) *PointMassWorld {
	return &PointMassWorld{Gravity: gravity}
}

func (w *PointMassWorld) NewBody(static bool, mass float32) Body {
	if mass <= 0 {
		mass = 1
	}
	return &pointMass{static: static, mass: mass, rotation: mgl32.QuatIdent(), active: true}
}

func (w *PointMassWorld) Register(b Body) {
	pm, ok := b.(*pointMass)
	if !ok || slices.Contains(w.bodies, pm) {
		return
	}
	w.bodies = append(w.bodies, pm)
}

func (w *PointMassWorld) Unregister(b Body) {
	w.bodies = slices.DeleteFunc(w.bodies, func(pm *pointMass) bool { return Body(pm) == b })
}

func (w *PointMassWorld) Len() int { return len(w.bodies) }

func (w *PointMassWorld) Step(dt float64) {
	h := float32(dt)
	for _, b := range w.bodies {
		if b.static || !b.active {
			b.force = mgl32.Vec3{}
			continue
		}
		acc := w.Gravity.Add(b.force.Mul(1 / b.mass))
		b.velocity = b.velocity.Add(acc.Mul(h))
		if w.Damping > 0 {
			b.velocity = b.velocity.Mul(max(0, 1-w.Damping*h))
		}
		b.position = b.position.Add(b.velocity.Mul(h))
		b.force = mgl32.Vec3{}
	}
}

type pointMass struct {
	static   bool
	mass     float32
	active   bool
	position mgl32.Vec3
	rotation mgl32.Quat
	velocity mgl32.Vec3
	force    mgl32.Vec3
}

func (b *pointMass) SetPose(world mgl32.Mat4) {
	b.position = world.Col(3).Vec3()
	b.rotation = mgl32.Mat4ToQuat(world).Normalize()
}

func (b *pointMass) Pose() (mgl32.Vec3, mgl32.Quat) { return b.position, b.rotation }
func (b *pointMass) SetActive(active bool)          { b.active = active }
func (b *pointMass) AddForce(f mgl32.Vec3)          { b.force = b.force.Add(f) }
func (b *pointMass) AddVelocity(dv mgl32.Vec3)      { b.velocity = b.velocity.Add(dv) }
