package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ChangeKind tags which part of a Transform changed.
type ChangeKind uint8

const (
	ChangeTranslation ChangeKind = iota + 1
	ChangeRotation
	ChangeScale
	ChangeAll
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeTranslation:
		return "translation"
	case ChangeRotation:
		return "rotation"
	case ChangeScale:
		return "scale"
	case ChangeAll:
		return "all"
	default:
		return fmt.Sprintf("ChangeKind(%d)", uint8(k))
	}
}

// Transform is an affine pose with cached composed matrices.
// The caches are recomputed on every write, so Matrix is always O(1) and
// always consistent with the pose fields.
type Transform struct {
	position    mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3
	skew        mgl32.Vec3
	perspective mgl32.Vec4

	withScale    mgl32.Mat4
	withoutScale mgl32.Mat4

	right   mgl32.Vec3
	up      mgl32.Vec3
	forward mgl32.Vec3

	onChange func(ChangeKind)
	// validate may veto a write before it is committed and reported.
	validate func(withScale mgl32.Mat4) error
}

// NewTransform creates an identity transform. onChange may be nil.
func NewTransform(onChange func(ChangeKind)) *Transform {
	t := &Transform{onChange: onChange}
	t.reset()
	return t
}

// NewTransformFromMatrix decomposes m into a new transform without a change callback.
func NewTransformFromMatrix(m mgl32.Mat4) (*Transform, error) {
	t := NewTransform(nil)
	if err := t.SetMatrix(m, true); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transform) reset() {
	t.position = mgl32.Vec3{}
	t.rotation = mgl32.QuatIdent()
	t.scale = mgl32.Vec3{1, 1, 1}
	t.skew = mgl32.Vec3{}
	t.perspective = mgl32.Vec4{0, 0, 0, 1}
	t.recompute()
	t.updateAxes()
}

// Reset restores the identity pose and notifies with ChangeAll.
func (t *Transform) Reset() error {
	return t.write("reset", ChangeAll, t.reset)
}

func (t *Transform) Position() mgl32.Vec3    { return t.position }
func (t *Transform) Rotation() mgl32.Quat    { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3       { return t.scale }
func (t *Transform) Skew() mgl32.Vec3        { return t.skew }
func (t *Transform) Perspective() mgl32.Vec4 { return t.perspective }

func (t *Transform) Right() mgl32.Vec3   { return t.right }
func (t *Transform) Up() mgl32.Vec3      { return t.up }
func (t *Transform) Forward() mgl32.Vec3 { return t.forward }

// Euler returns the rotation as XYZ euler angles in degrees.
func (t *Transform) Euler() mgl32.Vec3 {
	return EulerFromQuat(t.rotation)
}

// Matrix returns the cached composed matrix. Without scale the matrix is
// translation times rotation only; skew and perspective ride with scale.
func (t *Transform) Matrix(includeScale bool) mgl32.Mat4 {
	if includeScale {
		return t.withScale
	}
	return t.withoutScale
}

func (t *Transform) SetPosition(v mgl32.Vec3) error {
	return t.write("position", ChangeTranslation, func() { t.position = v })
}

func (t *Transform) SetScale(v mgl32.Vec3) error {
	return t.write("scale", ChangeScale, func() { t.scale = v })
}

// SetSkew sets the shear factors (XY, XZ, YZ). Skew has no change kind of its
// own and is reported as ChangeScale.
func (t *Transform) SetSkew(v mgl32.Vec3) error {
	return t.write("skew", ChangeScale, func() { t.skew = v })
}

// SetRotation normalizes q before storing it. Axis vectors are re-derived only
// when the rotation actually changed.
func (t *Transform) SetRotation(q mgl32.Quat) error {
	if !finiteQuat(q) {
		return fmt.Errorf("%w: rotation %v is not finite", ErrInvalidPose, q)
	}
	q = q.Normalize()
	changed := !q.ApproxEqual(t.rotation)
	return t.write("rotation", ChangeRotation, func() {
		t.rotation = q
		if changed {
			t.updateAxes()
		}
	})
}

// SetEuler sets the rotation from XYZ euler angles in degrees.
func (t *Transform) SetEuler(deg mgl32.Vec3) error {
	return t.SetRotation(QuatFromEuler(deg))
}

// SetMatrix decomposes m into position, rotation, scale, skew and perspective.
//
// The normal path goes through the field setters, so the change callback fires
// once per field. The silent path writes the fields directly and recomputes the
// caches without notifying; it is meant for mirroring a pose that is already
// known elsewhere, like a world transform reflecting its parent chain.
func (t *Transform) SetMatrix(m mgl32.Mat4, silent bool) error {
	d, err := decompose(m)
	if err != nil {
		return err
	}

	if silent {
		saved := *t
		t.setPose(d)
		if !t.finite() {
			*t = saved
			return fmt.Errorf("%w: decomposed matrix is not finite", ErrInvalidPose)
		}
		return nil
	}

	saved := *t
	t.skew, t.perspective = d.skew, d.perspective
	for i, set := range []func() error{
		func() error { return t.SetScale(d.scale) },
		func() error { return t.SetPosition(d.position) },
		func() error { return t.SetRotation(d.rotation) },
	} {
		if err := set(); err != nil {
			*t = saved
			if i > 0 {
				t.notify(ChangeAll)
			}
			return err
		}
	}
	return nil
}

// assign decomposes m and writes every field as one change reported with
// ChangeAll.
func (t *Transform) assign(m mgl32.Mat4) error {
	d, err := decompose(m)
	if err != nil {
		return err
	}
	return t.write("matrix", ChangeAll, func() { t.setPose(d) })
}

func (t *Transform) setPose(d pose) {
	t.position, t.rotation, t.scale = d.position, d.rotation, d.scale
	t.skew, t.perspective = d.skew, d.perspective
	t.recompute()
	t.updateAxes()
}

// write applies a field mutation, recomputes the caches and notifies. A
// mutation that leaves a non-finite cache, or that validate refuses, is
// rolled back.
func (t *Transform) write(field string, kind ChangeKind, apply func()) error {
	saved := *t
	apply()
	t.recompute()
	if !t.finite() {
		*t = saved
		return fmt.Errorf("%w: %s produces a non-finite matrix", ErrInvalidPose, field)
	}
	if t.validate != nil {
		if err := t.validate(t.withScale); err != nil {
			*t = saved
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	t.notify(kind)
	return nil
}

func (t *Transform) notify(kind ChangeKind) {
	if t.onChange != nil {
		t.onChange(kind)
	}
}

func (t *Transform) recompute() {
	t.withoutScale = mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z()).Mul4(t.rotation.Mat4())
	t.withScale = compose(pose{
		position:    t.position,
		rotation:    t.rotation,
		scale:       t.scale,
		skew:        t.skew,
		perspective: t.perspective,
	})
}

func (t *Transform) updateAxes() {
	basis := t.rotation.Mat4()
	t.right = basis.Col(0).Vec3()
	t.up = basis.Col(1).Vec3()
	t.forward = basis.Col(2).Vec3()
}

func (t *Transform) finite() bool {
	return finiteMat(t.withScale) && finiteMat(t.withoutScale)
}
