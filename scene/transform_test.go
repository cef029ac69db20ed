package scene_test

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformIdentity(t *testing.T) {
	tr := scene.NewTransform(nil)

	assertMat(t, mgl32.Ident4(), tr.Matrix(true))
	assertMat(t, mgl32.Ident4(), tr.Matrix(false))
	assertVec(t, mgl32.Vec3{1, 1, 1}, tr.Scale())
	assertVec(t, mgl32.Vec3{1, 0, 0}, tr.Right())
	assertVec(t, mgl32.Vec3{0, 1, 0}, tr.Up())
	assertVec(t, mgl32.Vec3{0, 0, 1}, tr.Forward())
}

func TestTransformCachesFollowWrites(t *testing.T) {
	tr := scene.NewTransform(nil)
	require.NoError(t, tr.SetPosition(mgl32.Vec3{1, 2, 3}))
	require.NoError(t, tr.SetScale(mgl32.Vec3{2, 2, 2}))
	require.NoError(t, tr.SetEuler(mgl32.Vec3{0, 90, 0}))

	rot := scene.QuatFromEuler(mgl32.Vec3{0, 90, 0}).Mat4()
	withoutScale := mgl32.Translate3D(1, 2, 3).Mul4(rot)
	withScale := withoutScale.Mul4(mgl32.Scale3D(2, 2, 2))

	assertMat(t, withScale, tr.Matrix(true))
	assertMat(t, withoutScale, tr.Matrix(false))
	assertVec(t, mgl32.Vec3{0, 0, -1}, tr.Right())
	assertVec(t, mgl32.Vec3{1, 0, 0}, tr.Forward())
}

func TestTransformChangeKinds(t *testing.T) {
	var kinds []scene.ChangeKind
	tr := scene.NewTransform(func(k scene.ChangeKind) { kinds = append(kinds, k) })

	require.NoError(t, tr.SetPosition(mgl32.Vec3{1, 0, 0}))
	require.NoError(t, tr.SetRotation(mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0})))
	require.NoError(t, tr.SetScale(mgl32.Vec3{1, 2, 1}))
	require.NoError(t, tr.SetSkew(mgl32.Vec3{0.5, 0, 0}))
	require.NoError(t, tr.Reset())

	assert.Equal(t, []scene.ChangeKind{
		scene.ChangeTranslation,
		scene.ChangeRotation,
		scene.ChangeScale,
		scene.ChangeScale,
		scene.ChangeAll,
	}, kinds)
}

func TestTransformSetMatrixNotifiesPerField(t *testing.T) {
	var kinds []scene.ChangeKind
	tr := scene.NewTransform(func(k scene.ChangeKind) { kinds = append(kinds, k) })
	m := mgl32.Translate3D(4, 5, 6).Mul4(mgl32.HomogRotate3DZ(0.5))

	require.NoError(t, tr.SetMatrix(m, false))
	assert.Equal(t, []scene.ChangeKind{scene.ChangeScale, scene.ChangeTranslation, scene.ChangeRotation}, kinds)

	kinds = nil
	require.NoError(t, tr.SetMatrix(mgl32.Translate3D(1, 1, 1), true))
	assert.Empty(t, kinds)
	assertVec(t, mgl32.Vec3{1, 1, 1}, tr.Position())
	assertMat(t, mgl32.Translate3D(1, 1, 1), tr.Matrix(true))
}

func TestTransformRejectsNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	notified := 0
	tr := scene.NewTransform(func(scene.ChangeKind) { notified++ })
	require.NoError(t, tr.SetPosition(mgl32.Vec3{1, 2, 3}))
	before := tr.Matrix(true)
	notified = 0

	tests := []struct {
		name  string
		write func() error
	}{
		{"position", func() error { return tr.SetPosition(mgl32.Vec3{nan, 0, 0}) }},
		{"scale", func() error { return tr.SetScale(mgl32.Vec3{1, inf, 1}) }},
		{"skew", func() error { return tr.SetSkew(mgl32.Vec3{0, 0, nan}) }},
		{"rotation", func() error { return tr.SetRotation(mgl32.Quat{W: nan}) }},
		{"euler", func() error { return tr.SetEuler(mgl32.Vec3{inf, 0, 0}) }},
		{"matrix", func() error {
			m := mgl32.Ident4()
			m.Set(0, 3, nan)
			return tr.SetMatrix(m, false)
		}},
		{"silent matrix", func() error {
			m := mgl32.Ident4()
			m.Set(1, 1, inf)
			return tr.SetMatrix(m, true)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.write()
			require.ErrorIs(t, err, scene.ErrInvalidPose)
			assertMat(t, before, tr.Matrix(true))
			assertVec(t, mgl32.Vec3{1, 2, 3}, tr.Position())
		})
	}
	assert.Zero(t, notified)

	_, err := scene.NewTransformFromMatrix(mgl32.Mat4{nan})
	assert.ErrorIs(t, err, scene.ErrInvalidPose)
}

func TestDecomposeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	randRange := func(lo, hi float32) float32 { return lo + rng.Float32()*(hi-lo) }

	for i := 0; i < 50; i++ {
		pos := mgl32.Vec3{randRange(-100, 100), randRange(-100, 100), randRange(-100, 100)}
		euler := mgl32.Vec3{randRange(-180, 180), randRange(-89, 89), randRange(-180, 180)}
		scale := mgl32.Vec3{randRange(0.1, 5), randRange(0.1, 5), randRange(0.1, 5)}

		m := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
			Mul4(scene.QuatFromEuler(euler).Mat4()).
			Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))

		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			tr, err := scene.NewTransformFromMatrix(m)
			require.NoError(t, err)

			assertMatTol(t, m, tr.Matrix(true), 1e-3)
			assertVecTol(t, pos, tr.Position(), 1e-3)
			assertVecTol(t, scale, tr.Scale(), 1e-3)
			assertVecTol(t, mgl32.Vec3{}, tr.Skew(), 1e-3)
		})
	}
}

func TestDecomposeKeepsSkewSeparate(t *testing.T) {
	src := scene.NewTransform(nil)
	require.NoError(t, src.SetSkew(mgl32.Vec3{0.5, -0.25, 0.75}))
	require.NoError(t, src.SetScale(mgl32.Vec3{2, 3, 4}))
	require.NoError(t, src.SetEuler(mgl32.Vec3{10, 20, 30}))
	require.NoError(t, src.SetPosition(mgl32.Vec3{-1, 0, 1}))

	got, err := scene.NewTransformFromMatrix(src.Matrix(true))
	require.NoError(t, err)

	assertVec(t, src.Skew(), got.Skew())
	assertVec(t, src.Scale(), got.Scale())
	assertVec(t, src.Euler(), got.Euler())
	assertMat(t, src.Matrix(true), got.Matrix(true))
	assertMat(t, src.Matrix(false), got.Matrix(false))
}

func TestDecomposeDegenerateAndMirrored(t *testing.T) {
	for name, m := range map[string]mgl32.Mat4{
		"zero x scale": mgl32.Scale3D(0, 2, 3),
		"all zero":     mgl32.Scale3D(0, 0, 0),
		"mirrored":     mgl32.Scale3D(-1, 1, 1),
		"mirrored rotated": mgl32.Translate3D(1, 2, 3).
			Mul4(mgl32.HomogRotate3DY(0.7)).
			Mul4(mgl32.Scale3D(1, -2, 1)),
	} {
		t.Run(name, func(t *testing.T) {
			tr, err := scene.NewTransformFromMatrix(m)
			require.NoError(t, err)
			assertMat(t, m, tr.Matrix(true))
		})
	}
}

func TestTransformPerspectiveRow(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	m.SetRow(3, mgl32.Vec4{0, 0, -1, 0})

	tr, err := scene.NewTransformFromMatrix(m)
	require.NoError(t, err)

	assert.Equal(t, mgl32.Vec4{0, 0, -1, 0}, tr.Perspective())
	assertMat(t, m, tr.Matrix(true))
	assert.Equal(t, float32(1), tr.Matrix(false).At(3, 3))
}

func TestEulerRoundTrip(t *testing.T) {
	for _, deg := range []mgl32.Vec3{
		{0, 0, 0},
		{10, 20, 30},
		{-45, 60, 170},
		{90, 0, 0},
		{0, 0, -90},
	} {
		q := scene.QuatFromEuler(deg)
		assertVec(t, deg, scene.EulerFromQuat(q))
	}

	// Gimbal lock collapses X into Z; the rotation itself must survive.
	q := scene.QuatFromEuler(mgl32.Vec3{30, 90, 10})
	back := scene.QuatFromEuler(scene.EulerFromQuat(q))
	assertMatTol(t, q.Mat4(), back.Mat4(), 1e-3)
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "translation", scene.ChangeTranslation.String())
	assert.Equal(t, "all", scene.ChangeAll.String())
	assert.Equal(t, "ChangeKind(42)", scene.ChangeKind(42).String())
}
