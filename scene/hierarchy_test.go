package scene_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertWorldInvariant(t *testing.T, root *scene.Entity) {
	t.Helper()
	root.Walk(func(e *scene.Entity) {
		want := e.ParentMatrix().Mul4(e.Local().Matrix(true))
		assertMat(t, want, e.WorldMatrix())
		if p := e.Parent(); p != nil {
			assertMat(t, p.WorldMatrix(), e.ParentMatrix())
		}
	}, false)
}

func TestWorldComposesParentAndLocal(t *testing.T) {
	s := scene.New()
	a := newChild(t, s.Root(), "A")
	b := newChild(t, a, "B")

	require.NoError(t, a.Local().SetPosition(mgl32.Vec3{1, 0, 0}))
	require.NoError(t, a.Local().SetEuler(mgl32.Vec3{0, 90, 0}))
	require.NoError(t, b.Local().SetPosition(mgl32.Vec3{0, 0, 1}))

	assertVec(t, mgl32.Vec3{2, 0, 0}, b.WorldMatrix().Col(3).Vec3())
	w := b.World()
	assertVec(t, mgl32.Vec3{2, 0, 0}, w.Position())
	assertWorldInvariant(t, s.Root())

	require.NoError(t, a.Local().SetScale(mgl32.Vec3{2, 2, 2}))
	assertVec(t, mgl32.Vec3{3, 0, 0}, b.WorldMatrix().Col(3).Vec3())
	assertWorldInvariant(t, s.Root())
}

func TestReparentKeepsLocalPose(t *testing.T) {
	s := scene.New()
	p1 := newChild(t, s.Root(), "P1")
	p2 := newChild(t, s.Root(), "P2")
	require.NoError(t, p1.Local().SetPosition(mgl32.Vec3{1, 0, 0}))
	require.NoError(t, p2.Local().SetPosition(mgl32.Vec3{0, 5, 0}))

	child := newChild(t, p1, "Child")
	grandchild := newChild(t, child, "Grandchild")
	require.NoError(t, child.Local().SetPosition(mgl32.Vec3{0, 0, 1}))
	require.NoError(t, grandchild.Local().SetPosition(mgl32.Vec3{0, 1, 0}))

	localBefore := child.Local().Matrix(true)
	assertVec(t, mgl32.Vec3{1, 0, 1}, child.WorldMatrix().Col(3).Vec3())

	require.NoError(t, child.SetParent(p2))

	assertMat(t, localBefore, child.Local().Matrix(true))
	assertVec(t, mgl32.Vec3{0, 5, 1}, child.WorldMatrix().Col(3).Vec3())
	assertVec(t, mgl32.Vec3{0, 6, 1}, grandchild.WorldMatrix().Col(3).Vec3())
	assert.Equal(t, 0, p1.ChildCount())
	assert.Same(t, child, p2.Child(0))
	assertWorldInvariant(t, s.Root())

	require.NoError(t, child.SetParent(nil))
	assertMat(t, mgl32.Ident4(), child.ParentMatrix())
	assertMat(t, localBefore, child.WorldMatrix())
	assert.Nil(t, child.Scene())
}

func TestSetParentRejectsCycles(t *testing.T) {
	a := scene.NewEntity("A")
	b := scene.NewEntity("B")
	c := scene.NewEntity("C")
	require.NoError(t, b.SetParent(a))
	require.NoError(t, c.SetParent(b))

	assert.ErrorIs(t, a.SetParent(c), scene.ErrCyclicParent)
	assert.ErrorIs(t, a.SetParent(a), scene.ErrCyclicParent)
	assert.Nil(t, a.Parent())

	assert.NoError(t, c.SetParent(b), "same parent is a no-op")
	assert.Equal(t, 1, b.ChildCount())
}

func TestEnableCascadeAsymmetry(t *testing.T) {
	s := scene.New()
	root := newChild(t, s.Root(), "Root")
	aListener := &enableCounter{}
	bListener := &enableCounter{}
	a := newChild(t, root, "A", aListener)
	b := newChild(t, a, "B", bListener)

	b.SetEnabled(false)
	assert.False(t, b.EnabledHierarchy())

	root.SetEnabled(false)
	assert.False(t, a.EnabledHierarchy())
	assert.False(t, b.EnabledHierarchy())
	assert.True(t, a.EnabledSelf())

	root.SetEnabled(true)
	assert.True(t, a.EnabledHierarchy())
	assert.False(t, b.EnabledHierarchy())
	assert.False(t, b.EnabledSelf())

	assert.Equal(t, []bool{false, true}, aListener.flips)
	assert.Equal(t, []bool{false}, bListener.flips)

	b.SetEnabled(true)
	assert.True(t, b.EnabledHierarchy())
	assert.Equal(t, []bool{false, true}, bListener.flips)
}

func TestReparentUnderDisabledParent(t *testing.T) {
	s := scene.New()
	off := newChild(t, s.Root(), "Off")
	off.SetEnabled(false)

	e := newChild(t, s.Root(), "E")
	child := newChild(t, e, "Child")

	require.NoError(t, e.SetParent(off))
	assert.False(t, e.EnabledHierarchy())
	assert.False(t, child.EnabledHierarchy())
	assert.True(t, e.EnabledSelf())

	require.NoError(t, e.SetParent(s.Root()))
	assert.True(t, e.EnabledHierarchy())
	assert.True(t, child.EnabledHierarchy())
}

func TestHierarchyBroadcastOrder(t *testing.T) {
	s := scene.New()
	log := &hierarchyLog{}
	owner := newChild(t, s.Root(), "Owner", log)

	x := scene.NewEntity("X")
	y := newChild(t, x, "Y")
	z := newChild(t, y, "Z")

	require.NoError(t, x.SetParent(owner))
	assert.Equal(t, []scene.ID{x.ID(), y.ID(), z.ID()}, log.entered)
	assert.Same(t, z, s.Find(z.ID()))

	require.NoError(t, x.SetParent(nil))
	assert.Equal(t, []scene.ID{z.ID(), y.ID(), x.ID()}, log.exited)
	assert.Nil(t, s.Find(y.ID()))
}

func TestTranslateWorld(t *testing.T) {
	s := scene.New()
	parent := newChild(t, s.Root(), "Parent")
	require.NoError(t, parent.Local().SetPosition(mgl32.Vec3{3, 0, 0}))
	require.NoError(t, parent.Local().SetEuler(mgl32.Vec3{0, 90, 0}))
	require.NoError(t, parent.Local().SetScale(mgl32.Vec3{2, 2, 2}))

	counter := &localCounter{}
	child := newChild(t, parent, "Child", counter)
	require.NoError(t, child.Local().SetEuler(mgl32.Vec3{0, 0, 45}))
	rotation := child.Local().Rotation()
	counter.kinds = nil

	before := child.WorldMatrix().Col(3).Vec3()
	require.NoError(t, child.TranslateWorld(mgl32.Vec3{2, 0, 0}))

	assertVec(t, before.Add(mgl32.Vec3{2, 0, 0}), child.WorldMatrix().Col(3).Vec3())
	assert.Equal(t, rotation, child.Local().Rotation())
	assert.Equal(t, []scene.ChangeKind{scene.ChangeTranslation}, counter.kinds)

	require.NoError(t, child.SetWorldPosition(mgl32.Vec3{0, 0, 0}))
	assertVec(t, mgl32.Vec3{}, child.WorldMatrix().Col(3).Vec3())
	assertWorldInvariant(t, s.Root())
}

func TestSetWorldMatrix(t *testing.T) {
	s := scene.New()
	parent := newChild(t, s.Root(), "Parent")
	require.NoError(t, parent.Local().SetPosition(mgl32.Vec3{0, 10, 0}))
	require.NoError(t, parent.Local().SetEuler(mgl32.Vec3{0, 0, 30}))
	child := newChild(t, parent, "Child")

	target := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DX(0.4))
	require.NoError(t, child.SetWorldMatrix(target))
	assertMat(t, target, child.WorldMatrix())
}

func TestSyncLocalMatrixSkipsListeners(t *testing.T) {
	s := scene.New()
	counter := &localCounter{}
	e := newChild(t, s.Root(), "E", counter)
	child := newChild(t, e, "Child")
	require.NoError(t, child.Local().SetPosition(mgl32.Vec3{0, 1, 0}))
	counter.kinds = nil
	before := s.Stats().Propagations

	require.NoError(t, e.SyncLocalMatrix(mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))))
	assert.Empty(t, counter.kinds)
	assert.Equal(t, before+1, s.Stats().Propagations, "one pass per sync")
	assertVec(t, mgl32.Vec3{1, 4, 3}, child.WorldMatrix().Col(3).Vec3())
	require.NoError(t, e.SyncLocalMatrix(mgl32.Translate3D(1, 2, 3)))
	assertVec(t, mgl32.Vec3{1, 3, 3}, child.WorldMatrix().Col(3).Vec3())

	require.NoError(t, e.Local().SetPosition(mgl32.Vec3{0, 0, 0}))
	assert.Equal(t, []scene.ChangeKind{scene.ChangeTranslation}, counter.kinds)
}

func TestOverflowingWorldPoseIsRejected(t *testing.T) {
	s := scene.New()
	parent := newChild(t, s.Root(), "Parent")
	require.NoError(t, parent.Local().SetScale(mgl32.Vec3{1e10, 1, 1}))
	child := newChild(t, parent, "Child")
	grandchild := newChild(t, child, "Grandchild")
	world := grandchild.WorldMatrix()

	assert.ErrorIs(t, child.Local().SetScale(mgl32.Vec3{1e10, 1, 1}), scene.ErrInvalidPose)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, child.Local().Scale())
	assert.Equal(t, world, grandchild.WorldMatrix())

	big := mgl32.Scale3D(1e10, 1, 1)
	assert.ErrorIs(t, child.Local().SetMatrix(big, false), scene.ErrInvalidPose)
	assert.ErrorIs(t, child.SyncLocalMatrix(big), scene.ErrInvalidPose)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, child.Local().Scale())

	// The grandchild would overflow even though the child alone stays finite.
	require.NoError(t, grandchild.Local().SetScale(mgl32.Vec3{1e5, 1, 1}))
	assert.ErrorIs(t, child.Local().SetScale(mgl32.Vec3{1e5, 1, 1}), scene.ErrInvalidPose)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, child.Local().Scale())

	loose := newChild(t, s.Root(), "Loose")
	require.NoError(t, loose.Local().SetScale(mgl32.Vec3{1e10, 1, 1}))
	assert.ErrorIs(t, loose.SetParent(parent), scene.ErrInvalidPose)
	assert.Same(t, s.Root(), loose.Parent())

	assertWorldInvariant(t, s.Root())
}

func TestChildrenIteration(t *testing.T) {
	parent := scene.NewEntity("")
	assert.Equal(t, "Object", parent.TypeTag())
	assert.Equal(t, "Object", parent.Name())

	var want []*scene.Entity
	for range 3 {
		want = append(want, newChild(t, parent, "Child"))
	}

	var got []*scene.Entity
	for i, c := range parent.Children() {
		assert.Same(t, parent.Child(i), c)
		got = append(got, c)
	}
	assert.Equal(t, want, got)
	assert.Nil(t, parent.Child(3))
	assert.True(t, parent.IsAncestorOf(want[1]))
	assert.False(t, want[1].IsAncestorOf(parent))
}

func BenchmarkPropagateDeepChain(b *testing.B) {
	s := scene.New()
	top := scene.NewEntity("Top")
	cur := top
	for range 256 {
		next := scene.NewEntity("Link")
		_ = next.SetParent(cur)
		cur = next
	}
	_ = s.Add(top)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = top.Local().SetPosition(mgl32.Vec3{float32(i), 0, 0})
	}
}
