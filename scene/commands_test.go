package scene_test

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsConcurrentFill(t *testing.T) {
	s := scene.New()
	var targets []*scene.Entity
	for range 8 {
		targets = append(targets, newChild(t, s.Root(), "Target"))
	}

	cmds := s.Commands()
	var wg sync.WaitGroup
	for i, e := range targets {
		wg.Add(1)
		go func(id scene.ID, x float32) {
			defer wg.Done()
			cmds.SetLocalMatrix(id, mgl32.Translate3D(x, 0, 0))
		}(e.ID(), float32(i))
	}
	wg.Wait()
	assert.Equal(t, len(targets), cmds.Len())

	require.NoError(t, cmds.Flush(s))
	assert.Zero(t, cmds.Len())
	for i, e := range targets {
		assertVec(t, mgl32.Vec3{float32(i), 0, 0}, e.Local().Position())
	}
}

func TestCommandsFlushOrder(t *testing.T) {
	s := scene.New()
	doomed := newChild(t, s.Root(), "Doomed")
	mover := newChild(t, s.Root(), "Mover")
	target := newChild(t, s.Root(), "Target")

	cmds := s.Commands()
	var order []string
	cmds.Defer(func(*scene.Scene) {
		order = append(order, "defer")
		assert.True(t, doomed.IsDestroyQueued())
		assert.Same(t, target, mover.Parent())
		assertVec(t, mgl32.Vec3{0, 2, 0}, mover.Local().Position())
	})
	cmds.SetLocalMatrix(mover.ID(), mgl32.Translate3D(0, 2, 0))
	cmds.SetLocalMatrix(doomed.ID(), mgl32.Translate3D(9, 9, 9))
	cmds.Reparent(mover.ID(), target.ID())
	cmds.Reparent(doomed.ID(), target.ID())
	cmds.Destroy(doomed.ID())

	require.NoError(t, cmds.Flush(s))
	assert.Equal(t, []string{"defer"}, order)
	assert.Same(t, s.Root(), doomed.Parent())
	assertVec(t, mgl32.Vec3{}, doomed.Local().Position())

	cmds.Reparent(mover.ID(), 0)
	require.NoError(t, cmds.Flush(s))
	assert.Nil(t, mover.Parent())
}

func TestCommandsSkipMissingIDs(t *testing.T) {
	s := scene.New()
	gone := newChild(t, s.Root(), "Gone")
	gone.Destroy()
	s.Sweep()

	e := newChild(t, s.Root(), "E")
	cmds := s.Commands()
	cmds.Destroy(gone.ID())
	cmds.Reparent(gone.ID(), e.ID())
	cmds.Reparent(e.ID(), gone.ID())
	cmds.SetLocalMatrix(gone.ID(), mgl32.Ident4())

	require.NoError(t, cmds.Flush(s))
	assert.Same(t, s.Root(), e.Parent())
}

func TestCommandsJoinErrors(t *testing.T) {
	s := scene.New()
	a := newChild(t, s.Root(), "A")
	b := newChild(t, a, "B")
	c := newChild(t, s.Root(), "C")

	bad := mgl32.Ident4()
	bad.Set(0, 0, float32(math.NaN()))

	cmds := s.Commands()
	cmds.Reparent(a.ID(), b.ID())
	cmds.SetLocalMatrix(c.ID(), bad)
	cmds.SetLocalMatrix(a.ID(), mgl32.Translate3D(1, 0, 0))

	err := cmds.Flush(s)
	assert.ErrorIs(t, err, scene.ErrCyclicParent)
	assert.ErrorIs(t, err, scene.ErrInvalidPose)
	assertVec(t, mgl32.Vec3{1, 0, 0}, a.Local().Position())
	assertMat(t, mgl32.Ident4(), c.Local().Matrix(true))
}
