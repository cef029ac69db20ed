package scene_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerPhaseOrder(t *testing.T) {
	s := scene.New()
	sched := scene.NewScheduler(s, 0.25)

	var order []scene.Phase
	record := func(f *scene.UpdateFrame) { order = append(order, f.Phase) }
	sched.Register(scene.PhaseFixedUpdate, scene.SystemFunc(record))
	sched.Register(scene.PhaseRender, scene.SystemFunc(record))
	sched.Register(scene.PhaseInput, scene.SystemFunc(record))
	sched.Register(scene.PhaseEarlyUpdate, scene.SystemFunc(record))

	require.NoError(t, sched.Once(0.5))
	assert.Equal(t, []scene.Phase{
		scene.PhaseInput,
		scene.PhaseEarlyUpdate,
		scene.PhaseRender,
		scene.PhaseFixedUpdate,
		scene.PhaseFixedUpdate,
	}, order)

	assert.Panics(t, func() { sched.Register(scene.Phase(9), scene.SystemFunc(record)) })
}

func TestSchedulerFixedStepAccumulates(t *testing.T) {
	s := scene.New()
	sched := scene.NewScheduler(s, 0.25)

	var dts []float64
	sched.Register(scene.PhaseFixedUpdate, scene.SystemFunc(func(f *scene.UpdateFrame) {
		dts = append(dts, f.DeltaTime)
	}))

	require.NoError(t, sched.Once(0.125))
	assert.Empty(t, dts)
	require.NoError(t, sched.Once(0.125))
	assert.Equal(t, []float64{0.25}, dts)

	sched.SetMaxFixedSteps(2)
	dts = nil
	require.NoError(t, sched.Once(10))
	assert.Len(t, dts, 2)

	dts = nil
	require.NoError(t, sched.Once(0.125))
	assert.Empty(t, dts, "backlog past the cap is dropped")

	stats := sched.Stats()
	assert.Equal(t, int64(4), stats.Frames)
	assert.Equal(t, int64(3), stats.FixedSteps)
}

type moverSystem struct {
	Markers scene.Registry[*Marker]
	frames  int
}

func (m *moverSystem) Execute(f *scene.UpdateFrame) {
	m.frames++
	for e := range m.Markers.Enabled() {
		_ = e.Local().SetPosition(e.Local().Position().Add(mgl32.Vec3{1, 0, 0}))
	}
}

func TestSchedulerBindsRegistryFields(t *testing.T) {
	s := scene.New()
	e := newChild(t, s.Root(), "E", &Marker{})

	sys := &moverSystem{}
	sched := scene.NewScheduler(s, 0)
	sched.Register(scene.PhaseEarlyUpdate, sys)

	assert.Equal(t, 1, sys.Markers.Len())
	require.NoError(t, sched.Once(0.016))
	require.NoError(t, sched.Once(0.016))
	assertVec(t, mgl32.Vec3{2, 0, 0}, e.Local().Position())

	stats := sched.Stats()
	require.Len(t, stats.Systems, 1)
	assert.Equal(t, "moverSystem", stats.Systems[0].Name)
	assert.Equal(t, int64(2), stats.Systems[0].ExecutionCount)
	assert.Equal(t, int64(2), stats.TotalExecutions)
}

func TestSchedulerSweepsAtFrameEnd(t *testing.T) {
	s := scene.New()
	victim := newChild(t, s.Root(), "Victim")
	sched := scene.NewScheduler(s, 0)

	var seen []bool
	sched.Register(scene.PhaseInput, scene.SystemFunc(func(f *scene.UpdateFrame) {
		victim.Destroy()
	}))
	sched.Register(scene.PhaseRender, scene.SystemFunc(func(f *scene.UpdateFrame) {
		seen = append(seen, f.Scene.Find(victim.ID()) != nil)
	}))

	require.NoError(t, sched.Once(0.016))
	assert.Equal(t, []bool{true}, seen)
	assert.True(t, victim.IsFreed())
	assert.Equal(t, int64(1), sched.Stats().Swept)
}

func TestSchedulerFlushesBetweenPhases(t *testing.T) {
	s := scene.New()
	parent := newChild(t, s.Root(), "Parent")
	child := newChild(t, s.Root(), "Child")
	sched := scene.NewScheduler(s, 0)

	sched.Register(scene.PhaseInput, scene.SystemFunc(func(f *scene.UpdateFrame) {
		f.Commands.Reparent(child.ID(), parent.ID())
		f.Commands.Reparent(parent.ID(), child.ID())
	}))
	var parentSeen *scene.Entity
	sched.Register(scene.PhaseEarlyUpdate, scene.SystemFunc(func(f *scene.UpdateFrame) {
		parentSeen = child.Parent()
	}))

	err := sched.Once(0.016)
	assert.ErrorIs(t, err, scene.ErrCyclicParent)
	assert.Same(t, parent, parentSeen)
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	s := scene.New()
	sched := scene.NewScheduler(s, 0)
	ticks := make(chan struct{}, 64)
	sched.Register(scene.PhaseInput, scene.SystemFunc(func(*scene.UpdateFrame) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("scheduler never ran a frame")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "fixed-update", scene.PhaseFixedUpdate.String())
	assert.Equal(t, "Phase(9)", scene.Phase(9).String())
}
