package main

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/plus3/scenic/internal/config"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
	"github.com/plus3/scenic/scenefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func named(s *scene.Scene, name string) []*scene.Entity {
	var out []*scene.Entity
	s.Root().Walk(func(e *scene.Entity) {
		if e.Name() == name {
			out = append(out, e)
		}
	}, false)
	return out
}

// outline lists id, tag and name of every serializable entity.
func outline(s *scene.Scene) []string {
	var out []string
	s.Root().Walk(func(e *scene.Entity) {
		if e.HasFlag(scene.FlagSerializable) {
			out = append(out, fmt.Sprintf("%d %s %s", e.ID(), e.TypeTag(), e.Name()))
		}
	}, false)
	return out
}

func TestDemoSceneRoundTrips(t *testing.T) {
	s := scene.New(scene.WithTypes(objects.NewTypes()))
	require.NoError(t, buildDemo(s))
	assert.Len(t, named(s, "crate"), 8)
	assert.Len(t, named(s, "ball"), 5)

	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, scenefile.SaveScene(path, s))

	loaded, err := openScene(zaptest.NewLogger(t), []string{path})
	require.NoError(t, err)
	assert.Equal(t, s.Len(), loaded.Len())
	assert.Equal(t, outline(s), outline(loaded))

	_, err = openScene(zap.NewNop(), []string{filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestDemoBallsOrbitWithoutFalling(t *testing.T) {
	s, err := openScene(zap.NewNop(), nil)
	require.NoError(t, err)
	sched := newScheduler(s, config.Default().Scene, zap.NewNop())

	balls := named(s, "ball")
	require.Len(t, balls, 5)
	start := balls[0].WorldMatrix().Col(3).Vec3()

	for range 10 {
		require.NoError(t, sched.Once(0.02))
	}
	assert.Positive(t, sched.Stats().FixedSteps)

	end := balls[0].WorldMatrix().Col(3).Vec3()
	assert.InDelta(t, 1, end.Y(), 1e-3)
	assert.Greater(t, end.Sub(start).Len(), float32(0.01))
}
