package main

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/internal/config"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
	"golang.org/x/sync/errgroup"
)

// workload is an input-phase system. It snapshots the render registry and
// fans the poses out to worker goroutines, which only read the snapshot and
// write through the command buffer. The frame waits for the workers so the
// buffer is flushed right after the input phase.
type workload struct {
	Renderers scene.Registry[*objects.Renderer]

	cfg     config.StressConfig
	tops    []scene.ID
	rngs    []*rand.Rand
	poses   []scene.Pose
	elapsed float64

	respawned int64
	moved     int64
}

func newWorkload(cfg config.StressConfig) *workload {
	w := &workload{cfg: cfg}
	for i := range cfg.Workers {
		w.rngs = append(w.rngs, rand.New(rand.NewPCG(cfg.Seed, uint64(i))))
	}
	return w
}

// populate builds cfg.Roots top-level objects, each carrying a tree of
// cfg.Depth levels with cfg.Breadth children per node.
func (w *workload) populate(s *scene.Scene) error {
	rng := rand.New(rand.NewPCG(w.cfg.Seed, math.MaxUint64))

	volume := objects.NewForceVolumeObject()
	if err := s.Add(volume); err != nil {
		return err
	}

	for i := range w.cfg.Roots {
		top := objects.NewRigidObject(true)
		top.SetName("top")
		angle := 2 * math.Pi * float64(i) / float64(max(1, w.cfg.Roots))
		pos := mgl32.Vec3{float32(20 * math.Cos(angle)), 0, float32(20 * math.Sin(angle))}
		if err := top.Local().SetPosition(pos); err != nil {
			return err
		}
		if err := s.Add(top); err != nil {
			return err
		}
		w.tops = append(w.tops, top.ID())
		if err := w.grow(top, w.cfg.Depth, rng); err != nil {
			return err
		}
	}
	return nil
}

func (w *workload) grow(parent *scene.Entity, depth int, rng *rand.Rand) error {
	if depth == 0 {
		return nil
	}
	for range w.cfg.Breadth {
		var child *scene.Entity
		switch n := rng.IntN(100); {
		case n < 2:
			child = objects.NewLightObject(objects.LightPoint)
		case n < 10:
			child = objects.NewRigidObject(false)
		default:
			child = objects.NewRenderObject(objects.Primitive(1 + rng.IntN(4)))
		}
		offset := mgl32.Vec3{rng.Float32()*4 - 2, 1, rng.Float32()*4 - 2}
		if err := child.Local().SetPosition(offset); err != nil {
			return err
		}
		if err := child.SetParent(parent); err != nil {
			return err
		}
		if err := w.grow(child, depth-1, rng); err != nil {
			return err
		}
	}
	return nil
}

func (w *workload) Execute(frame *scene.UpdateFrame) {
	w.elapsed += frame.DeltaTime
	w.poses = w.Renderers.Snapshot(w.poses[:0])
	if len(w.poses) == 0 {
		return
	}

	chunk := (len(w.poses) + len(w.rngs) - 1) / len(w.rngs)
	counts := make([][2]int64, len(w.rngs))
	var g errgroup.Group
	for i, rng := range w.rngs {
		lo := min(i*chunk, len(w.poses))
		hi := min(lo+chunk, len(w.poses))
		g.Go(func() error {
			counts[i][0], counts[i][1] = w.work(frame.Commands, w.poses[lo:hi], rng)
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range counts {
		w.moved += c[0]
		w.respawned += c[1]
	}
}

// work runs on a worker goroutine. Everything it learns about the scene
// comes from poses; every change goes through cmds.
func (w *workload) work(cmds *scene.Commands, poses []scene.Pose, rng *rand.Rand) (moved, respawned int64) {
	t := float32(w.elapsed)
	for _, p := range poses {
		if !p.Enabled {
			continue
		}
		if len(w.tops) > 0 && rng.Float64() < w.cfg.Churn {
			if rng.IntN(2) == 0 {
				cmds.Reparent(p.ID, w.tops[rng.IntN(len(w.tops))])
				moved++
			} else {
				cmds.Destroy(p.ID)
				respawned++
				top := w.tops[rng.IntN(len(w.tops))]
				prim := objects.Primitive(1 + rng.IntN(4))
				cmds.Defer(func(s *scene.Scene) {
					parent := s.Find(top)
					if parent == nil {
						return
					}
					_ = objects.NewRenderObject(prim).SetParent(parent)
				})
			}
			continue
		}

		// Orbit around the parent at a radius and speed derived from the id.
		radius := 1 + float32(p.ID%7)/2
		speed := 0.5 + float32(p.ID%5)/4
		angle := t * speed
		local := mgl32.HomogRotate3DY(angle).Mul4(mgl32.Translate3D(radius, 1, 0))
		cmds.SetLocalMatrix(p.ID, local)
	}
	return moved, respawned
}
