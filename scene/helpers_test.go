package scene_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-4

type Marker struct {
	Label string
}

type Body struct {
	Mass float32
}

type Volume struct {
	Radius float32
}

type localCounter struct {
	kinds []scene.ChangeKind
}

func (c *localCounter) OnLocalTransformChange(_ *scene.Entity, kind scene.ChangeKind) {
	c.kinds = append(c.kinds, kind)
}

type enableCounter struct {
	flips []bool
}

func (c *enableCounter) OnEnableChange(_ *scene.Entity, enabled bool) {
	c.flips = append(c.flips, enabled)
}

type hierarchyLog struct {
	entered []scene.ID
	exited  []scene.ID
}

func (h *hierarchyLog) OnEnterHierarchy(_, entered *scene.Entity) {
	h.entered = append(h.entered, entered.ID())
}

func (h *hierarchyLog) OnExitHierarchy(_, exited *scene.Entity) {
	h.exited = append(h.exited, exited.ID())
}

type disposeLog struct {
	name string
	log  *[]string
}

func (d *disposeLog) Dispose() {
	*d.log = append(*d.log, d.name)
}

func newChild(t *testing.T, parent *scene.Entity, tag string, components ...any) *scene.Entity {
	t.Helper()
	e := scene.NewEntity(tag, components...)
	if err := e.SetParent(parent); err != nil {
		t.Fatalf("set parent: %v", err)
	}
	return e
}

// near compares with an absolute tolerance that grows with the magnitude of
// the expected value.
func near(want, got []float32, tol float32) bool {
	for i := range want {
		scale := float32(math.Max(1, math.Abs(float64(want[i]))))
		if float32(math.Abs(float64(want[i]-got[i]))) > tol*scale {
			return false
		}
	}
	return true
}

func assertMat(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assertMatTol(t, want, got, tolerance)
}

func assertMatTol(t *testing.T, want, got mgl32.Mat4, tol float32) {
	t.Helper()
	assert.True(t, near(want[:], got[:], tol), "want\n%v\ngot\n%v", want, got)
}

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assertVecTol(t, want, got, tolerance)
}

func assertVecTol(t *testing.T, want, got mgl32.Vec3, tol float32) {
	t.Helper()
	assert.True(t, near(want[:], got[:], tol), "want %v got %v", want, got)
}
