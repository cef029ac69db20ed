package ebiten_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
	debugui_ebiten "github.com/plus3/scenic/scene/debugui/ebiten"
	"github.com/stretchr/testify/assert"
)

func newView() *debugui_ebiten.View {
	return &debugui_ebiten.View{Center: mgl32.Vec2{2, -1}, Zoom: 10, ScreenW: 200, ScreenH: 100}
}

func TestViewProjectRoundTrip(t *testing.T) {
	v := newView()
	sx, sy := v.Project(mgl32.Vec3{2, 7, -1})
	assert.Equal(t, float32(100), sx)
	assert.Equal(t, float32(50), sy)

	sx, sy = v.Project(mgl32.Vec3{3, 0, 1})
	assert.Equal(t, float32(110), sx)
	assert.Equal(t, float32(70), sy)
	assert.Equal(t, mgl32.Vec2{3, 1}, v.Unproject(sx, sy))
}

func TestViewZoomKeepsCursorPoint(t *testing.T) {
	v := newView()
	before := v.Unproject(150, 20)
	v.ZoomAt(150, 20, 2)
	assert.Equal(t, float32(20), v.Zoom)
	after := v.Unproject(150, 20)
	assert.InDelta(t, before[0], after[0], 1e-4)
	assert.InDelta(t, before[1], after[1], 1e-4)

	v.ZoomAt(0, 0, 1e6)
	assert.Equal(t, float32(200), v.Zoom)
	v.ZoomAt(0, 0, 1e-6)
	assert.Equal(t, float32(2), v.Zoom)
}

func TestViewPan(t *testing.T) {
	v := newView()
	v.Pan(20, -10)
	assert.InDelta(t, 0, v.Center[0], 1e-6)
	assert.InDelta(t, 0, v.Center[1], 1e-6)
}

func TestViewPick(t *testing.T) {
	v := newView()
	items := []objects.DrawItem{
		{ID: scene.ID(1), World: mgl32.Translate3D(2, 0, -1).Mul4(mgl32.Scale3D(4, 1, 4))},
		{ID: scene.ID(2), World: mgl32.Translate3D(3, 5, -1)},
	}

	id, ok := v.Pick(items, 111, 50)
	assert.True(t, ok)
	assert.Equal(t, scene.ID(2), id, "later items are on top")

	id, ok = v.Pick(items, 85, 35)
	assert.True(t, ok)
	assert.Equal(t, scene.ID(1), id)

	_, ok = v.Pick(items, 5, 5)
	assert.False(t, ok)
}
