package ebiten

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
)

const (
	minZoom = 2
	maxZoom = 200
)

// View is a top-down orthographic camera over the XZ plane. World X grows to
// the right of the screen and world Z grows downwards.
type View struct {
	Center  mgl32.Vec2
	Zoom    float32
	ScreenW int
	ScreenH int
}

// Project maps a world point to screen pixels.
func (v *View) Project(p mgl32.Vec3) (float32, float32) {
	sx := float32(v.ScreenW)/2 + (p[0]-v.Center[0])*v.Zoom
	sy := float32(v.ScreenH)/2 + (p[2]-v.Center[1])*v.Zoom
	return sx, sy
}

// Unproject maps screen pixels to a point on the XZ plane.
func (v *View) Unproject(sx, sy float32) mgl32.Vec2 {
	return mgl32.Vec2{
		v.Center[0] + (sx-float32(v.ScreenW)/2)/v.Zoom,
		v.Center[1] + (sy-float32(v.ScreenH)/2)/v.Zoom,
	}
}

// ZoomAt scales the view by factor while keeping the world point under the
// cursor fixed.
func (v *View) ZoomAt(sx, sy, factor float32) {
	before := v.Unproject(sx, sy)
	v.Zoom = max(minZoom, min(maxZoom, v.Zoom*factor))
	after := v.Unproject(sx, sy)
	v.Center = v.Center.Add(before.Sub(after))
}

// Pan moves the view by a screen-space drag delta.
func (v *View) Pan(dx, dy float32) {
	v.Center = v.Center.Sub(mgl32.Vec2{dx, dy}.Mul(1 / v.Zoom))
}

// Footprint returns the screen rectangle an item covers: its centre and its
// half extents along the screen axes, taken from the world X and Z scale.
func (v *View) Footprint(item objects.DrawItem) (cx, cy, hw, hh float32) {
	cx, cy = v.Project(item.World.Col(3).Vec3())
	hw = max(item.World.Col(0).Vec3().Len()*v.Zoom/2, 2)
	hh = max(item.World.Col(2).Vec3().Len()*v.Zoom/2, 2)
	return cx, cy, hw, hh
}

// Pick returns the topmost item whose footprint contains the screen point.
// Items drawn later are on top.
func (v *View) Pick(items []objects.DrawItem, sx, sy float32) (scene.ID, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		cx, cy, hw, hh := v.Footprint(items[i])
		if sx >= cx-hw && sx <= cx+hw && sy >= cy-hh && sy <= cy+hh {
			return items[i].ID, true
		}
	}
	return 0, false
}
