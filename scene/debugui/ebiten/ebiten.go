// Package ebiten runs a scene inside an Ebiten game loop with the Dear ImGui
// editor windows on top of a top-down view of the render list.
package ebiten

import (
	"image/color"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/scenic/editor"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
	"github.com/plus3/scenic/scene/debugui"
	"go.uber.org/zap"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

var (
	background = color.RGBA{24, 26, 30, 255}
	axisColor  = color.RGBA{70, 74, 82, 255}
	highlight  = color.RGBA{255, 200, 60, 255}
)

// Game implements ebiten.Game. Update wraps one scheduler frame in an ImGui
// frame; Draw paints the render list and then the ImGui overlay.
type Game struct {
	Scheduler *scene.Scheduler
	Backend   *ImguiBackend
	Editor    *editor.Editor
	Renderer  *objects.RenderSystem
	UI        *debugui.Windows
	View      View

	logger  *zap.Logger
	prev    map[ebiten.Key]bool
	prevL   bool
	panning bool
	lastX   int
	lastY   int
}

// NewGame registers a RenderSystem with sched and spawns the editor windows.
func NewGame(sched *scene.Scheduler, backend *ImguiBackend, ed *editor.Editor, zoom float32) (*Game, error) {
	ui, err := debugui.SpawnDebugUI(sched, ed)
	if err != nil {
		return nil, err
	}
	renderer := &objects.RenderSystem{}
	sched.Register(scene.PhaseRender, renderer)

	return &Game{
		Scheduler: sched,
		Backend:   backend,
		Editor:    ed,
		Renderer:  renderer,
		UI:        ui,
		View:      View{Zoom: zoom},
		logger:    sched.Scene().Logger().Named("view"),
		prev:      make(map[ebiten.Key]bool),
	}, nil
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.Backend.BeginFrame()
	g.handleInput()
	if err := g.Scheduler.Once(1 / float64(ebiten.TPS())); err != nil {
		g.logger.Debug("frame finished with errors", zap.Error(err))
	}
	g.Backend.EndFrame()
	return nil
}

func (g *Game) handleInput() {
	input := g.UI.System.Input()

	if !input.WantCaptureKeyboard {
		ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
		switch {
		case ctrl && g.pressed(ebiten.KeyZ):
			g.Editor.Undo()
		case ctrl && g.pressed(ebiten.KeyY):
			g.Editor.Redo()
		case g.pressed(ebiten.KeyDelete):
			for _, id := range g.Editor.Selection().IDs() {
				if err := g.Editor.Delete(id); err != nil {
					g.logger.Info("delete failed", zap.Error(err))
				}
			}
		case g.pressed(ebiten.KeyF1):
			visible := g.UI.Entities[0].EnabledSelf()
			g.UI.SetVisible(!visible)
		}
	}

	mx, my := ebiten.CursorPosition()
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	defer func() { g.prevL, g.lastX, g.lastY = left, mx, my }()

	if input.WantCaptureMouse {
		g.panning = false
		return
	}

	if left && !g.prevL {
		additive := ebiten.IsKeyPressed(ebiten.KeyShift)
		if id, ok := g.View.Pick(g.Renderer.Items(), float32(mx), float32(my)); ok {
			if err := g.Editor.Selection().Select(id, additive); err != nil {
				g.logger.Debug("select failed", zap.Error(err))
			}
		} else if !additive {
			g.Editor.Selection().Clear()
		}
	}

	if right && g.panning {
		g.View.Pan(float32(mx-g.lastX), float32(my-g.lastY))
	}
	g.panning = right

	if _, dy := ebiten.Wheel(); dy != 0 {
		g.View.ZoomAt(float32(mx), float32(my), 1+float32(dy)*0.1)
	}
}

// pressed reports a key going down this tick.
func (g *Game) pressed(k ebiten.Key) bool {
	down := ebiten.IsKeyPressed(k)
	was := g.prev[k]
	g.prev[k] = down
	return down && !was
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	ox, oy := g.View.Project(mgl32.Vec3{})
	w, h := float32(g.View.ScreenW), float32(g.View.ScreenH)
	vector.StrokeLine(screen, 0, oy, w, oy, 1, axisColor, false)
	vector.StrokeLine(screen, ox, 0, ox, h, 1, axisColor, false)

	sel := g.Editor.Selection()
	for _, item := range g.Renderer.Items() {
		cx, cy, hw, hh := g.View.Footprint(item)
		c := toRGBA(item.Color)
		switch item.Primitive {
		case objects.PrimitiveSphere, objects.PrimitiveCapsule:
			vector.DrawFilledCircle(screen, cx, cy, max(hw, hh), c, true)
		default:
			vector.DrawFilledRect(screen, cx-hw, cy-hh, hw*2, hh*2, c, false)
		}
		if sel.Contains(item.ID) {
			vector.StrokeRect(screen, cx-hw-2, cy-hh-2, hw*2+4, hh*2+4, 2, highlight, false)
		}
	}

	g.Backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Layout(outsideWidth, outsideHeight)
	g.View.ScreenW, g.View.ScreenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func toRGBA(c mgl32.Vec4) color.RGBA {
	ch := func(v float32) uint8 { return uint8(max(0, min(1, v)) * 255) }
	return color.RGBA{ch(c[0]), ch(c[1]), ch(c[2]), ch(c[3])}
}
