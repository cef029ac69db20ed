package ebiten_test

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/scenic/editor"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
	debugui_ebiten "github.com/plus3/scenic/scene/debugui/ebiten"
)

func Example() {
	// Create the Ebiten window and the ImGui backend
	backend := &debugui_ebiten.ImguiBackend{EbitenBackend: ebitenbackend.NewEbitenBackend()}
	backend.CreateWindow("Scene Editor", 1280, 720)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini

	// Build a small scene
	s := scene.New(scene.WithTypes(objects.NewTypes()))
	floor := objects.NewRenderObject(objects.PrimitivePlane)
	floor.SetName("floor")
	_ = floor.Local().SetScale(mgl32.Vec3{10, 1, 10})
	_ = floor.SetParent(s.Root())

	ball := objects.NewRenderObject(objects.PrimitiveSphere)
	_ = ball.Local().SetPosition(mgl32.Vec3{0, 1, 0})
	_ = ball.SetParent(floor)

	// The game registers the editor windows and a render system
	sched := scene.NewScheduler(s, 1.0/50)
	game, err := debugui_ebiten.NewGame(sched, backend, editor.New(s), 24)
	if err != nil {
		panic(err)
	}

	// Run the game
	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
