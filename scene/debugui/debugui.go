// Package debugui provides Dear ImGui editor windows for a live scene.
// Windows are editor entities carrying an ImguiItem; ImguiSystem defers their
// render functions to the end of the render phase, where edits made through
// an editor.Editor are applied directly to the scene.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenic/scene"
)

// TagImgui is the type tag of window entities. It is never registered with a
// TypeRegistry, so window entities cannot come back from a scene file.
const TagImgui = "ImguiItem"

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// NewImguiObject creates a hidden editor entity that renders fn every frame
// while it is hierarchy-enabled.
func NewImguiObject(name string, fn func()) *scene.Entity {
	e := scene.NewEntity(TagImgui, &ImguiItem{Render: fn})
	e.SetName(name)
	e.SetFlag(scene.FlagEditor|scene.FlagExcludeFromTree, true)
	e.SetFlag(scene.FlagSerializable, false)
	return e
}

// ImguiInputState tracks whether Dear ImGui is consuming mouse or keyboard
// input this frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem defers the render functions of all enabled ImguiItems and
// records the input capture state. Register it in the render phase.
type ImguiSystem struct {
	Items scene.Registry[*ImguiItem]

	input ImguiInputState
}

func (i *ImguiSystem) Execute(frame *scene.UpdateFrame) {
	io := imgui.CurrentIO()
	i.input.WantCaptureMouse = io.WantCaptureMouse()
	i.input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for _, item := range i.Items.Enabled() {
		render := item.Render
		frame.Commands.Defer(func(*scene.Scene) { render() })
	}
}

// Input returns the capture state read by the last Execute.
func (i *ImguiSystem) Input() ImguiInputState { return i.input }
