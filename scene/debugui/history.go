package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenic/editor"
)

// HistoryWindow shows the undo timeline. Entries past the cursor are the
// redo tail and are drawn dimmed.
type HistoryWindow struct {
	editor *editor.Editor
}

func NewHistoryWindow(ed *editor.Editor) *HistoryWindow {
	return &HistoryWindow{editor: ed}
}

func (hw *HistoryWindow) Render() {
	if !imgui.BeginV("History", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	h := hw.editor.History()
	if imgui.Button("Undo") && h.CanUndo() {
		hw.editor.Undo()
	}
	imgui.SameLine()
	if imgui.Button("Redo") && h.CanRedo() {
		hw.editor.Redo()
	}
	imgui.SameLine()
	if imgui.Button("Clear") {
		h.Clear()
	}
	imgui.Text(fmt.Sprintf("%d / %d", h.Cursor(), h.Len()))
	imgui.Separator()

	cursor := h.Cursor()
	for i, label := range h.Labels() {
		switch {
		case i == cursor-1:
			imgui.TextColored(imgui.NewVec4(0.4, 1, 0.4, 1), fmt.Sprintf("> %s", label))
		case i >= cursor:
			imgui.TextColored(imgui.NewVec4(0.5, 0.5, 0.5, 1), fmt.Sprintf("  %s", label))
		default:
			imgui.Text(fmt.Sprintf("  %s", label))
		}
	}

	imgui.End()
}
