package debugui

import (
	"fmt"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenic/editor"
	"github.com/plus3/scenic/scene"
	"go.uber.org/zap"
)

// HierarchyWindow lists the scene tree. Clicking a row selects it; in move
// mode the next click picks the new parent of the selection instead.
type HierarchyWindow struct {
	editor    *editor.Editor
	logger    *zap.Logger
	filter    string
	additive  bool
	collapsed map[scene.ID]bool
	moving    []scene.ID
	status    string
}

func NewHierarchyWindow(ed *editor.Editor) *HierarchyWindow {
	return &HierarchyWindow{
		editor:    ed,
		logger:    ed.Scene().Logger().Named("debugui"),
		collapsed: make(map[scene.ID]bool),
	}
}

func (hw *HierarchyWindow) Render() {
	if !imgui.BeginV("Hierarchy", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.InputTextWithHint("##filter", "Filter...", &hw.filter, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		hw.filter = ""
	}
	imgui.Checkbox("Multi-select", &hw.additive)

	if len(hw.moving) > 0 {
		imgui.TextColored(imgui.NewVec4(1, 0.8, 0.3, 1), fmt.Sprintf("Moving %d: pick a new parent", len(hw.moving)))
		imgui.SameLine()
		if imgui.Button("To Root") {
			hw.pick(hw.editor.Scene().Root().ID())
		}
		imgui.SameLine()
		if imgui.Button("Cancel") {
			hw.moving = nil
		}
	}
	imgui.Separator()

	sel := hw.editor.Selection()
	for _, row := range HierarchyRows(hw.editor.Scene().Root(), hw.filter, hw.isCollapsed) {
		for range row.Depth {
			imgui.Indent()
		}

		if row.HasChildren && hw.filter == "" {
			toggle := "-"
			if hw.collapsed[row.ID] {
				toggle = "+"
			}
			if imgui.Button(fmt.Sprintf("%s##toggle%d", toggle, row.ID)) {
				hw.collapsed[row.ID] = !hw.collapsed[row.ID]
			}
			imgui.SameLine()
		}

		if !row.Enabled {
			imgui.PushStyleColorVec4(imgui.ColText, imgui.NewVec4(0.5, 0.5, 0.5, 1))
		}
		label := fmt.Sprintf("%s [%s]##%d", row.Name, row.Tag, row.ID)
		if imgui.SelectableBoolV(label, sel.Contains(row.ID), 0, imgui.NewVec2(0, 0)) {
			hw.pick(row.ID)
		}
		if !row.Enabled {
			imgui.PopStyleColor()
		}

		for range row.Depth {
			imgui.Unindent()
		}
	}

	imgui.Separator()
	hw.renderActions()
	if hw.status != "" {
		imgui.TextColored(imgui.NewVec4(1, 0.4, 0.4, 1), hw.status)
	}

	imgui.End()
}

func (hw *HierarchyWindow) renderActions() {
	ed := hw.editor
	parent := ed.Scene().Root().ID()
	if p := ed.Selection().Primary(); p != nil {
		parent = p.ID()
	}

	for i, tag := range ed.Scene().Types().Tags() {
		if i > 0 {
			imgui.SameLine()
		}
		if imgui.Button("+ " + tag) {
			id, err := ed.Spawn(tag, parent)
			if hw.report("spawn", err) {
				hw.report("select", ed.Selection().Select(id, false))
			}
		}
	}

	if ed.Selection().Len() == 0 {
		return
	}
	if imgui.Button("Move") {
		hw.moving = ed.Selection().IDs()
	}
	imgui.SameLine()
	if imgui.Button("Delete") {
		for _, id := range ed.Selection().IDs() {
			hw.report("delete", ed.Delete(id))
		}
	}
}

func (hw *HierarchyWindow) pick(id scene.ID) {
	if len(hw.moving) == 0 {
		hw.report("select", hw.editor.Selection().Select(id, hw.additive))
		return
	}
	var errs []string
	for _, m := range hw.moving {
		if err := hw.editor.Reparent(m, id); err != nil {
			errs = append(errs, err.Error())
		}
	}
	hw.moving = nil
	hw.status = strings.Join(errs, "; ")
}

// report surfaces err in the window and the log and tells whether the action
// succeeded.
func (hw *HierarchyWindow) report(action string, err error) bool {
	if err == nil {
		hw.status = ""
		return true
	}
	hw.status = fmt.Sprintf("%s: %v", action, err)
	hw.logger.Info("editor action failed", zap.String("action", action), zap.Error(err))
	return false
}

func (hw *HierarchyWindow) isCollapsed(id scene.ID) bool { return hw.collapsed[id] }
