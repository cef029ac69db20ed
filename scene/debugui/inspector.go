package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/editor"
	"github.com/plus3/scenic/scene"
	"go.uber.org/zap"
)

// InspectorWindow edits the primary selection. Every change goes through the
// editor so it lands in the history.
type InspectorWindow struct {
	editor *editor.Editor
	logger *zap.Logger
	name   string
	nameOf scene.ID
	status string
}

func NewInspectorWindow(ed *editor.Editor) *InspectorWindow {
	return &InspectorWindow{editor: ed, logger: ed.Scene().Logger().Named("debugui")}
}

func (iw *InspectorWindow) Render() {
	if !imgui.BeginV("Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	e := iw.editor.Selection().Primary()
	if e == nil {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}
	id := e.ID()
	if iw.nameOf != id {
		iw.name, iw.nameOf = e.Name(), id
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", id))
	imgui.Text(fmt.Sprintf("Type: %s", e.TypeTag()))
	if n := iw.editor.Selection().Len(); n > 1 {
		imgui.Text(fmt.Sprintf("(+%d more selected)", n-1))
	}
	if imgui.InputTextWithHint("Name", "", &iw.name, imgui.InputTextFlagsEnterReturnsTrue, nil) {
		iw.report("rename", iw.editor.Rename(id, iw.name))
	}
	enabled := e.EnabledSelf()
	if imgui.Checkbox("Enabled", &enabled) {
		iw.report("enable", iw.editor.SetEnabled(id, enabled))
	}
	if !e.EnabledHierarchy() && e.EnabledSelf() {
		imgui.TextColored(imgui.NewVec4(0.6, 0.6, 0.6, 1), "disabled by an ancestor")
	}
	imgui.Separator()

	if imgui.TreeNodeStr("Transform") {
		local := e.Local()
		if v, ok := editVec3("position", local.Position()); ok {
			iw.report("position", iw.editor.SetPosition(id, v))
		}
		if v, ok := editVec3("rotation", local.Euler()); ok {
			iw.report("rotation", iw.editor.SetEuler(id, v))
		}
		if v, ok := editVec3("scale", local.Scale()); ok {
			iw.report("scale", iw.editor.SetScale(id, v))
		}
		w := e.World()
		imgui.Text(fmt.Sprintf("world position: %s", formatValue(w.Position())))
		imgui.TreePop()
	}

	if fields := e.Fields(); len(fields) > 0 && imgui.TreeNodeStr("Fields") {
		for _, f := range fields {
			iw.renderField(id, f)
		}
		imgui.TreePop()
	}

	imgui.Separator()
	if imgui.Button("Delete") {
		iw.report("delete", iw.editor.Delete(id))
	}
	if iw.status != "" {
		imgui.TextColored(imgui.NewVec4(1, 0.4, 0.4, 1), iw.status)
	}

	imgui.End()
}

func (iw *InspectorWindow) renderField(id scene.ID, f scene.Field) {
	set := func(v any) { iw.report(f.Name, iw.editor.SetField(id, f.Name, v)) }
	val := f.Value()

	switch f.Kind {
	case scene.FieldInt:
		v, _ := as[int32](val)
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(f.Name, &v) {
			set(v)
		}

	case scene.FieldFloat:
		v, _ := as[float32](val)
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(f.Name, &v) {
			set(v)
		}

	case scene.FieldBool:
		v, _ := as[bool](val)
		if imgui.Checkbox(f.Name, &v) {
			set(v)
		}

	case scene.FieldString:
		v, _ := as[string](val)
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(f.Name, "", &v, imgui.InputTextFlagsEnterReturnsTrue, nil) {
			set(v)
		}

	case scene.FieldVec3:
		v, _ := as[mgl32.Vec3](val)
		if nv, ok := editVec3(f.Name, v); ok {
			set(nv)
		}

	case scene.FieldQuat:
		if nv, ok := editVec3(f.Name+" (deg)", quatEuler(val)); ok {
			set(scene.QuatFromEuler(nv))
		}

	case scene.FieldColor:
		v, _ := as[mgl32.Vec4](val)
		imgui.TextColored(imgui.NewVec4(v[0], v[1], v[2], 1), "##")
		imgui.SameLine()
		if nv, ok := editFloats(f.Name, v[:]); ok {
			set(mgl32.Vec4{nv[0], nv[1], nv[2], nv[3]})
		}

	case scene.FieldButton:
		if imgui.Button(f.Name) {
			set(nil)
		}

	default:
		imgui.Text(fmt.Sprintf("%s: %s", f.Name, formatValue(val)))
	}
}

func (iw *InspectorWindow) report(action string, err error) {
	if err == nil {
		iw.status = ""
		return
	}
	iw.status = fmt.Sprintf("%s: %v", action, err)
	iw.logger.Info("editor action failed", zap.String("action", action), zap.Error(err))
}

func editVec3(label string, v mgl32.Vec3) (mgl32.Vec3, bool) {
	out, ok := editFloats(label, v[:])
	if !ok {
		return v, false
	}
	return mgl32.Vec3{out[0], out[1], out[2]}, true
}

// editFloats draws one input per component on a single line.
func editFloats(label string, v []float32) ([]float32, bool) {
	out := append([]float32(nil), v...)
	changed := false
	for i := range out {
		if i > 0 {
			imgui.SameLine()
		}
		imgui.SetNextItemWidth(70)
		if imgui.InputFloat(fmt.Sprintf("##%s%d", label, i), &out[i]) {
			changed = true
		}
	}
	imgui.SameLine()
	imgui.Text(label)
	return out, changed
}
