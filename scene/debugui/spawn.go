package debugui

import (
	"github.com/plus3/scenic/editor"
	"github.com/plus3/scenic/scene"
)

// Windows holds the editor windows spawned by SpawnDebugUI.
type Windows struct {
	System    *ImguiSystem
	Hierarchy *HierarchyWindow
	Inspector *InspectorWindow
	History   *HistoryWindow
	Stats     *StatsWindow
	Entities  []*scene.Entity
}

// SpawnDebugUI registers an ImguiSystem in the render phase and adds one
// window entity per editor window under the scene root. The windows render
// only while ImGui has an active frame, between the backend's BeginFrame and
// EndFrame.
func SpawnDebugUI(sched *scene.Scheduler, ed *editor.Editor) (*Windows, error) {
	w := &Windows{
		System:    &ImguiSystem{},
		Hierarchy: NewHierarchyWindow(ed),
		Inspector: NewInspectorWindow(ed),
		History:   NewHistoryWindow(ed),
		Stats:     NewStatsWindow(sched, 120),
	}
	sched.Register(scene.PhaseRender, w.System)

	root := sched.Scene().Root()
	for _, item := range []struct {
		name   string
		render func()
	}{
		{"hierarchy", w.Hierarchy.Render},
		{"inspector", w.Inspector.Render},
		{"history", w.History.Render},
		{"stats", w.Stats.Render},
	} {
		e := NewImguiObject(item.name, item.render)
		if err := e.SetParent(root); err != nil {
			return nil, err
		}
		w.Entities = append(w.Entities, e)
	}
	return w, nil
}

// SetVisible enables or disables every window entity.
func (w *Windows) SetVisible(on bool) {
	for _, e := range w.Entities {
		e.SetEnabled(on)
	}
}
