package editor

import (
	"fmt"
	"slices"

	"github.com/plus3/scenic/scene"
)

// Selection is the ordered set of selected entity IDs. The first entry is
// the primary selection the inspector shows.
type Selection struct {
	scene *scene.Scene
	ids   []scene.ID
}

func NewSelection(s *scene.Scene) *Selection {
	return &Selection{scene: s}
}

// Select adds id to the selection. In additive mode an already selected id
// is toggled off instead; otherwise the selection is replaced. Entities
// flagged FlagEditor are refused.
func (sel *Selection) Select(id scene.ID, additive bool) error {
	e, err := sel.scene.Resolve(id)
	if err != nil {
		return err
	}
	if e.HasFlag(scene.FlagEditor) {
		return fmt.Errorf("select %d: %w", id, ErrEditorEntity)
	}

	if !additive {
		sel.ids = append(sel.ids[:0], id)
		return nil
	}
	if i := slices.Index(sel.ids, id); i >= 0 {
		sel.ids = slices.Delete(sel.ids, i, i+1)
		return nil
	}
	sel.ids = append(sel.ids, id)
	return nil
}

func (sel *Selection) Deselect(id scene.ID) {
	sel.ids = slices.DeleteFunc(sel.ids, func(s scene.ID) bool { return s == id })
}

func (sel *Selection) Clear()                    { sel.ids = sel.ids[:0] }
func (sel *Selection) Len() int                  { return len(sel.ids) }
func (sel *Selection) Contains(id scene.ID) bool { return slices.Contains(sel.ids, id) }
func (sel *Selection) IDs() []scene.ID           { return slices.Clone(sel.ids) }

// Primary returns the first selected entity that is still alive.
func (sel *Selection) Primary() *scene.Entity {
	if live := sel.Resolve(); len(live) > 0 {
		return live[0]
	}
	return nil
}

// Resolve looks up every selected ID, dropping those that no longer resolve.
func (sel *Selection) Resolve() []*scene.Entity {
	out := make([]*scene.Entity, 0, len(sel.ids))
	for _, id := range sel.ids {
		if e := sel.scene.Find(id); e != nil && !e.IsDestroyQueued() {
			out = append(out, e)
		}
	}
	return out
}
