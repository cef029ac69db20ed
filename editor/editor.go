// Package editor mutates a live scene reversibly. Every action is committed
// to a History as a pair of closures that capture entity IDs and resolve
// them through the scene when they run, so undo keeps working after the
// entity it refers to was destroyed and restored.
package editor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
	"go.uber.org/zap"
)

var (
	// ErrEditorEntity is returned when an editor-owned entity is selected.
	ErrEditorEntity = errors.New("editor: editor entity")
	// ErrRootEntity is returned for edits the scene root does not support.
	ErrRootEntity = errors.New("editor: scene root")
	// ErrUnknownField is returned by SetField for names the entity does not expose.
	ErrUnknownField = errors.New("editor: unknown field")
)

// DefaultHistoryLimit bounds the history of editors built by New.
const DefaultHistoryLimit = 256

type Editor struct {
	scene     *scene.Scene
	history   *History
	selection *Selection
	logger    *zap.Logger
}

type Option func(*Editor)

// WithHistoryLimit bounds the undo history to limit actions; zero keeps
// every action.
func WithHistoryLimit(limit int) Option {
	return func(ed *Editor) { ed.history = NewHistory(limit) }
}

func New(s *scene.Scene, opts ...Option) *Editor {
	ed := &Editor{
		scene:     s,
		history:   NewHistory(DefaultHistoryLimit),
		selection: NewSelection(s),
		logger:    s.Logger().Named("editor"),
	}
	for _, opt := range opts {
		opt(ed)
	}
	return ed
}

func (ed *Editor) Scene() *scene.Scene   { return ed.scene }
func (ed *Editor) History() *History     { return ed.history }
func (ed *Editor) Selection() *Selection { return ed.selection }
func (ed *Editor) Undo() bool            { return ed.history.Undo() }
func (ed *Editor) Redo() bool            { return ed.history.Redo() }

// lookup resolves id for a replayed action. A missing identity turns the
// action into a no-op.
func (ed *Editor) lookup(id scene.ID) *scene.Entity {
	e, err := ed.scene.Resolve(id)
	if err != nil {
		ed.logger.Debug("skipping edit", zap.Uint32("id", uint32(id)), zap.Error(err))
		return nil
	}
	return e
}

func (ed *Editor) editable(id scene.ID) (*scene.Entity, error) {
	e, err := ed.scene.Resolve(id)
	if err != nil {
		return nil, err
	}
	if e == ed.scene.Root() {
		return nil, fmt.Errorf("edit %d: %w", id, ErrRootEntity)
	}
	return e, nil
}

// Reparent moves id under newParent, keeping its local pose.
func (ed *Editor) Reparent(id, newParent scene.ID) error {
	e, err := ed.editable(id)
	if err != nil {
		return err
	}
	p, err := ed.scene.Resolve(newParent)
	if err != nil {
		return err
	}
	if p == e || e.IsAncestorOf(p) {
		return fmt.Errorf("reparent %d under %d: %w", id, newParent, scene.ErrCyclicParent)
	}
	oldParent := e.Parent().ID()
	if oldParent == newParent {
		return nil
	}

	ed.history.CommitLabeled("reparent "+e.Name(),
		func() { ed.reparent(id, newParent) },
		func() { ed.reparent(id, oldParent) },
	)
	return nil
}

func (ed *Editor) reparent(id, parent scene.ID) {
	e, p := ed.lookup(id), ed.lookup(parent)
	if e == nil || p == nil {
		return
	}
	if err := e.SetParent(p); err != nil {
		ed.logger.Warn("reparent failed", zap.Uint32("id", uint32(id)), zap.Error(err))
	}
}

// Delete queues id for destruction and deselects it. Undo cancels the
// pending destroy when the entity has not been swept yet, and otherwise
// rebuilds it from a snapshot with its original IDs.
func (ed *Editor) Delete(id scene.ID) error {
	e, err := ed.editable(id)
	if err != nil {
		return err
	}
	if e.IsDestroyQueued() {
		return nil
	}

	var snap snapshot
	ed.history.CommitLabeled("delete "+e.Name(),
		func() { snap = ed.destroy(id) },
		func() { ed.restore(id, snap) },
	)
	return nil
}

// Spawn instantiates a default entity of the given type tag under parent.
// Redo after undo brings back the same entity with the same ID.
func (ed *Editor) Spawn(tag string, parent scene.ID) (scene.ID, error) {
	p, err := ed.scene.Resolve(parent)
	if err != nil {
		return 0, err
	}
	e, err := ed.scene.Types().Instantiate(tag, scene.Record{
		Type:       tag,
		Enabled:    true,
		LocalScale: [3]float32{1, 1, 1},
	})
	if err != nil {
		return 0, err
	}
	if err := e.SetParent(p); err != nil {
		return 0, err
	}

	id := e.ID()
	var snap snapshot
	ed.history.Record("spawn "+e.Name(),
		func() { ed.restore(id, snap) },
		func() { snap = ed.destroy(id) },
	)
	return id, nil
}

type snapshot struct {
	rec    scene.Record
	parent scene.ID
	ok     bool
}

func (ed *Editor) destroy(id scene.ID) snapshot {
	e := ed.lookup(id)
	if e == nil {
		return snapshot{}
	}
	var snap snapshot
	snap.rec, snap.ok = scene.Serialize(e)
	if p := e.Parent(); p != nil {
		snap.parent = p.ID()
	}
	e.Destroy()
	ed.selection.Deselect(id)
	return snap
}

func (ed *Editor) restore(id scene.ID, snap snapshot) {
	if e := ed.scene.Find(id); e != nil {
		e.CancelDestroy()
		return
	}
	if !snap.ok {
		ed.logger.Debug("nothing to restore", zap.Uint32("id", uint32(id)))
		return
	}
	parent := ed.scene.Find(snap.parent)
	if _, err := ed.scene.Deserialize(ed.prune(snap.rec), parent, scene.RestoreIDs()); err != nil {
		ed.logger.Warn("restore failed", zap.Uint32("id", uint32(id)), zap.Error(err))
	}
}

// prune drops child records whose identity is still live, together with
// their subtrees. Those entities were moved out of the deleted subtree before
// it was swept and must not come back twice.
func (ed *Editor) prune(rec scene.Record) scene.Record {
	var kept []scene.Record
	for _, c := range rec.Children {
		if c.ID != 0 && ed.scene.Find(c.ID) != nil {
			continue
		}
		kept = append(kept, ed.prune(c))
	}
	rec.Children = kept
	return rec
}

// SetEnabled toggles the entity's own enabled flag.
func (ed *Editor) SetEnabled(id scene.ID, on bool) error {
	e, err := ed.editable(id)
	if err != nil {
		return err
	}
	old := e.EnabledSelf()
	if old == on {
		return nil
	}

	set := func(v bool) func() {
		return func() {
			if e := ed.lookup(id); e != nil {
				e.SetEnabled(v)
			}
		}
	}
	ed.history.CommitLabeled(fmt.Sprintf("enable %s %t", e.Name(), on), set(on), set(old))
	return nil
}

func (ed *Editor) Rename(id scene.ID, name string) error {
	e, err := ed.editable(id)
	if err != nil {
		return err
	}
	old := e.Name()
	if old == name {
		return nil
	}

	set := func(v string) func() {
		return func() {
			if e := ed.lookup(id); e != nil {
				e.SetName(v)
			}
		}
	}
	ed.history.CommitLabeled(fmt.Sprintf("rename %s to %s", old, name), set(name), set(old))
	return nil
}

// SetPosition writes the local position. Axes flagged static keep their
// current value.
func (ed *Editor) SetPosition(id scene.ID, v mgl32.Vec3) error {
	return ed.setVec3(id, "position", v, [3]scene.Flags{scene.FlagStaticPosX, scene.FlagStaticPosY, scene.FlagStaticPosZ},
		(*scene.Transform).Position, (*scene.Transform).SetPosition)
}

// SetScale writes the local scale. Axes flagged static keep their current
// value.
func (ed *Editor) SetScale(id scene.ID, v mgl32.Vec3) error {
	return ed.setVec3(id, "scale", v, [3]scene.Flags{scene.FlagStaticScaleX, scene.FlagStaticScaleY, scene.FlagStaticScaleZ},
		(*scene.Transform).Scale, (*scene.Transform).SetScale)
}

// SetEuler writes the local rotation as XYZ Euler angles in degrees. Axes
// flagged static keep their current value.
func (ed *Editor) SetEuler(id scene.ID, deg mgl32.Vec3) error {
	return ed.setVec3(id, "rotation", deg, [3]scene.Flags{scene.FlagStaticRotX, scene.FlagStaticRotY, scene.FlagStaticRotZ},
		(*scene.Transform).Euler, (*scene.Transform).SetEuler)
}

func (ed *Editor) setVec3(
	id scene.ID,
	what string,
	v mgl32.Vec3,
	static [3]scene.Flags,
	get func(*scene.Transform) mgl32.Vec3,
	set func(*scene.Transform, mgl32.Vec3) error,
) error {
	e, err := ed.editable(id)
	if err != nil {
		return err
	}
	old := get(e.Local())
	for i, f := range static {
		if e.HasFlag(f) {
			v[i] = old[i]
		}
	}
	if v == old {
		return nil
	}
	if !finite(v) {
		return fmt.Errorf("set %s of %d: %w", what, id, scene.ErrInvalidPose)
	}

	apply := func(val mgl32.Vec3) func() {
		return func() {
			e := ed.lookup(id)
			if e == nil {
				return
			}
			if err := set(e.Local(), val); err != nil {
				ed.logger.Warn("set "+what+" failed", zap.Uint32("id", uint32(id)), zap.Error(err))
			}
		}
	}
	ed.history.CommitLabeled(fmt.Sprintf("%s %s", what, e.Name()), apply(v), apply(old))
	return nil
}

// SetField assigns value to the named inspector field. Buttons are pressed
// and not recorded.
func (ed *Editor) SetField(id scene.ID, name string, value any) error {
	e, err := ed.scene.Resolve(id)
	if err != nil {
		return err
	}
	f, ok := e.Field(name)
	if !ok {
		return fmt.Errorf("field %q of %d: %w", name, id, ErrUnknownField)
	}
	if f.Kind == scene.FieldButton {
		return f.Assign(nil)
	}

	old := f.Value()
	if err := f.Assign(value); err != nil {
		return err
	}

	assign := func(v any) func() {
		return func() {
			e := ed.lookup(id)
			if e == nil {
				return
			}
			f, ok := e.Field(name)
			if !ok {
				return
			}
			if err := f.Assign(v); err != nil {
				ed.logger.Warn("set field failed", zap.Uint32("id", uint32(id)),
					zap.String("field", name), zap.Error(err))
			}
		}
	}
	ed.history.Record(fmt.Sprintf("%s.%s", e.Name(), name), assign(value), assign(old))
	return nil
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
