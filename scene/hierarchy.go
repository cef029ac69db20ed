package scene

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// SetParent moves e under p, or detaches it when p is nil. Every node of the
// subtree is reported leaving the old ancestor chain (children first) and
// entering the new one, then world poses are recomputed for the whole subtree.
// The local pose is kept, so the world pose moves with the parent. A move
// under a parent whose world pose would overflow the subtree is refused with
// ErrInvalidPose; detaching always succeeds.
func (e *Entity) SetParent(p *Entity) error {
	if p == e.parent {
		return nil
	}
	if e.freed {
		return fmt.Errorf("set parent of %d: %w", e.id, ErrMissingIdentity)
	}
	if p != nil {
		if p == e || e.IsAncestorOf(p) {
			return fmt.Errorf("set parent of %d to %d: %w", e.id, p.id, ErrCyclicParent)
		}
		if p.freed {
			return fmt.Errorf("set parent of %d to %d: %w", e.id, p.id, ErrMissingIdentity)
		}
	}

	parentWorld := mgl32.Ident4()
	if p != nil {
		parentWorld = p.worldMatrix
	}
	plan, err := e.planWorld(parentWorld, e.local.Matrix(true), nil)
	if err != nil && p != nil {
		return fmt.Errorf("set parent of %d to %d: %w", e.id, p.id, err)
	}

	if old := e.parent; old != nil {
		e.Walk(func(n *Entity) { old.broadcastExit(n) }, true)
		old.children = slices.DeleteFunc(old.children, func(c *Entity) bool { return c == e })
		e.parent = nil
		e.parentMatrix = mgl32.Ident4()
	}

	if p != nil {
		e.Walk(func(n *Entity) { p.broadcastEnter(n) }, false)
		p.children = append(p.children, e)
		e.parent = p
		e.parentMatrix = p.worldMatrix
	}

	e.refreshHierarchyEnabled()
	if plan == nil {
		// A detached subtree that cannot be expressed at the origin keeps its
		// last world pose.
		return nil
	}
	// Observers of the broadcasts may have written poses inside the subtree,
	// so propagation plans again from the committed tree.
	e.onLocalChange(ChangeAll)
	return nil
}

// broadcastEnter reports n to e and every ancestor of e. The scene index and
// its handlers hear about it when the chain reaches the scene root.
func (e *Entity) broadcastEnter(n *Entity) {
	for cur := e; cur != nil; cur = cur.parent {
		for _, c := range cur.components {
			if o, ok := c.(HierarchyObserver); ok {
				o.OnEnterHierarchy(cur, n)
			}
		}
		if cur.scene != nil {
			cur.scene.enter(n)
		}
	}
}

func (e *Entity) broadcastExit(n *Entity) {
	for cur := e; cur != nil; cur = cur.parent {
		for _, c := range cur.components {
			if o, ok := c.(HierarchyObserver); ok {
				o.OnExitHierarchy(cur, n)
			}
		}
		if cur.scene != nil {
			cur.scene.exit(n)
		}
	}
}

func (e *Entity) onLocalChange(kind ChangeKind) {
	e.propagate()
	if s := e.Scene(); s != nil {
		s.stats.propagations++
	}
	if e.silent {
		return
	}
	for _, c := range e.components {
		if l, ok := c.(LocalChangeListener); ok {
			l.OnLocalTransformChange(e, kind)
		}
	}
}

type worldPose struct {
	entity *Entity
	parent mgl32.Mat4
	matrix mgl32.Mat4
	pose   pose
}

// planLocal checks that local, as the new local matrix of e, keeps the world
// pose of every node of the subtree finite. The plan is kept for the
// propagation that follows the accepted write.
func (e *Entity) planLocal(local mgl32.Mat4) error {
	plan, err := e.planWorld(e.parentMatrix, local, nil)
	if err != nil {
		return err
	}
	e.pending = plan
	return nil
}

// planWorld computes the world poses of e and its descendants, parents first,
// without committing any of them.
func (e *Entity) planWorld(parent, local mgl32.Mat4, plan []worldPose) ([]worldPose, error) {
	world := parent.Mul4(local)
	d, err := decompose(world)
	if err == nil && !finiteMat(compose(d)) {
		err = fmt.Errorf("%w: recomposed matrix is not finite", ErrInvalidPose)
	}
	if err != nil {
		return nil, fmt.Errorf("world pose of %d: %w", e.id, err)
	}
	plan = append(plan, worldPose{entity: e, parent: parent, matrix: world, pose: d})
	for _, c := range e.children {
		if plan, err = c.planWorld(world, c.local.Matrix(true), plan); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// propagate commits the planned world poses of e and its descendants, then
// tells the descendants that their parent moved.
func (e *Entity) propagate() {
	plan := e.pending
	e.pending = nil
	if plan == nil {
		var err error
		plan, err = e.planWorld(e.parentMatrix, e.local.Matrix(true), nil)
		if err != nil {
			// The subtree was checked when the write was accepted; an observer
			// may have changed it since.
			if s := e.Scene(); s != nil {
				s.logger.Warn("world pose not propagated", zap.Uint32("id", uint32(e.id)), zap.Error(err))
			}
			return
		}
	}

	for _, wp := range plan {
		wp.entity.parentMatrix = wp.parent
		wp.entity.worldMatrix = wp.matrix
		wp.entity.world.setPose(wp.pose)
	}
	for _, wp := range plan[1:] {
		for _, c := range wp.entity.components {
			if l, ok := c.(ExternalChangeListener); ok {
				l.OnExternalTransformChange(wp.entity, wp.parent)
			}
		}
	}
}

// TranslateWorld moves e by a world-space delta. Only the local translation
// changes; rotation and scale are not re-derived.
func (e *Entity) TranslateWorld(delta mgl32.Vec3) error {
	local := e.parentMatrix.Inv().Mul4x1(delta.Vec4(0)).Vec3()
	return e.local.SetPosition(e.local.Position().Add(local))
}

// SetWorldPosition places e at a world-space position.
func (e *Entity) SetWorldPosition(v mgl32.Vec3) error {
	local := e.parentMatrix.Inv().Mul4x1(v.Vec4(1)).Vec3()
	return e.local.SetPosition(local)
}

// SetWorldMatrix sets the local pose so that the world matrix becomes m.
func (e *Entity) SetWorldMatrix(m mgl32.Mat4) error {
	return e.local.SetMatrix(e.parentMatrix.Inv().Mul4(m), false)
}

// SyncLocalMatrix writes a local pose that originates from an external
// simulation. World poses still propagate, but LocalChangeListeners are not
// told, so a physics body is never fed its own result.
func (e *Entity) SyncLocalMatrix(m mgl32.Mat4) error {
	e.silent = true
	defer func() { e.silent = false }()
	return e.local.assign(m)
}

// SetEnabled sets the self-enabled flag and updates the hierarchy-enabled
// flag of e and its descendants.
func (e *Entity) SetEnabled(on bool) {
	if e.enabledSelf == on {
		return
	}
	e.enabledSelf = on
	e.refreshHierarchyEnabled()
}

func (e *Entity) refreshHierarchyEnabled() {
	want := e.enabledSelf && (e.parent == nil || e.parent.enabledHierarchy)
	if want == e.enabledHierarchy {
		return
	}
	e.setHierarchyEnabled(want)
	e.cascadeEnabled(want)
}

// cascadeEnabled flips descendants top-down. Disabling reaches every
// descendant that is still enabled; enabling skips children that are
// disabled themselves, and their subtrees stay disabled.
func (e *Entity) cascadeEnabled(on bool) {
	for _, c := range e.children {
		if on {
			if !c.enabledSelf || c.enabledHierarchy {
				continue
			}
		} else if !c.enabledHierarchy {
			continue
		}
		c.setHierarchyEnabled(on)
		c.cascadeEnabled(on)
	}
}

func (e *Entity) setHierarchyEnabled(on bool) {
	e.enabledHierarchy = on
	for _, c := range e.components {
		if l, ok := c.(EnableListener); ok {
			l.OnEnableChange(e, on)
		}
	}
}

// Destroy marks e for removal. The entity stays in the tree until the next
// Scene.Sweep.
func (e *Entity) Destroy()              { e.destroyQueued = true }
func (e *Entity) CancelDestroy()        { e.destroyQueued = false }
func (e *Entity) IsDestroyQueued() bool { return e.destroyQueued }
func (e *Entity) IsFreed() bool         { return e.freed }

// free releases e and its subtree, children first. e must already be detached.
func (e *Entity) free() int {
	n := 0
	for _, c := range e.children {
		c.parent = nil
		n += c.free()
	}
	e.children = nil
	for _, c := range e.components {
		if d, ok := c.(Disposer); ok {
			d.Dispose()
		}
	}
	e.freed = true
	return n + 1
}
