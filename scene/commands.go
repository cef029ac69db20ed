package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Commands buffers scene mutations raised outside the main phase, for example
// from worker goroutines reading a registry snapshot. The buffer is applied by
// Flush at a phase boundary. All methods are safe for concurrent use.
type Commands struct {
	mu        sync.Mutex
	destroys  []ID
	reparents []reparentCommand
	matrices  []matrixCommand
	defers    []func(*Scene)
}

type reparentCommand struct {
	entity ID
	parent ID
}

type matrixCommand struct {
	entity ID
	local  mgl32.Mat4
}

func NewCommands() *Commands {
	return &Commands{}
}

// Destroy queues a soft delete.
func (c *Commands) Destroy(entity ID) {
	c.mu.Lock()
	c.destroys = append(c.destroys, entity)
	c.mu.Unlock()
}

// Reparent queues a move of entity under parent. A zero parent detaches.
func (c *Commands) Reparent(entity, parent ID) {
	c.mu.Lock()
	c.reparents = append(c.reparents, reparentCommand{entity: entity, parent: parent})
	c.mu.Unlock()
}

// SetLocalMatrix queues an authored local pose write.
func (c *Commands) SetLocalMatrix(entity ID, m mgl32.Mat4) {
	c.mu.Lock()
	c.matrices = append(c.matrices, matrixCommand{entity: entity, local: m})
	c.mu.Unlock()
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func(*Scene)) {
	c.mu.Lock()
	c.defers = append(c.defers, fn)
	c.mu.Unlock()
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.destroys) + len(c.reparents) + len(c.matrices) + len(c.defers)
}

// Flush applies the buffer to s and resets it. Destroys are applied first and
// later operations on destroyed entities are dropped. Operations on ids that
// no longer resolve are skipped; pose and cycle errors are joined and
// returned after everything else has been applied.
func (c *Commands) Flush(s *Scene) error {
	c.mu.Lock()
	destroys, reparents, matrices, defers := c.destroys, c.reparents, c.matrices, c.defers
	c.destroys, c.reparents, c.matrices, c.defers = nil, nil, nil, nil
	c.mu.Unlock()

	destroyed := make(map[ID]bool, len(destroys))
	for _, id := range destroys {
		if e := s.Find(id); e != nil {
			e.Destroy()
			destroyed[id] = true
		} else {
			s.logger.Debug("destroy skipped", zap.Uint32("id", uint32(id)), zap.Error(ErrMissingIdentity))
		}
	}

	var errs []error
	for _, cmd := range reparents {
		if destroyed[cmd.entity] {
			continue
		}
		e := s.Find(cmd.entity)
		if e == nil {
			s.logger.Debug("reparent skipped", zap.Uint32("id", uint32(cmd.entity)), zap.Error(ErrMissingIdentity))
			continue
		}
		var parent *Entity
		if cmd.parent != 0 {
			if parent = s.Find(cmd.parent); parent == nil || destroyed[cmd.parent] {
				s.logger.Debug("reparent skipped", zap.Uint32("parent", uint32(cmd.parent)), zap.Error(ErrMissingIdentity))
				continue
			}
		}
		if err := e.SetParent(parent); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range matrices {
		if destroyed[cmd.entity] {
			continue
		}
		e := s.Find(cmd.entity)
		if e == nil {
			s.logger.Debug("matrix skipped", zap.Uint32("id", uint32(cmd.entity)), zap.Error(ErrMissingIdentity))
			continue
		}
		if err := e.local.SetMatrix(cmd.local, false); err != nil {
			errs = append(errs, fmt.Errorf("entity %d: %w", cmd.entity, err))
		}
	}

	for _, fn := range defers {
		fn(s)
	}

	return errors.Join(errs...)
}
