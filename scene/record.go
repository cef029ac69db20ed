package scene

import (
	"errors"
	"fmt"
	"maps"

	"go.uber.org/zap"
)

// Record is the serialized form of an entity and its subtree.
type Record struct {
	Type               string            `yaml:"type" json:"type"`
	ID                 ID                `yaml:"id,omitempty" json:"id,omitempty"`
	Name               string            `yaml:"name,omitempty" json:"name,omitempty"`
	Enabled            bool              `yaml:"enabled" json:"enabled"`
	LocalPosition      [3]float32        `yaml:"local_position,flow" json:"local_position"`
	LocalScale         [3]float32        `yaml:"local_scale,flow" json:"local_scale"`
	LocalEulerRotation [3]float32        `yaml:"local_euler_rotation,flow" json:"local_euler_rotation"`
	ExtraFields        map[string]string `yaml:"extra_fields,omitempty" json:"extra_fields,omitempty"`
	Children           []Record          `yaml:"children,omitempty" json:"children,omitempty"`
}

// Count returns the number of records in the tree rooted at r.
func (r Record) Count() int {
	n := 1
	for _, c := range r.Children {
		n += c.Count()
	}
	return n
}

// Serialize captures e and its subtree. Entities without FlagSerializable,
// and entities pending destruction, are left out together with their
// children. The second result is false when e itself is left out.
func Serialize(e *Entity) (Record, bool) {
	if !e.HasFlag(FlagSerializable) || e.freed || e.destroyQueued {
		return Record{}, false
	}

	rec := Record{
		Type:               e.typeTag,
		ID:                 e.id,
		Name:               e.name,
		Enabled:            e.enabledSelf,
		LocalPosition:      e.local.Position(),
		LocalScale:         e.local.Scale(),
		LocalEulerRotation: e.local.Euler(),
	}
	if rec.Name == rec.Type {
		rec.Name = ""
	}

	for _, c := range e.components {
		enc, ok := c.(FieldEncoder)
		if !ok {
			continue
		}
		fields, err := enc.EncodeFields()
		if err != nil {
			if s := e.Scene(); s != nil {
				s.logger.Warn("extra fields left out", zap.Uint32("id", uint32(e.id)),
					zap.String("component", fmt.Sprintf("%T", c)), zap.Error(err))
			}
			continue
		}
		if rec.ExtraFields == nil {
			rec.ExtraFields = make(map[string]string)
		}
		maps.Copy(rec.ExtraFields, fields)
	}

	for _, c := range e.children {
		if child, ok := Serialize(c); ok {
			rec.Children = append(rec.Children, child)
		}
	}
	return rec, true
}

// SerializeChildren captures every serializable child of e, typically the
// scene root.
func SerializeChildren(e *Entity) []Record {
	var out []Record
	for _, c := range e.children {
		if rec, ok := Serialize(c); ok {
			out = append(out, rec)
		}
	}
	return out
}

type deserializeOptions struct {
	restoreIDs bool
	onSkip     func(rec Record, err error)

	// live reports identities that are already taken by another entity.
	live       func(ID) bool
	onConflict func(rec Record)
	restored   map[ID]bool
}

// DeserializeOption configures Deserialize.
type DeserializeOption func(*deserializeOptions)

// RestoreIDs reassigns the identities stored in the records. A recorded
// identity that is already in use, by a live entity of the scene or by an
// earlier record of the same call, is not restored and the entity keeps its
// fresh ID.
func RestoreIDs() DeserializeOption {
	return func(o *deserializeOptions) { o.restoreIDs = true }
}

// OnSkip is called for every record dropped because its type tag is unknown.
func OnSkip(fn func(rec Record, err error)) DeserializeOption {
	return func(o *deserializeOptions) { o.onSkip = fn }
}

// Deserialize rebuilds the subtree described by rec as an unparented entity.
// Children with unknown type tags are skipped along with their subtrees and
// their siblings are still built. An unknown tag on rec itself returns an
// error wrapping ErrUnknownType.
func Deserialize(types *TypeRegistry, rec Record, opts ...DeserializeOption) (*Entity, error) {
	var o deserializeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return deserialize(types, rec, &o)
}

func deserialize(types *TypeRegistry, rec Record, o *deserializeOptions) (*Entity, error) {
	e, err := types.Instantiate(rec.Type, rec)
	if err != nil {
		return nil, err
	}
	if o.restoreIDs && rec.ID != 0 {
		if o.restored[rec.ID] || (o.live != nil && o.live(rec.ID)) {
			if o.onConflict != nil {
				o.onConflict(rec)
			}
		} else {
			if o.restored == nil {
				o.restored = make(map[ID]bool)
			}
			o.restored[rec.ID] = true
			e.SetID(rec.ID)
		}
	}

	for _, childRec := range rec.Children {
		child, err := deserialize(types, childRec, o)
		if errors.Is(err, ErrUnknownType) {
			if o.onSkip != nil {
				o.onSkip(childRec, err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := child.SetParent(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Deserialize rebuilds rec with the scene's type registry and attaches it to
// parent, or to the root when parent is nil. Skipped records are logged.
func (s *Scene) Deserialize(rec Record, parent *Entity, opts ...DeserializeOption) (*Entity, error) {
	if parent == nil {
		parent = s.root
	}
	opts = append(opts, OnSkip(func(skipped Record, err error) {
		s.logger.Debug("skipping record", zap.String("type", skipped.Type), zap.Error(err))
	}), func(o *deserializeOptions) {
		o.live = func(id ID) bool { return s.Find(id) != nil }
		o.onConflict = func(rec Record) {
			s.logger.Info("id already in use, keeping a fresh one",
				zap.Uint32("id", uint32(rec.ID)), zap.String("type", rec.Type))
		}
	})

	e, err := Deserialize(s.types, rec, opts...)
	if err != nil {
		return nil, fmt.Errorf("deserialize %q: %w", rec.Type, err)
	}
	if err := e.SetParent(parent); err != nil {
		return nil, err
	}
	return e, nil
}
