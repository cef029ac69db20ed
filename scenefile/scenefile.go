// Package scenefile reads and writes scenes as YAML documents.
//
// A file holds the serialized children of a scene root:
//
//	version: 1
//	objects:
//	  - type: RenderObject
//	    id: 12
//	    enabled: true
//	    local_position: [0, 1, 0]
//	    local_scale: [1, 1, 1]
//	    local_euler_rotation: [0, 0, 0]
//	    extra_fields:
//	      primitive: Cube
package scenefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/plus3/scenic/scene"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Version is the document version written by Encode.
const Version = 1

// ErrVersion is returned for documents written by a newer format.
var ErrVersion = errors.New("scenefile: unsupported version")

type document struct {
	Version int            `yaml:"version"`
	Objects []scene.Record `yaml:"objects"`
}

func Encode(w io.Writer, records []scene.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Version: Version, Objects: records}); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return enc.Close()
}

func Decode(r io.Reader) ([]scene.Record, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("scene version %d: %w", doc.Version, ErrVersion)
	}
	return doc.Objects, nil
}

// Save writes records to path. The file is replaced atomically so a failed
// write leaves the previous scene intact.
func Save(path string, records []scene.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}

func Load(path string) ([]scene.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// SaveScene writes every serializable child of the scene root.
func SaveScene(path string, s *scene.Scene) error {
	return Save(path, scene.SerializeChildren(s.Root()))
}

// LoadScene reads path and attaches its objects under the scene root,
// next to whatever is already there. Top-level records with unknown type
// tags are skipped and logged like nested ones. It returns the number of
// top-level objects added.
func LoadScene(path string, s *scene.Scene, opts ...scene.DeserializeOption) (int, error) {
	records, err := Load(path)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, rec := range records {
		_, err := s.Deserialize(rec, nil, opts...)
		if errors.Is(err, scene.ErrUnknownType) {
			s.Logger().Debug("skipping record", zap.String("type", rec.Type), zap.Error(err))
			continue
		}
		if err != nil {
			return added, fmt.Errorf("load %s: %w", path, err)
		}
		added++
	}
	s.Logger().Info("scene loaded", zap.String("path", path), zap.Int("objects", added))
	return added, nil
}
