package objects

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/plus3/scenic/scene"
)

// ErrUnknownValue is returned when a serialized enum name is not recognised.
var ErrUnknownValue = errors.New("objects: unknown enum value")

type enum interface{ ~uint8 }

func enumName[T enum](names []string, v T) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%d", uint8(v))
}

func parseEnum[T enum](names []string, s string) (T, error) {
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownValue)
}

// enumField exposes an enum to inspectors as its name.
func enumField[T enum](name string, names []string, ptr *T) scene.Field {
	return scene.Field{
		Name: name,
		Kind: scene.FieldString,
		Get:  func() any { return enumName(names, *ptr) },
		Set: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("field %q: %w", name, scene.ErrFieldType)
			}
			parsed, err := parseEnum[T](names, s)
			if err != nil {
				return err
			}
			*ptr = parsed
			return nil
		},
	}
}

// decodeEnum parses fields[key] into ptr when present.
func decodeEnum[T enum](fields map[string]string, key string, names []string, ptr *T) error {
	s, ok := fields[key]
	if !ok {
		return nil
	}
	v, err := parseEnum[T](names, s)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*ptr = v
	return nil
}

// encodeWith flattens c and adds the enum names in extra.
func encodeWith(c any, extra map[string]string) (map[string]string, error) {
	fields, err := scene.EncodeFields(c)
	if err != nil {
		return nil, err
	}
	maps.Copy(fields, extra)
	return fields, nil
}
