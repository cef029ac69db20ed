package scene

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// EncodeFields flattens the exported scalar and vector fields of a component
// struct into the string map stored in a record's extra fields. Keys follow
// `mapstructure` tags.
func EncodeFields(v any) (map[string]string, error) {
	raw := make(map[string]any)
	if err := mapstructure.Decode(v, &raw); err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	out := make(map[string]string, len(raw))
	for k, val := range raw {
		rv := reflect.ValueOf(val)
		if !rv.IsValid() {
			continue
		}
		switch rv.Kind() {
		case reflect.Func, reflect.Map, reflect.Struct, reflect.Pointer, reflect.Chan, reflect.Interface:
			continue
		case reflect.Float32:
			out[k] = strconv.FormatFloat(rv.Float(), 'g', -1, 32)
		case reflect.Array, reflect.Slice:
			out[k] = formatList(rv)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}

// DecodeFields parses extra fields into the component struct out points to.
// Unknown keys are ignored. Vectors are written as "[x y z]".
func DecodeFields(fields map[string]string, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(stringToListHook),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}

func formatList(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		el := rv.Index(i)
		switch el.Kind() {
		case reflect.Float32:
			parts[i] = strconv.FormatFloat(el.Float(), 'g', -1, 32)
		case reflect.Float64:
			parts[i] = strconv.FormatFloat(el.Float(), 'g', -1, 64)
		default:
			parts[i] = fmt.Sprint(el.Interface())
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func stringToListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	if to.Kind() != reflect.Array && to.Kind() != reflect.Slice {
		return data, nil
	}

	s := strings.Trim(strings.TrimSpace(data.(string)), "[]")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}
