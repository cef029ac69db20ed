package debugui

import (
	"fmt"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
)

// as converts a field value to the widget type T. Numeric kinds convert into
// each other; strings only come from strings.
func as[T any](v any) (T, bool) {
	var zero T
	if t, ok := v.(T); ok {
		return t, true
	}
	src := reflect.ValueOf(v)
	dst := reflect.TypeOf(zero)
	if !src.IsValid() || !src.Type().ConvertibleTo(dst) {
		return zero, false
	}
	if (src.Kind() == reflect.String) != (dst.Kind() == reflect.String) {
		return zero, false
	}
	return src.Convert(dst).Interface().(T), true
}

// quatEuler reads a rotation field as XYZ euler degrees. Values that are not
// quaternions read as no rotation.
func quatEuler(v any) mgl32.Vec3 {
	q, ok := as[mgl32.Quat](v)
	if !ok {
		return mgl32.Vec3{}
	}
	return scene.EulerFromQuat(q)
}

// formatValue renders a read-only field value.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case mgl32.Vec3:
		return fmt.Sprintf("(%.3f, %.3f, %.3f)", x[0], x[1], x[2])
	case mgl32.Vec4:
		return fmt.Sprintf("(%.3f, %.3f, %.3f, %.3f)", x[0], x[1], x[2], x[3])
	case mgl32.Quat:
		e := scene.EulerFromQuat(x)
		return fmt.Sprintf("euler (%.1f, %.1f, %.1f)", e[0], e[1], e[2])
	case float32, float64:
		return fmt.Sprintf("%.3f", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
