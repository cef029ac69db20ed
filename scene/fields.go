package scene

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// FieldKind tells an inspector how to draw and edit a field.
type FieldKind uint8

const (
	FieldString FieldKind = iota
	FieldInt
	FieldFloat
	FieldBool
	FieldVec3
	FieldQuat
	FieldColor
	FieldButton
)

func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "string"
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldBool:
		return "bool"
	case FieldVec3:
		return "vec3"
	case FieldQuat:
		return "quat"
	case FieldColor:
		return "color"
	case FieldButton:
		return "button"
	default:
		return fmt.Sprintf("FieldKind(%d)", uint8(k))
	}
}

// ErrFieldType is returned when a value cannot be assigned to a field.
var ErrFieldType = errors.New("scene: value does not match field type")

// Field is a named accessor an inspector can read and write without knowing
// the concrete entity type. Either Ptr or the Get/Set pair is used; buttons
// only have Press.
type Field struct {
	Name  string
	Kind  FieldKind
	Ptr   any
	Get   func() any
	Set   func(v any) error
	Press func()
}

// Value reads the current value of the field.
func (f Field) Value() any {
	if f.Get != nil {
		return f.Get()
	}
	if f.Ptr == nil {
		return nil
	}
	return reflect.ValueOf(f.Ptr).Elem().Interface()
}

// Assign writes v into the field, converting between numeric types. Buttons
// are pressed instead.
func (f Field) Assign(v any) error {
	if f.Kind == FieldButton {
		if f.Press != nil {
			f.Press()
		}
		return nil
	}
	if f.Set != nil {
		return f.Set(v)
	}
	if f.Ptr == nil {
		return fmt.Errorf("field %q is read-only", f.Name)
	}

	dst := reflect.ValueOf(f.Ptr).Elem()
	src := reflect.ValueOf(v)
	if !src.IsValid() {
		return fmt.Errorf("field %q: nil value: %w", f.Name, ErrFieldType)
	}
	if !src.Type().ConvertibleTo(dst.Type()) || (src.Kind() == reflect.String) != (dst.Kind() == reflect.String) {
		return fmt.Errorf("field %q: %s into %s: %w", f.Name, src.Type(), dst.Type(), ErrFieldType)
	}
	dst.Set(src.Convert(dst.Type()))
	return nil
}

// AddField attaches an inspector descriptor to e.
func (e *Entity) AddField(f Field) {
	e.fields = append(e.fields, f)
}

func (e *Entity) Fields() []Field { return e.fields }

// Field looks up a descriptor by name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type fieldInfo struct {
	name  string
	index int
	kind  FieldKind
}

type reflectionCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]fieldInfo
}

var fieldCache = &reflectionCache{fields: make(map[reflect.Type][]fieldInfo)}

var (
	vec3Type  = reflect.TypeOf(mgl32.Vec3{})
	vec4Type  = reflect.TypeOf(mgl32.Vec4{})
	quatType  = reflect.TypeOf(mgl32.Quat{})
	pressType = reflect.TypeOf(func() {})
)

func (rc *reflectionCache) get(t reflect.Type) []fieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fields[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fields[t]; ok {
		return cached
	}

	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("inspect")
		if tag == "-" {
			continue
		}
		name, opt, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		kind, ok := kindOf(sf.Type, opt)
		if !ok {
			continue
		}
		fields = append(fields, fieldInfo{name: name, index: i, kind: kind})
	}

	rc.fields[t] = fields
	return fields
}

func kindOf(t reflect.Type, opt string) (FieldKind, bool) {
	switch {
	case t == vec3Type:
		return FieldVec3, true
	case t == quatType:
		return FieldQuat, true
	case t == vec4Type && opt == "color":
		return FieldColor, true
	case t == pressType:
		return FieldButton, true
	}
	switch t.Kind() {
	case reflect.String:
		return FieldString, true
	case reflect.Bool:
		return FieldBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FieldInt, true
	case reflect.Float32, reflect.Float64:
		return FieldFloat, true
	}
	return 0, false
}

// FieldsOf builds descriptors for the exported fields of the struct v points
// to. The `inspect` tag renames a field, hides it with "-", or marks an
// mgl32.Vec4 as a color with ",color". Exported func() fields become buttons.
// Fields of other types are skipped.
func FieldsOf(v any) []Field {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	rv = rv.Elem()

	infos := fieldCache.get(rv.Type())
	out := make([]Field, 0, len(infos))
	for _, info := range infos {
		fv := rv.Field(info.index)
		f := Field{Name: info.name, Kind: info.kind}
		if info.kind == FieldButton {
			f.Press = func() {
				if fn, ok := fv.Interface().(func()); ok && fn != nil {
					fn()
				}
			}
		} else {
			f.Ptr = fv.Addr().Interface()
		}
		out = append(out, f)
	}
	return out
}
