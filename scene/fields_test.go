package scene_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lamp struct {
	Label     string
	Intensity float32    `inspect:"intensity"`
	Samples   int
	On        bool
	Offset    mgl32.Vec3
	Tint      mgl32.Vec4 `inspect:",color"`
	Raw       mgl32.Vec4
	Secret    string `inspect:"-"`
	Reset     func()
	internal  int
}

func TestFieldsOf(t *testing.T) {
	pressed := 0
	l := &lamp{Label: "a", Intensity: 1, Reset: func() { pressed++ }}
	fields := scene.FieldsOf(l)

	var names []string
	kinds := map[string]scene.FieldKind{}
	for _, f := range fields {
		names = append(names, f.Name)
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, []string{"Label", "intensity", "Samples", "On", "Offset", "Tint", "Reset"}, names)
	assert.Equal(t, scene.FieldFloat, kinds["intensity"])
	assert.Equal(t, scene.FieldInt, kinds["Samples"])
	assert.Equal(t, scene.FieldVec3, kinds["Offset"])
	assert.Equal(t, scene.FieldColor, kinds["Tint"])
	assert.Equal(t, scene.FieldButton, kinds["Reset"])

	require.NoError(t, fields[1].Assign(2.5))
	assert.Equal(t, float32(2.5), l.Intensity)
	require.NoError(t, fields[2].Assign(int64(4)))
	assert.Equal(t, 4, l.Samples)
	require.NoError(t, fields[4].Assign(mgl32.Vec3{1, 2, 3}))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, fields[4].Value())

	assert.ErrorIs(t, fields[0].Assign(5), scene.ErrFieldType)
	assert.ErrorIs(t, fields[2].Assign("5"), scene.ErrFieldType)
	assert.ErrorIs(t, fields[3].Assign(nil), scene.ErrFieldType)
	assert.Equal(t, "a", l.Label)

	require.NoError(t, fields[6].Assign(nil))
	assert.Equal(t, 1, pressed)

	assert.Nil(t, scene.FieldsOf(lamp{}))
	assert.Nil(t, scene.FieldsOf((*lamp)(nil)))
}

func TestEntityFields(t *testing.T) {
	e := scene.NewEntity("Object")
	var mass float32
	e.AddField(scene.Field{Name: "mass", Kind: scene.FieldFloat, Ptr: &mass})
	e.AddField(scene.Field{
		Name: "name",
		Kind: scene.FieldString,
		Get:  func() any { return e.Name() },
		Set: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return scene.ErrFieldType
			}
			e.SetName(s)
			return nil
		},
	})

	f, ok := e.Field("mass")
	require.True(t, ok)
	require.NoError(t, f.Assign(float64(3)))
	assert.Equal(t, float32(3), mass)

	f, ok = e.Field("name")
	require.True(t, ok)
	require.NoError(t, f.Assign("renamed"))
	assert.Equal(t, "renamed", e.Name())
	assert.Equal(t, "renamed", f.Value())

	_, ok = e.Field("missing")
	assert.False(t, ok)
	assert.Len(t, e.Fields(), 2)
}

type codecComponent struct {
	Name    string     `mapstructure:"name"`
	Count   int        `mapstructure:"count"`
	Ratio   float32    `mapstructure:"ratio"`
	Visible bool       `mapstructure:"visible"`
	Axis    mgl32.Vec3 `mapstructure:"axis"`
	Hook    func()     `mapstructure:"hook"`
}

func TestFieldCodec(t *testing.T) {
	in := &codecComponent{Name: "n", Count: 3, Ratio: 0.1, Visible: true, Axis: mgl32.Vec3{0, 1, 0}}
	fields, err := scene.EncodeFields(in)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"name":    "n",
		"count":   "3",
		"ratio":   "0.1",
		"visible": "true",
		"axis":    "[0 1 0]",
	}, fields)

	out := &codecComponent{}
	require.NoError(t, scene.DecodeFields(fields, out))
	out.Hook = nil
	assert.Equal(t, codecComponent{Name: "n", Count: 3, Ratio: 0.1, Visible: true, Axis: mgl32.Vec3{0, 1, 0}}, *out)

	err = scene.DecodeFields(map[string]string{"count": "many"}, out)
	assert.Error(t, err)

	require.NoError(t, scene.DecodeFields(map[string]string{"unknown": "x", "axis": "1,2,3"}, out))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, out.Axis)
}

func TestFieldKindString(t *testing.T) {
	assert.Equal(t, "vec3", scene.FieldVec3.String())
	assert.Equal(t, "button", scene.FieldButton.String())
	assert.Equal(t, "FieldKind(99)", scene.FieldKind(99).String())
}
