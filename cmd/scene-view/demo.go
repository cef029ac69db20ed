package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
	"github.com/plus3/scenic/scenefile"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo <scene.yaml>",
	Short: "Write the built-in demo scene to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := scene.New(scene.WithTypes(objects.NewTypes()))
		if err := buildDemo(s); err != nil {
			return err
		}
		return scenefile.SaveScene(args[0], s)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

// buildDemo fills s with a floor, a ring of crates, a lamp, a camera and a
// handful of balls circling inside an orbital force volume.
func buildDemo(s *scene.Scene) error {
	var err error
	add := func(e *scene.Entity, parent *scene.Entity, name string, pos mgl32.Vec3) *scene.Entity {
		if err != nil {
			return e
		}
		e.SetName(name)
		if err = e.Local().SetPosition(pos); err == nil {
			err = e.SetParent(parent)
		}
		return e
	}
	root := s.Root()

	floor := add(objects.NewRigidObject(true), root, "floor", mgl32.Vec3{})
	plane := add(objects.NewRenderObject(objects.PrimitivePlane), floor, "floor mesh", mgl32.Vec3{})
	if err == nil {
		err = plane.Local().SetScale(mgl32.Vec3{24, 1, 24})
	}
	setColor(plane, mgl32.Vec4{0.22, 0.24, 0.28, 1})

	ring := add(objects.NewObject(), root, "crates", mgl32.Vec3{})
	for i := range 8 {
		a := float64(i) * 2 * math.Pi / 8
		crate := add(objects.NewRenderObject(objects.PrimitiveCube), ring, "crate",
			mgl32.Vec3{float32(math.Cos(a)) * 9, 0.5, float32(math.Sin(a)) * 9})
		setColor(crate, mgl32.Vec4{0.8, 0.55, 0.3, 1})
	}

	add(objects.NewLightObject(objects.LightPoint), root, "lamp", mgl32.Vec3{0, 6, 0})
	cam := add(objects.NewCameraObject(objects.ProjectionPerspective), root, "camera", mgl32.Vec3{0, 12, 16})
	if err == nil {
		err = cam.Local().SetEuler(mgl32.Vec3{-35, 0, 0})
	}

	vortex := add(objects.NewForceVolumeObject(), root, "vortex", mgl32.Vec3{})
	if v, ok := scene.Component[*objects.ForceVolume](vortex); ok {
		v.Shape, v.Radius = objects.ShapeSphere, 8
		v.Mode, v.Scalar = objects.ForceOrbital, 1.5
		v.Apply = objects.ApplyVelocity
	}
	antigravity := add(objects.NewForceVolumeObject(), vortex, "antigravity", mgl32.Vec3{})
	if v, ok := scene.Component[*objects.ForceVolume](antigravity); ok {
		v.Mode, v.Vector = objects.ForceDirectional, mgl32.Vec3{0, 9.81, 0}
		v.Apply = objects.ApplyVelocity
	}

	for i := range 5 {
		ball := add(objects.NewRigidObject(false), root, "ball", mgl32.Vec3{2 + float32(i), 1, 0})
		mesh := add(objects.NewRenderObject(objects.PrimitiveSphere), ball, "ball mesh", mgl32.Vec3{})
		if err == nil {
			err = mesh.Local().SetScale(mgl32.Vec3{0.6, 0.6, 0.6})
		}
		setColor(mesh, mgl32.Vec4{0.35, 0.7, 1, 1})
	}
	return err
}

func setColor(e *scene.Entity, c mgl32.Vec4) {
	if r, ok := scene.Component[*objects.Renderer](e); ok {
		r.Color = c
	}
}
