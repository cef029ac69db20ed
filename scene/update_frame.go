package scene

type UpdateFrame struct {
	DeltaTime float64
	Phase     Phase
	Commands  *Commands
	Scene     *Scene
}

func newUpdateFrame(dt float64, phase Phase, scene *Scene) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Phase:     phase,
		Commands:  scene.commands,
		Scene:     scene,
	}
}
