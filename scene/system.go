package scene

// System represents per-frame behavior. Systems are registered with a
// Scheduler for one phase and may declare Registry fields, which are bound
// to the scene on registration, as well as custom state that persists
// between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) { f(frame) }
