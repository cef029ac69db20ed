package objects

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenic/scene"
	"go.uber.org/zap"
)

// Body is a simulation body owned by a PhysicsBackend.
type Body interface {
	// SetPose teleports the body to a world matrix without scale.
	SetPose(world mgl32.Mat4)
	// Pose returns the simulated world position and rotation.
	Pose() (mgl32.Vec3, mgl32.Quat)
	SetActive(active bool)
	AddForce(f mgl32.Vec3)
	AddVelocity(dv mgl32.Vec3)
}

// PhysicsBackend simulates bodies. The scene never calls into it outside the
// fixed update phase and the registry callbacks.
type PhysicsBackend interface {
	NewBody(static bool, mass float32) Body
	Register(b Body)
	Unregister(b Body)
	Step(dt float64)
}

// RigidBody binds an entity to a backend body. Local and ancestor pose
// changes are pushed into the body; the handler pulls simulated poses back
// after each step.
type RigidBody struct {
	Static bool    `mapstructure:"static" inspect:"static"`
	Mass   float32 `mapstructure:"mass" inspect:"mass"`

	body Body
}

func NewRigidBody(static bool) *RigidBody {
	return &RigidBody{Static: static, Mass: 1}
}

// Body returns the backend body, or nil while the entity is outside a scene
// with a PhysicsHandler.
func (rb *RigidBody) Body() Body { return rb.body }

func (rb *RigidBody) OnLocalTransformChange(e *scene.Entity, _ scene.ChangeKind) { rb.push(e) }

func (rb *RigidBody) OnExternalTransformChange(e *scene.Entity, _ mgl32.Mat4) { rb.push(e) }

func (rb *RigidBody) OnEnableChange(_ *scene.Entity, enabled bool) {
	if rb.body != nil {
		rb.body.SetActive(enabled)
	}
}

func (rb *RigidBody) push(e *scene.Entity) {
	if rb.body == nil {
		return
	}
	w := e.World()
	rb.body.SetPose(w.Matrix(false))
}

func (rb *RigidBody) EncodeFields() (map[string]string, error) {
	return scene.EncodeFields(rb)
}

func (rb *RigidBody) DecodeFields(fields map[string]string) error {
	return scene.DecodeFields(fields, rb)
}

func NewRigidObject(static bool) *scene.Entity {
	rb := NewRigidBody(static)
	e := scene.NewEntity(TagRigid, rb)
	addFields(e, rb)
	return e
}

// PhysicsHandler keeps a PhysicsBackend in sync with the rigid bodies of a
// scene. Its registry owns a nested force-volume registry, so both follow the
// same enter and exit broadcasts. Registered in the fixed update phase it
// applies force volumes, steps the backend and pulls poses back.
type PhysicsHandler struct {
	bodies   *scene.Registry[*RigidBody]
	volumes  *scene.Registry[*ForceVolume]
	backend  PhysicsBackend
	logger   *zap.Logger
	rejected int64
}

func NewPhysicsHandler(backend PhysicsBackend, logger *zap.Logger) *PhysicsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &PhysicsHandler{
		bodies:  scene.NewRegistry[*RigidBody]("physics", nil),
		volumes: scene.NewRegistry[*ForceVolume]("force-volumes", nil),
		backend: backend,
		logger:  logger,
	}
	h.bodies.AddSub(h.volumes)
	h.bodies.OnAdd = h.onAdd
	h.bodies.OnRemove = h.onRemove
	return h
}

// Install registers the handler's registries with the scheduler's scene and
// the handler itself in the fixed update phase.
func (h *PhysicsHandler) Install(sched *scene.Scheduler) {
	sched.Scene().RegisterHandler(h.bodies)
	sched.Register(scene.PhaseFixedUpdate, h)
}

func (h *PhysicsHandler) Bodies() *scene.Registry[*RigidBody]    { return h.bodies }
func (h *PhysicsHandler) Volumes() *scene.Registry[*ForceVolume] { return h.volumes }

// Rejected counts simulated poses that were dropped because they were not
// finite.
func (h *PhysicsHandler) Rejected() int64 { return h.rejected }

func (h *PhysicsHandler) onAdd(e *scene.Entity, rb *RigidBody) {
	rb.body = h.backend.NewBody(rb.Static, rb.Mass)
	w := e.World()
	rb.body.SetPose(w.Matrix(false))
	rb.body.SetActive(e.EnabledHierarchy())
	h.backend.Register(rb.body)
}

func (h *PhysicsHandler) onRemove(_ *scene.Entity, rb *RigidBody) {
	if rb.body == nil {
		return
	}
	h.backend.Unregister(rb.body)
	rb.body = nil
}

func (h *PhysicsHandler) Execute(frame *scene.UpdateFrame) {
	if frame.DeltaTime == 0 {
		return
	}
	dt := float32(frame.DeltaTime)

	for ve, volume := range h.volumes.Enabled() {
		world := ve.WorldMatrix()
		for _, rb := range h.bodies.Enabled() {
			if rb.Static || rb.body == nil {
				continue
			}
			volume.TryApply(world, rb.body, dt)
		}
	}

	h.backend.Step(frame.DeltaTime)

	for e, rb := range h.bodies.Enabled() {
		if rb.Static || rb.body == nil {
			continue
		}
		pos, rot := rb.body.Pose()
		if !finiteVec3(pos) || !finiteQuat(rot) {
			h.rejected++
			h.logger.Warn("non-finite physics pose, skipping update",
				zap.Uint32("id", uint32(e.ID())), zap.String("name", e.Name()))
			continue
		}

		w := e.World()
		s := w.Scale()
		world := mgl32.Translate3D(pos.Elem()).Mul4(rot.Mat4()).Mul4(mgl32.Scale3D(s.Elem()))
		if err := e.SyncLocalMatrix(e.ParentMatrix().Inv().Mul4(world)); err != nil {
			h.rejected++
			h.logger.Warn("physics pose rejected", zap.Uint32("id", uint32(e.ID())), zap.Error(err))
		}
	}
}

func finiteVec3(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

func finiteQuat(q mgl32.Quat) bool {
	return finiteVec3(q.V) && !math.IsNaN(float64(q.W)) && !math.IsInf(float64(q.W), 0)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}
