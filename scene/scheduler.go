package scene

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Phase is a step of the frame. Phases run in declaration order and the
// command buffer is flushed after each of them.
type Phase uint8

const (
	PhaseInput Phase = iota
	PhaseEarlyUpdate
	PhaseRender
	PhaseFixedUpdate

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseEarlyUpdate:
		return "early-update"
	case PhaseRender:
		return "render"
	case PhaseFixedUpdate:
		return "fixed-update"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// DefaultMaxFixedSteps caps the fixed-step catch-up per frame.
const DefaultMaxFixedSteps = 8

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          int64
	FixedSteps      int64
	Swept           int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Phase          Phase
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	phase          Phase
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type registeredSystem struct {
	system System
	stats  *systemStatsInternal
}

// Scheduler drives one scene through the frame phases: input, early update,
// render, any number of fixed steps, then the destroy sweep.
type Scheduler struct {
	scene       *Scene
	phases      [phaseCount][]registeredSystem
	order       []*systemStatsInternal
	fixedStep   float64
	maxSteps    int
	accumulator float64
	frames      int64
	fixedSteps  int64
	swept       int64
}

// NewScheduler creates a scheduler for scene. fixedStep is the simulation
// step in seconds; zero disables the fixed-update phase.
func NewScheduler(scene *Scene, fixedStep float64) *Scheduler {
	return &Scheduler{
		scene:     scene,
		fixedStep: fixedStep,
		maxSteps:  DefaultMaxFixedSteps,
	}
}

// SetMaxFixedSteps caps how many fixed steps a single frame may run.
func (s *Scheduler) SetMaxFixedSteps(n int) {
	if n > 0 {
		s.maxSteps = n
	}
}

func (s *Scheduler) Scene() *Scene { return s.scene }

// Register adds a system to a phase and binds its Registry fields.
func (s *Scheduler) Register(phase Phase, system System) {
	if phase >= phaseCount {
		panic("scene: unknown phase " + phase.String())
	}
	s.initializeRegistries(system)

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	stats := &systemStatsInternal{
		name:        systemType.Name(),
		phase:       phase,
		minDuration: time.Duration(1<<63 - 1),
	}
	s.phases[phase] = append(s.phases[phase], registeredSystem{system: system, stats: stats})
	s.order = append(s.order, stats)
}

func (s *Scheduler) initializeRegistries(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		if strings.HasPrefix(field.Type().Name(), "Registry[") {
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on Registry field: " + fieldType.Name)
			}

			initMethod.Call([]reflect.Value{
				reflect.ValueOf(s.scene),
			})
		}
	}
}

// Once runs a full frame with the given delta time in seconds. Errors from
// applying deferred commands are logged and returned; the frame still
// completes.
func (s *Scheduler) Once(dt float64) error {
	var errs []error
	flush := func() {
		if err := s.scene.commands.Flush(s.scene); err != nil {
			s.scene.logger.Warn("command flush failed", zap.Error(err))
			errs = append(errs, err)
		}
	}

	s.runPhase(PhaseInput, dt)
	flush()
	s.runPhase(PhaseEarlyUpdate, dt)
	flush()
	s.runPhase(PhaseRender, dt)
	flush()

	if s.fixedStep > 0 {
		s.accumulator += dt
		steps := 0
		for s.accumulator >= s.fixedStep && steps < s.maxSteps {
			s.runPhase(PhaseFixedUpdate, s.fixedStep)
			flush()
			s.accumulator -= s.fixedStep
			steps++
		}
		if steps == s.maxSteps && s.accumulator >= s.fixedStep {
			s.accumulator = 0
		}
		s.fixedSteps += int64(steps)
	}

	s.swept += int64(s.scene.Sweep())
	s.frames++
	return errors.Join(errs...)
}

func (s *Scheduler) runPhase(phase Phase, dt float64) {
	systems := s.phases[phase]
	if len(systems) == 0 {
		return
	}
	frame := newUpdateFrame(dt, phase, s.scene)

	for _, reg := range systems {
		start := time.Now()
		reg.system.Execute(frame)
		duration := time.Since(start)

		stats := reg.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}
}

// Run executes frames repeatedly at the given interval until the context is
// cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			_ = s.Once(dt)
		}
	}
}

// Stats returns statistics about system execution in registration order.
func (s *Scheduler) Stats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.order),
		Frames:      s.frames,
		FixedSteps:  s.fixedSteps,
		Swept:       s.swept,
		Systems:     make([]SystemStats, len(s.order)),
	}

	var totalExecs int64
	for i, internal := range s.order {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			Phase:          internal.phase,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
