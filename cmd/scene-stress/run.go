package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
	"github.com/plus3/scenic/internal/config"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runStress(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	// 1. Scene, handlers and systems
	s := scene.New(scene.WithLogger(logger), scene.WithTypes(objects.NewTypes()))
	sched := scene.NewScheduler(s, cfg.Scene.FixedStep.Seconds())
	sched.SetMaxFixedSteps(cfg.Scene.MaxFixedSteps)

	physics := objects.NewPhysicsHandler(objects.NewPointMassWorld(mgl32.Vec3(cfg.Scene.Gravity)), logger)
	physics.Install(sched)

	work := newWorkload(cfg.Stress)
	sched.Register(scene.PhaseInput, work)
	sched.Register(scene.PhaseEarlyUpdate, &objects.LightSystem{})
	render := &objects.RenderSystem{}
	sched.Register(scene.PhaseRender, render)

	registry := prometheus.NewRegistry()
	frameTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scenic_frame_seconds",
		Help:    "Wall time of a scheduler frame.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
	flushErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scenic_flush_errors_total",
		Help: "Frames whose command flush reported an error.",
	})
	registry.MustRegister(scene.NewCollector(s), frameTime, flushErrors, collectors.NewGoCollector())

	// 2. Populate
	logger.Info("populating scene",
		zap.Int("roots", cfg.Stress.Roots), zap.Int("depth", cfg.Stress.Depth), zap.Int("breadth", cfg.Stress.Breadth))
	if err := work.populate(s); err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	logger.Info("population complete", zap.Int("entities", s.Len()), zap.Int("renderers", work.Renderers.Len()))

	// 3. Run the simulation loop
	report := &Report{
		Config:     cfg.Stress,
		FixedStep:  cfg.Scene.FixedStep,
		Entities:   s.Len(),
		UpdateTime: Stats{Samples: make([]time.Duration, 0, 1024)},
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running", zap.Duration("duration", cfg.Stress.Duration), zap.Int("workers", cfg.Stress.Workers))
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Stress.Duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := sched.Once(deltaTime.Seconds()); err != nil {
				flushErrors.Inc()
			}
			updateDuration := time.Since(updateStart)

			frameTime.Observe(updateDuration.Seconds())
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Scheduler = sched.Stats()
	report.Scene = s.Stats()
	report.DrawItems = len(render.Items())
	report.Moved = work.moved
	report.Respawned = work.respawned
	report.RejectedPoses = physics.Rejected()

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	report.addMetrics(families)

	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	logger.Info("simulation finished", zap.Int64("frames", report.Scheduler.Frames))
	return report.Generate(cmd.OutOrStdout())
}

func startProfile(cfg config.ProfileConfig) interface{ Stop() } {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "allocs":
		mode = profile.MemProfileAllocs
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	case "trace":
		mode = profile.TraceProfile
	default:
		return nil
	}
	return profile.Start(mode, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
}
