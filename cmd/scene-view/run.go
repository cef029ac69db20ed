package main

import (
	"fmt"
	"time"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/scenic/editor"
	"github.com/plus3/scenic/internal/config"
	"github.com/plus3/scenic/objects"
	"github.com/plus3/scenic/scene"
	debugui_ebiten "github.com/plus3/scenic/scene/debugui/ebiten"
	"github.com/plus3/scenic/scenefile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	s, err := openScene(logger, args)
	if err != nil {
		return err
	}
	sched := newScheduler(s, cfg.Scene, logger)
	ed := editor.New(s, editor.WithHistoryLimit(cfg.Scene.HistoryLimit))

	ebiten.SetWindowSize(cfg.View.Width, cfg.View.Height)
	ebiten.SetWindowTitle(cfg.View.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(time.Second / cfg.Scene.FrameInterval))

	backend := &debugui_ebiten.ImguiBackend{EbitenBackend: ebitenbackend.NewEbitenBackend()}
	backend.CreateWindow(cfg.View.Title, cfg.View.Width, cfg.View.Height)
	imgui.CurrentIO().SetIniFilename("")

	game, err := debugui_ebiten.NewGame(sched, backend, ed, cfg.View.Zoom)
	if err != nil {
		return err
	}

	logger.Info("opening viewer", zap.Int("entities", s.Len()), zap.Int("tps", ebiten.TPS()))
	if err := ebiten.RunGame(game); err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := scenefile.SaveScene(path, s); err != nil {
			return err
		}
		logger.Info("scene saved", zap.String("path", path))
	}
	return nil
}

// openScene loads the scene file named by args, or builds the demo scene.
func openScene(logger *zap.Logger, args []string) (*scene.Scene, error) {
	s := scene.New(scene.WithLogger(logger), scene.WithTypes(objects.NewTypes()))
	if len(args) == 0 {
		return s, buildDemo(s)
	}
	if _, err := scenefile.LoadScene(args[0], s, scene.RestoreIDs()); err != nil {
		return nil, err
	}
	return s, nil
}

// newScheduler wires physics and lights. The game adds the render phase.
func newScheduler(s *scene.Scene, cfg config.SceneConfig, logger *zap.Logger) *scene.Scheduler {
	sched := scene.NewScheduler(s, cfg.FixedStep.Seconds())
	sched.SetMaxFixedSteps(cfg.MaxFixedSteps)

	physics := objects.NewPhysicsHandler(objects.NewPointMassWorld(mgl32.Vec3(cfg.Gravity)), logger.Named("physics"))
	physics.Install(sched)
	sched.Register(scene.PhaseEarlyUpdate, &objects.LightSystem{})
	return sched
}
