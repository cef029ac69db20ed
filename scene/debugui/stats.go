package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenic/scene"
)

// FrameHistory is a ring of frame times in milliseconds.
type FrameHistory struct {
	samples []float32
	next    int
	filled  int
}

func NewFrameHistory(frames int) *FrameHistory {
	return &FrameHistory{samples: make([]float32, max(frames, 1))}
}

// Push records a frame time given in seconds.
func (fh *FrameHistory) Push(dt float32) {
	fh.samples[fh.next] = dt * 1000
	fh.next = (fh.next + 1) % len(fh.samples)
	fh.filled = min(fh.filled+1, len(fh.samples))
}

// Average returns the mean of the recorded frames in milliseconds.
func (fh *FrameHistory) Average() float32 {
	if fh.filled == 0 {
		return 0
	}
	var sum float32
	for _, s := range fh.samples {
		sum += s
	}
	return sum / float32(fh.filled)
}

func (fh *FrameHistory) Samples() []float32 { return fh.samples }

// RegistrySize is one registry of a scene with its entry count. Depth is
// the nesting level under the top-level registry that owns it.
type RegistrySize struct {
	Name  string
	Len   int
	Depth int
}

type sizedHandler interface {
	Name() string
	Len() int
	Subs() []scene.Handler
}

// RegistrySizes lists the registries of s depth-first, sub-registries after
// their owner. Handlers that are not registries are skipped.
func RegistrySizes(s *scene.Scene) []RegistrySize {
	var out []RegistrySize
	var visit func(hs []scene.Handler, depth int)
	visit = func(hs []scene.Handler, depth int) {
		for _, h := range hs {
			r, ok := h.(sizedHandler)
			if !ok {
				continue
			}
			out = append(out, RegistrySize{Name: r.Name(), Len: r.Len(), Depth: depth})
			visit(r.Subs(), depth+1)
		}
	}
	visit(s.Handlers(), 0)
	return out
}

// StatsWindow shows frame timing, scene counters, per-system timings and
// the size of every registry.
type StatsWindow struct {
	scheduler *scene.Scheduler
	history   *FrameHistory
	timer     *FrameTimer
}

func NewStatsWindow(sched *scene.Scheduler, historyFrames int) *StatsWindow {
	return &StatsWindow{
		scheduler: sched,
		history:   NewFrameHistory(historyFrames),
		timer:     NewFrameTimer(),
	}
}

func (sw *StatsWindow) Render() {
	if !imgui.BeginV("Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	sw.history.Push(sw.timer.GetDeltaTime())
	s := sw.scheduler.Scene()
	st := s.Stats()
	sched := sw.scheduler.Stats()

	imgui.Text(fmt.Sprintf("Entities: %d", st.Entities))
	imgui.Text(fmt.Sprintf("Propagations: %d", st.Propagations))
	imgui.Text(fmt.Sprintf("Sweeps: %d (%d freed)", st.Sweeps, st.Freed))
	imgui.Text(fmt.Sprintf("Frames: %d, fixed steps: %d", sched.Frames, sched.FixedSteps))

	avg := sw.history.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000/avg))
	}
	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	samples := sw.history.Samples()
	imgui.PlotLinesFloatPtr("##frametime", &samples[0], int32(len(samples)))

	if imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Phase")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, sys := range sched.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(sys.Phase.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Registries") {
		for _, r := range RegistrySizes(s) {
			for range r.Depth {
				imgui.Indent()
			}
			imgui.BulletText(fmt.Sprintf("%s: %d", r.Name, r.Len))
			for range r.Depth {
				imgui.Unindent()
			}
		}
		imgui.TreePop()
	}

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
