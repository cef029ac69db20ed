package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/plus3/scenic/internal/config"
	"github.com/plus3/scenic/scene"
	dto "github.com/prometheus/client_model/go"
)

type Report struct {
	// Configuration
	Config    config.StressConfig
	FixedStep time.Duration
	Entities  int

	// Results
	TotalTime     time.Duration
	UpdateTime    Stats
	Scheduler     *scene.SchedulerStats
	Scene         scene.Stats
	DrawItems     int
	Moved         int64
	Respawned     int64
	RejectedPoses int64
	Metrics       []Metric
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

// Metric is one scenic_* sample gathered at the end of the run.
type Metric struct {
	Name  string
	Value float64
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))

	sorted := slices.Clone(s.Samples)
	slices.Sort(sorted)
	s.P99 = sorted[(len(sorted)-1)*99/100]
}

func (r *Report) addMetrics(families []*dto.MetricFamily) {
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "scenic_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += fmt.Sprintf("{%s=%q}", l.GetName(), l.GetValue())
			}
			switch {
			case m.GetGauge() != nil:
				r.Metrics = append(r.Metrics, Metric{name, m.GetGauge().GetValue()})
			case m.GetCounter() != nil:
				r.Metrics = append(r.Metrics, Metric{name, m.GetCounter().GetValue()})
			case m.GetHistogram() != nil:
				r.Metrics = append(r.Metrics, Metric{name + "_count", float64(m.GetHistogram().GetSampleCount())})
			}
		}
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Scene Stress Test Report

## Test Configuration
- **Run Duration:** {{.Config.Duration}}
- **Tree:** {{.Config.Roots}} roots, depth {{.Config.Depth}}, breadth {{.Config.Breadth}}
- **Initial Entities:** {{.Entities}}
- **Workers:** {{.Config.Workers}} (churn {{.Config.Churn}})
- **Fixed Step:** {{.FixedStep}}

## Performance Results
- **Frames:** {{.Scheduler.Frames}} ({{.Scheduler.FixedSteps}} fixed steps)
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
  - **P99:** {{.UpdateTime.P99}}

## Systems
{{range .Scheduler.Systems}}- {{.Name}} ({{.Phase}}): {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}
## Scene
- Propagations: {{.Scene.Propagations}}
- Swept: {{.Scheduler.Swept}} entities in {{.Scene.Sweeps}} sweeps
- Reparented: {{.Moved}}, respawned: {{.Respawned}}
- Draw items last frame: {{.DrawItems}}
- Rejected physics poses: {{.RejectedPoses}}

## Metrics
{{range .Metrics}}- {{.Name}} = {{.Value}}
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .Config.GCPauses}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
