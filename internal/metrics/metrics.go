// Package metrics exposes Prometheus metrics for ffmcast sessions and the
// ffmpeg processes they drive.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/smazurov/ffmcast/internal/events"
)

const namespace = "ffmcast"

// Metrics owns a registry and the ffmcast collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	sessions      *prometheus.CounterVec
	commands      *prometheus.CounterVec
	ffmpegFPS     prometheus.Gauge
	ffmpegSpeed   prometheus.Gauge
	ffmpegBitrate prometheus.Gauge
	ffmpegFrames  prometheus.Gauge
}

// New creates a registry with the ffmcast collectors plus the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Finished streaming sessions by outcome",
		}, []string{"outcome"}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_built_total",
			Help:      "ffmpeg command lines built, by subtitle mode",
		}, []string{"subtitle"}),
		ffmpegFPS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ffmpeg",
			Name:      "fps",
			Help:      "Current ffmpeg encoding FPS",
		}),
		ffmpegSpeed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ffmpeg",
			Name:      "speed",
			Help:      "ffmpeg processing speed multiplier",
		}),
		ffmpegBitrate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ffmpeg",
			Name:      "bitrate_kbps",
			Help:      "Current ffmpeg output bitrate in kbit/s",
		}),
		ffmpegFrames: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ffmpeg",
			Name:      "frames",
			Help:      "Frames encoded by the running ffmpeg",
		}),
	}
}

// Registry returns the underlying registry for exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveProgress updates the ffmpeg gauges.
func (m *Metrics) ObserveProgress(e events.SessionProgressEvent) {
	m.ffmpegFPS.Set(e.FPS)
	m.ffmpegSpeed.Set(e.Speed)
	m.ffmpegBitrate.Set(e.BitrateKbps)
	m.ffmpegFrames.Set(float64(e.Frame))
}

// SessionFinished counts a session and zeroes the ffmpeg gauges.
func (m *Metrics) SessionFinished(e events.SessionFinishedEvent) {
	m.sessions.WithLabelValues(e.Outcome).Inc()
	m.ffmpegFPS.Set(0)
	m.ffmpegSpeed.Set(0)
	m.ffmpegBitrate.Set(0)
}

// CommandBuilt counts a built command by its subtitle mode.
func (m *Metrics) CommandBuilt(e events.CommandBuiltEvent) {
	m.commands.WithLabelValues(e.Subtitle).Inc()
}

// Attach counts the commands built by publishers on bus and returns a
// function that unsubscribes. Session progress and outcomes only arrive
// through the synchronous Observer methods.
func (m *Metrics) Attach(bus *events.Bus) func() {
	return bus.Subscribe(m.CommandBuilt)
}
