package orrery

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsModule exports render loop metrics. With Addr set they are served
// at /metrics.
type MetricsModule struct {
	Addr string
}

type Metrics struct {
	Registry *prometheus.Registry
	// Addr is the bound listen address, nil when not serving.
	Addr net.Addr

	frames         prometheus.Counter
	frameSeconds   prometheus.Histogram
	drawCalls      prometheus.Gauge
	renderErrors   prometheus.Counter
	positionErrors *prometheus.CounterVec
	bodyPosition   *prometheus.GaugeVec
	simTime        prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_frames_total",
			Help: "Frames rendered",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_frame_render_seconds",
			Help:    "Time spent recording and submitting a frame",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		drawCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_draw_calls",
			Help: "Draw calls in the last frame",
		}),
		renderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_skipped_frames_total",
			Help: "Frames skipped because the surface or submit failed",
		}),
		positionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_position_errors_total",
				Help: "Position provider failures",
			},
			[]string{"body"},
		),
		bodyPosition: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orrery_body_position",
				Help: "Body translation in render space",
			},
			[]string{"body", "axis"},
		),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_sim_time_seconds",
			Help: "Simulated time passed to the position provider",
		}),
	}

	m.Registry.MustRegister(
		m.frames,
		m.frameSeconds,
		m.drawCalls,
		m.renderErrors,
		m.positionErrors,
		m.bodyPosition,
		m.simTime,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Observe records the frame st last rendered.
func (m *Metrics) Observe(st *SceneState) {
	m.frames.Inc()
	m.frameSeconds.Observe(st.Stats.FrameSeconds)
	m.drawCalls.Set(float64(st.Stats.DrawCalls))
	if st.Stats.RenderErr != nil {
		m.renderErrors.Inc()
	}
	for _, err := range st.Stats.PositionErrors {
		m.positionErrors.WithLabelValues(err.Body).Inc()
	}
	for _, b := range st.Scene.Objects {
		p := b.Position()
		m.bodyPosition.WithLabelValues(b.Name, "x").Set(float64(p[0]))
		m.bodyPosition.WithLabelValues(b.Name, "y").Set(float64(p[1]))
		m.bodyPosition.WithLabelValues(b.Name, "z").Set(float64(p[2]))
	}
	m.simTime.Set(st.Scene.SimTime)
}

func (mod MetricsModule) Install(app *App, cmd *Commands) {
	m := NewMetrics()
	if mod.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		addr, err := startHTTPServer(cmd, "metrics", mod.Addr, mux)
		if err != nil {
			cmd.Fail(err)
			return
		}
		m.Addr = addr
	}
	cmd.AddResources(m)

	app.UseSystem(
		System(metricsSystem).
			InStage(PostRender).
			InState(OnExecute(StateRunning)),
	)
}

func metricsSystem(m *Metrics, st *SceneState) {
	m.Observe(st)
}
