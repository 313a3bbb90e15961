package hook

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values for transitions.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics records hook call durations and transition outcomes.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	callDuration *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	state        prometheus.Gauge
}

// NewMetrics creates the orchestrator metrics and registers them with reg.
// If reg is nil the collectors are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hookserver",
				Subsystem: "hooks",
				Name:      "call_duration_seconds",
				Help:      "Duration of individual hook calls.",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
			},
			[]string{"hook", "phase", "result"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hookserver",
				Subsystem: "hooks",
				Name:      "transitions_total",
				Help:      "Lifecycle transitions by phase and result.",
			},
			[]string{"phase", "result"},
		),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hookserver",
			Subsystem: "hooks",
			Name:      "state",
			Help:      "Current orchestrator state (0 uninitialized .. 5 failed).",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.callDuration, m.transitions, m.state)
	}
	return m
}

func (m *Metrics) observeCall(name string, phase Phase, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.callDuration.WithLabelValues(name, string(phase), result(err)).Observe(d.Seconds())
}

func (m *Metrics) recordTransition(phase Phase, err error) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(phase), result(err)).Inc()
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
