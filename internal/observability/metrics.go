// Package observability collects the node's Prometheus metrics on a private
// registry and serves them over HTTP.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all metric instruments of the node, registered on one
// private registry so tests can create isolated instances. All recording
// methods are nil-safe; a component wired without metrics simply records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	Pipeline *PipelineMetrics
	Reporter *ReporterMetrics
	MQTT     *MQTTMetrics
	Command  *CommandMetrics
}

// NewMetrics creates all instruments on a fresh registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{registry: registry}
	var err error
	if m.Pipeline, err = newPipelineMetrics(registry); err != nil {
		return nil, err
	}
	if m.Reporter, err = newReporterMetrics(registry); err != nil {
		return nil, err
	}
	if m.MQTT, err = newMQTTMetrics(registry); err != nil {
		return nil, err
	}
	if m.Command, err = newCommandMetrics(registry); err != nil {
		return nil, err
	}
	return m, nil
}

// Registry exposes the underlying registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// PipelineMetrics instruments the sampling loop.
type PipelineMetrics struct {
	cyclesTotal        prometheus.Counter
	cycleDuration      prometheus.Histogram
	patternTotal       *prometheus.CounterVec
	threatTotal        *prometheus.CounterVec
	wildlifeDetections prometheus.Counter
	baselineNoise      prometheus.Gauge
}

func newPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecosentinel_cycles_total",
			Help: "Completed sampling cycles",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecosentinel_cycle_duration_seconds",
			Help:    "Duration of one full sampling cycle",
			Buckets: prometheus.DefBuckets,
		}),
		patternTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecosentinel_pattern_total",
			Help: "Classified audio patterns by label",
		}, []string{"label"}),
		threatTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecosentinel_threat_total",
			Help: "Threat assessments by reason",
		}, []string{"reason"}),
		wildlifeDetections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecosentinel_wildlife_detections_total",
			Help: "Wildlife detections since start",
		}),
		baselineNoise: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ecosentinel_baseline_noise",
			Help: "Current adaptive ambient noise baseline",
		}),
	}

	collectors := []prometheus.Collector{
		m.cyclesTotal, m.cycleDuration, m.patternTotal,
		m.threatTotal, m.wildlifeDetections, m.baselineNoise,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordCycle counts one completed cycle and its duration in seconds.
func (m *PipelineMetrics) RecordCycle(seconds float64) {
	if m == nil {
		return
	}
	m.cyclesTotal.Inc()
	m.cycleDuration.Observe(seconds)
}

// RecordPattern counts a classified pattern label.
func (m *PipelineMetrics) RecordPattern(label string) {
	if m == nil {
		return
	}
	m.patternTotal.WithLabelValues(label).Inc()
}

// RecordThreat counts one threat reason.
func (m *PipelineMetrics) RecordThreat(reason string) {
	if m == nil {
		return
	}
	m.threatTotal.WithLabelValues(reason).Inc()
}

// RecordWildlifeDetection counts one wildlife detection.
func (m *PipelineMetrics) RecordWildlifeDetection() {
	if m == nil {
		return
	}
	m.wildlifeDetections.Inc()
}

// SetBaseline updates the baseline gauge.
func (m *PipelineMetrics) SetBaseline(value float64) {
	if m == nil {
		return
	}
	m.baselineNoise.Set(value)
}

// ReporterMetrics instruments the HTTP report channels.
type ReporterMetrics struct {
	attempts *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func newReporterMetrics(registry *prometheus.Registry) (*ReporterMetrics, error) {
	m := &ReporterMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecosentinel_report_attempts_total",
			Help: "Report transmissions attempted per channel",
		}, []string{"channel"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecosentinel_report_failures_total",
			Help: "Report transmissions failed per channel",
		}, []string{"channel"}),
	}
	for _, c := range []prometheus.Collector{m.attempts, m.failures} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordAttempt counts one transmission attempt on the named channel.
func (m *ReporterMetrics) RecordAttempt(channel string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(channel).Inc()
}

// RecordFailure counts one failed transmission on the named channel.
func (m *ReporterMetrics) RecordFailure(channel string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(channel).Inc()
}

// MQTTMetrics instruments the telemetry mirror.
type MQTTMetrics struct {
	publishes prometheus.Counter
	failures  prometheus.Counter
	connected prometheus.Gauge
}

func newMQTTMetrics(registry *prometheus.Registry) (*MQTTMetrics, error) {
	m := &MQTTMetrics{
		publishes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecosentinel_mqtt_publishes_total",
			Help: "Telemetry records published to MQTT",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecosentinel_mqtt_failures_total",
			Help: "Failed MQTT publish attempts",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ecosentinel_mqtt_connected",
			Help: "1 when the MQTT client is connected",
		}),
	}
	for _, c := range []prometheus.Collector{m.publishes, m.failures, m.connected} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordPublish counts one successful publish.
func (m *MQTTMetrics) RecordPublish() {
	if m == nil {
		return
	}
	m.publishes.Inc()
}

// RecordFailure counts one failed publish.
func (m *MQTTMetrics) RecordFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

// SetConnected reflects the broker connection state.
func (m *MQTTMetrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

// CommandMetrics instruments the text command channel.
type CommandMetrics struct {
	commands *prometheus.CounterVec
}

func newCommandMetrics(registry *prometheus.Registry) (*CommandMetrics, error) {
	m := &CommandMetrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecosentinel_commands_total",
			Help: "Commands received by name, unknown included",
		}, []string{"command"}),
	}
	if err := registry.Register(m.commands); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordCommand counts one received command.
func (m *CommandMetrics) RecordCommand(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}
