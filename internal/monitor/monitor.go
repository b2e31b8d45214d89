// Package monitor runs the fixed-period sampling pipeline: sample, extract
// features, update the baseline, classify, assess, drive the emergency
// machine, and transmit the telemetry record.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/tphakala/ecosentinel-go/internal/assess"
	"github.com/tphakala/ecosentinel-go/internal/audio"
	"github.com/tphakala/ecosentinel-go/internal/classify"
	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/emergency"
	"github.com/tphakala/ecosentinel-go/internal/errors"
	"github.com/tphakala/ecosentinel-go/internal/logging"
	"github.com/tphakala/ecosentinel-go/internal/mqtt"
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
	"github.com/tphakala/ecosentinel-go/internal/observability"
	"github.com/tphakala/ecosentinel-go/internal/sensor"
	"github.com/tphakala/ecosentinel-go/internal/telemetry"
)

// Reporter transmits one telemetry record to the collector.
type Reporter interface {
	Report(ctx context.Context, record *telemetry.Record) error
}

// Monitor owns one node's sampling pipeline.
type Monitor struct {
	settings *conf.Settings
	source   sensor.Source
	state    *nodestate.State
	tracker  *audio.BaselineTracker
	assessor *assess.Assessor
	ctrl     *emergency.Controller
	reporter Reporter
	mirror   mqtt.Client
	metrics  *observability.Metrics
	log      *slog.Logger
}

// New wires the pipeline. reporter may be nil when collector uploads are
// disabled, mirror may be nil when the MQTT mirror is disabled, and metrics
// may be nil.
func New(settings *conf.Settings, source sensor.Source, state *nodestate.State,
	ctrl *emergency.Controller, reporter Reporter, mirror mqtt.Client,
	metrics *observability.Metrics) *Monitor {

	log := logging.ForService("monitor")
	if log == nil {
		log = slog.Default()
	}

	return &Monitor{
		settings: settings,
		source:   source,
		state:    state,
		tracker:  audio.NewBaselineTracker(state, settings.Baseline.Smoothing),
		assessor: assess.New(state),
		ctrl:     ctrl,
		reporter: reporter,
		mirror:   mirror,
		metrics:  metrics,
		log:      log,
	}
}

// Run executes cycles at the configured interval until the context is
// canceled. The first cycle runs immediately.
func (m *Monitor) Run(ctx context.Context) error {
	m.logHostInfo(ctx)

	interval := time.Duration(m.settings.Sensor.Interval) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	m.log.Info("monitoring started",
		"device_id", m.settings.Node.DeviceID,
		"interval", interval,
		"source", m.settings.Sensor.Source)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := m.RunCycle(ctx); err != nil {
		m.log.Warn("cycle failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitoring stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := m.RunCycle(ctx); err != nil {
				m.log.Warn("cycle failed", "error", err)
			}
		}
	}
}

// RunCycle executes one full pipeline cycle. Sensor and transmission
// failures degrade the cycle, they never abort the loop.
func (m *Monitor) RunCycle(ctx context.Context) error {
	start := time.Now()

	frame, samples, err := m.source.Sample(ctx)
	if err != nil {
		return errors.Wrap(err).
			Component("monitor").
			Category(errors.CategorySensorIO).
			Build()
	}

	features := audio.ExtractFeatures(samples, m.settings.Sensor.SampleRate)
	baseline := m.tracker.Update(features.Level)
	m.metricsPipeline().SetBaseline(baseline)

	label := classify.Classify(features, baseline)
	m.metricsPipeline().RecordPattern(string(label))

	verdict := m.assessor.Assess(frame, features, baseline)
	if verdict.WildlifeDetected {
		m.metricsPipeline().RecordWildlifeDetection()
	}
	for _, reason := range verdict.Reasons {
		m.metricsPipeline().RecordThreat(reason)
	}

	m.ctrl.HandleVerdict(verdict.Threat, verdict.Reasons)
	inEmergency := m.ctrl.Current() == emergency.StateEmergency

	record := telemetry.NewRecord(&m.settings.Node, &telemetry.CycleInput{
		Frame:     frame,
		Features:  features,
		Pattern:   label,
		Verdict:   verdict,
		Baseline:  baseline,
		Emergency: inEmergency,
		Samples:   samples,
	})

	if m.reporter != nil {
		// channel failures are logged inside the reporter; the next cycle
		// sends fresh data, never a retry of this record
		_ = m.reporter.Report(ctx, record)
	}
	m.mirrorRecord(ctx, record)

	m.metricsPipeline().RecordCycle(time.Since(start).Seconds())
	m.log.Debug("cycle complete",
		"level", features.Level,
		"dominant_frequency", features.DominantFrequency,
		"pattern", string(label),
		"baseline", baseline,
		"threat", verdict.Threat,
		"emergency", inEmergency)
	return nil
}

func (m *Monitor) mirrorRecord(ctx context.Context, record *telemetry.Record) {
	if m.mirror == nil || !m.mirror.IsConnected() {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		m.log.Error("record serialization failed", "error", err)
		return
	}
	if err := m.mirror.Publish(ctx, string(payload)); err != nil {
		m.log.Warn("mqtt mirror publish failed", "error", err)
	}
}

func (m *Monitor) metricsPipeline() *observability.PipelineMetrics {
	if m.metrics == nil {
		return nil
	}
	return m.metrics.Pipeline
}

func (m *Monitor) logHostInfo(ctx context.Context) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		m.log.Debug("host info unavailable", "error", err)
		return
	}
	m.log.Info("host",
		"hostname", info.Hostname,
		"os", info.OS,
		"platform", info.Platform,
		"platform_version", info.PlatformVersion,
		"kernel_arch", info.KernelArch)
}
