package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/errors"
	"github.com/tphakala/ecosentinel-go/internal/logging"
	"github.com/tphakala/ecosentinel-go/internal/observability"
)

// Channel names used in logs and metrics.
const (
	ChannelPrimary   = "primary"
	ChannelEmergency = "emergency"
)

// Request headers set on collector uploads. The emergency header marks the
// emergency channel's copy of the record.
const (
	headerDeviceType = "X-Device-Type"
	headerEmergency  = "X-Emergency"
)

const defaultTimeout = 10 * time.Second

// Reporter transmits telemetry records to the collector. The primary channel
// sends every cycle; the emergency channel additionally sends the same
// record when the node is in emergency mode at send time. The channels fail
// independently: a failure is logged and counted, never retried within the
// cycle, and the next cycle transmits fresh data.
type Reporter struct {
	client     *http.Client
	url        string
	deviceType string
	metrics    *observability.ReporterMetrics
	log        *slog.Logger
}

// NewReporter creates a Reporter from the report settings. A zero timeout
// falls back to 10 seconds; the client never blocks a cycle indefinitely.
func NewReporter(settings *conf.ReportSettings, metrics *observability.ReporterMetrics) *Reporter {
	log := logging.ForService("telemetry")
	if log == nil {
		log = slog.Default()
	}

	timeout := time.Duration(settings.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Reporter{
		client:     &http.Client{Timeout: timeout},
		url:        settings.URL,
		deviceType: settings.DeviceType,
		metrics:    metrics,
		log:        log,
	}
}

// Report sends the record on the primary channel and, when the record is
// flagged as emergency, on the emergency channel too. Each channel's error
// is handled independently; the first error is returned for the caller's
// log, after both sends were attempted.
func (r *Reporter) Report(ctx context.Context, record *Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryValidation).
			Context("record_id", record.RecordID).
			Build()
	}

	firstErr := r.send(ctx, ChannelPrimary, payload)

	if record.Emergency {
		if err := r.send(ctx, ChannelEmergency, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Reporter) send(ctx context.Context, channel string, payload []byte) error {
	r.metrics.RecordAttempt(channel)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		r.metrics.RecordFailure(channel)
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryHTTP).
			Context("channel", channel).
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "EcoSentinel-Go")
	req.Header.Set(headerDeviceType, r.deviceType)
	if channel == ChannelEmergency {
		req.Header.Set(headerEmergency, "true")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.metrics.RecordFailure(channel)
		r.log.Warn("report transmission failed", "channel", channel, "error", err)
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryNetwork).
			NetworkContext(r.url, r.client.Timeout).
			Context("channel", channel).
			Build()
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.metrics.RecordFailure(channel)
		r.log.Warn("collector rejected report", "channel", channel, "status", resp.StatusCode)
		return errors.Newf("collector returned status %d", resp.StatusCode).
			Component("telemetry").
			Category(errors.CategoryHTTP).
			NetworkContext(r.url, 0).
			Context("status_code", resp.StatusCode).
			Context("channel", channel).
			Build()
	}

	r.log.Debug("report transmitted", "channel", channel, "bytes", len(payload))
	return nil
}
