package monitor

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/tphakala/ecosentinel-go/internal/command"
	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/diagnostics"
	"github.com/tphakala/ecosentinel-go/internal/emergency"
	"github.com/tphakala/ecosentinel-go/internal/errors"
	"github.com/tphakala/ecosentinel-go/internal/logging"
	"github.com/tphakala/ecosentinel-go/internal/mqtt"
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
	"github.com/tphakala/ecosentinel-go/internal/notification"
	"github.com/tphakala/ecosentinel-go/internal/observability"
	"github.com/tphakala/ecosentinel-go/internal/sensor"
	"github.com/tphakala/ecosentinel-go/internal/telemetry"
)

const shutdownGrace = 5 * time.Second

// RunNode wires every component from the settings and runs the node until
// SIGINT or SIGTERM.
func RunNode(settings *conf.Settings) error {
	log := logging.ForService("monitor")
	if log == nil {
		log = slog.Default()
	}

	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	flushDiagnostics, err := diagnostics.Init(&settings.Sentry, "ecosentinel-go")
	if err != nil {
		log.Warn("error telemetry unavailable", "error", err)
	}
	defer flushDiagnostics()

	var metrics *observability.Metrics
	var metricsServer *observability.Server
	if settings.Telemetry.Enabled {
		metrics, err = observability.NewMetrics()
		if err != nil {
			return errors.New(err).
				Component("monitor").
				Category(errors.CategoryConfiguration).
				Build()
		}
		metricsServer = observability.NewServer(settings.Telemetry.Listen, metrics)
		go func() {
			if err := metricsServer.Start(); err != nil {
				log.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	state := nodestate.New()
	notifier := notification.NewService(settings.Notification.PushURLs)
	ctrl := emergency.New(state, notifier)

	source, err := newSource(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Warn("sensor close failed", "error", err)
		}
	}()

	var reporter Reporter
	if settings.Report.Enabled {
		reporter = telemetry.NewReporter(&settings.Report, reporterMetrics(metrics))
	}

	var mirror mqtt.Client
	if settings.Report.MQTT.Enabled {
		mirror = mqtt.NewClient(&settings.Report.MQTT, settings.Main.Name, mqttMetrics(metrics))
		connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := mirror.Connect(connectCtx); err != nil {
			// the mirror is best effort, the node runs without it
			log.Warn("mqtt mirror unavailable", "error", err)
		}
		cancel()
		defer mirror.Disconnect()
	}

	var cmdServer *command.Server
	if settings.Command.Enabled {
		cmdServer = command.NewServer(settings.Command.Listen, state, ctrl, commandMetrics(metrics))
		if err := cmdServer.Start(); err != nil {
			return err
		}
	}

	m := New(settings, source, state, ctrl, reporter, mirror, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := m.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if cmdServer != nil {
		if err := cmdServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("command channel shutdown failed", "error", err)
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics endpoint shutdown failed", "error", err)
		}
	}
	return runErr
}

// newSource selects the configured sample source. Anything other than
// "simulated" names a soundcard capture device.
func newSource(settings *conf.Settings) (sensor.Source, error) {
	if settings.Sensor.Source == "" || settings.Sensor.Source == "simulated" {
		return sensor.NewSimulatedSource(settings), nil
	}
	return sensor.NewSoundcardSource(settings, nil)
}

func reporterMetrics(m *observability.Metrics) *observability.ReporterMetrics {
	if m == nil {
		return nil
	}
	return m.Reporter
}

func mqttMetrics(m *observability.Metrics) *observability.MQTTMetrics {
	if m == nil {
		return nil
	}
	return m.MQTT
}

func commandMetrics(m *observability.Metrics) *observability.CommandMetrics {
	if m == nil {
		return nil
	}
	return m.Command
}
