// conf/validate.go settings validation
package conf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateSettings checks the loaded settings for values the node cannot
// safely run with.
func ValidateSettings(settings *Settings) error {
	if settings.Main.Name == "" {
		return fmt.Errorf("main.name must not be empty")
	}
	if settings.Node.DeviceID == "" {
		return fmt.Errorf("node.deviceid must not be empty")
	}
	if settings.Sensor.Interval <= 0 {
		return fmt.Errorf("sensor.interval must be positive, got %d", settings.Sensor.Interval)
	}
	if settings.Sensor.ReadTimeout <= 0 {
		return fmt.Errorf("sensor.readtimeout must be positive, got %d", settings.Sensor.ReadTimeout)
	}
	if settings.Sensor.SampleRate <= 0 {
		return fmt.Errorf("sensor.samplerate must be positive, got %d", settings.Sensor.SampleRate)
	}
	if settings.Sensor.BufferLength <= 0 {
		return fmt.Errorf("sensor.bufferlength must be positive, got %d", settings.Sensor.BufferLength)
	}

	switch settings.Sensor.Scenario {
	case "normal", "optimal", "stress", "extreme":
	default:
		return fmt.Errorf("sensor.scenario must be one of normal, optimal, stress, extreme; got %q", settings.Sensor.Scenario)
	}

	if settings.Baseline.Smoothing <= 0 || settings.Baseline.Smoothing >= 1 {
		return fmt.Errorf("baseline.smoothing must be in (0,1), got %f", settings.Baseline.Smoothing)
	}

	if settings.Report.Enabled {
		if err := validateEndpointURL(settings.Report.URL); err != nil {
			return fmt.Errorf("report.url: %w", err)
		}
		if settings.Report.Timeout <= 0 {
			return fmt.Errorf("report.timeout must be positive, got %d", settings.Report.Timeout)
		}
	}

	if settings.Report.MQTT.Enabled {
		if !strings.Contains(settings.Report.MQTT.Broker, "://") {
			return fmt.Errorf("report.mqtt.broker must include a scheme (tcp://host:port)")
		}
		if settings.Report.MQTT.Topic == "" {
			return fmt.Errorf("report.mqtt.topic must not be empty")
		}
	}

	if settings.Command.Enabled && settings.Command.Listen == "" {
		return fmt.Errorf("command.listen must not be empty when the command channel is enabled")
	}
	if settings.Telemetry.Enabled && settings.Telemetry.Listen == "" {
		return fmt.Errorf("telemetry.listen must not be empty when telemetry is enabled")
	}
	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn must be set when sentry is enabled")
	}

	return nil
}

func validateEndpointURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL host must not be empty")
	}
	return nil
}
