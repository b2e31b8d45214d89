package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Main.Name = "EcoSentinel-Go"
	s.Node.DeviceID = "TEST_NODE"
	s.Sensor.Interval = 5
	s.Sensor.ReadTimeout = 2
	s.Sensor.Scenario = "normal"
	s.Sensor.SampleRate = SampleRate
	s.Sensor.BufferLength = BufferLength
	s.Baseline.Smoothing = DefaultBaselineSmoothing
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejectsBadInterval(t *testing.T) {
	s := validSettings()
	s.Sensor.Interval = 0
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRejectsUnknownScenario(t *testing.T) {
	s := validSettings()
	s.Sensor.Scenario = "apocalypse"
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRejectsSmoothingOutOfRange(t *testing.T) {
	for _, v := range []float64{0, 1, -0.5, 1.5} {
		s := validSettings()
		s.Baseline.Smoothing = v
		assert.Error(t, ValidateSettings(s), "smoothing %v", v)
	}
}

func TestValidateSettingsReportURL(t *testing.T) {
	s := validSettings()
	s.Report.Enabled = true
	s.Report.Timeout = 10
	s.Report.URL = "ftp://collector.example.com/upload"
	assert.Error(t, ValidateSettings(s))

	s.Report.URL = "https://collector.example.com/api/sensor-data"
	assert.NoError(t, ValidateSettings(s))
}

func TestValidateSettingsMQTTBrokerScheme(t *testing.T) {
	s := validSettings()
	s.Report.MQTT.Enabled = true
	s.Report.MQTT.Broker = "localhost:1883"
	s.Report.MQTT.Topic = "ecosentinel/telemetry"
	assert.Error(t, ValidateSettings(s))

	s.Report.MQTT.Broker = "tcp://localhost:1883"
	assert.NoError(t, ValidateSettings(s))
}

func TestValidateSettingsSentryRequiresDSN(t *testing.T) {
	s := validSettings()
	s.Sentry.Enabled = true
	assert.Error(t, ValidateSettings(s))
	s.Sentry.DSN = "https://key@sentry.example.com/1"
	assert.NoError(t, ValidateSettings(s))
}
