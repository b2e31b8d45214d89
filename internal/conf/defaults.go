// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "EcoSentinel-Go")

	viper.SetDefault("node.deviceid", "ECOSENTINEL_NODE_001")
	viper.SetDefault("node.latitude", 0.000)
	viper.SetDefault("node.longitude", 0.000)
	viper.SetDefault("node.altitude", 0.0)
	viper.SetDefault("node.ecosystem", "temperate-forest")
	viper.SetDefault("node.protectionstatus", "unprotected")

	viper.SetDefault("sensor.interval", 5)
	viper.SetDefault("sensor.readtimeout", 2)
	viper.SetDefault("sensor.source", "simulated")
	viper.SetDefault("sensor.scenario", "normal")
	viper.SetDefault("sensor.seed", 0)
	viper.SetDefault("sensor.samplerate", SampleRate)
	viper.SetDefault("sensor.bufferlength", BufferLength)

	viper.SetDefault("baseline.smoothing", DefaultBaselineSmoothing)

	viper.SetDefault("report.enabled", false)
	viper.SetDefault("report.url", "http://localhost:5050/api/sensor-data")
	viper.SetDefault("report.devicetype", "environmental-sentinel")
	viper.SetDefault("report.timeout", 10)

	viper.SetDefault("report.mqtt.enabled", false)
	viper.SetDefault("report.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("report.mqtt.topic", "ecosentinel/telemetry")
	viper.SetDefault("report.mqtt.username", "")
	viper.SetDefault("report.mqtt.password", "")

	viper.SetDefault("command.enabled", true)
	viper.SetDefault("command.listen", "127.0.0.1:4047")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")

	viper.SetDefault("notification.pushurls", []string{})
}
