// config.go: settings struct and functions to load and persist node configuration.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// NodeSettings describes the static deployment descriptor attached to every
// outbound telemetry record.
type NodeSettings struct {
	DeviceID         string  // unique device identifier
	Latitude         float64 // deployment latitude
	Longitude        float64 // deployment longitude
	Altitude         float64 // deployment altitude in meters
	Ecosystem        string  // ecosystem type, e.g. "temperate-forest"
	ProtectionStatus string  // protection status of the site
}

// SensorSettings contains settings for sampling and the audio source.
type SensorSettings struct {
	Interval     int    // sampling interval in seconds
	ReadTimeout  int    // per-sample hardware read timeout in seconds
	Source       string // "simulated" or a soundcard device name
	Scenario     string // simulation scenario: normal, optimal, stress, extreme
	Seed         int64  // simulation random seed, 0 for time-based
	SampleRate   int    // audio sample rate in Hz
	BufferLength int    // audio buffer length in samples
}

// BaselineSettings contains settings for the adaptive noise baseline.
type BaselineSettings struct {
	Smoothing float64 // weight of the newest level, retained weight is 1-Smoothing
}

// MQTTSettings contains settings for the optional MQTT telemetry mirror.
type MQTTSettings struct {
	Enabled  bool   // true to mirror telemetry records to MQTT
	Broker   string // broker URI (tcp://host:port)
	Topic    string // topic for telemetry records
	Username string // MQTT username
	Password string // MQTT password
}

// ReportSettings contains settings for the collector transmission channels.
type ReportSettings struct {
	Enabled    bool         // true to enable collector uploads
	URL        string       // collector endpoint for both channels
	DeviceType string       // device type reported in the POST header
	Timeout    int          // HTTP timeout in seconds
	MQTT       MQTTSettings // MQTT mirror settings
}

// CommandSettings contains settings for the plain-text command side channel.
type CommandSettings struct {
	Enabled bool   // true to serve the command channel
	Listen  string // listen address, e.g. 127.0.0.1:4047
}

// TelemetrySettings contains settings for the Prometheus endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to enable Prometheus compatible telemetry endpoint
	Listen  string // IP address and port to listen on
}

// SentrySettings contains settings for opt-in error telemetry.
type SentrySettings struct {
	Enabled bool   // true to enable Sentry error telemetry, disabled by default
	DSN     string // Sentry DSN
}

// NotificationSettings contains settings for alert delivery.
type NotificationSettings struct {
	PushURLs []string // shoutrrr URLs for emergency alert push delivery
}

// Settings is the root configuration for the node.
type Settings struct {
	Debug bool // true to enable debug output

	Main struct {
		Name string // node name used as client/log identity
	}

	Node         NodeSettings
	Sensor       SensorSettings
	Baseline     BaselineSettings
	Report       ReportSettings
	Command      CommandSettings
	Telemetry    TelemetrySettings
	Sentry       SentrySettings
	Notification NotificationSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into a new Settings struct and stores it as
// the package-level instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets up the config search paths and reads the config file,
// creating a default one if none exists.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		return createDefaultConfig(configPaths)
	}
	return nil
}

// createDefaultConfig writes the embedded default config to the first
// writable config path and re-reads it.
func createDefaultConfig(configPaths []string) error {
	if len(configPaths) == 0 {
		return fmt.Errorf("no config paths available")
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	defaultConfig, err := configFiles.ReadFile("config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	log.Printf("Created default config file at: %s", configPath)
	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the config file search paths in priority
// order: current directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	configDir, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(configDir, "ecosentinel-go"))
	}
	homeDir, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "ecosentinel-go"))
	}
	return paths, nil
}

// Setting returns the current settings instance. Load must have been
// called first.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
