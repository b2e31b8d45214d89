package realtime

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/monitor"
)

// Command creates the command that runs the node in continuous monitoring
// mode.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Monitor the environment in realtime mode",
		Long:  "Start the sampling pipeline, the command channel and the collector reporting, and run until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return monitor.RunNode(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Sensor.Source, "source", viper.GetString("sensor.source"), "Sample source (\"simulated\" or a soundcard device name)")
	cmd.Flags().StringVar(&settings.Sensor.Scenario, "scenario", viper.GetString("sensor.scenario"), "Simulation scenario (normal, optimal, stress, extreme)")
	cmd.Flags().IntVar(&settings.Sensor.Interval, "interval", viper.GetInt("sensor.interval"), "Sampling interval in seconds")
	cmd.Flags().StringVar(&settings.Report.URL, "collector", viper.GetString("report.url"), "Collector endpoint URL")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "listen", viper.GetString("telemetry.listen"), "Listen address and port of telemetry endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
