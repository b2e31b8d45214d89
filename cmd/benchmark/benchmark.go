package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/emergency"
	"github.com/tphakala/ecosentinel-go/internal/monitor"
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
	"github.com/tphakala/ecosentinel-go/internal/sensor"
)

// cycles holds the cycle count flag value
var cycles int

func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run a sampling pipeline benchmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cycles < 1 || cycles > 1_000_000 {
				return fmt.Errorf("cycle count must be between 1 and 1000000, got %d", cycles)
			}
			return runBenchmark(settings, cycles)
		},
	}

	cmd.Flags().IntVarP(&cycles, "cycles", "n", 1000, "number of synthetic cycles to run")

	return cmd
}

// runBenchmark drives the pure pipeline with the simulated source, without
// reporting or metrics, and prints the throughput.
func runBenchmark(settings *conf.Settings, n int) error {
	if settings.Sensor.Seed == 0 {
		settings.Sensor.Seed = 42
	}
	source := sensor.NewSimulatedSource(settings)
	defer func() { _ = source.Close() }()

	state := nodestate.New()
	ctrl := emergency.New(state, nil)
	m := monitor.New(settings, source, state, ctrl, nil, nil, nil)

	fmt.Printf("Running %d synthetic cycles (scenario %q, buffer %d samples)\n",
		n, settings.Sensor.Scenario, settings.Sensor.BufferLength)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := m.RunCycle(ctx); err != nil {
			return fmt.Errorf("cycle %d failed: %w", i, err)
		}
	}
	elapsed := time.Since(start)

	snap := state.Snapshot()
	fmt.Printf("Completed %d cycles in %v (%.0f cycles/sec)\n",
		n, elapsed.Round(time.Millisecond), float64(n)/elapsed.Seconds())
	fmt.Printf("Final baseline %.2f, wildlife detections %d, emergency %t\n",
		snap.BaselineNoise, snap.WildlifeDetections, snap.EmergencyMode)

	return nil
}
