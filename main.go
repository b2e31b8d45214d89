package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tphakala/ecosentinel-go/cmd"
	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init()
	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	} else {
		logging.SetLevel(slog.LevelInfo)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command execution error: %v\n", err)
		os.Exit(1)
	}
}
