package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "scout",
		Short:         "Polymarket opportunity scanner and trading assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", defaultConfigPath(), "path to config file")
	root.PersistentFlags().Bool("env-only", envOnlyDefault(), "ignore the config file and read environment only")

	root.AddCommand(newServeCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newMonitorCmd())
	root.AddCommand(newCopyTradeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("SCOUT_CONFIG"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func envOnlyDefault() bool {
	raw := os.Getenv("SCOUT_ENV_ONLY")
	return raw == "1" || raw == "true" || raw == "TRUE"
}
