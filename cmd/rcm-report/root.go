package main

import (
	"os"

	"github.com/spf13/cobra"
)

type cliConfig struct {
	ConfigFile string
	LogLevel   string
	JSON       bool
}

var cli cliConfig

var rootCmd = &cobra.Command{
	Use:   "rcm-report",
	Short: "RCM staffing benchmark calculator",
	Long:  "Computes RCM staffing benchmark metrics and ROI projections from the bundled reference tables, and manages the report archive schema.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cli.ConfigFile, "config", os.Getenv("RCM_CONFIG_FILE"), "Path to a config YAML (defaults to configs/config.yaml lookup)")
	pf.StringVar(&cli.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	pf.BoolVar(&cli.JSON, "json", false, "Print machine-readable JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
