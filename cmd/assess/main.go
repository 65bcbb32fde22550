package main

import (
	"fmt"
	"os"

	"github.com/rg0now/device-assessment/pkg/analyzer"
	"github.com/rg0now/device-assessment/pkg/catalog"
	"github.com/rg0now/device-assessment/pkg/config"
	"github.com/rg0now/device-assessment/pkg/logger"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile  string
	catalogPath string
	currentYear int
	environment string
}

func main() {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:   "device-assessment",
		Short: "Score devices and recommend reuse, donation or e-waste",
		Long: `A decision-support tool that scores a computing device against a
fixed rubric (hardware testing, SOE specifications, physical condition,
warranty and age) and recommends a disposition: REUSE, DONATE or E-WASTE.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&g.catalogPath, "catalog", "", "Device database JSON (default from CATALOG_PATH)")
	rootCmd.PersistentFlags().IntVar(&g.currentYear, "current-year", 0, "Year ages are derived against (default: this year)")
	rootCmd.PersistentFlags().StringVar(&g.environment, "env", "", "Environment: development or production")

	rootCmd.AddCommand(assessCmd(&g))
	rootCmd.AddCommand(batchCmd(&g))
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(lookupCmd(&g))
	rootCmd.AddCommand(serveCmd(&g))

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime is the wired set of components a command works with.
type runtime struct {
	cfg      *config.Config
	store    *catalog.Store
	analyzer *analyzer.Analyzer
}

// setup loads configuration, starts logging and loads the device database.
// A missing or broken database is not fatal: every lookup simply misses.
func setup(g *globalFlags) (*runtime, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return nil, err
	}

	if g.catalogPath != "" {
		cfg.Catalog.Path = g.catalogPath
	}
	if g.currentYear != 0 {
		cfg.CurrentYear = g.currentYear
	}
	if g.environment != "" {
		cfg.Environment = g.environment
	}

	if err := logger.Init(cfg.Environment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store := catalog.NewStore(cfg.Catalog.Path, logger.Logger)
	_, _ = store.Reload()

	a := analyzer.NewAnalyzer(store, logger.Logger)
	a.SetCurrentYear(cfg.CurrentYear)

	return &runtime{cfg: cfg, store: store, analyzer: a}, nil
}
