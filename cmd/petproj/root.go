package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"petproj/pkg/compression"
	"petproj/pkg/config"
	"petproj/pkg/logging"
)

var (
	configPath string
	verbosity  int
	logFormat  string
	scannerArg string
	spanArg    int
	maxRDArg   int
)

var rootCmd = &cobra.Command{
	Use:   "petproj",
	Short: "PET sinogram layouts and ray-tracing projectors",
	Long: `petproj derives compressed sinogram layouts for cylindrical PET scanners
and runs the matched forward and back projectors between image volumes and
projection data.

Settings are read from a YAML or TOML file (--config) and may be overridden
by flags.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "petproj.yaml", "configuration file (.yaml or .toml)")
	pf.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	pf.StringVar(&logFormat, "log-format", "", "log format: text or json")
	pf.StringVarP(&scannerArg, "scanner", "s", "", "scanner preset name")
	pf.IntVar(&spanArg, "span", 0, "axial compression span (odd)")
	pf.IntVar(&maxRDArg, "max-ring-difference", 0, "maximum ring difference, -1 for all")
}

// loadConfig reads the configuration file, applies flag overrides and sets
// up the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("scanner") {
		cfg.Scanner = config.ScannerConfig{Preset: scannerArg}
	}
	if flags.Changed("span") {
		cfg.Compression.Span = spanArg
	}
	if flags.Changed("max-ring-difference") {
		cfg.Compression.MaxRingDifference = maxRDArg
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbosity = verbosity
	}
	if flags.Changed("log-format") {
		cfg.Output.LogFormat = logFormat
	}

	logging.SetVerbosity(logging.LevelFor(cfg.Output.Verbosity))
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Output.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	logger.Debug("Loaded configuration", "path", configPath, "scanner", cfg.Scanner.Preset)
	return cfg, logger, nil
}

// descriptor derives the projection data layout from the configuration.
func descriptor(cfg *config.Config) (*compression.Descriptor, error) {
	p, err := cfg.Policy(cfg.Scanner.Catalog())
	if err != nil {
		return nil, err
	}
	desc, err := p.Descriptor()
	if err != nil {
		return nil, fmt.Errorf("error deriving sinogram layout: %w", err)
	}
	return desc, nil
}
