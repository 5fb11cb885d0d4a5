package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	music "github.com/next-exp/music_go/pkg"
	"github.com/spf13/cobra"
)

var Version = "dev"

var configuration music.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	logger = newLogger()
}

type rootOptions struct {
	configFile string
	fileIn     string
	fileOut    string
	verbosity  int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "music",
		Short: "Gain calibration of MUSIC segmented anode data",
		Long: `Tools to reshape, calibrate and select MUSIC ionization chamber events.

Commands:
  extract    segment records to one row per event
  normalize  gaussian gain calibration of every strip
  apply      apply stored calibration constants to another run
  select     keep events passing threshold rules
  inspect    fit a single channel`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return setup(opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Configuration file path (JSON or YAML)")
	flags.StringVarP(&opts.fileIn, "in", "i", "", "Input file, overrides file_in")
	flags.StringVarP(&opts.fileOut, "out", "o", "", "Output file, overrides file_out")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", -1, "Verbosity level, overrides verbosity")

	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(newNormalizeCommand())
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newSelectCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func buildConfiguration(opts *rootOptions) (music.Configuration, error) {
	config, err := LoadConfiguration(opts.configFile)
	if err != nil {
		return config, fmt.Errorf("Error reading configuration file: %w", err)
	}
	if opts.fileIn != "" {
		config.FileIn = opts.fileIn
	}
	if opts.fileOut != "" {
		config.FileOut = opts.fileOut
	}
	if opts.verbosity >= 0 {
		config.Verbosity = opts.verbosity
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func setup(opts *rootOptions) error {
	config, err := buildConfiguration(opts)
	if err != nil {
		return err
	}
	configuration = config
	music.SetConfiguration(config)
	music.SetLogger(logger)

	VerbosityLevel = config.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", opts.configFile)
		logger.Info(message, "main")
		printConfiguration(config, logger)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "music %s\n", Version)
		},
	}
}

func requireFiles(config music.Configuration) error {
	if config.FileIn == "" {
		return fmt.Errorf("no input file, set file_in or --in")
	}
	if config.FileOut == "" {
		return fmt.Errorf("no output file, set file_out or --out")
	}
	if config.FileIn == config.FileOut {
		return fmt.Errorf("input and output file are the same: %s", config.FileIn)
	}
	return nil
}
