package main

import (
	"fmt"

	music "github.com/next-exp/music_go/pkg"
	"github.com/next-exp/music_go/pkg/storage"
	"github.com/spf13/cobra"
)

type applyOptions struct {
	calibrationFile string
	run             int
}

func newApplyCommand() *cobra.Command {
	opts := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply stored calibration constants to an events file",
		Long: `Apply reads the constants of a previous normalize pass, either from the
/Calibration table of a normalized events file (--calibration) or from the
calibration database (--run), and rescales the input events with them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.calibrationFile == "" && !cmd.Flags().Changed("run") {
				return fmt.Errorf("either --calibration or --run is required")
			}
			return runApply(configuration, opts, cmd.Flags().Changed("run"))
		},
	}
	cmd.Flags().StringVar(&opts.calibrationFile, "calibration", "", "Normalized events file holding the calibration constants")
	cmd.Flags().IntVarP(&opts.run, "run", "r", 0, "Load the constants of this run from the database")
	return cmd
}

func loadCalibrations(config music.Configuration, opts *applyOptions, fromDB bool) ([]music.ChannelCalibration, error) {
	if !fromDB {
		return storage.ReadCalibrations(opts.calibrationFile)
	}
	dbConn, err := music.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	if err != nil {
		return nil, fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()
	return music.LoadCalibrations(dbConn, opts.run)
}

func runApply(config music.Configuration, opts *applyOptions, fromDB bool) error {
	if err := requireFiles(config); err != nil {
		return err
	}
	calibrations, err := loadCalibrations(config, opts, fromDB)
	if err != nil {
		return fmt.Errorf("error loading calibration constants: %w", err)
	}
	table, err := storage.ReadEventTable(config.FileIn)
	if err != nil {
		return fmt.Errorf("error reading events: %w", err)
	}
	if err := music.Apply(table, calibrations); err != nil {
		return err
	}
	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Applied %d calibration constants", len(calibrations)), "apply")
	}
	describe("Calibrated events", table)

	if err := writeEventsFile(config.FileOut, table, calibrations); err != nil {
		return fmt.Errorf("error writing events: %w", err)
	}
	reportFileSize(config.FileOut)
	return nil
}
