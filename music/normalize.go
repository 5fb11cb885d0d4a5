package main

import (
	"context"
	"fmt"
	"os"
	"time"

	music "github.com/next-exp/music_go/pkg"
	"github.com/next-exp/music_go/pkg/storage"
	"github.com/spf13/cobra"
)

type normalizeOptions struct {
	workers int
	run     int
	writeDB bool
}

func newNormalizeCommand() *cobra.Command {
	opts := &normalizeOptions{}
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Calibrate every strip so the beam peak sits at the target value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config := opts.apply(cmd, configuration)
			return runNormalize(cmd.Context(), config)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of workers, overrides num_workers and enables parallel mode")
	cmd.Flags().IntVarP(&opts.run, "run", "r", 0, "Run number, overrides run_number")
	cmd.Flags().BoolVar(&opts.writeDB, "write-db", false, "Store calibration constants in the database")
	return cmd
}

func (o *normalizeOptions) apply(cmd *cobra.Command, config music.Configuration) music.Configuration {
	if o.workers > 0 {
		config.NumWorkers = o.workers
		config.Parallel = o.workers > 1
	}
	if cmd.Flags().Changed("run") {
		config.RunNumber = o.run
	}
	if o.writeDB {
		config.WriteDB = true
	}
	return config
}

func workerCount(config music.Configuration) int {
	if !config.Parallel {
		return 1
	}
	return config.NumWorkers
}

func runNormalize(ctx context.Context, config music.Configuration) error {
	if err := requireFiles(config); err != nil {
		return err
	}
	table, err := storage.ReadEventTable(config.FileIn)
	if err != nil {
		return fmt.Errorf("error reading events: %w", err)
	}
	describe("Input events", table)

	topology, err := music.NewTopology(config.NStrips)
	if err != nil {
		return err
	}
	normalizer, err := music.NewNormalizer(config.Normalization, topology, workerCount(config))
	if err != nil {
		return err
	}

	start := time.Now()
	calibrations, err := normalizer.Normalize(ctx, table)
	if err != nil {
		return fmt.Errorf("normalization aborted: %w", err)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Normalized %d channels to %g in %d ms",
			len(calibrations), config.Normalization.Target, time.Since(start).Milliseconds())
		logger.Info(message, "normalize")
		music.RenderCalibrations(os.Stdout, calibrations)
	}
	describe("Normalized events", table)

	if err := writeEventsFile(config.FileOut, table, calibrations); err != nil {
		return fmt.Errorf("error writing events: %w", err)
	}
	reportFileSize(config.FileOut)

	if config.WriteDB {
		if err := storeCalibrations(config, calibrations); err != nil {
			return err
		}
	}
	return nil
}

func storeCalibrations(config music.Configuration, calibrations []music.ChannelCalibration) error {
	dbConn, err := music.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	if err != nil {
		return fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()

	if err := music.CreateCalibrationTable(dbConn); err != nil {
		return err
	}
	return music.WriteCalibrations(dbConn, config.RunNumber, calibrations)
}
