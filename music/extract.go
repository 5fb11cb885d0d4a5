package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	music "github.com/next-exp/music_go/pkg"
	"github.com/next-exp/music_go/pkg/storage"
	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Reshape segment records into one row per event",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runExtract(configuration)
		},
	}
}

func runExtract(config music.Configuration) error {
	if err := requireFiles(config); err != nil {
		return err
	}
	records, err := storage.ReadSegments(config.FileIn)
	if err != nil {
		return fmt.Errorf("error reading segments: %w", err)
	}
	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Read %s segment records from %s", humanize.Comma(int64(len(records))), config.FileIn), "extract")
	}

	topology, err := music.NewTopology(config.NStrips)
	if err != nil {
		return err
	}
	table, err := music.BuildEventTable(records, topology)
	if err != nil {
		return fmt.Errorf("error building event table: %w", err)
	}
	describe("Extracted events", table)

	if err := writeEventsFile(config.FileOut, table, nil); err != nil {
		return fmt.Errorf("error writing events: %w", err)
	}
	reportFileSize(config.FileOut)
	return nil
}
