package main

import (
	"fmt"

	music "github.com/next-exp/music_go/pkg"
	"github.com/next-exp/music_go/pkg/storage"
	"github.com/spf13/cobra"
)

func newSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Keep the events passing the selection rules of the configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSelect(configuration)
		},
	}
}

func runSelect(config music.Configuration) error {
	if err := requireFiles(config); err != nil {
		return err
	}
	if len(config.Selection) == 0 {
		return fmt.Errorf("no selection rules in configuration")
	}
	table, err := storage.ReadEventTable(config.FileIn)
	if err != nil {
		return fmt.Errorf("error reading events: %w", err)
	}
	selected, err := music.Select(table, config.Selection)
	if err != nil {
		return err
	}
	if selected.Len() == 0 {
		return fmt.Errorf("no events pass the selection")
	}

	// Raw extracted files have no constants to carry over.
	calibrations, err := storage.ReadCalibrations(config.FileIn)
	if err != nil {
		if VerbosityLevel > 1 {
			logger.Info(fmt.Sprintf("No calibration constants in %s: %v", config.FileIn, err), "select")
		}
		calibrations = nil
	}

	if err := writeEventsFile(config.FileOut, selected, calibrations); err != nil {
		return fmt.Errorf("error writing events: %w", err)
	}
	reportFileSize(config.FileOut)
	return nil
}
