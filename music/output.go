package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	music "github.com/next-exp/music_go/pkg"
	"github.com/next-exp/music_go/pkg/storage"
)

// writeEventsFile writes table and, when given, its calibration constants.
// A failed write removes the partial file.
func writeEventsFile(filename string, table *music.EventTable, calibrations []music.ChannelCalibration) (err error) {
	start := time.Now()
	writer, err := storage.NewWriter(filename, configuration.CompressionLevel)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := writer.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(filename)
		}
	}()

	if err = writer.WriteEventTable(table); err != nil {
		return err
	}
	if len(calibrations) > 0 {
		if err = writer.WriteCalibrations(calibrations); err != nil {
			return err
		}
	}

	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Wrote %s events to %s in %d ms",
			humanize.Comma(int64(table.Len())), filename, time.Since(start).Milliseconds())
		logger.Info(message, "writer")
	}
	return nil
}

func reportFileSize(filename string) {
	if VerbosityLevel == 0 {
		return
	}
	fileInfo, err := os.Stat(filename)
	if err != nil {
		logger.Error(fmt.Sprintf("Error getting file info: %v", err))
		return
	}
	logger.Info(fmt.Sprintf("Output file %s: %s", filename, humanize.Bytes(uint64(fileInfo.Size()))), "writer")
}

func describe(title string, table *music.EventTable) {
	if VerbosityLevel == 0 {
		return
	}
	logger.Info(title, "main")
	music.RenderSummary(os.Stdout, music.Describe(table))
}
