package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	music "github.com/next-exp/music_go/pkg"
	"github.com/next-exp/music_go/pkg/storage"
	"github.com/spf13/cobra"
)

type inspectOptions struct {
	channel string
	sigma   float64
	bins    int
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Fit a gaussian to one channel and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, configuration, opts)
		},
	}
	cmd.Flags().StringVar(&opts.channel, "channel", "", "Channel to fit, defaults to the reference channel")
	cmd.Flags().Float64Var(&opts.sigma, "sigma", 0, "Width prior, defaults to the configured prior of the channel")
	cmd.Flags().IntVar(&opts.bins, "bins", 0, "Number of histogram bins, defaults to the configured value of the channel")
	return cmd
}

// fitPriors returns the width prior and bin count used for channel.
func fitPriors(config music.NormalizationConfig, topology music.Topology, channel string) (float64, int) {
	if channel == topology.ReferenceChannel() {
		return config.ReferenceSigma, config.ReferenceBins
	}
	if pair, ok := topology.Pair(channel); ok && pair.Kind == music.Standalone {
		return config.StandaloneSigma, config.BeamBins
	}
	return config.BeamSigma, config.BeamBins
}

func runInspect(cmd *cobra.Command, config music.Configuration, opts *inspectOptions) error {
	if config.FileIn == "" {
		return fmt.Errorf("no input file, set file_in or --in")
	}
	topology, err := music.NewTopology(config.NStrips)
	if err != nil {
		return err
	}
	channel := opts.channel
	if channel == "" {
		channel = topology.ReferenceChannel()
	}
	sigma, bins := fitPriors(config.Normalization, topology, channel)
	if opts.sigma > 0 {
		sigma = opts.sigma
	}
	if opts.bins > 0 {
		bins = opts.bins
	}

	events, err := storage.ReadEventTable(config.FileIn)
	if err != nil {
		return fmt.Errorf("error reading events: %w", err)
	}
	values, ok := events.Column(channel)
	if !ok {
		return &music.ErrInputShape{Column: channel, Reason: "missing column"}
	}
	h, err := music.BuildHistogram(values, bins, nil)
	if err != nil {
		return err
	}
	summary := music.Summarize(values, h)
	fit, err := music.FitHistogram(h, sigma, config.Normalization.FitSettings())
	if err != nil {
		return fmt.Errorf("channel %s (%s): %w", channel, summary, err)
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(cmd.OutOrStdout())
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("Channel %s", channel))
	tbl.AppendRows([]table.Row{
		{"Entries", humanize.Comma(int64(summary.Entries))},
		{"Populated bins", fmt.Sprintf("%d / %d", summary.Populated, bins)},
		{"Mean", fmt.Sprintf("%.3f", summary.Mean)},
		{"Std", fmt.Sprintf("%.3f", summary.StdDev)},
		{"Range", fmt.Sprintf("[%.3f, %.3f]", summary.Min, summary.Max)},
		{"Sigma prior", fmt.Sprintf("%g", sigma)},
		{"Fit amplitude", fmt.Sprintf("%.1f", fit.Amplitude)},
		{"Fit center", fmt.Sprintf("%.3f", fit.Center)},
		{"Fit sigma", fmt.Sprintf("%.3f", fit.Sigma)},
		{"Scale to target", fmt.Sprintf("%.6f", config.Normalization.Target/fit.Center)},
	})
	tbl.Render()
	return nil
}
