package music

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type ColumnSummary struct {
	Name    string
	Entries int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Describe computes the summary statistics of every column in table order.
func Describe(t *EventTable) []ColumnSummary {
	summaries := make([]ColumnSummary, 0, t.Width())
	for _, name := range t.Names() {
		values, _ := t.Column(name)
		s := ColumnSummary{Name: name, Entries: len(values)}
		if len(values) > 0 {
			s.Min = floats.Min(values)
			s.Max = floats.Max(values)
			s.Mean = stat.Mean(values, nil)
		}
		if len(values) > 1 {
			s.StdDev = stat.StdDev(values, nil)
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func RenderSummary(w io.Writer, summaries []ColumnSummary) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Channel", "Entries", "Mean", "Std", "Min", "Max"})
	for _, s := range summaries {
		tbl.AppendRow(table.Row{
			s.Name,
			humanize.Comma(int64(s.Entries)),
			fmt.Sprintf("%.3f", s.Mean),
			fmt.Sprintf("%.3f", s.StdDev),
			fmt.Sprintf("%.3f", s.Min),
			fmt.Sprintf("%.3f", s.Max),
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d channels", len(summaries))})
	tbl.Render()
}

func RenderCalibrations(w io.Writer, calibrations []ChannelCalibration) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Channel", "Pair", "Role", "Center", "Sigma", "Amplitude", "Scale", "Offset"})
	for _, c := range calibrations {
		tbl.AppendRow(table.Row{
			c.Channel,
			c.Pair,
			c.Role.String(),
			fmt.Sprintf("%.3f", c.Fit.Center),
			fmt.Sprintf("%.3f", c.Fit.Sigma),
			fmt.Sprintf("%.1f", c.Fit.Amplitude),
			fmt.Sprintf("%.6f", c.Scale),
			fmt.Sprintf("%.3f", c.Offset),
		})
	}
	tbl.Render()
}
