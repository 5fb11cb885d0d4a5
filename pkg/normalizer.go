package music

import (
	"context"
	"errors"
	"fmt"
)

// Normalizer derives the gain calibration of every channel of a topology
// and rescales the event table so all beam peaks sit at the target value.
type Normalizer struct {
	config   NormalizationConfig
	topology Topology
	workers  int
}

// NewNormalizer validates the configuration before any histogram is built.
// With workers > 1 channel pairs are calibrated concurrently.
func NewNormalizer(config NormalizationConfig, topology Topology, workers int) (*Normalizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(topology.Pairs) == 0 {
		return nil, &ErrConfiguration{Field: "topology", Reason: "no channels"}
	}
	seen := make(map[string]bool)
	for _, pair := range topology.Pairs {
		if pair.Beam == "" || (pair.Kind == Paired && pair.Short == "") {
			return nil, &ErrConfiguration{Field: "topology", Reason: fmt.Sprintf("incomplete entry %q", pair.ID)}
		}
		for _, name := range []string{pair.Beam, pair.Short} {
			if name == "" {
				continue
			}
			if seen[name] {
				return nil, &ErrConfiguration{Field: "topology", Reason: fmt.Sprintf("channel %q used twice", name)}
			}
			seen[name] = true
		}
	}
	if workers <= 0 {
		workers = 1
	}
	return &Normalizer{config: config, topology: topology, workers: workers}, nil
}

// Normalize calibrates and rescales table in place. Columns are only
// written once every calibration has been derived, so an error leaves the
// table untouched.
func (n *Normalizer) Normalize(ctx context.Context, table *EventTable) ([]ChannelCalibration, error) {
	calibrations, err := n.Calibrate(ctx, table)
	if err != nil {
		return nil, err
	}
	if err := Apply(table, calibrations); err != nil {
		return nil, err
	}
	return calibrations, nil
}

// Calibrate derives the constants of every channel from the current
// column values without modifying the table.
func (n *Normalizer) Calibrate(ctx context.Context, table *EventTable) ([]ChannelCalibration, error) {
	if err := table.CheckColumns(n.expectedColumns()); err != nil {
		return nil, err
	}

	var results []calibrationResult
	if n.workers > 1 {
		results = n.calibrateParallel(ctx, table)
	} else {
		results = make([]calibrationResult, 0, len(n.topology.Pairs))
		for i, pair := range n.topology.Pairs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			result := n.runJob(0, table, calibrationJob{Index: i, Pair: pair})
			if result.Err != nil {
				return nil, result.Err
			}
			results = append(results, result)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byIndex := make([][]ChannelCalibration, len(n.topology.Pairs))
	for _, result := range results {
		byIndex[result.Index] = result.Calibrations
	}
	// Report the first failure in topology order so parallel runs fail
	// like sequential ones.
	for _, result := range sortedResults(results) {
		if result.Err != nil {
			return nil, result.Err
		}
	}

	calibrations := make([]ChannelCalibration, 0, 2*len(n.topology.Pairs))
	for i, cals := range byIndex {
		if cals == nil {
			return nil, fmt.Errorf("no calibration for %s", n.topology.Pairs[i].ID)
		}
		calibrations = append(calibrations, cals...)
	}
	return calibrations, nil
}

func (n *Normalizer) expectedColumns() []string {
	columns := make([]string, 0, 2*len(n.topology.Pairs))
	for _, pair := range n.topology.Pairs {
		columns = append(columns, pair.Beam)
		if pair.Kind == Paired {
			columns = append(columns, pair.Short)
		}
	}
	return columns
}

func (n *Normalizer) calibratePair(table *EventTable, pair ChannelPair) ([]ChannelCalibration, error) {
	beam, _ := table.Column(pair.Beam)
	sigma := n.config.BeamSigma
	role := RoleBeam
	if pair.Kind == Standalone {
		sigma = n.config.StandaloneSigma
		role = RoleStandalone
	}

	fit, err := n.fitBeam(pair.Beam, beam, sigma)
	if err != nil {
		return nil, err
	}
	scale := n.config.Target / fit.Center
	calibrations := []ChannelCalibration{{
		Channel: pair.Beam,
		Pair:    pair.ID,
		Role:    role,
		Fit:     fit,
		Scale:   scale,
		Entries: len(beam),
	}}
	if configuration.Verbosity > 1 {
		logger.Info(fmt.Sprintf("Channel %s: %v, scale %.6g", pair.Beam, fit, scale), "normalizer")
	}
	if pair.Kind == Standalone {
		return calibrations, nil
	}

	short, _ := table.Column(pair.Short)
	offset, err := n.shortOffset(pair.Short, short)
	if err != nil {
		return nil, err
	}
	if configuration.Verbosity > 1 {
		logger.Info(fmt.Sprintf("Channel %s: offset %.4g, scale from %s", pair.Short, offset, pair.Beam), "normalizer")
	}
	return append(calibrations, ChannelCalibration{
		Channel: pair.Short,
		Pair:    pair.ID,
		Role:    RoleShort,
		Fit:     fit,
		Scale:   scale,
		Offset:  offset,
		Entries: len(short),
	}), nil
}

func (n *Normalizer) fitBeam(name string, values []float64, sigma float64) (GaussParams, error) {
	h, err := BuildHistogram(values, n.config.BeamBins, nil)
	if err != nil {
		return GaussParams{}, fmt.Errorf("histogram of channel %s: %w", name, err)
	}
	fit, err := FitHistogram(h, sigma, n.config.FitSettings())
	if err == nil && fit.Center <= 0 {
		err = fitError("non positive center %g", fit.Center)
	}
	if err != nil {
		var fitErr *ErrFitConvergence
		if errors.As(err, &fitErr) {
			fitErr.Channel = name
			fitErr.Summary = Summarize(values, h)
		}
		return GaussParams{}, err
	}
	return fit, nil
}

func (n *Normalizer) shortOffset(name string, values []float64) (float64, error) {
	span := n.config.ShortRange
	h, err := BuildHistogram(values, n.config.ShortBins, &span)
	if err != nil {
		return 0, fmt.Errorf("histogram of channel %s: %w", name, err)
	}
	offset, err := EstimateOffset(h)
	if err != nil {
		var offsetErr *ErrOffsetNotFound
		if errors.As(err, &offsetErr) {
			offsetErr.Channel = name
		}
		return 0, err
	}
	return offset, nil
}
