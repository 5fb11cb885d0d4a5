package music

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

const testEvents = 10000

func normalSample(n int, mu, sigma float64, seed uint64) []float64 {
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: rand.NewPCG(seed, seed+1)}
	values := make([]float64, n)
	for i := range values {
		values[i] = dist.Rand()
	}
	return values
}

func uniformSample(n int, low, high float64, seed uint64) []float64 {
	dist := distuv.Uniform{Min: low, Max: high, Src: rand.NewPCG(seed, seed+1)}
	values := make([]float64, n)
	for i := range values {
		values[i] = dist.Rand()
	}
	return values
}

func constantSample(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

// beamPeaks are the nominal peak positions of the beam channels of a two
// strip topology.
var beamPeaks = map[string][2]float64{
	"s0":  {420, 15},
	"s1L": {500, 20},
	"s2R": {610, 25},
	"s3":  {380, 12},
}

// syntheticTable builds a two strip event table: gaussian beam channels
// and uniform short channels above a 20 ADC shelf.
func syntheticTable(t *testing.T, n int) *EventTable {
	t.Helper()
	table := NewEventTable()
	columns := []struct {
		name   string
		values []float64
	}{
		{"s0", normalSample(n, beamPeaks["s0"][0], beamPeaks["s0"][1], 1)},
		{"s1L", normalSample(n, beamPeaks["s1L"][0], beamPeaks["s1L"][1], 2)},
		{"s1R", uniformSample(n, 20, 50, 3)},
		{"s2L", uniformSample(n, 30, 80, 4)},
		{"s2R", normalSample(n, beamPeaks["s2R"][0], beamPeaks["s2R"][1], 5)},
		{"s3", normalSample(n, beamPeaks["s3"][0], beamPeaks["s3"][1], 6)},
	}
	for _, c := range columns {
		require.NoError(t, table.AddColumn(c.name, c.values))
	}
	return table
}

func twoStripTopology(t *testing.T) Topology {
	t.Helper()
	topology, err := NewTopology(2)
	require.NoError(t, err)
	return topology
}

func column(t *testing.T, table *EventTable, name string) []float64 {
	t.Helper()
	values, ok := table.Column(name)
	require.True(t, ok, "missing column %s", name)
	return values
}
