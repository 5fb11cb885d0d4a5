package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"

	music "github.com/next-exp/music_go/pkg"
	"github.com/next-exp/music_go/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestRequireFiles(t *testing.T) {
	t.Parallel()

	assert.Error(t, requireFiles(music.Configuration{FileOut: "b.h5"}))
	assert.Error(t, requireFiles(music.Configuration{FileIn: "a.h5"}))
	assert.Error(t, requireFiles(music.Configuration{FileIn: "a.h5", FileOut: "a.h5"}))
	assert.NoError(t, requireFiles(music.Configuration{FileIn: "a.h5", FileOut: "b.h5"}))
}

func TestFitPriors(t *testing.T) {
	t.Parallel()

	config := music.DefaultNormalizationConfig()
	config.StandaloneSigma = 12
	topology, err := music.NewTopology(16)
	require.NoError(t, err)

	sigma, bins := fitPriors(config, topology, "s0")
	assert.Equal(t, 25.0, sigma)
	assert.Equal(t, 100, bins)

	sigma, bins = fitPriors(config, topology, "s17")
	assert.Equal(t, 12.0, sigma)
	assert.Equal(t, 200, bins)

	sigma, _ = fitPriors(config, topology, "s4R")
	assert.Equal(t, 10.0, sigma)
}

func TestNormalizeOptions(t *testing.T) {
	t.Parallel()

	cmd := newNormalizeCommand()
	require.NoError(t, cmd.Flags().Set("workers", "4"))
	require.NoError(t, cmd.Flags().Set("run", "1042"))
	require.NoError(t, cmd.Flags().Set("write-db", "true"))

	opts := &normalizeOptions{workers: 4, run: 1042, writeDB: true}
	config := opts.apply(cmd, music.DefaultConfiguration())
	assert.Equal(t, 4, config.NumWorkers)
	assert.True(t, config.Parallel)
	assert.Equal(t, 1042, config.RunNumber)
	assert.True(t, config.WriteDB)
	assert.Equal(t, 4, workerCount(config))

	config.Parallel = false
	assert.Equal(t, 1, workerCount(config))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "music "+Version+"\n", out.String())
}

func TestApplyRequiresSource(t *testing.T) {
	t.Parallel()

	cmd := newApplyCommand()
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}

func sampler(dist interface{ Rand() float64 }) func() float64 {
	return dist.Rand
}

// writeSegmentsFile stores a two strip detector tree with gaussian beam
// strips and flat short strips.
func writeSegmentsFile(t *testing.T, filename string, events int) {
	t.Helper()
	src := rand.NewPCG(1, 2)
	strip0 := sampler(distuv.Normal{Mu: 420, Sigma: 15, Src: src})
	strip17 := sampler(distuv.Normal{Mu: 380, Sigma: 12, Src: src})
	beam1 := sampler(distuv.Normal{Mu: 500, Sigma: 20, Src: src})
	beam2 := sampler(distuv.Normal{Mu: 610, Sigma: 25, Src: src})
	short1 := sampler(distuv.Uniform{Min: 20, Max: 50, Src: src})
	short2 := sampler(distuv.Uniform{Min: 30, Max: 80, Src: src})

	records := make([]music.SegmentRecord, 0, 2*events)
	for e := 0; e < events; e++ {
		s0, s17 := strip0(), strip17()
		records = append(records,
			music.SegmentRecord{Seg: 1, Strip0: s0, Strip17: s17, EdepL: beam1(), EdepR: short1()},
			music.SegmentRecord{Seg: 2, Strip0: s0, Strip17: s17, EdepL: short2(), EdepR: beam2()},
		)
	}

	writer, err := storage.NewWriter(filename, 4)
	require.NoError(t, err)
	require.NoError(t, writer.WriteSegments(records))
	require.NoError(t, writer.Close())
}

func TestPipeline(t *testing.T) {
	dir := t.TempDir()
	segments := filepath.Join(dir, "tree.h5")
	raw := filepath.Join(dir, "raw.h5")
	normalized := filepath.Join(dir, "normalized.h5")
	selected := filepath.Join(dir, "selected.h5")
	applied := filepath.Join(dir, "applied.h5")
	writeSegmentsFile(t, segments, 5000)

	config := music.DefaultConfiguration()
	config.NStrips = 2
	configuration = config

	config.FileIn, config.FileOut = segments, raw
	require.NoError(t, runExtract(config))
	rawTable, err := storage.ReadEventTable(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"s0", "s1L", "s1R", "s2L", "s2R", "s3"}, rawTable.Names())
	assert.Equal(t, 5000, rawTable.Len())

	config.FileIn, config.FileOut = raw, normalized
	require.NoError(t, runNormalize(context.Background(), config))
	normalizedTable, err := storage.ReadEventTable(normalized)
	require.NoError(t, err)
	calibrations, err := storage.ReadCalibrations(normalized)
	require.NoError(t, err)
	require.Len(t, calibrations, 6)
	for _, c := range calibrations {
		if c.Role != music.RoleShort {
			assert.InEpsilon(t, config.Normalization.Target, c.Fit.Center*c.Scale, 1e-9)
		}
	}

	low, high := 450.0, 550.0
	config.Selection = []music.SelectionRule{{Channel: "s0", Min: &low, Max: &high}}
	config.FileIn, config.FileOut = normalized, selected
	require.NoError(t, runSelect(config))
	selectedTable, err := storage.ReadEventTable(selected)
	require.NoError(t, err)
	assert.Less(t, selectedTable.Len(), normalizedTable.Len())
	assert.Greater(t, selectedTable.Len(), 0)
	carried, err := storage.ReadCalibrations(selected)
	require.NoError(t, err)
	assert.Equal(t, calibrations, carried)

	config.FileIn, config.FileOut = raw, applied
	require.NoError(t, runApply(config, &applyOptions{calibrationFile: normalized}, false))
	appliedTable, err := storage.ReadEventTable(applied)
	require.NoError(t, err)
	for _, name := range normalizedTable.Names() {
		want, _ := normalizedTable.Column(name)
		got, _ := appliedTable.Column(name)
		assert.Equal(t, want, got, name)
	}

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	config.FileIn = raw
	require.NoError(t, runInspect(cmd, config, &inspectOptions{channel: "s1L"}))
	assert.Contains(t, out.String(), "s1L")
}
