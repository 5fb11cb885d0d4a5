package music

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopology(t *testing.T) {
	t.Parallel()

	topology, err := NewTopology(16)
	require.NoError(t, err)
	require.Len(t, topology.Pairs, 18)

	assert.Equal(t, ChannelPair{ID: "strip0", Beam: "s0", Kind: Standalone}, topology.Pairs[0])
	assert.Equal(t, ChannelPair{ID: "strip1", Beam: "s1L", Short: "s1R", Kind: Paired}, topology.Pairs[1])
	assert.Equal(t, ChannelPair{ID: "strip2", Beam: "s2R", Short: "s2L", Kind: Paired}, topology.Pairs[2])
	assert.Equal(t, ChannelPair{ID: "strip16", Beam: "s16R", Short: "s16L", Kind: Paired}, topology.Pairs[16])
	assert.Equal(t, ChannelPair{ID: "strip17", Beam: "s17", Kind: Standalone}, topology.Pairs[17])
	assert.Equal(t, "s0", topology.ReferenceChannel())
}

func TestTopology_Columns(t *testing.T) {
	t.Parallel()

	columns := twoStripTopology(t).Columns()
	assert.Equal(t, []string{"s0", "s1L", "s1R", "s2L", "s2R", "s3"}, columns)

	topology, err := NewTopology(16)
	require.NoError(t, err)
	full := topology.Columns()
	assert.Len(t, full, 34)
	assert.Equal(t, "s0", full[0])
	assert.Equal(t, "s17", full[33])
}

func TestTopology_Pair(t *testing.T) {
	t.Parallel()

	topology := twoStripTopology(t)

	pair, ok := topology.Pair("s2L")
	require.True(t, ok)
	assert.Equal(t, "strip2", pair.ID)
	assert.Equal(t, "s2R", pair.Beam)

	pair, ok = topology.Pair("s3")
	require.True(t, ok)
	assert.Equal(t, Standalone, pair.Kind)

	_, ok = topology.Pair("")
	assert.False(t, ok)
	_, ok = topology.Pair("s9L")
	assert.False(t, ok)
}

func TestNewTopology_InvalidStrips(t *testing.T) {
	t.Parallel()

	_, err := NewTopology(0)
	var confErr *ErrConfiguration
	require.True(t, errors.As(err, &confErr))
	assert.Equal(t, "n_strips", confErr.Field)
}

func TestChannelKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "standalone", Standalone.String())
	assert.Equal(t, "paired", Paired.String())
	assert.Equal(t, "unknown", ChannelKind(7).String())
}
