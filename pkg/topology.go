package music

import "fmt"

type ChannelKind int

const (
	Standalone ChannelKind = iota
	Paired
)

func (k ChannelKind) String() string {
	switch k {
	case Standalone:
		return "standalone"
	case Paired:
		return "paired"
	default:
		return "unknown"
	}
}

// ChannelPair is one entry of the channel topology. Standalone entries
// have no short channel.
type ChannelPair struct {
	ID    string
	Beam  string
	Short string
	Kind  ChannelKind
}

// Topology is the channel layout of the anode: a standalone channel on
// each end (s0 and s{N+1}) and one beam/short pair per strip in between.
type Topology struct {
	NStrips int
	Pairs   []ChannelPair
}

func StripChannel(strip int, side string) string {
	return fmt.Sprintf("s%d%s", strip, side)
}

// NewTopology builds the pair table for nStrips segmented strips. Odd
// strips get the beam on the left side, even strips on the right side.
func NewTopology(nStrips int) (Topology, error) {
	if nStrips <= 0 {
		return Topology{}, &ErrConfiguration{Field: "n_strips", Reason: fmt.Sprintf("got %d, must be greater than zero", nStrips)}
	}
	t := Topology{NStrips: nStrips, Pairs: make([]ChannelPair, 0, nStrips+2)}
	t.Pairs = append(t.Pairs, ChannelPair{ID: "strip0", Beam: StripChannel(0, ""), Kind: Standalone})
	for strip := 1; strip <= nStrips; strip++ {
		pair := ChannelPair{ID: fmt.Sprintf("strip%d", strip), Kind: Paired}
		if strip%2 == 1 {
			pair.Beam, pair.Short = StripChannel(strip, "L"), StripChannel(strip, "R")
		} else {
			pair.Beam, pair.Short = StripChannel(strip, "R"), StripChannel(strip, "L")
		}
		t.Pairs = append(t.Pairs, pair)
	}
	last := nStrips + 1
	t.Pairs = append(t.Pairs, ChannelPair{ID: fmt.Sprintf("strip%d", last), Beam: StripChannel(last, ""), Kind: Standalone})
	return t, nil
}

// Columns returns the channel names in table order:
// s0, s1L, s1R, ..., sNL, sNR, s{N+1}.
func (t Topology) Columns() []string {
	columns := make([]string, 0, 2*t.NStrips+2)
	columns = append(columns, StripChannel(0, ""))
	for strip := 1; strip <= t.NStrips; strip++ {
		columns = append(columns, StripChannel(strip, "L"), StripChannel(strip, "R"))
	}
	return append(columns, StripChannel(t.NStrips+1, ""))
}

// ReferenceChannel is the strip used for the pile-up cut upstream.
func (t Topology) ReferenceChannel() string {
	return StripChannel(0, "")
}

func (t Topology) Pair(channel string) (ChannelPair, bool) {
	if channel == "" {
		return ChannelPair{}, false
	}
	for _, p := range t.Pairs {
		if p.Beam == channel || p.Short == channel {
			return p, true
		}
	}
	return ChannelPair{}, false
}
