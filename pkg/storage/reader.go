package storage

import (
	"fmt"
	"sort"

	"github.com/jmbenlloch/go-hdf5"
	music "github.com/next-exp/music_go/pkg"
)

func openGroup(file *hdf5.File, filename, name string) (*hdf5.Group, error) {
	g, err := file.OpenGroup(name)
	if err != nil {
		return nil, &ErrReadDataset{DatasetName: fmt.Sprintf("%s:/%s", filename, name), Err: err}
	}
	return g, nil
}

// ReadEventTable loads the channels of an events file in their stored order.
func ReadEventTable(filename string) (*music.EventTable, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g, err := openGroup(file, filename, EventsGroup)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	channels, err := readTable[ChannelNameHDF5](g, ChannelsTable)
	if err != nil {
		return nil, err
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].index < channels[j].index
	})

	table := music.NewEventTable()
	for _, channel := range channels {
		name := convertFromHdf5String(channel.name)
		values, err := readColumn[float64](g, name)
		if err != nil {
			return nil, err
		}
		if err := table.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func ReadCalibrations(filename string) ([]music.ChannelCalibration, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g, err := openGroup(file, filename, CalibrationGroup)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	rows, err := readTable[CalibrationHDF5](g, ChannelsTable)
	if err != nil {
		return nil, err
	}
	calibrations := make([]music.ChannelCalibration, len(rows))
	for i, r := range rows {
		calibrations[i] = music.ChannelCalibration{
			Channel: convertFromHdf5String(r.channel),
			Pair:    convertFromHdf5String(r.pair),
			Role:    music.ChannelRole(r.role),
			Fit:     music.GaussParams{Amplitude: r.amplitude, Center: r.center, Sigma: r.sigma},
			Scale:   r.scale,
			Offset:  r.offset,
			Entries: int(r.entries),
		}
	}
	return calibrations, nil
}

func ReadSegments(filename string) ([]music.SegmentRecord, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g, err := openGroup(file, filename, TreeGroup)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	rows, err := readTable[SegmentHDF5](g, SegmentsTable)
	if err != nil {
		return nil, err
	}
	records := make([]music.SegmentRecord, len(rows))
	for i, r := range rows {
		records[i] = music.SegmentRecord{
			Seg:     r.seg,
			Strip0:  r.strip0,
			Strip17: r.strip17,
			EdepL:   r.edepl,
			EdepR:   r.edepr,
		}
	}
	return records, nil
}
