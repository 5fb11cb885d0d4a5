package storage

import (
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
	music "github.com/next-exp/music_go/pkg"
)

// Writer creates an events file. Existing files are truncated.
type Writer struct {
	File             *hdf5.File
	Filename         string
	CompressionLevel int
	groups           map[string]*hdf5.Group
}

func NewWriter(filename string, compressionLevel int) (*Writer, error) {
	file, err := createFile(filename)
	if err != nil {
		return nil, err
	}
	return &Writer{
		File:             file,
		Filename:         filename,
		CompressionLevel: compressionLevel,
		groups:           make(map[string]*hdf5.Group),
	}, nil
}

func (w *Writer) group(name string) (*hdf5.Group, error) {
	if g, ok := w.groups[name]; ok {
		return g, nil
	}
	g, err := createGroup(w.File, name)
	if err != nil {
		return nil, err
	}
	w.groups[name] = g
	return g, nil
}

// WriteEventTable stores one dataset per channel under /Events and the
// column order in /Events/channels.
func (w *Writer) WriteEventTable(table *music.EventTable) error {
	if table.Width() == 0 || table.Len() == 0 {
		return &ErrCreateTable{TableName: EventsGroup, Err: errEmptyDataset}
	}
	g, err := w.group(EventsGroup)
	if err != nil {
		return err
	}

	names := table.Names()
	channels := make([]ChannelNameHDF5, len(names))
	for i, name := range names {
		if len(name) > STRLEN {
			return &ErrCreateTable{TableName: name, Err: fmt.Errorf("channel name longer than %d characters", STRLEN)}
		}
		if name == ChannelsTable {
			return &ErrCreateTable{TableName: name, Err: fmt.Errorf("reserved channel name")}
		}
		values, _ := table.Column(name)
		if err := writeColumn(g, name, values, w.CompressionLevel); err != nil {
			return err
		}
		channels[i] = ChannelNameHDF5{name: convertToHdf5String(name), index: int32(i)}
	}
	return writeTable(g, ChannelsTable, channels, w.CompressionLevel)
}

func (w *Writer) WriteCalibrations(calibrations []music.ChannelCalibration) error {
	g, err := w.group(CalibrationGroup)
	if err != nil {
		return err
	}
	rows := make([]CalibrationHDF5, len(calibrations))
	for i, c := range calibrations {
		rows[i] = CalibrationHDF5{
			channel:   convertToHdf5String(c.Channel),
			pair:      convertToHdf5String(c.Pair),
			role:      int32(c.Role),
			entries:   int32(c.Entries),
			amplitude: c.Fit.Amplitude,
			center:    c.Fit.Center,
			sigma:     c.Fit.Sigma,
			scale:     c.Scale,
			offset:    c.Offset,
		}
	}
	return writeTable(g, ChannelsTable, rows, w.CompressionLevel)
}

// WriteSegments stores flat detector tree records under /Tree/segments.
func (w *Writer) WriteSegments(records []music.SegmentRecord) error {
	g, err := w.group(TreeGroup)
	if err != nil {
		return err
	}
	rows := make([]SegmentHDF5, len(records))
	for i, r := range records {
		rows[i] = SegmentHDF5{
			seg:     r.Seg,
			strip0:  r.Strip0,
			strip17: r.Strip17,
			edepl:   r.EdepL,
			edepr:   r.EdepR,
		}
	}
	return writeTable(g, SegmentsTable, rows, w.CompressionLevel)
}

func (w *Writer) Close() error {
	for _, g := range w.groups {
		g.Close()
	}
	return w.File.Close()
}
