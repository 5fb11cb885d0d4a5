package storage

import (
	"bytes"
	"errors"

	"github.com/jmbenlloch/go-hdf5"
	"golang.org/x/exp/constraints"
)

const (
	EventsGroup      = "Events"
	ChannelsTable    = "channels"
	CalibrationGroup = "Calibration"
	TreeGroup        = "Tree"
	SegmentsTable    = "segments"
)

const STRLEN = 20

const maxChunk = 32768

var (
	errNotOneDimensional = errors.New("dataset is not one dimensional")
	errEmptyDataset      = errors.New("refusing to write an empty dataset")
)

type ChannelNameHDF5 struct {
	name  [STRLEN]byte
	index int32
}

type CalibrationHDF5 struct {
	channel   [STRLEN]byte
	pair      [STRLEN]byte
	role      int32
	entries   int32
	amplitude float64
	center    float64
	sigma     float64
	scale     float64
	offset    float64
}

type SegmentHDF5 struct {
	seg     int32
	strip0  float64
	strip17 float64
	edepl   float64
	edepr   float64
}

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func convertFromHdf5String(b [STRLEN]byte) string {
	return string(bytes.TrimRight(b[:], "\x00"))
}

func createFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func chunkSize(n int) uint {
	if n < maxChunk {
		return uint(n)
	}
	return maxChunk
}

func datasetCreateProps(chunks []uint, compressionLevel int) (*hdf5.PropList, error) {
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	if err := plist.SetChunk(chunks); err != nil {
		plist.Close()
		return nil, err
	}
	if compressionLevel > 0 {
		if err := plist.SetDeflate(compressionLevel); err != nil {
			plist.Close()
			return nil, err
		}
	}
	return plist, nil
}

// writeColumn stores values as a fixed size 1-D dataset of the native
// type of T.
func writeColumn[T constraints.Float](group *hdf5.Group, name string, values []T, compressionLevel int) error {
	if len(values) == 0 {
		return &ErrCreateTable{TableName: name, Err: errEmptyDataset}
	}
	dims := []uint{uint(len(values))}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer dataspace.Close()

	plist, err := datasetCreateProps([]uint{chunkSize(len(values))}, compressionLevel)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	var zero T
	dtype, err := hdf5.NewDatatypeFromValue(zero)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, dataspace, plist)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer dset.Close()

	if err := dset.Write(&values); err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	return nil
}

// writeTable stores rows as a fixed size compound table.
func writeTable[T any](group *hdf5.Group, name string, rows []T, compressionLevel int) error {
	if len(rows) == 0 {
		return &ErrCreateTable{TableName: name, Err: errEmptyDataset}
	}
	dims := []uint{uint(len(rows))}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer dataspace.Close()

	plist, err := datasetCreateProps([]uint{chunkSize(len(rows))}, compressionLevel)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	var zero T
	dtype, err := hdf5.NewDatatypeFromValue(zero)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, dataspace, plist)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer dset.Close()

	if err := dset.Write(&rows); err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	return nil
}

func datasetLength(dset *hdf5.Dataset, name string) (int, error) {
	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return 0, err
	}
	if len(dims) != 1 {
		return 0, &ErrReadDataset{DatasetName: name, Err: errNotOneDimensional}
	}
	return int(dims[0]), nil
}

func readColumn[T constraints.Float](group *hdf5.Group, name string) ([]T, error) {
	dset, err := group.OpenDataset(name)
	if err != nil {
		return nil, &ErrReadDataset{DatasetName: name, Err: err}
	}
	defer dset.Close()

	n, err := datasetLength(dset, name)
	if err != nil {
		return nil, &ErrReadDataset{DatasetName: name, Err: err}
	}
	values := make([]T, n)
	if n == 0 {
		return values, nil
	}
	if err := dset.Read(&values); err != nil {
		return nil, &ErrReadDataset{DatasetName: name, Err: err}
	}
	return values, nil
}

func readTable[T any](group *hdf5.Group, name string) ([]T, error) {
	dset, err := group.OpenDataset(name)
	if err != nil {
		return nil, &ErrReadDataset{DatasetName: name, Err: err}
	}
	defer dset.Close()

	n, err := datasetLength(dset, name)
	if err != nil {
		return nil, &ErrReadDataset{DatasetName: name, Err: err}
	}
	rows := make([]T, n)
	if n == 0 {
		return rows, nil
	}
	if err := dset.Read(&rows); err != nil {
		return nil, &ErrReadDataset{DatasetName: name, Err: err}
	}
	return rows, nil
}
