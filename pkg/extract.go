package music

import "fmt"

// SegmentRecord is one entry of the flat detector tree: the energy
// deposited on both sides of segment Seg for one event, plus the two end
// strips which are repeated on every segment of the event.
type SegmentRecord struct {
	Seg     int32
	Strip0  float64
	Strip17 float64
	EdepL   float64
	EdepR   float64
}

// BuildEventTable reshapes segment records into one row per event. Strip
// columns take the records of their segment in file order, the end strips
// are taken from the records of the first segment.
func BuildEventTable(records []SegmentRecord, topology Topology) (*EventTable, error) {
	if len(records) == 0 {
		return nil, &ErrInputShape{Reason: "no segment records"}
	}
	nStrips := topology.NStrips
	left := make([][]float64, nStrips+1)
	right := make([][]float64, nStrips+1)
	var first, last []float64
	skipped := 0

	for _, record := range records {
		seg := int(record.Seg)
		if seg < 1 || seg > nStrips {
			skipped++
			if configuration.Verbosity > 1 {
				logger.Info(fmt.Sprintf("Skipping record with segment %d", seg), "extract")
			}
			continue
		}
		left[seg] = append(left[seg], record.EdepL)
		right[seg] = append(right[seg], record.EdepR)
		if seg == 1 {
			first = append(first, record.Strip0)
			last = append(last, record.Strip17)
		}
	}
	if skipped > 0 && configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Skipped %d records outside segments 1-%d", skipped, nStrips), "extract")
	}

	table := NewEventTable()
	add := func(name string, values []float64) error {
		if values == nil {
			values = []float64{}
		}
		return table.AddColumn(name, values)
	}
	if err := add(StripChannel(0, ""), first); err != nil {
		return nil, err
	}
	for strip := 1; strip <= nStrips; strip++ {
		if err := add(StripChannel(strip, "L"), left[strip]); err != nil {
			return nil, err
		}
		if err := add(StripChannel(strip, "R"), right[strip]); err != nil {
			return nil, err
		}
	}
	if err := add(StripChannel(nStrips+1, ""), last); err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, &ErrInputShape{Reason: "no events found in segment records"}
	}
	return table, nil
}
