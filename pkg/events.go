package music

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// EventTable holds one row per physical event and one named column per
// channel. All columns have the same length.
type EventTable struct {
	names   []string
	index   map[string]int
	columns [][]float64
}

func NewEventTable() *EventTable {
	return &EventTable{index: make(map[string]int)}
}

// AddColumn appends a channel column. The table keeps the slice, it is not
// copied.
func (t *EventTable) AddColumn(name string, values []float64) error {
	if name == "" {
		return &ErrInputShape{Reason: "empty column name"}
	}
	if _, ok := t.index[name]; ok {
		return &ErrInputShape{Column: name, Reason: "duplicated column"}
	}
	if len(t.columns) > 0 && len(values) != t.Len() {
		return &ErrInputShape{Column: name, Reason: fmt.Sprintf("has %d rows, table has %d", len(values), t.Len())}
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.columns = append(t.columns, values)
	return nil
}

func (t *EventTable) Column(name string) ([]float64, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Names returns the column names in insertion order.
func (t *EventTable) Names() []string {
	return slices.Clone(t.names)
}

func (t *EventTable) Len() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0])
}

func (t *EventTable) Width() int {
	return len(t.columns)
}

// Clone returns a deep copy of the table.
func (t *EventTable) Clone() *EventTable {
	clone := NewEventTable()
	for i, name := range t.names {
		clone.AddColumn(name, slices.Clone(t.columns[i]))
	}
	return clone
}

// Filter returns a new table with the rows for which keep returns true,
// in their original order.
func (t *EventTable) Filter(keep func(row int) bool) *EventTable {
	rows := make([]int, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	filtered := NewEventTable()
	for i, name := range t.names {
		values := make([]float64, len(rows))
		for j, row := range rows {
			values[j] = t.columns[i][row]
		}
		filtered.AddColumn(name, values)
	}
	return filtered
}

// CheckColumns verifies that the table has rows and every expected column.
func (t *EventTable) CheckColumns(expected []string) error {
	for _, name := range expected {
		if _, ok := t.index[name]; !ok {
			return &ErrInputShape{Column: name, Reason: "missing column"}
		}
	}
	if t.Len() == 0 {
		return &ErrInputShape{Reason: "table has no rows"}
	}
	return nil
}
