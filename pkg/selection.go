package music

import (
	"errors"
	"fmt"
)

// SelectionRule keeps the events whose channel value lies within the
// given bounds. A nil bound is not checked.
type SelectionRule struct {
	Channel string   `json:"channel" yaml:"channel"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

func (r SelectionRule) Validate() error {
	if r.Channel == "" {
		return errors.New("missing channel")
	}
	if r.Min == nil && r.Max == nil {
		return fmt.Errorf("rule on %s has no bound", r.Channel)
	}
	if r.Min != nil && r.Max != nil && *r.Max < *r.Min {
		return fmt.Errorf("rule on %s has max %g below min %g", r.Channel, *r.Max, *r.Min)
	}
	return nil
}

func (r SelectionRule) Pass(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r SelectionRule) String() string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%g <= %s <= %g", *r.Min, r.Channel, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf("%s >= %g", r.Channel, *r.Min)
	default:
		return fmt.Sprintf("%s <= %g", r.Channel, *r.Max)
	}
}

// Select returns a new table with the events passing every rule.
func Select(table *EventTable, rules []SelectionRule) (*EventTable, error) {
	columns := make([][]float64, len(rules))
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, &ErrConfiguration{Field: fmt.Sprintf("selection[%d]", i), Reason: err.Error()}
		}
		values, ok := table.Column(rule.Channel)
		if !ok {
			return nil, &ErrInputShape{Column: rule.Channel, Reason: "missing column"}
		}
		columns[i] = values
	}

	selected := table.Filter(func(row int) bool {
		for i, rule := range rules {
			if !rule.Pass(columns[i][row]) {
				return false
			}
		}
		return true
	})

	if configuration.Verbosity > 0 {
		for _, rule := range rules {
			logger.Info(fmt.Sprintf("Selection rule: %s", rule), "selection")
		}
		logger.Info(fmt.Sprintf("Selected %d of %d events", selected.Len(), table.Len()), "selection")
	}
	return selected, nil
}
