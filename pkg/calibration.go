package music

import "fmt"

type ChannelRole int

const (
	RoleStandalone ChannelRole = iota
	RoleBeam
	RoleShort
)

func (r ChannelRole) String() string {
	switch r {
	case RoleStandalone:
		return "standalone"
	case RoleBeam:
		return "beam"
	case RoleShort:
		return "short"
	default:
		return "unknown"
	}
}

// ChannelCalibration is the set of constants derived for one channel.
// Calibrated values are (raw - Offset) * Scale. Short channels carry the
// fit of their beam channel.
type ChannelCalibration struct {
	Channel string
	Pair    string
	Role    ChannelRole
	Fit     GaussParams
	Scale   float64
	Offset  float64
	Entries int
}

func (c ChannelCalibration) Calibrate(v float64) float64 {
	return (v - c.Offset) * c.Scale
}

func (c ChannelCalibration) String() string {
	return fmt.Sprintf("%s (%s, %s): scale=%.6g offset=%.4g fit: %v", c.Channel, c.Pair, c.Role, c.Scale, c.Offset, c.Fit)
}

// Apply rewrites every calibrated column of table in place.
func Apply(table *EventTable, calibrations []ChannelCalibration) error {
	columns := make([][]float64, len(calibrations))
	seen := make(map[string]bool, len(calibrations))
	for i, c := range calibrations {
		if seen[c.Channel] {
			return &ErrInputShape{Column: c.Channel, Reason: "more than one calibration for column"}
		}
		seen[c.Channel] = true
		values, ok := table.Column(c.Channel)
		if !ok {
			return &ErrInputShape{Column: c.Channel, Reason: "no column for calibration"}
		}
		columns[i] = values
	}
	for i, c := range calibrations {
		values := columns[i]
		for row, v := range values {
			values[row] = c.Calibrate(v)
		}
	}
	return nil
}
