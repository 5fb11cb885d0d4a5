package music

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type CalibrationEntry struct {
	RunNumber int     `db:"RunNumber"`
	Channel   string  `db:"Channel"`
	Pair      string  `db:"Pair"`
	Role      int     `db:"Role"`
	Amplitude float64 `db:"Amplitude"`
	Center    float64 `db:"Center"`
	Sigma     float64 `db:"Sigma"`
	Scale     float64 `db:"Scale"`
	Baseline  float64 `db:"Baseline"`
	Entries   int     `db:"Entries"`
}

const createCalibrationTable = `CREATE TABLE IF NOT EXISTS MusicCalibration (
	ID INT AUTO_INCREMENT PRIMARY KEY,
	RunNumber INT NOT NULL,
	Channel VARCHAR(20) NOT NULL,
	Pair VARCHAR(20) NOT NULL,
	Role INT NOT NULL,
	Amplitude DOUBLE NOT NULL,
	Center DOUBLE NOT NULL,
	Sigma DOUBLE NOT NULL,
	Scale DOUBLE NOT NULL,
	Baseline DOUBLE NOT NULL,
	Entries INT NOT NULL,
	INDEX (RunNumber)
)`

const deleteCalibrations = "DELETE FROM MusicCalibration WHERE RunNumber = ?"

const insertCalibration = `INSERT INTO MusicCalibration
	(RunNumber, Channel, Pair, Role, Amplitude, Center, Sigma, Scale, Baseline, Entries)
	VALUES (:RunNumber, :Channel, :Pair, :Role, :Amplitude, :Center, :Sigma, :Scale, :Baseline, :Entries)`

const selectCalibrations = `SELECT RunNumber, Channel, Pair, Role, Amplitude, Center, Sigma, Scale, Baseline, Entries
	FROM MusicCalibration WHERE RunNumber = ? ORDER BY ID`

func CreateCalibrationTable(db *sqlx.DB) error {
	if _, err := db.Exec(createCalibrationTable); err != nil {
		return fmt.Errorf("error creating calibration table: %w", err)
	}
	return nil
}

func newCalibrationEntry(runNumber int, c ChannelCalibration) CalibrationEntry {
	return CalibrationEntry{
		RunNumber: runNumber,
		Channel:   c.Channel,
		Pair:      c.Pair,
		Role:      int(c.Role),
		Amplitude: c.Fit.Amplitude,
		Center:    c.Fit.Center,
		Sigma:     c.Fit.Sigma,
		Scale:     c.Scale,
		Baseline:  c.Offset,
		Entries:   c.Entries,
	}
}

func (e CalibrationEntry) Calibration() ChannelCalibration {
	return ChannelCalibration{
		Channel: e.Channel,
		Pair:    e.Pair,
		Role:    ChannelRole(e.Role),
		Fit:     GaussParams{Amplitude: e.Amplitude, Center: e.Center, Sigma: e.Sigma},
		Scale:   e.Scale,
		Offset:  e.Baseline,
		Entries: e.Entries,
	}
}

// WriteCalibrations replaces the constants stored for runNumber.
func WriteCalibrations(db *sqlx.DB, runNumber int, calibrations []ChannelCalibration) error {
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Writing %d calibration constants for run %d", len(calibrations), runNumber)
		logger.Info(message, "database")
	}
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", deleteCalibrations), "database")
	}
	if _, err := tx.Exec(deleteCalibrations, runNumber); err != nil {
		return fmt.Errorf("error deleting calibrations of run %d: %w", runNumber, err)
	}
	for _, c := range calibrations {
		if _, err := tx.NamedExec(insertCalibration, newCalibrationEntry(runNumber, c)); err != nil {
			return fmt.Errorf("error inserting calibration of channel %s: %w", c.Channel, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing calibrations: %w", err)
	}
	return nil
}

func LoadCalibrations(db *sqlx.DB, runNumber int) ([]ChannelCalibration, error) {
	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", selectCalibrations), "database")
	}
	var entries []CalibrationEntry
	if err := db.Select(&entries, selectCalibrations, runNumber); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no calibration constants for run %d", runNumber)
	}
	calibrations := make([]ChannelCalibration, len(entries))
	for i, e := range entries {
		calibrations[i] = e.Calibration()
	}
	return calibrations, nil
}
