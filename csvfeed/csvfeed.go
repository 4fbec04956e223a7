// Package csvfeed parses manual scenario fixtures: CSV files of literal
// patients to inject into a running simulator, used for boundary-scenario
// replay outside the generator/arrival-process pipeline (e.g. the
// priority-ordering and saturation scenarios).
package csvfeed

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	cserr "edsim/errors"
	"edsim/models"
)

// InjectedPatient is one row of a scenario fixture: an arrival time offset
// and the triage inputs needed to build a models.Patient without going
// through the stochastic generator.
type InjectedPatient struct {
	ArrivalTime time.Duration
	Triage      models.TriageLevel
	ServiceTime time.Duration
}

// levelByName resolves a triage level by its fixed name (RED, ORANGE, ...).
func levelByName(name string) (models.TriageLevel, bool) {
	for _, l := range models.TriageLevels {
		if l.Name == name {
			return l, true
		}
	}
	return models.TriageLevel{}, false
}

// Parse reads a scenario fixture: comma-separated rows of
// "arrivalMinutes,triageLevel,serviceTimeMinutes". Lines starting with '#'
// are treated as comments and skipped, matching the source's fixture
// convention.
func Parse(r io.Reader) ([]InjectedPatient, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var patients []InjectedPatient
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &cserr.ParseError{Line: lineNum, Record: record, Err: err}
		}

		if len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		if len(record) != 3 {
			return nil, &cserr.ParseError{Line: lineNum, Record: record, Err: cserr.ErrInvalidFieldCount}
		}

		arrivalMinutes, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, &cserr.ParseError{Line: lineNum, Record: record, Err: cserr.ErrInvalidDuration}
		}

		level, ok := levelByName(strings.ToUpper(strings.TrimSpace(record[1])))
		if !ok {
			return nil, &cserr.ParseError{Line: lineNum, Record: record, Err: cserr.ErrInvalidTriage}
		}

		serviceMinutes, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, &cserr.ParseError{Line: lineNum, Record: record, Err: cserr.ErrInvalidDuration}
		}

		patients = append(patients, InjectedPatient{
			ArrivalTime: time.Duration(arrivalMinutes * float64(time.Minute)),
			Triage:      level,
			ServiceTime: time.Duration(serviceMinutes * float64(time.Minute)),
		})
	}

	if len(patients) == 0 {
		return nil, cserr.ErrEmptyRecord
	}
	return patients, nil
}

// ToPatients converts fixture rows into fully-formed patients, assigning
// each a fresh identity via the same uuid scheme the stochastic generator
// uses. A fixture pins the triage level directly, so diagnosis code is
// left at 0 (not applicable).
func ToPatients(rows []InjectedPatient) []*models.Patient {
	patients := make([]*models.Patient, 0, len(rows))
	for _, row := range rows {
		id := uuid.New().String()
		patients = append(patients, &models.Patient{
			ID:          id,
			Name:        "Fixture-" + id[:8],
			Triage:      row.Triage,
			ArrivalTime: row.ArrivalTime,
			ServiceTime: row.ServiceTime,
		})
	}
	return patients
}
