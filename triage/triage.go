// Package triage classifies an integer diagnosis code into a triage
// level under one of three fixed, table-driven classifier variants.
package triage

import (
	"fmt"

	cserr "edsim/errors"
	"edsim/models"
)

// Variant names a fixed classifier table.
type Variant string

const (
	CTAS Variant = "CTAS"
	ESI  Variant = "ESI"
	MTS  Variant = "MTS"
)

// ctasTable, esiTable, and mtsTable are bit-for-bit reproductions of the
// source's per-variant diagnosis-code -> triage-level mappings.
var ctasTable = map[int]models.TriageLevel{
	1: models.Yellow, 2: models.Green, 3: models.Red, 4: models.Blue,
	5: models.Orange, 6: models.Green, 7: models.Yellow, 8: models.Yellow,
	9: models.Blue, 10: models.Yellow, 11: models.Green, 12: models.Orange,
	13: models.Orange, 14: models.Green, 15: models.Blue, 16: models.Blue,
	17: models.Blue,
}

var esiTable = map[int]models.TriageLevel{
	1: models.Yellow, 2: models.Yellow, 3: models.Red, 4: models.Yellow,
	5: models.Yellow, 6: models.Yellow, 7: models.Green, 8: models.Yellow,
	9: models.Blue, 10: models.Yellow, 11: models.Green, 12: models.Yellow,
	13: models.Orange, 14: models.Blue, 15: models.Green, 16: models.Green,
	17: models.Blue,
}

var mtsTable = map[int]models.TriageLevel{
	1: models.Yellow, 2: models.Yellow, 3: models.Red, 4: models.Yellow,
	5: models.Yellow, 6: models.Yellow, 7: models.Green, 8: models.Yellow,
	9: models.Blue, 10: models.Yellow, 11: models.Green, 12: models.Yellow,
	13: models.Orange, 14: models.Green, 15: models.Green, 16: models.Green,
	17: models.Blue,
}

var tables = map[Variant]map[int]models.TriageLevel{
	CTAS: ctasTable,
	ESI:  esiTable,
	MTS:  mtsTable,
}

// Classifier is a total function from diagnosis code (1..17) to triage
// level under one fixed variant.
type Classifier struct {
	variant Variant
	table   map[int]models.TriageLevel
}

// New returns a Classifier for the named variant, or an error if the
// variant is unrecognized.
func New(variant Variant) (*Classifier, error) {
	table, ok := tables[variant]
	if !ok {
		return nil, fmt.Errorf("unknown triage classifier variant %q", variant)
	}
	return &Classifier{variant: variant, table: table}, nil
}

// Classify maps a diagnosis code to a triage level. Unknown codes fail
// with ErrUnknownDiagnosis.
func (c *Classifier) Classify(diagnosisCode int) (models.TriageLevel, error) {
	level, ok := c.table[diagnosisCode]
	if !ok {
		return models.TriageLevel{}, &cserr.StructuredError{
			Phase: cserr.PhaseClassify,
			Param: "diagnosis_code",
			Value: diagnosisCode,
			Err:   cserr.ErrUnknownDiagnosis,
		}
	}
	return level, nil
}

// Variant returns the classifier's configured variant name.
func (c *Classifier) Variant() Variant {
	return c.variant
}
