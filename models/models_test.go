package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edsim/models"
)

func TestRejectionRateZeroWhenNoArrivals(t *testing.T) {
	r := models.CycleResult{}
	assert.Equal(t, 0.0, r.RejectionRate())
}

func TestRejectionRateIsFractionOfTotal(t *testing.T) {
	r := models.CycleResult{PatientsTreated: 3, PatientsRejected: 1}
	assert.InDelta(t, 0.25, r.RejectionRate(), 1e-9)
}

func TestAvgWaitMinutesZeroWithNoCompletions(t *testing.T) {
	r := models.CycleResult{
		Hourly: []models.HourlyMetrics{{TotalWaitSecs: 0, AvgWaitSecs: 0}},
	}
	assert.Equal(t, 0.0, r.AvgWaitMinutes())
}

func TestAvgWaitMinutesWeightsByCompletionsNotTreatingSize(t *testing.T) {
	// Hour 0: one completion averaging 120s. Hour 1: three completions
	// averaging 60s. A snapshot-weighted (TreatingSize) average would
	// give a different answer than weighting by actual completions.
	r := models.CycleResult{
		Hourly: []models.HourlyMetrics{
			{TreatingSize: 5, TotalWaitSecs: 120, AvgWaitSecs: 120},
			{TreatingSize: 1, TotalWaitSecs: 180, AvgWaitSecs: 60},
		},
	}
	// weighted: (120 + 180) / (1 + 3) = 75s = 1.25min
	assert.InDelta(t, 1.25, r.AvgWaitMinutes(), 1e-9)
}
