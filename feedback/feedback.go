// Package feedback adjusts demand multipliers between scheduling cycles
// from the previous cycle's observed rejection rate and wait time.
package feedback

import (
	"math"

	"edsim/models"
)

const (
	rejectionHighThreshold = 0.05
	waitHighThreshold      = 45.0
	rejectionLowThreshold  = 0.01
	waitLowThreshold       = 15.0
	increaseFactorHigh     = 0.15
	increaseFactorWait     = 0.10
	decreaseFactor         = 0.90
)

// Factor computes the multiplicative demand-adjustment factor for the
// next cycle from the just-completed cycle's outcome.
func Factor(result models.CycleResult) float64 {
	rejection := result.RejectionRate()
	wait := result.AvgWaitMinutes()

	highRejection := rejection > rejectionHighThreshold
	highWait := wait > waitHighThreshold
	if highRejection || highWait {
		factor := 1.0
		if highRejection {
			factor += increaseFactorHigh
		}
		if highWait {
			factor += increaseFactorWait
		}
		return factor
	}
	if rejection < rejectionLowThreshold && wait < waitLowThreshold {
		return decreaseFactor
	}
	return 1.0
}

// Apply multiplies each demand's required count by factor, ceiling the
// result, with a floor: a demand originally above 1 never drops to 0.
func Apply(demands []models.Demand, factor float64) []models.Demand {
	adjusted := make([]models.Demand, len(demands))
	for i, d := range demands {
		count := int(math.Ceil(float64(d.Required) * factor))
		if d.Required > 1 && count == 0 {
			count = 1
		}
		adjusted[i] = models.Demand{Role: d.Role, Day: d.Day, LPShift: d.LPShift, Required: count}
	}
	return adjusted
}
