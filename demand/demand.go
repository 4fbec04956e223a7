// Package demand translates estimated per-shift patient acuity counts
// into a per-role staffing-demand vector per day-part, following Oregon's
// ED staffing ratios (HB 2697) and the policy-driven ratios for
// non-legislated roles.
package demand

import (
	"math"

	"edsim/models"
)

// DayPart is one of the three daily staffing windows.
type DayPart struct {
	Name     string
	LPShift  string // 8-hour catalog mapping
	LPShift12 string // 12-hour catalog mapping (day+evening share d12)
}

var (
	Day     = DayPart{Name: "day", LPShift: "d8", LPShift12: "d12"}
	Evening = DayPart{Name: "evening", LPShift: "e8", LPShift12: "d12"}
	Night   = DayPart{Name: "night", LPShift: "n8", LPShift12: "n12"}
)

// Estimate is the configured acuity forecast for one day-part.
type Estimate struct {
	TraumaPatients    int
	NonTraumaPatients int
}

// RatioConfig carries the policy-driven ratios that are not legislated
// (LPN, CNA) plus the fixed physician/admin denominators.
type RatioConfig struct {
	LPNRatio float64
	CNARatio float64
}

// MinRNs returns the minimum Registered Nurses required: 1:1 trauma plus
// ceil(nonTrauma/4) for non-trauma, per Oregon HB 2697.
func MinRNs(traumaCount, nonTraumaCount int) int {
	if traumaCount < 0 {
		traumaCount = 0
	}
	if nonTraumaCount < 0 {
		nonTraumaCount = 0
	}
	return traumaCount + int(math.Ceil(float64(nonTraumaCount)/4.0))
}

// PolicyBasedCount returns ceil(total/ratio), or 0 if total or ratio is
// non-positive. Used for LPN and CNA counts, which are policy-driven
// rather than legislated.
func PolicyBasedCount(total int, ratio float64) int {
	if total <= 0 || ratio <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / ratio))
}

// AttendingPhysicians returns max(1, ceil(total/20)).
func AttendingPhysicians(total int) int {
	return int(math.Max(1, math.Ceil(float64(total)/20.0)))
}

// ResidentPhysicians returns ceil(total/15).
func ResidentPhysicians(total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / 15.0))
}

// AdminClerks returns max(1, ceil(census/50)).
func AdminClerks(census int) int {
	return int(math.Max(1, math.Ceil(float64(census)/50.0)))
}

// Requirements is one day-part's full per-role minimum-count vector.
type Requirements struct {
	RegisteredNurses    int
	LPNs                int
	CNAs                int
	AttendingPhysicians int
	ResidentPhysicians  int
	AdminClerks         int
}

// ForDayPart computes the full per-role requirement vector for one
// day-part's estimate.
func ForDayPart(est Estimate, ratios RatioConfig) Requirements {
	total := est.TraumaPatients + est.NonTraumaPatients
	return Requirements{
		RegisteredNurses:    MinRNs(est.TraumaPatients, est.NonTraumaPatients),
		LPNs:                PolicyBasedCount(total, ratios.LPNRatio),
		CNAs:                PolicyBasedCount(total, ratios.CNARatio),
		AttendingPhysicians: AttendingPhysicians(total),
		ResidentPhysicians:  ResidentPhysicians(total),
		AdminClerks:         AdminClerks(total),
	}
}

// GenerateDemands builds the demand list for a num_days planning horizon:
// the cartesian product of {day, evening, night} x {0..numDays-1} x
// (role, count), mapped to the 8-hour LP shift ids. use12Hour switches to
// the 12-hour catalog mapping (day+evening -> d12, night -> n12).
func GenerateDemands(estimates map[DayPart]Estimate, ratios RatioConfig, numDays int, use12Hour bool) []models.Demand {
	type key struct {
		role models.Role
		day  int
		lp   string
	}
	aggregated := make(map[key]int)
	var order []key

	for _, part := range []DayPart{Day, Evening, Night} {
		req := ForDayPart(estimates[part], ratios)
		lpShift := part.LPShift
		if use12Hour {
			lpShift = part.LPShift12
		}
		roleCounts := map[models.Role]int{
			models.RegisteredNurse:           req.RegisteredNurses,
			models.LicensedPracticalNurse:    req.LPNs,
			models.CertifiedNursingAssistant: req.CNAs,
			models.AttendingPhysician:        req.AttendingPhysicians,
			models.ResidentPhysician:         req.ResidentPhysicians,
			models.AdminClerk:                req.AdminClerks,
		}
		for day := 0; day < numDays; day++ {
			for role, count := range roleCounts {
				if count <= 0 {
					continue
				}
				k := key{role: role, day: day, lp: lpShift}
				if _, seen := aggregated[k]; !seen {
					order = append(order, k)
				}
				aggregated[k] += count
			}
		}
	}

	demands := make([]models.Demand, 0, len(order))
	for _, k := range order {
		demands = append(demands, models.Demand{
			Role:     k.role,
			Day:      k.day,
			LPShift:  k.lp,
			Required: aggregated[k],
		})
	}
	return demands
}
