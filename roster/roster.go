// Package roster builds and solves one mixed-integer program per staff
// class (nurse, attending, resident, admin) to produce a day-by-day
// shift assignment minimizing wage cost subject to labor rules.
package roster

import (
	"fmt"
	"math"

	"github.com/draffensperger/golp"

	"edsim/models"
)

// Class names the four structurally similar optimizers.
type Class string

const (
	NurseClass     Class = "nurse"
	AttendingClass Class = "attending"
	ResidentClass  Class = "resident"
	AdminClass     Class = "admin"
)

const restHours = 10.0
const residentWeeklyCap = 80.0
const minOffDaysAdmin = 2

// variableIndex resolves the flat LP column for a (staff, shift, day)
// assignment variable, or a weekly-hours variable.
type variableIndex struct {
	numStaff, numShifts, numDays, numWeeks int
}

func (v variableIndex) x(n, s, d int) int {
	return n*v.numShifts*v.numDays + s*v.numDays + d
}

func (v variableIndex) assignBase() int {
	return v.numStaff * v.numShifts * v.numDays
}

func (v variableIndex) reg(n, w int) int {
	return v.assignBase() + n*v.numWeeks*3 + w*3
}
func (v variableIndex) ot(n, w int) int {
	return v.assignBase() + n*v.numWeeks*3 + w*3 + 1
}
func (v variableIndex) actual(n, w int) int {
	return v.assignBase() + n*v.numWeeks*3 + w*3 + 2
}

func (v variableIndex) numCols() int {
	return v.assignBase() + v.numStaff*v.numWeeks*3
}

// Solve builds and solves the ILP for one staff class restricted to
// input.Staff already filtered to that class's roles, returning a
// Schedule. A solve ending in any status other than optimal or
// sub-optimal (infeasible, unbounded, ...) is non-fatal: it returns the
// infeasible-output shape (feasible=false, empty maps, zero cost) rather
// than an error, per the error handling design — per-class failures do
// not halt the orchestrator.
func Solve(class Class, input models.OptimizationInput) models.Schedule {
	if len(input.Staff) == 0 {
		return models.Schedule{
			Assignments: map[string]map[int]string{},
			Hours:       map[string]map[int]models.WeeklyHours{},
			Feasible:    true,
		}
	}

	idx := variableIndex{
		numStaff:  len(input.Staff),
		numShifts: len(input.Shifts),
		numDays:   input.NumDays,
		numWeeks:  input.NumWeeks,
	}

	lp := golp.NewLP(0, idx.numCols())
	defer lp.Delete()

	for n := range input.Staff {
		for s := range input.Shifts {
			for d := 0; d < input.NumDays; d++ {
				lp.SetBinary(idx.x(n, s, d), true)
			}
		}
	}
	for n := range input.Staff {
		for w := 0; w < input.NumWeeks; w++ {
			lp.SetColBounds(idx.reg(n, w), 0, input.MaxRegularHoursPerWeek)
			lp.SetColBounds(idx.ot(n, w), 0, input.MaxTotalHoursPerWeek)
			lp.SetColBounds(idx.actual(n, w), 0, input.MaxTotalHoursPerWeek)
		}
	}

	addCommonConstraints(lp, idx, input)

	switch class {
	case ResidentClass:
		addResidentConstraints(lp, idx, input)
	case AdminClass:
		addAdminOffDayConstraint(lp, idx, input)
	default:
		addRestRuleConstraint(lp, idx, input)
	}

	obj := make([]float64, idx.numCols())
	for n, staff := range input.Staff {
		for w := 0; w < input.NumWeeks; w++ {
			obj[idx.reg(n, w)] = staff.HourlyWage
			obj[idx.ot(n, w)] = staff.HourlyWage * input.OvertimeMultiplier
		}
	}
	lp.SetObjFn(obj)
	lp.SetMinimize()

	status := lp.Solve()
	if status != golp.OPTIMAL && status != golp.SUBOPTIMAL {
		return models.Schedule{
			Assignments: map[string]map[int]string{},
			Hours:       map[string]map[int]models.WeeklyHours{},
			Feasible:    false,
		}
	}

	return extractSolution(lp, idx, input)
}

// addCommonConstraints adds K1-K5, shared by all four classes.
func addCommonConstraints(lp *golp.LP, idx variableIndex, input models.OptimizationInput) {
	// K1: one shift per day.
	for n := range input.Staff {
		for d := 0; d < input.NumDays; d++ {
			row := make([]float64, idx.numCols())
			for s := range input.Shifts {
				row[idx.x(n, s, d)] = 1
			}
			lp.AddConstraint(row, golp.EQ, 1)
		}
	}

	// K2: weekly actual hours = sum of assigned shift lengths.
	for n := range input.Staff {
		for w := 0; w < input.NumWeeks; w++ {
			row := make([]float64, idx.numCols())
			row[idx.actual(n, w)] = -1
			for dayOffset := 0; dayOffset < 7; dayOffset++ {
				d := w*7 + dayOffset
				if d >= input.NumDays {
					break
				}
				for s, shift := range input.Shifts {
					row[idx.x(n, s, d)] += shift.Kind.LengthHours
				}
			}
			lp.AddConstraint(row, golp.EQ, 0)
		}
	}

	// K3: actual = regular + overtime.
	for n := range input.Staff {
		for w := 0; w < input.NumWeeks; w++ {
			row := make([]float64, idx.numCols())
			row[idx.actual(n, w)] = 1
			row[idx.reg(n, w)] = -1
			row[idx.ot(n, w)] = -1
			lp.AddConstraint(row, golp.EQ, 0)
		}
	}

	// K4: max daily hours.
	for n := range input.Staff {
		for d := 0; d < input.NumDays; d++ {
			row := make([]float64, idx.numCols())
			for s, shift := range input.Shifts {
				row[idx.x(n, s, d)] = shift.Kind.LengthHours
			}
			lp.AddConstraint(row, golp.LE, input.MaxHoursPerDay)
		}
	}

	// K5: demand coverage via shift-interval containment.
	for _, dem := range input.Demands {
		required := shiftByLPID(input.Shifts, dem.LPShift)
		if required == nil {
			continue
		}
		if dem.Required <= 0 {
			continue
		}
		row := make([]float64, idx.numCols())
		for n, staff := range input.Staff {
			if staff.Role != dem.Role {
				continue
			}
			for s, shift := range input.Shifts {
				if shift.Covers(*required) {
					row[idx.x(n, s, dem.Day)] += 1
				}
			}
		}
		lp.AddConstraint(row, golp.GE, float64(dem.Required))
	}
}

// addRestRuleConstraint adds K6: minimum 10h rest after any >=12h shift.
func addRestRuleConstraint(lp *golp.LP, idx variableIndex, input models.OptimizationInput) {
	for n := range input.Staff {
		for d := 0; d < input.NumDays-1; d++ {
			for sLong, longShift := range input.Shifts {
				if longShift.Kind.LengthHours < 12 {
					continue
				}
				longEnd := longShift.EndHour()
				for dPrime := d; dPrime <= d+1; dPrime++ {
					if dPrime >= input.NumDays {
						continue
					}
					offsetHours := 0.0
					if dPrime == d+1 {
						offsetHours = 24
					}
					for sPrime, otherShift := range input.Shifts {
						if otherShift.Kind.IsOff {
							continue
						}
						if dPrime == d && sPrime == sLong {
							continue
						}
						absStart := otherShift.Kind.DefaultStartHour + offsetHours
						if absStart < longEnd+restHours {
							row := make([]float64, idx.numCols())
							row[idx.x(n, sLong, d)] = 1
							row[idx.x(n, sPrime, dPrime)] = 1
							lp.AddConstraint(row, golp.LE, 1)
						}
					}
				}
			}
		}
	}
}

// addResidentConstraints adds the resident-class weekly cap, horizon-
// averaged cap, and minimum one day off per week.
func addResidentConstraints(lp *golp.LP, idx variableIndex, input models.OptimizationInput) {
	addRestRuleConstraint(lp, idx, input)

	cap := math.Min(input.MaxTotalHoursPerWeek, residentWeeklyCap)
	for n := range input.Staff {
		for w := 0; w < input.NumWeeks; w++ {
			row := make([]float64, idx.numCols())
			row[idx.actual(n, w)] = 1
			lp.AddConstraint(row, golp.LE, cap)
		}
	}

	for n := range input.Staff {
		row := make([]float64, idx.numCols())
		for w := 0; w < input.NumWeeks; w++ {
			row[idx.actual(n, w)] = 1
		}
		lp.AddConstraint(row, golp.LE, residentWeeklyCap*float64(input.NumWeeks))
	}

	offIdx := offShiftIndex(input.Shifts)
	if offIdx == -1 {
		return
	}
	for n := range input.Staff {
		for w := 0; w < input.NumWeeks; w++ {
			row := make([]float64, idx.numCols())
			for dayOffset := 0; dayOffset < 7; dayOffset++ {
				d := w*7 + dayOffset
				if d >= input.NumDays {
					break
				}
				row[idx.x(n, offIdx, d)] = 1
			}
			lp.AddConstraint(row, golp.GE, 1)
		}
	}
}

// addAdminOffDayConstraint adds the admin-class minimum 2 days off per
// week (K1-K5 only; the rest rule is omitted per spec).
func addAdminOffDayConstraint(lp *golp.LP, idx variableIndex, input models.OptimizationInput) {
	offIdx := offShiftIndex(input.Shifts)
	if offIdx == -1 {
		return
	}
	for n := range input.Staff {
		for w := 0; w < input.NumWeeks; w++ {
			row := make([]float64, idx.numCols())
			for dayOffset := 0; dayOffset < 7; dayOffset++ {
				d := w*7 + dayOffset
				if d >= input.NumDays {
					break
				}
				row[idx.x(n, offIdx, d)] = 1
			}
			lp.AddConstraint(row, golp.GE, minOffDaysAdmin)
		}
	}
}

func offShiftIndex(shifts []models.ShiftDefinition) int {
	for i, s := range shifts {
		if s.Kind.IsOff {
			return i
		}
	}
	return -1
}

func shiftByLPID(shifts []models.ShiftDefinition, lpID string) *models.ShiftDefinition {
	for i := range shifts {
		if shifts[i].LPID == lpID {
			return &shifts[i]
		}
	}
	return nil
}

// extractSolution reads the solved variable values back into a Schedule.
// x > 0.9 is treated as 1 to tolerate numeric noise.
func extractSolution(lp *golp.LP, idx variableIndex, input models.OptimizationInput) models.Schedule {
	vars := lp.Variables()

	assignments := make(map[string]map[int]string, len(input.Staff))
	hours := make(map[string]map[int]models.WeeklyHours, len(input.Staff))
	var totalCost float64

	for n, staff := range input.Staff {
		daily := make(map[int]string, input.NumDays)
		for d := 0; d < input.NumDays; d++ {
			for s, shift := range input.Shifts {
				if vars[idx.x(n, s, d)] > 0.9 {
					daily[d] = shift.LPID
					break
				}
			}
		}
		assignments[staff.ID] = daily

		weekly := make(map[int]models.WeeklyHours, input.NumWeeks)
		for w := 0; w < input.NumWeeks; w++ {
			reg := vars[idx.reg(n, w)]
			ot := vars[idx.ot(n, w)]
			actual := vars[idx.actual(n, w)]
			weekly[w] = models.WeeklyHours{Regular: reg, Overtime: ot, Actual: actual}
			totalCost += reg*staff.HourlyWage + ot*staff.HourlyWage*input.OvertimeMultiplier
		}
		hours[staff.ID] = weekly
	}

	return models.Schedule{
		Assignments: assignments,
		Hours:       hours,
		TotalCost:   totalCost,
		Feasible:    true,
	}
}

// ResolveWeek derives the concrete {Monday..Sunday} shift-kind assignment
// for one staff id in week w, resolving the LP shift id through the
// catalog. Days beyond numDays are omitted (the convenience derivation
// the schedule output model provides).
func ResolveWeek(sched models.Schedule, shifts []models.ShiftDefinition, staffID string, week, numDays int) (map[string]models.ShiftKind, error) {
	daily, ok := sched.Assignments[staffID]
	if !ok {
		return nil, fmt.Errorf("no assignments for staff %q", staffID)
	}
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	result := make(map[string]models.ShiftKind)
	for dayOffset, name := range names {
		d := week*7 + dayOffset
		if d >= numDays {
			break
		}
		lpID, ok := daily[d]
		if !ok {
			continue
		}
		if shift := shiftByLPID(shifts, lpID); shift != nil {
			result[name] = shift.Kind
		}
	}
	return result, nil
}
