// Package orchestrator drives the cyclic optimize-simulate-adjust loop:
// for each fixed-length scheduling period, solve the four per-class
// rosters, simulate the period's patient flow against the ED model, and
// adjust the next period's staffing demand from the observed outcome.
package orchestrator

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"edsim/arrival"
	"edsim/config"
	"edsim/demand"
	"edsim/edstate"
	cserr "edsim/errors"
	"edsim/feedback"
	"edsim/metrics"
	"edsim/models"
	"edsim/patientgen"
	"edsim/roster"
	"edsim/simulator"
	"edsim/triage"
)

// defaultShiftCatalog is the 8-hour catalog used for the demand generator's
// LP shift ids and the roster's shift definitions.
var defaultShiftCatalog = []models.ShiftDefinition{
	{LPID: "d8", Kind: models.ShiftDay8},
	{LPID: "e8", Kind: models.ShiftEvening8},
	{LPID: "n8", Kind: models.ShiftNight8},
	{LPID: "off", Kind: models.ShiftFree},
}

var rosterClasses = []roster.Class{roster.NurseClass, roster.AttendingClass, roster.ResidentClass, roster.AdminClass}

var classRoles = map[roster.Class][]models.Role{
	roster.NurseClass: {
		models.RegisteredNurse, models.LicensedPracticalNurse, models.CertifiedNursingAssistant,
		models.NursePractitioner, models.ClinicalNurseSpecialist, models.CertifiedRNAnesthetist,
	},
	roster.AttendingClass: {models.AttendingPhysician, models.Surgeon, models.Cardiologist},
	roster.ResidentClass:  {models.ResidentPhysician},
	roster.AdminClass:     {models.AdminClerk},
}

// CycleReport is one scheduling period's combined optimize+simulate
// outcome, returned to the caller for reporting.
type CycleReport struct {
	CycleIndex   int
	Schedules    map[roster.Class]models.Schedule
	Hourly       []models.HourlyMetrics
	Result       models.CycleResult
	DemandFactor float64
}

// Orchestrator owns the long-lived simulator instance (event queue,
// pooled staff, RNG) and the config it was built from, and drives
// scheduling-period cycles against it.
type Orchestrator struct {
	cfg    *config.Config
	sim    *simulator.Simulator
	staff  []models.StaffMember
	logger *zap.Logger

	periodDays int
}

// New builds an Orchestrator: compiles the arrival-rate expression,
// constructs the triage classifier and patient generator, materializes
// the staff roster pool from configured counts and wages, and wires the
// simulator over an ED state sized per config.
func New(cfg *config.Config, rng *rand.Rand, logger *zap.Logger) (*Orchestrator, error) {
	classifier, err := triage.New(triage.Variant(cfg.TriageVariant))
	if err != nil {
		return nil, err
	}

	expr, ok := cfg.PatientArrivalFunctions[cfg.DefaultArrivalFunction]
	if !ok {
		return nil, &cserr.ConfigError{Key: "defaultArrivalFunction", Err: cserr.ErrUnknownArrivalFunction}
	}
	evaluator, err := arrival.NewEvaluator(cfg.DefaultArrivalFunction, expr)
	if err != nil {
		return nil, err
	}
	process := arrival.NewProcess(evaluator, cfg.InterarrivalTimeMins, rng)

	generator := patientgen.NewGenerator(classifier, serviceTimeConfig(cfg), cfg.PatientMinAge, cfg.PatientMaxAge, rng)

	pooled := map[models.PooledGroup]float64{
		models.PoolNurses:    sumRoles(cfg.StaffCounts, classRoles[roster.NurseClass]),
		models.PoolPhysician: float64(cfg.StaffCounts["ATTENDING_PHYSICIAN"]),
		models.PoolResidents: float64(cfg.StaffCounts["RESIDENT_PHYSICIAN"]),
	}
	er := edstate.New(cfg.ERName, cfg.ERCapacity, cfg.ERTreatmentRooms, pooled)

	requirements := simulator.TriageRequirements{
		Nurses:     cfg.TriageNurseRequirements,
		Physicians: cfg.TriagePhysicianRequirements,
		Residents:  cfg.TriageRPRequirements,
	}
	sim := simulator.New(er, requirements, generator, process)

	period := cfg.SchedulingPeriodDays
	if period <= 0 {
		period = 28
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		cfg:        cfg,
		sim:        sim,
		staff:      materializeStaff(cfg.StaffCounts, cfg.HourlyWages),
		logger:     logger,
		periodDays: period,
	}, nil
}

func serviceTimeConfig(cfg *config.Config) patientgen.ServiceTimeConfig {
	if len(cfg.AvgTreatmentTimesMins) == 0 {
		return patientgen.DefaultServiceTimeMinutes
	}
	out := make(patientgen.ServiceTimeConfig, len(cfg.AvgTreatmentTimesMins))
	for k, v := range cfg.AvgTreatmentTimesMins {
		out[k] = v
	}
	return out
}

func sumRoles(counts map[string]int, roles []models.Role) float64 {
	var total float64
	for _, r := range roles {
		total += float64(counts[string(r)])
	}
	return total
}

// materializeStaff expands per-role counts into individually-identified
// staff members, since the roster ILP operates on staff instances rather
// than role totals.
func materializeStaff(counts map[string]int, wages map[string]float64) []models.StaffMember {
	var staff []models.StaffMember
	for role, count := range counts {
		wage := wages[role]
		for i := 0; i < count; i++ {
			staff = append(staff, models.StaffMember{
				ID:         role + "-" + strconv.Itoa(i),
				Role:       models.Role(role),
				HourlyWage: wage,
			})
		}
	}
	return staff
}

func (o *Orchestrator) staffForClass(class roster.Class) []models.StaffMember {
	roles := make(map[models.Role]bool, len(classRoles[class]))
	for _, r := range classRoles[class] {
		roles[r] = true
	}
	var filtered []models.StaffMember
	for _, s := range o.staff {
		if roles[s.Role] {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func (o *Orchestrator) baselineEstimates() map[demand.DayPart]demand.Estimate {
	return map[demand.DayPart]demand.Estimate{
		demand.Day:     {TraumaPatients: o.cfg.EstTraumaPatientsDay, NonTraumaPatients: o.cfg.EstNonTraumaPatientsDay},
		demand.Evening: {TraumaPatients: o.cfg.EstTraumaPatientsEvening, NonTraumaPatients: o.cfg.EstNonTraumaPatientsEvening},
		demand.Night:   {TraumaPatients: o.cfg.EstTraumaPatientsNight, NonTraumaPatients: o.cfg.EstNonTraumaPatientsNight},
	}
}

// Run drives ceil(totalDays/periodDays) cycles, solving each class's
// roster in parallel via an errgroup, simulating the period, and
// adjusting the next period's demand from the observed outcome.
func (o *Orchestrator) Run(totalDays int) ([]CycleReport, error) {
	estimates := o.baselineEstimates()
	ratios := demand.RatioConfig{LPNRatio: o.cfg.LPNRatio, CNARatio: o.cfg.CNARatio}
	factor := 1.0

	var reports []CycleReport
	var prevTreated, prevRejected int

	dayDuration := 24 * time.Hour
	cycleIndex := 0
	for t := 0; t < totalDays; t += o.periodDays {
		days := o.periodDays
		if t+days > totalDays {
			days = totalDays - t
		}

		demands := demand.GenerateDemands(estimates, ratios, days, false)
		if factor != 1.0 {
			demands = feedback.Apply(demands, factor)
		}

		input := models.OptimizationInput{
			Shifts:                 defaultShiftCatalog,
			Demands:                demands,
			NumDays:                days,
			NumWeeks:               (days + 6) / 7,
			MaxHoursPerDay:         o.cfg.MaxHoursPerDay,
			MaxRegularHoursPerWeek: o.cfg.MaxRegularHoursPerWeek,
			MaxTotalHoursPerWeek:   o.cfg.MaxTotalHoursPerWeek,
			OvertimeMultiplier:     o.cfg.OvertimeMultiplier,
		}

		schedules, err := o.solveAllClasses(input)
		if err != nil {
			return reports, err
		}
		for class, sched := range schedules {
			metrics.RosterTotalCost.WithLabelValues(string(class)).Set(sched.TotalCost)
			if !sched.Feasible {
				metrics.RosterInfeasibleTotal.WithLabelValues(string(class)).Inc()
				o.logger.Warn("roster class infeasible", zap.String("class", string(class)), zap.Int("cycle", cycleIndex))
			}
		}

		cycleStart := time.Duration(t) * dayDuration
		cycleEnd := time.Duration(t+days) * dayDuration
		rows, err := o.sim.RunCycle(cycleStart, cycleEnd)
		if err != nil {
			return reports, err
		}

		treated := o.sim.PatientsTreated()
		rejected := o.sim.PatientsRejected()
		result := models.CycleResult{
			PatientsTreated:  treated - prevTreated,
			PatientsRejected: rejected - prevRejected,
			Hourly:           rows,
		}
		prevTreated, prevRejected = treated, rejected

		metrics.RecordCycle(result.PatientsTreated, result.PatientsRejected, result.RejectionRate(), result.AvgWaitMinutes())

		factor = feedback.Factor(result)
		metrics.DemandFeedbackFactor.Set(factor)

		reports = append(reports, CycleReport{
			CycleIndex:   cycleIndex,
			Schedules:    schedules,
			Hourly:       rows,
			Result:       result,
			DemandFactor: factor,
		})
		cycleIndex++
	}
	return reports, nil
}

// solveAllClasses runs the four per-class ILP solves concurrently, since
// they are independent per the concurrency model's explicit allowance.
func (o *Orchestrator) solveAllClasses(input models.OptimizationInput) (map[roster.Class]models.Schedule, error) {
	results := make(map[roster.Class]models.Schedule, len(rosterClasses))
	var mu sync.Mutex

	g := new(errgroup.Group)
	for _, class := range rosterClasses {
		class := class
		g.Go(func() error {
			classInput := input
			classInput.Staff = o.staffForClass(class)
			sched := roster.Solve(class, classInput)
			mu.Lock()
			results[class] = sched
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
