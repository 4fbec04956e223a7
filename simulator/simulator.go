// Package simulator implements the discrete-event patient-flow simulator:
// an ordered queue of arrival/release events drained in time order,
// driving admits, treatments, and releases against an ED state.
package simulator

import (
	"container/heap"
	"math/rand"
	"time"

	"edsim/arrival"
	"edsim/edstate"
	"edsim/models"
	"edsim/patientgen"
)

// TriageRequirements gives, per triage level name, the fractional pooled
// staff needed to begin treatment.
type TriageRequirements struct {
	Nurses     map[string]float64
	Physicians map[string]float64
	Residents  map[string]float64
}

// Simulator owns the ED state, event queue, RNG, and metric accumulators
// for one exclusive run. Concurrent mutation of a running Simulator is
// disallowed; callers must start, await completion, then read outputs.
type Simulator struct {
	er           *edstate.State
	requirements TriageRequirements
	generator    *patientgen.Generator
	process      *arrival.Process

	queue    eventQueue
	nextSeq  int64

	eventsProcessed  int
	patientsTreated  int
	patientsRejected int
	totalArrivals    int

	treating map[string]*models.Patient

	// hourly accumulators, reset every hour boundary
	hourly []models.HourlyMetrics

	totalTreatmentSecsThisHour   float64
	totalWaitSecsThisHour        float64
	treatmentCompletionsThisHour int
	waitCompletionsThisHour      int
}

// New constructs a Simulator bound to the given ED state, staffing
// requirements, patient generator, and arrival process.
func New(er *edstate.State, requirements TriageRequirements, generator *patientgen.Generator, process *arrival.Process) *Simulator {
	s := &Simulator{
		er:           er,
		requirements: requirements,
		generator:    generator,
		process:      process,
		treating:     make(map[string]*models.Patient),
	}
	heap.Init(&s.queue)
	return s
}

// eventQueue is a min-heap on (time, insertion sequence).
type eventQueue []*models.Event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].Time != q[j].Time {
		return q[i].Time < q[j].Time
	}
	return q[i].Sequence < q[j].Sequence
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(*models.Event)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func (s *Simulator) schedule(t time.Duration, kind models.EventKind, p *models.Patient) {
	heap.Push(&s.queue, &models.Event{Time: t, Kind: kind, Patient: p, Sequence: s.nextSeq})
	s.nextSeq++
}

// RunCycle pre-generates arrivals for [cycleStart, cycleEnd), then drains
// the event queue in time order, recording one HourlyMetrics row per
// simulated hour in [cycleStart, cycleEnd). The queue and accumulated
// counters persist across cycles; hourly rows from this call are
// returned (and also appended to s.hourly).
func (s *Simulator) RunCycle(cycleStart, cycleEnd time.Duration) ([]models.HourlyMetrics, error) {
	arrivalTimes, err := s.process.GenerateArrivalTimes(cycleStart, cycleEnd)
	if err != nil {
		return nil, err
	}
	for _, t := range arrivalTimes {
		p, err := s.generator.Generate(t)
		if err != nil {
			return nil, err
		}
		s.schedule(t, models.EventArrival, p)
	}

	startHour := int(cycleStart / time.Hour)
	endHour := int(cycleEnd / time.Hour)
	rows := make([]models.HourlyMetrics, 0, endHour-startHour)
	var arrivalsThisHour int
	var wallHour time.Duration
	curHour := startHour

	flushHour := func(h int) {
		var avgTreatment, avgWait float64
		if s.treatmentCompletionsThisHour > 0 {
			avgTreatment = s.totalTreatmentSecsThisHour / float64(s.treatmentCompletionsThisHour)
		}
		if s.waitCompletionsThisHour > 0 {
			avgWait = s.totalWaitSecsThisHour / float64(s.waitCompletionsThisHour)
		}
		rows = append(rows, models.HourlyMetrics{
			HourIndex:          h,
			ArrivalsThisHour:   arrivalsThisHour,
			WaitingSize:        s.er.WaitingSize(),
			TreatingSize:       len(s.treating),
			AvailableRooms:     s.er.TreatmentRoomsTotal - s.er.TreatmentRoomsOccupied,
			TotalTreatmentSecs: s.totalTreatmentSecsThisHour,
			AvgTreatmentSecs:   avgTreatment,
			TotalWaitSecs:      s.totalWaitSecsThisHour,
			AvgWaitSecs:        avgWait,
			TotalArrivalsCum:   s.totalArrivals,
		})
		arrivalsThisHour = 0
		s.totalTreatmentSecsThisHour = 0
		s.totalWaitSecsThisHour = 0
		s.treatmentCompletionsThisHour = 0
		s.waitCompletionsThisHour = 0
	}

	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.Time >= cycleEnd {
			break
		}
		e := heap.Pop(&s.queue).(*models.Event)
		s.eventsProcessed++
		wallHour = e.Time

		newHour := int(wallHour / time.Hour)
		for curHour < newHour && curHour < endHour {
			flushHour(curHour)
			curHour++
		}

		switch e.Kind {
		case models.EventArrival:
			arrivalsThisHour++
			s.handleArrival(e.Patient, e.Time)
		case models.EventRelease:
			s.handleRelease(e.Patient, e.Time)
		}
	}
	for curHour < endHour {
		flushHour(curHour)
		curHour++
	}

	s.hourly = append(s.hourly, rows...)
	return rows, nil
}

func (s *Simulator) handleArrival(p *models.Patient, now time.Duration) {
	s.totalArrivals++
	p.ArrivalTime = now
	if !s.er.TryAdmit(p) {
		s.patientsRejected++
		return
	}
	// Admission checks the arriving patient itself; the treatment target
	// is always the heap head, which may be a different, higher-priority
	// patient than the one that just triggered the check.
	if s.canTreat(p) {
		s.startTreatment(s.er.NextWaiting(), now)
	}
}

func (s *Simulator) handleRelease(p *models.Patient, now time.Duration) {
	s.patientsTreated++
	p.DischargeTime = now
	s.totalTreatmentSecsThisHour += (now - p.TreatmentStart).Seconds()
	s.treatmentCompletionsThisHour++
	s.freeStaffFor(p)
	s.er.FreeRoom()
	delete(s.treating, p.ID)

	if head := s.er.PeekWaiting(); head != nil && s.canTreat(head) {
		s.startTreatment(s.er.NextWaiting(), now)
	}
}

// canTreat is true iff a room is available and every pooled group has
// enough available staff for the patient's triage level.
func (s *Simulator) canTreat(p *models.Patient) bool {
	if p == nil || !s.er.HasRoom() {
		return false
	}
	level := p.Triage.Name
	if s.requirements.Nurses[level] > s.er.AvailableStaff(models.PoolNurses) {
		return false
	}
	if s.requirements.Physicians[level] > s.er.AvailableStaff(models.PoolPhysician) {
		return false
	}
	if s.requirements.Residents[level] > s.er.AvailableStaff(models.PoolResidents) {
		return false
	}
	return true
}

// startTreatment occupies staff and a room, marks the patient in
// treatment, and schedules its release. Callers check canTreat first:
// handleRelease checks p itself, handleArrival checks the arriving
// patient, which may differ from p (the heap head).
func (s *Simulator) startTreatment(p *models.Patient, now time.Duration) {
	level := p.Triage.Name
	s.er.OccupyStaff(models.PoolNurses, s.requirements.Nurses[level])
	s.er.OccupyStaff(models.PoolPhysician, s.requirements.Physicians[level])
	s.er.OccupyStaff(models.PoolResidents, s.requirements.Residents[level])
	s.er.OccupyRoom()

	p.TreatmentStart = now
	s.totalWaitSecsThisHour += (now - p.ArrivalTime).Seconds()
	s.waitCompletionsThisHour++
	s.treating[p.ID] = p
	s.schedule(now+p.ServiceTime, models.EventRelease, p)
}

func (s *Simulator) freeStaffFor(p *models.Patient) {
	level := p.Triage.Name
	s.er.FreeStaff(models.PoolNurses, s.requirements.Nurses[level])
	s.er.FreeStaff(models.PoolPhysician, s.requirements.Physicians[level])
	s.er.FreeStaff(models.PoolResidents, s.requirements.Residents[level])
}

// Result returns the accumulated cycle outcome so far.
func (s *Simulator) Result() models.CycleResult {
	return models.CycleResult{
		PatientsTreated:  s.patientsTreated,
		PatientsRejected: s.patientsRejected,
		Hourly:           s.hourly,
	}
}

// InjectArrival is a test/scenario-injection hook: it schedules an
// arrival event directly, bypassing the patient generator, for boundary
// scenarios that specify literal patients (e.g. S3).
func (s *Simulator) InjectArrival(t time.Duration, p *models.Patient) {
	s.schedule(t, models.EventArrival, p)
}

// StepUntil drains the event queue up to (but not including) horizon,
// used by scenario tests that want fine-grained control without a full
// cycle's hourly bookkeeping.
func (s *Simulator) StepUntil(horizon time.Duration, rng *rand.Rand) {
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.Time >= horizon {
			break
		}
		e := heap.Pop(&s.queue).(*models.Event)
		s.eventsProcessed++
		switch e.Kind {
		case models.EventArrival:
			s.handleArrival(e.Patient, e.Time)
		case models.EventRelease:
			s.handleRelease(e.Patient, e.Time)
		}
	}
}

// State exposes the underlying ED state for invariant checks in tests.
func (s *Simulator) State() *edstate.State { return s.er }

// PatientsTreated returns the cumulative treated count across all cycles
// run so far.
func (s *Simulator) PatientsTreated() int { return s.patientsTreated }

// PatientsRejected returns the cumulative rejected count across all
// cycles run so far.
func (s *Simulator) PatientsRejected() int { return s.patientsRejected }
