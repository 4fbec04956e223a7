// Package metrics provides Prometheus observability for the ED simulator
// and roster optimizer: per-cycle patient-flow counters and per-class
// solver health gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application.
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly.
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Patient Flow
// =============================================================================

// PatientsArrivedTotal tracks total patient arrivals across all cycles.
var PatientsArrivedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "edsim",
	Name:      "patients_arrived_total",
	Help:      "Total number of patients generated and scheduled for arrival",
})

// PatientsTreatedTotal tracks total patients that completed treatment.
var PatientsTreatedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "edsim",
	Name:      "patients_treated_total",
	Help:      "Total number of patients who completed treatment and were released",
})

// PatientsRejectedTotal tracks total patients turned away at a full waiting queue.
var PatientsRejectedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "edsim",
	Name:      "patients_rejected_total",
	Help:      "Total number of patients rejected because the waiting queue was full",
})

// RejectionRate tracks the most recently completed cycle's rejection rate.
var RejectionRate = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "edsim",
	Name:      "rejection_rate",
	Help:      "Rejected share of treated plus rejected patients in the most recently completed cycle",
})

// AvgWaitMinutes tracks the most recently completed cycle's average wait.
var AvgWaitMinutes = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "edsim",
	Name:      "avg_wait_minutes",
	Help:      "Weighted average patient wait time, in minutes, for the most recently completed cycle",
})

// TriageLevelCounts tracks patients generated by triage level.
var TriageLevelCounts = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "edsim",
	Name:      "triage_level_total",
	Help:      "Patients generated, broken down by triage level",
}, []string{"level"})

// =============================================================================
// IMPORTANT METRICS - Roster Optimizer Health
// =============================================================================

// RosterSolveDurationSeconds tracks time spent in one per-class ILP solve.
var RosterSolveDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "edsim",
	Name:      "roster_solve_duration_seconds",
	Help:      "Time taken to solve one staff class's roster ILP",
	Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
}, []string{"class"})

// RosterInfeasibleTotal tracks per-class solver infeasibility by class.
var RosterInfeasibleTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "edsim",
	Name:      "roster_infeasible_total",
	Help:      "Count of per-class roster solves that returned infeasible",
}, []string{"class"})

// RosterTotalCost tracks the most recently solved cycle's total wage cost.
var RosterTotalCost = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "edsim",
	Name:      "roster_total_cost",
	Help:      "Total wage cost of the most recently solved roster, by class",
}, []string{"class"})

// DemandFeedbackFactor tracks the multiplicative demand adjustment applied
// between cycles.
var DemandFeedbackFactor = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "edsim",
	Name:      "demand_feedback_factor",
	Help:      "Multiplicative demand adjustment factor applied for the next cycle",
})

// CycleDurationSeconds tracks wall-clock time to run one full schedule
// plus simulate cycle.
var CycleDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "edsim",
	Name:      "cycle_duration_seconds",
	Help:      "Wall-clock time to schedule and simulate one cycle",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
})

// RecordCycle updates the per-cycle gauges from a completed cycle's outcome.
func RecordCycle(treated, rejected int, rejectionRate, avgWaitMinutes float64) {
	PatientsArrivedTotal.Add(float64(treated + rejected))
	PatientsTreatedTotal.Add(float64(treated))
	PatientsRejectedTotal.Add(float64(rejected))
	RejectionRate.Set(rejectionRate)
	AvgWaitMinutes.Set(avgWaitMinutes)
}
