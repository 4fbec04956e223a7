// Package patientgen samples new patients: diagnosis, triage (with
// stochastic up-escalation), age, and a triage-conditioned service time.
package patientgen

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"edsim/models"
	"edsim/triage"
)

// diagnosisProbs is the fixed 17-entry per-code probability vector for
// diagnosis codes 1..17, taken verbatim from the source's distribution;
// sampleDiagnosis accumulates it into a cumulative distribution.
var diagnosisProbs = [17]float64{
	3.72908417e-02, 3.45021445e-02, 6.44438692e-04, 1.42655116e-01,
	4.82845207e-03, 2.06028792e-01, 4.42272662e-02, 1.19613046e-02,
	6.28956682e-06, 9.97375315e-02, 2.83615920e-02, 7.33431225e-02,
	1.14778789e-01, 4.28604950e-02, 4.97795023e-02, 4.95869448e-02,
	5.94073777e-02,
}

const escalationProbability = 0.05
const minServiceTime = time.Minute

// ServiceTimeConfig is the configured mean service time per triage level,
// in minutes. Standard deviation is always 0.25*mean.
type ServiceTimeConfig map[string]float64

// DefaultServiceTimeMinutes are the spec's documented defaults (config
// values, not hard-coded constants used by the generator).
var DefaultServiceTimeMinutes = ServiceTimeConfig{
	models.Red.Name:    180,
	models.Orange.Name: 120,
	models.Yellow.Name: 90,
	models.Green.Name:  45,
	models.Blue.Name:   15,
}

// Generator produces patients for one classifier variant and one
// service-time configuration, drawing from a single seeded RNG stream so
// runs are reproducible.
type Generator struct {
	classifier  *triage.Classifier
	serviceTime ServiceTimeConfig
	minAge      int
	maxAge      int
	rng         *rand.Rand
}

// NewGenerator constructs a Generator. minAge/maxAge bound the uniform age
// sample (spec default 5..99).
func NewGenerator(classifier *triage.Classifier, serviceTime ServiceTimeConfig, minAge, maxAge int, rng *rand.Rand) *Generator {
	return &Generator{classifier: classifier, serviceTime: serviceTime, minAge: minAge, maxAge: maxAge, rng: rng}
}

// sampleDiagnosis draws a diagnosis code 1..17 from the fixed cumulative
// distribution. A tiny rounding tail (r beyond the cumulative sum) falls
// back to code 17.
func (g *Generator) sampleDiagnosis() int {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, p := range diagnosisProbs {
		cumulative += p
		if r < cumulative {
			return i + 1
		}
	}
	return 17
}

// Generate produces one new patient at the given arrival time. The
// returned patient's ServiceTime and Triage are already sampled, and its
// ArrivalTime is set to arrivalTime.
func (g *Generator) Generate(arrivalTime time.Duration) (*models.Patient, error) {
	diagnosis := g.sampleDiagnosis()

	level, err := g.classifier.Classify(diagnosis)
	if err != nil {
		return nil, err
	}

	if g.rng.Float64() < escalationProbability {
		level = level.Escalate()
	}

	age := g.minAge + g.rng.Intn(g.maxAge-g.minAge+1)

	mean := g.serviceTime[level.Name]
	stddev := 0.25 * mean
	sampleMinutes := mean + g.rng.NormFloat64()*stddev
	serviceTime := time.Duration(sampleMinutes * float64(time.Minute))
	if serviceTime < minServiceTime {
		serviceTime = minServiceTime
	}

	id := uuid.New().String()
	return &models.Patient{
		ID:            id,
		Name:          "Patient-" + id[:8],
		Age:           age,
		Triage:        level,
		DiagnosisCode: diagnosis,
		ArrivalTime:   arrivalTime,
		ServiceTime:   serviceTime,
	}, nil
}
