// Package arrival evaluates a configured closed-form expression f(t) of
// hour index t to obtain an instantaneous arrival-rate multiplier, and
// turns that multiplier into sampled inter-arrival durations.
package arrival

import (
	"math"
	"math/rand"
	"time"

	"github.com/Knetic/govaluate"

	cserr "edsim/errors"
)

// functions exposes the closed-form vocabulary the spec allows: cos, sin,
// min, max. pi is not a function here; Evaluate binds it as a parameter
// alongside t.
var functions = map[string]govaluate.ExpressionFunction{
	"cos": func(args ...any) (any, error) {
		return math.Cos(args[0].(float64)), nil
	},
	"sin": func(args ...any) (any, error) {
		return math.Sin(args[0].(float64)), nil
	},
	"min": func(args ...any) (any, error) {
		return math.Min(args[0].(float64), args[1].(float64)), nil
	},
	"max": func(args ...any) (any, error) {
		return math.Max(args[0].(float64), args[1].(float64)), nil
	},
}

// Evaluator binds one compiled expression for f(t). It is safe for
// concurrent use from multiple goroutines bound to different t, since
// govaluate expressions are evaluated with per-call parameters and carry
// no mutable state.
type Evaluator struct {
	label string
	expr  *govaluate.EvaluableExpression
}

// NewEvaluator parses expr and returns an Evaluator bound to it, or a
// parse error (a fatal configuration error per the error handling design).
func NewEvaluator(label, expr string) (*Evaluator, error) {
	compiled, err := govaluate.NewEvaluableExpressionWithFunctions(expr, functions)
	if err != nil {
		return nil, &cserr.StructuredError{
			Phase: cserr.PhaseConfig,
			Param: label,
			Value: expr,
			Err:   cserr.ErrUnparseableExpression,
		}
	}
	return &Evaluator{label: label, expr: compiled}, nil
}

// Evaluate returns f(t). A non-positive result is ArrivalRateNonPositive.
func (e *Evaluator) Evaluate(t int) (float64, error) {
	result, err := e.expr.Evaluate(map[string]any{"t": float64(t), "pi": math.Pi})
	if err != nil {
		return 0, &cserr.StructuredError{
			Phase: cserr.PhaseArrival,
			Param: "t",
			Value: t,
			Err:   err,
		}
	}
	value, ok := result.(float64)
	if !ok {
		return 0, &cserr.StructuredError{Phase: cserr.PhaseArrival, Param: "t", Value: t, Err: cserr.ErrUnparseableExpression}
	}
	if value <= 0 {
		return 0, &cserr.StructuredError{
			Phase: cserr.PhaseArrival,
			Param: "f(t)",
			Value: value,
			Err:   cserr.ErrArrivalRateNonPositive,
		}
	}
	return value, nil
}

// minInterarrival is the floor applied to sampled inter-arrival times so
// that event times never go negative or degenerate to zero.
const minInterarrival = time.Minute

// Process samples time-varying Poisson inter-arrival durations. Mean
// inter-arrival at hour t is tau0 / f(t), where tau0 is the nominal mean
// inter-arrival time in minutes.
type Process struct {
	eval *Evaluator
	tau0 time.Duration
	rng  *rand.Rand
}

// NewProcess constructs a Process sampling from eval with nominal mean
// inter-arrival tau0Minutes, using rng for draws.
func NewProcess(eval *Evaluator, tau0Minutes float64, rng *rand.Rand) *Process {
	return &Process{eval: eval, tau0: time.Duration(tau0Minutes * float64(time.Minute)), rng: rng}
}

// NextInterarrival samples one inter-arrival duration at cursor c (used
// to determine the hour index t = floor(c / 1h)), clamped to a 1-minute
// floor.
func (p *Process) NextInterarrival(c time.Duration) (time.Duration, error) {
	t := int(c / time.Hour)
	f, err := p.eval.Evaluate(t)
	if err != nil {
		return 0, err
	}
	meanMinutes := p.tau0.Minutes() / f
	sample := p.rng.ExpFloat64() * meanMinutes
	d := time.Duration(sample * float64(time.Minute))
	if d < minInterarrival {
		d = minInterarrival
	}
	return d, nil
}

// GenerateArrivalTimes pre-generates all arrival instants in
// [cycleStart, cycleEnd) ahead of processing, per the spec's
// pre-generation design: draw successive inter-arrivals, clamp each, and
// stop once the cursor reaches cycleEnd. Returned times are sorted
// ascending (they are produced in order already).
func (p *Process) GenerateArrivalTimes(cycleStart, cycleEnd time.Duration) ([]time.Duration, error) {
	var times []time.Duration
	c := cycleStart
	for c < cycleEnd {
		delta, err := p.NextInterarrival(c)
		if err != nil {
			return nil, err
		}
		c += delta
		if c < cycleEnd {
			times = append(times, c)
		}
	}
	return times, nil
}
