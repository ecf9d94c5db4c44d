// Package trend summarises how a patient's vitals evolve across visits.
package trend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Skufu/clinicai/internal/clinic"
)

// MinSamples is the smallest history Analyze will fit.
const MinSamples = 3

const insufficientMessage = "Dados insuficientes para análise de tendências"

type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
)

// WeightTrend is the least-squares slope of weight against visit index, in
// weight units per visit.
type WeightTrend struct {
	Direction Direction `json:"direction"`
	Rate      float64   `json:"rate"`
	Concern   bool      `json:"concern"`
}

type PressureTrend struct {
	Mean        float64 `json:"mean"`
	Variability float64 `json:"variability"`
	Concern     bool    `json:"concern"`
}

// Result is either Insufficient, or carries one entry per metric that had at
// least one recorded value.
type Result struct {
	Insufficient  bool           `json:"insufficient_data,omitempty"`
	Message       string         `json:"message,omitempty"`
	Weight        *WeightTrend   `json:"weight,omitempty"`
	BloodPressure *PressureTrend `json:"blood_pressure,omitempty"`
}

// Analyze expects samples oldest first. Fewer than MinSamples samples yields
// an Insufficient result, not an error; the error is reserved for non-finite
// measurements.
func Analyze(samples []clinic.VitalsSample) (Result, error) {
	if len(samples) < MinSamples {
		return Result{Insufficient: true, Message: insufficientMessage}, nil
	}
	for i, s := range samples {
		for _, v := range []*float64{s.Weight, s.BloodPressureSys} {
			if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
				return Result{}, &clinic.InputError{
					Field:  fmt.Sprintf("samples[%d]", i),
					Reason: "measurement is not a finite number",
				}
			}
		}
	}

	var r Result
	if w, ok := weightTrend(samples); ok {
		r.Weight = &w
	}
	if bp, ok := pressureTrend(samples); ok {
		r.BloodPressure = &bp
	}
	return r, nil
}

// weightTrend forward-fills missing weights before fitting. Leading gaps take
// the first recorded weight, which is the closest thing to a prior value.
func weightTrend(samples []clinic.VitalsSample) (WeightTrend, bool) {
	first := -1
	for i, s := range samples {
		if s.Weight != nil {
			first = i
			break
		}
	}
	if first < 0 {
		return WeightTrend{}, false
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	last := *samples[first].Weight
	for i, s := range samples {
		if s.Weight != nil {
			last = *s.Weight
		}
		xs[i] = float64(i)
		ys[i] = last
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)

	dir := Decreasing
	if slope > 0 {
		dir = Increasing
	}
	rate := math.Abs(slope)
	return WeightTrend{
		Direction: dir,
		Rate:      rate,
		Concern:   rate > 0.5,
	}, true
}

// pressureTrend ignores visits without a systolic reading.
func pressureTrend(samples []clinic.VitalsSample) (PressureTrend, bool) {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.BloodPressureSys != nil {
			values = append(values, *s.BloodPressureSys)
		}
	}
	if len(values) == 0 {
		return PressureTrend{}, false
	}

	var mean, std float64
	if len(values) == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	return PressureTrend{
		Mean:        mean,
		Variability: std,
		Concern:     mean > 140 || std > 20,
	}, true
}
