// Package appointment holds scheduling heuristics: no-show prediction and
// preferred slot suggestion.
package appointment

import (
	"math"
	"time"
)

// Features describe an upcoming appointment for no-show prediction.
type Features struct {
	DaysUntil       int  `json:"days_until"`
	PreviousNoShows int  `json:"previous_no_shows" binding:"gte=0"`
	Hour            int  `json:"hour" binding:"gte=0,lte=23"`
	IsFirst         bool `json:"is_first"`
}

const baseNoShow = 0.10

// Predict returns the no-show probability in [0,1].
//
// The bumps are additive and independent, with no interaction terms. This is
// a placeholder until a model calibrated on clinic history is available; it
// is not a statistically validated prediction.
func Predict(f Features) float64 {
	p := baseNoShow
	if f.DaysUntil > 30 {
		p += 0.20
	}
	if f.PreviousNoShows > 0 {
		p += 0.30
	}
	if f.Hour < 8 || f.Hour > 17 {
		p += 0.15
	}
	if f.IsFirst {
		p += 0.10
	}
	return math.Min(1.0, p)
}

type Assessment struct {
	Probability    float64 `json:"probability"`
	Percent        float64 `json:"no_show_probability"`
	Level          string  `json:"risk_level"`
	Recommendation string  `json:"recommendation"`
}

// Assess wraps Predict with the labels shown on the appointment screen.
func Assess(f Features) Assessment {
	p := Predict(f)

	a := Assessment{
		Probability:    p,
		Percent:        math.Round(p*100*100) / 100,
		Level:          "Baixo",
		Recommendation: "Acompanhamento normal",
	}
	// Thresholds compare the rounded percentage so that 0.1+0.2 counts as
	// exactly 30%.
	switch {
	case a.Percent > 50:
		a.Level = "Alto"
	case a.Percent > 30:
		a.Level = "Médio"
	}
	if a.Percent > 30 {
		a.Recommendation = "Enviar lembrete"
	}
	return a
}

// FeaturesFor derives prediction features from an appointment's schedule and
// the patient's history. totalAppointments includes the one being assessed.
func FeaturesFor(at, now time.Time, previousNoShows, totalAppointments int) Features {
	return Features{
		DaysUntil:       daysBetween(now, at),
		PreviousNoShows: previousNoShows,
		Hour:            at.Hour(),
		IsFirst:         totalAppointments == 1,
	}
}

// daysBetween counts calendar days from a to b in b's location.
func daysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
