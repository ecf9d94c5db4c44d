// Package risk computes the composite health-risk score used on the patient
// health summary.
package risk

import (
	"strings"

	"github.com/Skufu/clinicai/internal/clinic"
	"github.com/Skufu/clinicai/internal/textnorm"
)

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Label is the tier as shown to clinicians.
func (t Tier) Label() string {
	switch t {
	case TierHigh:
		return "Alto"
	case TierMedium:
		return "Médio"
	default:
		return "Baixo"
	}
}

// TierFor classifies a score: <30 low, <60 medium, otherwise high.
func TierFor(score int) Tier {
	switch {
	case score < 30:
		return TierLow
	case score < 60:
		return TierMedium
	default:
		return TierHigh
	}
}

// Factors are the individual non-negative contributions to the score.
// Adherence is reserved and currently always zero.
type Factors struct {
	Age               int `json:"age"`
	ChronicConditions int `json:"chronic_conditions"`
	Vitals            int `json:"vitals"`
	Adherence         int `json:"adherence"`
}

func (f Factors) sum() int {
	return f.Age + f.ChronicConditions + f.Vitals + f.Adherence
}

type Assessment struct {
	Score           int      `json:"total_score"`
	Tier            Tier     `json:"tier"`
	Level           string   `json:"risk_level"`
	Factors         Factors  `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

const (
	maxScore = 100

	chronicWeight = 15
	bpWeight      = 20
	bmiWeight     = 15

	// Used when the latest sample lacks the field.
	defaultSystolic = 120.0
	defaultWeight   = 70.0
	defaultHeight   = 1.70
)

var highRiskConditions = []string{"diabetes", "hipertensão", "cardiopatia", "câncer"}

// Score evaluates the patient against the latest vitals sample. vitals is in
// chronological order; an empty history contributes nothing.
func Score(p clinic.PatientContext, vitals []clinic.VitalsSample) Assessment {
	f := Factors{
		Age:               ageFactor(p.Age),
		ChronicConditions: chronicFactor(p.ChronicConditions),
	}
	if len(vitals) > 0 {
		f.Vitals = vitalsFactor(vitals[len(vitals)-1])
	}

	score := f.sum()
	if score > maxScore {
		score = maxScore
	}
	tier := TierFor(score)

	return Assessment{
		Score:           score,
		Tier:            tier,
		Level:           tier.Label(),
		Factors:         f,
		Recommendations: recommendations(f),
	}
}

func ageFactor(age int) int {
	switch {
	case age > 65:
		return 25
	case age > 50:
		return 15
	case age > 40:
		return 5
	default:
		return 0
	}
}

func chronicFactor(conditions string) int {
	text := textnorm.Fold(conditions)
	total := 0
	for _, c := range highRiskConditions {
		if strings.Contains(text, c) {
			total += chronicWeight
		}
	}
	return total
}

func vitalsFactor(v clinic.VitalsSample) int {
	total := 0

	sys := defaultSystolic
	if v.BloodPressureSys != nil {
		sys = *v.BloodPressureSys
	}
	if sys > 140 || sys < 90 {
		total += bpWeight
	}

	weight, height := defaultWeight, defaultHeight
	if v.Weight != nil {
		weight = *v.Weight
	}
	if v.Height != nil {
		height = *v.Height
	}
	if height > 0 {
		bmi := weight / (height * height)
		if bmi > 30 || bmi < 18.5 {
			total += bmiWeight
		}
	}

	return total
}

func recommendations(f Factors) []string {
	recs := []string{}
	if f.Age > 0 {
		recs = append(recs, "Realizar check-up geriátrico anual")
	}
	if f.ChronicConditions > 20 {
		recs = append(recs, "Consultas de acompanhamento a cada 3 meses")
	}
	if f.Vitals > 15 {
		recs = append(recs, "Monitoramento frequente de sinais vitais")
	}
	return recs
}
