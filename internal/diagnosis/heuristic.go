package diagnosis

import (
	"context"
	"math/rand/v2"

	"github.com/Skufu/clinicai/internal/knowledge"
)

// IntSource yields integers in [0, n).
type IntSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

const (
	minConfidence = 75
	maxConfidence = 95

	heuristicNote = "Sugestões geradas pela base de conhecimento local; ative o modelo externo para análises detalhadas"
)

// Heuristic matches the complaint against knowledge-base keys by substring.
//
// ConfidenceScore is cosmetic: a random value in [75, 95] that says nothing
// about match quality.
type Heuristic struct {
	kb  *knowledge.Base
	rng IntSource
}

// NewHeuristic uses the default tables and the global random source when
// either argument is nil.
func NewHeuristic(kb *knowledge.Base, rng IntSource) *Heuristic {
	if kb == nil {
		kb = knowledge.Default()
	}
	if rng == nil {
		rng = globalSource{}
	}
	return &Heuristic{kb: kb, rng: rng}
}

func (h *Heuristic) Diagnose(_ context.Context, p SymptomProfile) (Result, error) {
	if err := validate(p); err != nil {
		return Result{}, err
	}

	profile, _ := h.kb.Match(p.Symptoms)

	return Result{
		Diagnoses:        profile.Diagnoses,
		RecommendedExams: profile.Exams,
		RedFlags:         profile.RedFlags,
		GeneralConduct:   profile.Conduct + ageContext(p.Patient.Age),
		ConfidenceScore:  minConfidence + h.rng.IntN(maxConfidence-minConfidence+1),
		Provenance:       ProvenanceHeuristic,
		Note:             heuristicNote,
	}, nil
}

func ageContext(age int) string {
	switch {
	case age > 60:
		return " Considerar comorbidades relacionadas à idade."
	case age < 18:
		return " Considerar diagnósticos pediátricos."
	default:
		return ""
	}
}
