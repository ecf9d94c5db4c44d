// Package diagnosis suggests differential diagnoses for a chief complaint.
//
// Two Diagnosers are provided: Heuristic answers from the static knowledge
// base, External asks a text-generation collaborator and degrades to an
// error-tagged result when that fails. The caller picks one at construction
// time.
package diagnosis

import (
	"context"
	"strings"

	"github.com/Skufu/clinicai/internal/clinic"
	"github.com/Skufu/clinicai/internal/knowledge"
)

type SymptomProfile struct {
	Symptoms string                `json:"symptoms"`
	Patient  clinic.PatientContext `json:"patient"`
}

type Provenance string

const (
	ProvenanceHeuristic Provenance = "heuristic"
	ProvenanceExternal  Provenance = "external"
)

type Result struct {
	Diagnoses        []knowledge.Differential `json:"differential_diagnoses"`
	RecommendedExams []string                 `json:"recommended_exams"`
	RedFlags         []string                 `json:"red_flags"`
	GeneralConduct   string                   `json:"general_conduct"`
	ConfidenceScore  int                      `json:"confidence_score"`
	Provenance       Provenance               `json:"provenance"`
	Note             string                   `json:"note,omitempty"`

	// Set when the external collaborator failed.
	Error    string `json:"error,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Diagnoser returns an error only for invalid input. Collaborator failures
// are reported inside the Result.
type Diagnoser interface {
	Diagnose(ctx context.Context, p SymptomProfile) (Result, error)
}

func validate(p SymptomProfile) error {
	if strings.TrimSpace(p.Symptoms) == "" {
		return &clinic.InputError{Field: "symptoms", Reason: "required"}
	}
	if p.Patient.Age < 0 {
		return &clinic.InputError{Field: "patient.age", Reason: "must not be negative"}
	}
	return nil
}
