// Package interaction scans a prescription for known pairwise drug
// interactions.
//
// Only pairs listed in the knowledge base are reported. A pair missing from
// the table yields no finding, which is absence of evidence and not evidence
// that the combination is safe.
package interaction

import (
	"fmt"

	"github.com/Skufu/clinicai/internal/clinic"
	"github.com/Skufu/clinicai/internal/knowledge"
	"github.com/Skufu/clinicai/internal/textnorm"
)

type Finding struct {
	Medications [2]string          `json:"medications"`
	Severity    knowledge.Severity `json:"severity"`
	Description string             `json:"description"`
}

type Report struct {
	Severe            []Finding `json:"severe_interactions"`
	Moderate          []Finding `json:"moderate_interactions"`
	Precautions       []string  `json:"precautions"`
	Suggestions       []string  `json:"suggestions"`
	TotalInteractions int       `json:"total_interactions"`
}

type Checker struct {
	kb *knowledge.Base
}

func NewChecker(kb *knowledge.Base) *Checker {
	if kb == nil {
		kb = knowledge.Default()
	}
	return &Checker{kb: kb}
}

// Check compares every unordered pair (i<j) of the list. Prescriptions are
// short, so the quadratic scan is fine.
func (c *Checker) Check(meds []clinic.Medication) Report {
	names := make([]string, 0, len(meds))
	for _, m := range meds {
		if n := textnorm.Fold(m.Name); n != "" {
			names = append(names, n)
		}
	}

	report := Report{
		Severe:      []Finding{},
		Moderate:    []Finding{},
		Precautions: c.kb.Precautions(),
		Suggestions: c.kb.Suggestions(),
	}

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			in, ok := c.kb.Lookup(names[i], names[j])
			if !ok {
				continue
			}
			f := Finding{
				Medications: in.Drugs,
				Severity:    in.Severity,
				Description: in.Description,
			}
			switch in.Severity {
			case knowledge.SeveritySevere:
				report.Severe = append(report.Severe, f)
			default:
				report.Moderate = append(report.Moderate, f)
			}
			report.Precautions = append(report.Precautions,
				fmt.Sprintf("Monitorar: %s (%s + %s)", in.Description, in.Drugs[0], in.Drugs[1]))
			report.TotalInteractions++
		}
	}

	return report
}

// Names builds a medication list from plain names.
func Names(names ...string) []clinic.Medication {
	meds := make([]clinic.Medication, len(names))
	for i, n := range names {
		meds[i] = clinic.Medication{Name: n}
	}
	return meds
}
