// Package summary writes a short executive summary of a patient's recent
// consultations.
package summary

import (
	"fmt"
	"strings"
	"time"
)

// RecordNote is the part of a consultation the summary reads.
type RecordNote struct {
	Date      time.Time `json:"date"`
	Complaint string    `json:"complaint"`
	Diagnosis string    `json:"diagnosis"`
}

const maxListed = 3

const emptyHistory = `RESUMO CLÍNICO

Paciente sem histórico de consultas anteriores registradas no sistema.

RECOMENDAÇÕES:
- Realizar anamnese completa
- Solicitar exames de rotina conforme idade
- Estabelecer plano de acompanhamento`

// Summarize counts every record it is given, oldest first, and lists the
// complaints and diagnoses of the most recent ones.
func Summarize(records []RecordNote, now time.Time) string {
	if len(records) == 0 {
		return emptyHistory
	}
	n := len(records)

	var complaints, diagnoses []string
	for _, r := range records {
		if c := strings.TrimSpace(r.Complaint); c != "" {
			complaints = append(complaints, c)
		}
		if d := strings.TrimSpace(r.Diagnosis); d != "" {
			diagnoses = append(diagnoses, d)
		}
	}

	followUp := "regular"
	if n <= 3 {
		followUp = "inicial"
	}
	evolution := "Estabelecer baseline para futuras comparações."
	if n > 2 {
		evolution = "Histórico sugere necessidade de seguimento contínuo."
	}
	returnIn := "60-90 dias"
	if n < 3 {
		returnIn = "30 dias"
	}

	var b strings.Builder
	b.WriteString("RESUMO CLÍNICO\n\n")
	fmt.Fprintf(&b, "HISTÓRICO: %d consulta(s) registrada(s)\n\n", n)
	b.WriteString("PADRÕES IDENTIFICADOS:\n")
	fmt.Fprintf(&b, "- Queixas principais: %s\n", listOr(complaints, "Não especificadas"))
	fmt.Fprintf(&b, "- Diagnósticos prévios: %s\n\n", listOr(diagnoses, "Não especificados"))
	b.WriteString("EVOLUÇÃO DO QUADRO:\n")
	fmt.Fprintf(&b, "O paciente apresenta acompanhamento %s no sistema.\n%s\n\n", followUp, evolution)
	b.WriteString("PONTOS DE ATENÇÃO:\n")
	b.WriteString("- Avaliar adesão ao tratamento prescrito\n")
	b.WriteString("- Monitorar evolução dos sintomas\n")
	b.WriteString("- Considerar necessidade de exames complementares\n\n")
	b.WriteString("RECOMENDAÇÕES DE FOLLOW-UP:\n")
	fmt.Fprintf(&b, "- Retorno em %s\n", returnIn)
	b.WriteString("- Monitoramento de sinais vitais\n")
	b.WriteString("- Reavaliação terapêutica se necessário\n\n")
	fmt.Fprintf(&b, "Última atualização: %s", now.Format("02/01/2006 15:04"))

	return b.String()
}

func listOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	if len(items) > maxListed {
		items = items[len(items)-maxListed:]
	}
	return strings.Join(items, ", ")
}
