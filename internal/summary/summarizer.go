package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Summarizer turns a patient's consultation notes, oldest first, into text.
// Failures are reported inside the text.
type Summarizer interface {
	Summarize(ctx context.Context, records []RecordNote) string
}

// Heuristic builds the summary locally.
type Heuristic struct {
	now func() time.Time
}

func NewHeuristic(now func() time.Time) *Heuristic {
	if now == nil {
		now = time.Now
	}
	return &Heuristic{now: now}
}

func (h *Heuristic) Summarize(_ context.Context, records []RecordNote) string {
	return Summarize(records, h.now())
}

// Generator is the external text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultTimeout = 10 * time.Second

	maxPromptRecords = 5
	errorPrefix      = "Erro ao gerar resumo: "
)

// External asks a Generator for the summary of the last five records.
type External struct {
	gen     Generator
	timeout time.Duration
	logger  zerolog.Logger
}

func NewExternal(gen Generator, timeout time.Duration, logger zerolog.Logger) *External {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &External{gen: gen, timeout: timeout, logger: logger}
}

func (e *External) Summarize(ctx context.Context, records []RecordNote) string {
	if len(records) == 0 {
		return emptyHistory
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.gen.Generate(ctx, buildPrompt(records))
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty answer")
	}
	if err != nil {
		e.logger.Warn().Err(err).Msg("external summary failed")
		return errorPrefix + err.Error()
	}
	return strings.TrimSpace(text)
}

func buildPrompt(records []RecordNote) string {
	if len(records) > maxPromptRecords {
		records = records[len(records)-maxPromptRecords:]
	}
	entries := make([]string, len(records))
	for i, r := range records {
		entries[i] = fmt.Sprintf("Data: %s\nQueixa: %s\nDiagnóstico: %s",
			r.Date.Format("2006-01-02"), r.Complaint, r.Diagnosis)
	}

	var b strings.Builder
	b.WriteString("Gere um resumo executivo da história clínica deste paciente:\n\n")
	b.WriteString(strings.Join(entries, "\n\n"))
	b.WriteString("\n\nInclua:\n")
	b.WriteString("1. Padrões identificados\n")
	b.WriteString("2. Evolução do quadro\n")
	b.WriteString("3. Pontos de atenção\n")
	b.WriteString("4. Recomendações de follow-up")
	return b.String()
}
