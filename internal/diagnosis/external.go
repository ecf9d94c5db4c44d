package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skufu/clinicai/internal/clinic"
)

// Generator is the external text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultTimeout = 3 * time.Second

	fallbackNote = "Não foi possível gerar sugestões no momento"
)

// External asks a Generator for a structured differential. Any failure of
// the call or of parsing its output is returned inline; when a fallback
// Diagnoser is set its answer fills the result.
type External struct {
	gen      Generator
	timeout  time.Duration
	fallback Diagnoser
	logger   zerolog.Logger
}

type ExternalOption func(*External)

func WithTimeout(d time.Duration) ExternalOption {
	return func(e *External) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithFallback(d Diagnoser) ExternalOption {
	return func(e *External) { e.fallback = d }
}

func WithLogger(l zerolog.Logger) ExternalOption {
	return func(e *External) { e.logger = l }
}

func NewExternal(gen Generator, opts ...ExternalOption) *External {
	e := &External{
		gen:     gen,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *External) Diagnose(ctx context.Context, p SymptomProfile) (Result, error) {
	if err := validate(p); err != nil {
		return Result{}, err
	}

	res, err := e.generate(ctx, p)
	if err == nil {
		return res, nil
	}

	e.logger.Warn().Err(err).Msg("external diagnosis failed, degrading")

	out := Result{Provenance: ProvenanceExternal}
	if e.fallback != nil {
		if fb, fbErr := e.fallback.Diagnose(ctx, p); fbErr == nil {
			out = fb
		}
	}
	out.Error = err.Error()
	out.Fallback = fallbackNote
	return out, nil
}

func (e *External) generate(ctx context.Context, p SymptomProfile) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.gen.Generate(ctx, buildPrompt(p))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no answer within %s: %w", e.timeout, err)
		}
		return Result{}, &clinic.CollaboratorError{Op: "generate", Err: err}
	}

	payload, err := ParsePayload(raw)
	if err != nil {
		return Result{}, &clinic.CollaboratorError{Op: "parse", Err: err}
	}

	return Result{
		Diagnoses:        payload.Differentials(),
		RecommendedExams: payload.RecommendedExams,
		RedFlags:         payload.RedFlags,
		GeneralConduct:   payload.GeneralConduct,
		ConfidenceScore:  payload.Confidence(),
		Provenance:       ProvenanceExternal,
	}, nil
}
