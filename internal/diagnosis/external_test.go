package diagnosis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/clinicai/internal/clinic"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

const fencedAnswer = "Segue a análise:\n```json\n" +
	`{"differential_diagnoses":[{"name":"Enxaqueca","probability":60},{"name":"Cefaleia Tensional","probability":30}],` +
	`"recommended_exams":["Aferição de PA"],"red_flags":["Déficit focal"],"general_conduct":"Analgesia","confidence_score":130}` +
	"\n```\nBoa sorte."

func profile() SymptomProfile {
	return SymptomProfile{
		Symptoms: "dor de cabeça latejante",
		Patient:  clinic.PatientContext{Age: 34, Gender: "F", Allergies: "dipirona"},
	}
}

func TestExternalParsesFencedAnswer(t *testing.T) {
	var prompt string
	gen := generatorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return fencedAnswer, nil
	})

	res, err := NewExternal(gen).Diagnose(context.Background(), profile())
	require.NoError(t, err)

	assert.Contains(t, prompt, "dor de cabeça latejante")
	assert.Contains(t, prompt, "Idade: 34 anos")
	assert.Contains(t, prompt, "Condições crônicas: Nenhuma")
	assert.Contains(t, prompt, "Alergias: dipirona")

	assert.Equal(t, ProvenanceExternal, res.Provenance)
	require.Len(t, res.Diagnoses, 2)
	assert.Equal(t, "Enxaqueca", res.Diagnoses[0].Name)
	assert.Equal(t, 100, res.ConfidenceScore)
	assert.Empty(t, res.Error)
}

func TestExternalCollaboratorErrorIsInline(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("upstream 529 overloaded")
	})

	res, err := NewExternal(gen).Diagnose(context.Background(), profile())
	require.NoError(t, err)
	assert.Contains(t, res.Error, "upstream 529 overloaded")
	assert.Equal(t, fallbackNote, res.Fallback)
	assert.Empty(t, res.Diagnoses)
}

func TestExternalMalformedOutputFallsBackToHeuristic(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "```json\n{not json\n```", nil
	})

	e := NewExternal(gen, WithFallback(NewHeuristic(nil, fixedSource(0))))
	res, err := e.Diagnose(context.Background(), profile())
	require.NoError(t, err)

	assert.Equal(t, ProvenanceHeuristic, res.Provenance)
	assert.Equal(t, "Cefaleia Tensional", res.Diagnoses[0].Name)
	assert.Contains(t, res.Error, "parse")
	assert.Equal(t, fallbackNote, res.Fallback)
}

func TestExternalTimeout(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	start := time.Now()
	res, err := NewExternal(gen, WithTimeout(20*time.Millisecond)).Diagnose(context.Background(), profile())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, res.Error, "no answer within 20ms")
	assert.Equal(t, fallbackNote, res.Fallback)
}

func TestExternalRejectsEmptySymptoms(t *testing.T) {
	called := false
	gen := generatorFunc(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})
	_, err := NewExternal(gen).Diagnose(context.Background(), SymptomProfile{})
	var inErr *clinic.InputError
	assert.True(t, errors.As(err, &inErr))
	assert.False(t, called)
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"bare json", `{"differential_diagnoses":[{"name":"A","probability":1}]}`, false},
		{"plain fence", "```\n{\"differential_diagnoses\":[{\"name\":\"A\",\"probability\":1}]}\n```", false},
		{"json fence", fencedAnswer, false},
		{"prose", "Não sei responder.", true},
		{"empty differential", `{"differential_diagnoses":[]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExternalAcceptsFractionalNumbers(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return `{"differential_diagnoses":[{"name":"Enxaqueca","probability":45.0},` +
			`{"name":"Cefaleia Tensional","probability":32.6},{"name":"Outro","probability":-3}],` +
			`"confidence_score":87.4}`, nil
	})

	e := NewExternal(gen, WithFallback(NewHeuristic(nil, fixedSource(0))))
	res, err := e.Diagnose(context.Background(), profile())
	require.NoError(t, err)

	assert.Empty(t, res.Error)
	assert.Equal(t, ProvenanceExternal, res.Provenance)
	require.Len(t, res.Diagnoses, 3)
	assert.Equal(t, 45, res.Diagnoses[0].Probability)
	assert.Equal(t, 33, res.Diagnoses[1].Probability)
	assert.Equal(t, 0, res.Diagnoses[2].Probability)
	assert.Equal(t, 87, res.ConfidenceScore)
}
