package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	b := Default()
	assert.Equal(t, []string{"dor de cabeça", "febre", "dor torácica", "tosse"}, b.Keys())
	assert.Len(t, b.Pairs(), 3)
	assert.Len(t, b.Precautions(), 3)
	assert.Len(t, b.Suggestions(), 2)
	assert.Same(t, b, Default())
}

func TestMatchSubstringAnyCase(t *testing.T) {
	p, ok := Default().Match("Tenho FEBRE alta desde ontem")
	require.True(t, ok)
	assert.Equal(t, "febre", p.Key)
	assert.Equal(t, "Infecção Viral (Gripe/Resfriado)", p.Diagnoses[0].Name)
}

func TestMatchFirstDeclaredKeyWins(t *testing.T) {
	p, ok := Default().Match("tosse com febre")
	require.True(t, ok)
	assert.Equal(t, "febre", p.Key)
}

func TestMatchFallback(t *testing.T) {
	p, ok := Default().Match("dor no joelho")
	assert.False(t, ok)
	assert.Len(t, p.Diagnoses, 4)
	assert.Equal(t, 40, p.Diagnoses[0].Probability)
}

func TestMatchReturnsCopy(t *testing.T) {
	p, _ := Default().Match("febre")
	p.Diagnoses[0].Name = "changed"
	p.Exams[0] = "changed"

	again, _ := Default().Match("febre")
	assert.NotEqual(t, "changed", again.Diagnoses[0].Name)
	assert.NotEqual(t, "changed", again.Exams[0])
}

func TestLookupOrderIndependent(t *testing.T) {
	b := Default()
	ab, ok := b.Lookup("Varfarina", "Aspirina")
	require.True(t, ok)
	ba, ok := b.Lookup("aspirina", "VARFARINA")
	require.True(t, ok)
	assert.Equal(t, ab, ba)
	assert.Equal(t, SeveritySevere, ab.Severity)

	_, ok = b.Lookup("aspirina", "paracetamol")
	assert.False(t, ok)
}

func TestLoadRejectsBadTables(t *testing.T) {
	symptoms := `
profiles:
  - key: febre
fallback:
  diagnoses:
    - {name: x, probability: 1}
`
	tests := []struct {
		name         string
		symptoms     string
		interactions string
		want         string
	}{
		{
			name:         "unknown severity",
			symptoms:     symptoms,
			interactions: "interactions:\n  - {drugs: [a, b], severity: grave}\n",
			want:         "unknown severity",
		},
		{
			name:         "duplicate pair in other order",
			symptoms:     symptoms,
			interactions: "interactions:\n  - {drugs: [a, b], severity: severe}\n  - {drugs: [B, A], severity: moderate}\n",
			want:         "declared twice",
		},
		{
			name:         "empty key",
			symptoms:     "profiles:\n  - key: ' '\nfallback:\n  diagnoses: [{name: x, probability: 1}]\n",
			interactions: "interactions: []\n",
			want:         "empty key",
		},
		{
			name:         "missing fallback",
			symptoms:     "profiles:\n  - key: febre\n",
			interactions: "interactions: []\n",
			want:         "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.symptoms), strings.NewReader(tt.interactions))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDir(t *testing.T) {
	b, err := LoadDir("data")
	require.NoError(t, err)
	assert.Equal(t, Default().Keys(), b.Keys())

	_, err = LoadDir(t.TempDir())
	assert.Error(t, err)
}
