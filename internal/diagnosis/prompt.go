package diagnosis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Skufu/clinicai/internal/knowledge"
)

const promptTemplate = `Você é um assistente médico especializado. Analise os seguintes dados:

Sintomas/Queixa: %s

Dados do Paciente:
- Idade: %d anos
- Sexo: %s
- Condições crônicas: %s
- Alergias: %s

Forneça:
1. Top 5 diagnósticos diferenciais mais prováveis (com probabilidade estimada)
2. Exames complementares sugeridos
3. Red flags (sinais de alerta)
4. Orientações gerais de conduta

Responda somente em JSON com as chaves:
{"differential_diagnoses":[{"name":"","probability":0}],"recommended_exams":[],"red_flags":[],"general_conduct":"","confidence_score":0}`

func buildPrompt(p SymptomProfile) string {
	return fmt.Sprintf(promptTemplate,
		strings.TrimSpace(p.Symptoms),
		p.Patient.Age,
		orNone(p.Patient.Gender),
		orNone(p.Patient.ChronicConditions),
		orNone(p.Patient.Allergies),
	)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Nenhuma"
	}
	return s
}

// Payload is the structure requested from the generator. Models sometimes
// answer 45.0 where 45 was asked for, so numbers decode as float64.
type Payload struct {
	Diagnoses        []PayloadDifferential `json:"differential_diagnoses"`
	RecommendedExams []string              `json:"recommended_exams"`
	RedFlags         []string              `json:"red_flags"`
	GeneralConduct   string                `json:"general_conduct"`
	ConfidenceScore  float64               `json:"confidence_score"`
}

type PayloadDifferential struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// Differentials rounds each probability to a whole percentage in [0,100].
func (p Payload) Differentials() []knowledge.Differential {
	out := make([]knowledge.Differential, len(p.Diagnoses))
	for i, d := range p.Diagnoses {
		out[i] = knowledge.Differential{Name: d.Name, Probability: percent(d.Probability)}
	}
	return out
}

// Confidence is the confidence score rounded and clamped to [0,100].
func (p Payload) Confidence() int {
	return percent(p.ConfidenceScore)
}

func percent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(max(0, min(100, v))))
}

var errNoDiagnoses = errors.New("payload has no differential_diagnoses")

// ParsePayload decodes the JSON object in raw, which may be wrapped in a
// ```json fenced block and surrounded by prose.
func ParsePayload(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	if len(p.Diagnoses) == 0 {
		return Payload{}, errNoDiagnoses
	}
	return p, nil
}

func extractJSON(raw string) string {
	for _, fence := range []string{"```json", "```"} {
		if _, rest, ok := strings.Cut(raw, fence); ok {
			body, _, _ := strings.Cut(rest, "```")
			return strings.TrimSpace(body)
		}
	}
	return strings.TrimSpace(raw)
}
