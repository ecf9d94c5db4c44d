package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPredictExample(t *testing.T) {
	p := Predict(Features{DaysUntil: 35, PreviousNoShows: 2, Hour: 20})
	assert.InDelta(t, 0.75, p, 1e-9)
}

func TestPredictBase(t *testing.T) {
	assert.InDelta(t, 0.10, Predict(Features{Hour: 14}), 1e-9)
	assert.InDelta(t, 0.10, Predict(Features{Hour: 8}), 1e-9)
	assert.InDelta(t, 0.10, Predict(Features{Hour: 17, DaysUntil: 30}), 1e-9)
}

func TestPredictAllFactors(t *testing.T) {
	p := Predict(Features{DaysUntil: 60, PreviousNoShows: 1, Hour: 6, IsFirst: true})
	assert.InDelta(t, 0.85, p, 1e-9)
}

func TestPredictMonotonicAndBounded(t *testing.T) {
	for _, days := range []int{-5, 0, 30, 31, 90} {
		for _, prev := range []int{0, 1, 5} {
			for hour := 0; hour < 24; hour++ {
				for _, first := range []bool{false, true} {
					f := Features{DaysUntil: days, PreviousNoShows: prev, Hour: hour, IsFirst: first}
					p := Predict(f)
					assert.GreaterOrEqual(t, p, 0.0)
					assert.LessOrEqual(t, p, 1.0)

					more := f
					more.DaysUntil += 31
					assert.GreaterOrEqual(t, Predict(more), p)

					more = f
					more.PreviousNoShows++
					assert.GreaterOrEqual(t, Predict(more), p)

					more = f
					more.IsFirst = true
					assert.GreaterOrEqual(t, Predict(more), p)
				}
			}
		}
	}
}

func TestAssessLevels(t *testing.T) {
	tests := []struct {
		name    string
		f       Features
		level   string
		rec     string
		percent float64
	}{
		{"base", Features{Hour: 10}, "Baixo", "Acompanhamento normal", 10},
		{"exactly 0.3 stays low", Features{Hour: 10, DaysUntil: 40}, "Baixo", "Acompanhamento normal", 30},
		{"medium", Features{Hour: 10, PreviousNoShows: 1}, "Médio", "Enviar lembrete", 40},
		{"high", Features{Hour: 20, PreviousNoShows: 1}, "Alto", "Enviar lembrete", 55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(tt.f)
			assert.Equal(t, tt.level, a.Level)
			assert.Equal(t, tt.rec, a.Recommendation)
			assert.InDelta(t, tt.percent, a.Percent, 1e-9)
		})
	}
}

func TestFeaturesFor(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 3, 1, 23, 30, 0, 0, loc)
	at := time.Date(2024, 4, 5, 19, 0, 0, 0, loc)

	f := FeaturesFor(at, now, 2, 1)
	assert.Equal(t, Features{DaysUntil: 35, PreviousNoShows: 2, Hour: 19, IsFirst: true}, f)

	f = FeaturesFor(at, now, 0, 4)
	assert.False(t, f.IsFirst)
}

func TestSuggestSlots(t *testing.T) {
	high := SuggestSlots(PriorityHigh)
	assert.Equal(t, []int{8, 9, 10, 11}, high.SuggestedHours)
	assert.Len(t, high.AlternativeHours, 8)

	normal := SuggestSlots(PriorityNormal)
	assert.Equal(t, []int{14, 15, 16, 17}, normal.SuggestedHours)
	assert.Equal(t, high.AlternativeHours, normal.AlternativeHours)
}
