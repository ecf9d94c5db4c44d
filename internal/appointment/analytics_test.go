package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visit(at time.Time, s Status) Visit {
	return Visit{At: at, Status: s}
}

func minutes(n int) *int { return &n }

func TestNoShowRate(t *testing.T) {
	day := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, NoShowRate(nil))
	assert.Equal(t, 0.0, NoShowRate([]Visit{visit(day, StatusScheduled)}))

	visits := []Visit{
		visit(day, StatusNoShow),
		visit(day, StatusCompleted),
		visit(day, StatusCancelled),
		visit(day, StatusScheduled),
	}
	assert.Equal(t, 33.33, NoShowRate(visits))
}

func TestBusiestHours(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) Visit { return visit(day.Add(time.Duration(h)*time.Hour), StatusCompleted) }

	visits := []Visit{at(9), at(9), at(9), at(14), at(14), at(8), at(10), at(16), at(17), at(17)}
	got := BusiestHours(visits, 5)
	assert.Equal(t, []HourCount{
		{Hour: 9, Count: 3},
		{Hour: 14, Count: 2},
		{Hour: 17, Count: 2},
		{Hour: 8, Count: 1},
		{Hour: 10, Count: 1},
	}, got)

	assert.Empty(t, BusiestHours(nil, 5))
}

func TestAnalyze(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	visits := []Visit{
		{At: now.AddDate(0, -3, 0), Status: StatusNoShow},
		{At: now.AddDate(0, 0, -10).Add(-3 * time.Hour), Status: StatusCompleted, DurationMinutes: minutes(30)},
		{At: now.AddDate(0, 0, -5).Add(-3 * time.Hour), Status: StatusNoShow, DurationMinutes: minutes(45)},
		{At: now.AddDate(0, 0, 3).Add(-2 * time.Hour), Status: StatusScheduled},
	}

	a := Analyze(visits, now)
	assert.Equal(t, 4, a.TotalAppointments)
	assert.Equal(t, 3, a.Last30Days)
	assert.Equal(t, StatusCounts{Completed: 1, Scheduled: 1, NoShow: 1}, a.ByStatus)
	assert.Equal(t, 50.0, a.NoShowRate)
	assert.Equal(t, []HourCount{{Hour: 9, Count: 2}, {Hour: 10, Count: 1}}, a.BusiestHours)
	require.NotNil(t, a.AverageDuration)
	assert.InDelta(t, 37.5, *a.AverageDuration, 1e-9)
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(nil, time.Now())
	assert.Zero(t, a.TotalAppointments)
	assert.Zero(t, a.NoShowRate)
	assert.Nil(t, a.AverageDuration)
	assert.Empty(t, a.BusiestHours)
}
