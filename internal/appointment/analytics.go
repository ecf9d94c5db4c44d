package appointment

import (
	"math"
	"sort"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Visit is one appointment as the analytics read it.
type Visit struct {
	At              time.Time
	Status          Status
	DurationMinutes *int
}

type StatusCounts struct {
	Completed int `json:"completed"`
	Scheduled int `json:"scheduled"`
	Cancelled int `json:"cancelled"`
	NoShow    int `json:"no_show"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type Analytics struct {
	TotalAppointments int          `json:"total_appointments"`
	Last30Days        int          `json:"last_30_days"`
	ByStatus          StatusCounts `json:"by_status"`
	NoShowRate        float64      `json:"no_show_rate"`
	BusiestHours      []HourCount  `json:"busiest_hours"`
	AverageDuration   *float64     `json:"average_duration"`
}

const (
	analyticsWindow = 30 * 24 * time.Hour
	busiestHours    = 5
)

// NoShowRate is the percentage of no-shows among visits that are no longer
// scheduled, rounded to two decimals. It is 0 when there are none.
func NoShowRate(visits []Visit) float64 {
	closed, noShows := 0, 0
	for _, v := range visits {
		if v.Status == StatusScheduled {
			continue
		}
		closed++
		if v.Status == StatusNoShow {
			noShows++
		}
	}
	if closed == 0 {
		return 0
	}
	return math.Round(float64(noShows)/float64(closed)*100*100) / 100
}

// BusiestHours returns up to n hours of the day ordered by visit count,
// earlier hour first on ties.
func BusiestHours(visits []Visit, n int) []HourCount {
	counts := map[int]int{}
	for _, v := range visits {
		counts[v.At.Hour()]++
	}
	out := make([]HourCount, 0, len(counts))
	for h, c := range counts {
		out = append(out, HourCount{Hour: h, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Hour < out[j].Hour
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Analyze reports on all visits, with the per-status figures restricted to
// visits dated in the last 30 days or later.
func Analyze(visits []Visit, now time.Time) Analytics {
	since := now.Add(-analyticsWindow)
	var recent []Visit
	for _, v := range visits {
		if !v.At.Before(since) {
			recent = append(recent, v)
		}
	}

	a := Analytics{
		TotalAppointments: len(visits),
		Last30Days:        len(recent),
		NoShowRate:        NoShowRate(recent),
		BusiestHours:      BusiestHours(recent, busiestHours),
	}

	total, timed := 0, 0
	for _, v := range recent {
		switch v.Status {
		case StatusCompleted:
			a.ByStatus.Completed++
		case StatusScheduled:
			a.ByStatus.Scheduled++
		case StatusCancelled:
			a.ByStatus.Cancelled++
		case StatusNoShow:
			a.ByStatus.NoShow++
		}
		if v.DurationMinutes != nil {
			total += *v.DurationMinutes
			timed++
		}
	}
	if timed > 0 {
		avg := float64(total) / float64(timed)
		a.AverageDuration = &avg
	}
	return a
}
