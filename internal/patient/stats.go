// Package patient aggregates the active patient list for the practice
// dashboard.
package patient

import "strings"

// Profile is the part of a patient record the statistics read.
type Profile struct {
	Age               int
	Gender            string
	ChronicConditions string
}

// AgeGroups counts patients per age band. Band limits are inclusive.
type AgeGroups struct {
	Upto18 int `json:"0-18"`
	From19 int `json:"19-35"`
	From36 int `json:"36-50"`
	From51 int `json:"51-65"`
	Over65 int `json:"65+"`
}

func AgeDistribution(ages []int) AgeGroups {
	var g AgeGroups
	for _, age := range ages {
		switch {
		case age <= 18:
			g.Upto18++
		case age <= 35:
			g.From19++
		case age <= 50:
			g.From36++
		case age <= 65:
			g.From51++
		default:
			g.Over65++
		}
	}
	return g
}

// GenderCounts counts the M, F and O codes. Any other code is not counted.
type GenderCounts struct {
	Male   int `json:"male"`
	Female int `json:"female"`
	Other  int `json:"other"`
}

func GenderDistribution(genders []string) GenderCounts {
	var c GenderCounts
	for _, g := range genders {
		switch strings.ToUpper(strings.TrimSpace(g)) {
		case "M":
			c.Male++
		case "F":
			c.Female++
		case "O":
			c.Other++
		}
	}
	return c
}

type Stats struct {
	TotalPatients      int          `json:"total_patients"`
	ActivePatients     int          `json:"active_patients"`
	GenderDistribution GenderCounts `json:"gender_distribution"`
	AgeGroups          AgeGroups    `json:"age_groups"`
	WithChronic        int          `json:"patients_with_chronic"`
}

// Summarize expects only active patients.
func Summarize(profiles []Profile) Stats {
	ages := make([]int, len(profiles))
	genders := make([]string, len(profiles))
	chronic := 0
	for i, p := range profiles {
		ages[i] = p.Age
		genders[i] = p.Gender
		if strings.TrimSpace(p.ChronicConditions) != "" {
			chronic++
		}
	}
	return Stats{
		TotalPatients:      len(profiles),
		ActivePatients:     len(profiles),
		GenderDistribution: GenderDistribution(genders),
		AgeGroups:          AgeDistribution(ages),
		WithChronic:        chronic,
	}
}
