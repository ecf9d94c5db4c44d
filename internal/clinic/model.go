// Package clinic holds the plain records exchanged between the persistence
// adapter, the decision-support engines and the API layer.
package clinic

import (
	"encoding/json"
	"time"
)

type PatientContext struct {
	Age               int    `json:"age" binding:"gte=0,lte=150"`
	Gender            string `json:"gender"`
	ChronicConditions string `json:"chronic_conditions"`
	Allergies         string `json:"allergies"`
}

// VitalsSample is one visit's measurements. Nil fields were not recorded.
type VitalsSample struct {
	Weight           *float64  `json:"weight,omitempty" binding:"omitempty,gt=0"`
	Height           *float64  `json:"height,omitempty" binding:"omitempty,gt=0"`
	BloodPressureSys *float64  `json:"blood_pressure_sys,omitempty" binding:"omitempty,gt=0"`
	BloodPressureDia *float64  `json:"blood_pressure_dia,omitempty" binding:"omitempty,gt=0"`
	Timestamp        time.Time `json:"timestamp"`
}

// BMI returns weight/height² and false when either value is missing or
// height is not positive.
func (v VitalsSample) BMI() (float64, bool) {
	if v.Weight == nil || v.Height == nil || *v.Height <= 0 {
		return 0, false
	}
	h := *v.Height
	return *v.Weight / (h * h), true
}

type Medication struct {
	Name string `json:"name"`
}

// UnmarshalJSON accepts either a bare name or an object with a name field.
func (m *Medication) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		m.Name = name
		return nil
	}
	type plain Medication
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Medication(p)
	return nil
}

// Float is a convenience for building optional vitals.
func Float(v float64) *float64 {
	return &v
}
