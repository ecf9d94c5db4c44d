package appointment

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

var (
	morningSlots   = []int{8, 9, 10, 11}
	afternoonSlots = []int{14, 15, 16, 17}
)

type SlotSuggestion struct {
	SuggestedHours   []int  `json:"suggested_times"`
	Reason           string `json:"reason"`
	AlternativeHours []int  `json:"alternatives"`
}

// SuggestSlots puts high-priority patients in the morning and everyone else
// in the afternoon.
func SuggestSlots(p Priority) SlotSuggestion {
	preferred := afternoonSlots
	if p == PriorityHigh {
		preferred = morningSlots
	}

	alternatives := make([]int, 0, len(morningSlots)+len(afternoonSlots))
	alternatives = append(alternatives, morningSlots...)
	alternatives = append(alternatives, afternoonSlots...)

	return SlotSuggestion{
		SuggestedHours:   append([]int(nil), preferred...),
		Reason:           "Baseado em prioridade e disponibilidade",
		AlternativeHours: alternatives,
	}
}
