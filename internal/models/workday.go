package models

import "slices"

// Slots holds the ordered morning and evening bus-unit assignments shared
// by workdays and workday templates. Entries are BusUnit IDs; the same unit
// may appear more than once, and position is the trip sequence.
type Slots struct {
	MorningBusses []string `json:"morningBusses"`
	EveningBusses []string `json:"eveningBusses"`
}

// References reports whether either slot list contains unitID.
func (s *Slots) References(unitID string) bool {
	return slices.Contains(s.MorningBusses, unitID) ||
		slices.Contains(s.EveningBusses, unitID)
}

// ReplaceUnit swaps the first occurrence of oldID in each slot list for
// newID, leaving every other entry and the list order untouched. The two
// lists are handled independently. Reports whether anything changed.
func (s *Slots) ReplaceUnit(oldID, newID string) bool {
	changed := false
	if i := slices.Index(s.MorningBusses, oldID); i != -1 {
		s.MorningBusses[i] = newID
		changed = true
	}
	if i := slices.Index(s.EveningBusses, oldID); i != -1 {
		s.EveningBusses[i] = newID
		changed = true
	}
	return changed
}

// RemoveUnit strips every occurrence of unitID from both slot lists,
// preserving the order of the remaining entries.
func (s *Slots) RemoveUnit(unitID string) {
	s.MorningBusses = removeAll(s.MorningBusses, unitID)
	s.EveningBusses = removeAll(s.EveningBusses, unitID)
}

func removeAll(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Workday is a concrete schedule for one date.
type Workday struct {
	// ID is the unique identifier for the workday (UUID format).
	ID string `json:"id"`

	// Date is the calendar day this workday covers (YYYY-MM-DD).
	Date string `json:"date"`

	Slots
}

// WorkdayTemplate is a reusable schedule pattern from which concrete
// workdays are created. Structurally identical to Workday apart from the
// template naming fields.
type WorkdayTemplate struct {
	// ID is the unique identifier for the template (UUID format).
	ID string `json:"id"`

	// Name is the template's display name.
	Name string `json:"name"`

	// WeekNumber and DayNumber position the template inside a rotating
	// multi-week pattern.
	WeekNumber int `json:"weekNumber"`
	DayNumber  int `json:"dayNumber"`

	Slots
}
