package models

// Bus represents a physical bus.
type Bus struct {
	// ID is the unique identifier for the bus (UUID format).
	ID string `json:"id"`

	// Name is the display name of the bus (e.g., "Bus 1").
	Name string `json:"name"`

	// Color is the color used for the bus in schedule views.
	Color string `json:"color"`
}

// BusUnit pairs a bus with the mentors and clients assigned to it.
// The unit holds non-owning references: deleting a unit never deletes the
// bus or the users, and the same unit may be referenced by many schedules.
type BusUnit struct {
	// ID is the unique identifier for the unit (UUID format).
	ID string `json:"id"`

	// BusID references the Bus driven by this unit.
	BusID string `json:"bus"`

	// Mentors are User IDs of the mentors on this unit.
	Mentors []string `json:"mentors"`

	// Clients are User IDs of the clients riding this unit.
	Clients []string `json:"clients"`
}

// PopulatedBusUnit is a BusUnit with its references resolved to full
// records. Unit reads return this shape; missing references resolve to nil
// since unit creation trusts the supplied IDs without verifying them.
// Embedded users never expose credentials (see User).
type PopulatedBusUnit struct {
	ID      string  `json:"id"`
	Bus     *Bus    `json:"bus"`
	Mentors []*User `json:"mentors"`
	Clients []*User `json:"clients"`
}
