package models

import "time"

// Address is a user's postal address.
type Address struct {
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
}

// User represents a registered user account: a mentor (Admin true) or a
// client (Admin false).
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the login email, stored trimmed and lowercased. Unique.
	Email string `json:"email"`

	// Salt and Hash are the pbkdf2 credentials. Both are hex encoded and
	// excluded from JSON so no read path can leak them.
	Salt string `json:"-"`
	Hash string `json:"-"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Picture is an optional profile picture URL.
	Picture string `json:"picture,omitempty"`

	Address Address `json:"address"`

	// Admin marks mentors; clients have it unset.
	Admin bool `json:"admin"`

	Birthday time.Time `json:"birthday"`

	// AbsentDates is the ordered list of days the user is absent.
	AbsentDates []time.Time `json:"absentDates"`
}
