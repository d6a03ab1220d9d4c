// Package models defines the core domain models for the transport backend.
//
// # Models
//
//   - Bus: a physical bus with a display name and color
//   - BusUnit: a bus paired with the mentors and clients riding it
//   - User: a mentor (admin), client, or both
//   - Workday / WorkdayTemplate: schedule documents assigning bus units to
//     morning and evening trips
//
// # Design Principles
//
// 1. **ID strings instead of pointers**: cross-document relationships are
// held as ID strings to avoid circular references; reads that need the full
// record resolve them through the service layer (see PopulatedBusUnit).
//
// 2. **Non-owning references**: a BusUnit does not own its Bus or Users, and
// a schedule does not own its BusUnits. The same BusUnit may appear in any
// number of workdays and workday templates; the service layer decides
// whether an edit mutates a unit in place or forks a new one.
//
// 3. **Credentials stay internal**: User.Salt and User.Hash carry `json:"-"`
// so no response path can serialize them.
package models
