package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// Ordered lists (slot assignments, unit members, absent dates) live in join
// tables keyed by position so their order survives round trips. Bus-unit
// member and bus references carry no foreign keys: units are created from
// caller-supplied IDs without existence verification.
const schema = `
CREATE TABLE IF NOT EXISTS buses (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    salt TEXT NOT NULL,
    hash TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    picture TEXT NOT NULL DEFAULT '',
    street TEXT NOT NULL DEFAULT '',
    postal_code TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    admin INTEGER NOT NULL DEFAULT 0,
    birthday TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_absent_dates (
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    date TEXT NOT NULL,
    PRIMARY KEY (user_id, position),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bus_units (
    id TEXT PRIMARY KEY,
    bus_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bus_unit_members (
    unit_id TEXT NOT NULL,
    role TEXT NOT NULL,
    position INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (unit_id, role, position),
    FOREIGN KEY (unit_id) REFERENCES bus_units(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS workdays (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS workday_templates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    week_number INTEGER NOT NULL DEFAULT 0,
    day_number INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS schedule_slots (
    schedule_kind TEXT NOT NULL,
    schedule_id TEXT NOT NULL,
    slot TEXT NOT NULL,
    position INTEGER NOT NULL,
    unit_id TEXT NOT NULL,
    PRIMARY KEY (schedule_kind, schedule_id, slot, position)
);

CREATE INDEX IF NOT EXISTS idx_schedule_slots_unit ON schedule_slots(unit_id);
CREATE INDEX IF NOT EXISTS idx_bus_unit_members_unit ON bus_unit_members(unit_id);
CREATE INDEX IF NOT EXISTS idx_user_absent_dates_user ON user_absent_dates(user_id);
`

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
