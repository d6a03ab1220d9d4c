package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/storage"
)

const (
	roleMentor = "mentor"
	roleClient = "client"
)

// ListBusUnits returns all bus units with their member lists.
func (s *SQLiteStore) ListBusUnits(ctx context.Context) ([]*models.BusUnit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, bus_id FROM bus_units ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list bus units: %w", err)
	}
	defer rows.Close()

	var units []*models.BusUnit
	for rows.Next() {
		unit := &models.BusUnit{}
		if err := rows.Scan(&unit.ID, &unit.BusID); err != nil {
			return nil, fmt.Errorf("failed to scan bus unit: %w", err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bus units: %w", err)
	}

	for _, unit := range units {
		if err := s.loadMembers(ctx, unit); err != nil {
			return nil, err
		}
	}

	return units, nil
}

// GetBusUnit retrieves a bus unit by ID with its member lists.
func (s *SQLiteStore) GetBusUnit(ctx context.Context, id string) (*models.BusUnit, error) {
	unit := &models.BusUnit{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, bus_id FROM bus_units WHERE id = ?", id,
	).Scan(&unit.ID, &unit.BusID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bus unit %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bus unit: %w", err)
	}

	if err := s.loadMembers(ctx, unit); err != nil {
		return nil, err
	}

	return unit, nil
}

// CreateBusUnit persists a new bus unit, assigning an ID when empty.
// Member references are stored as supplied, without existence checks.
func (s *SQLiteStore) CreateBusUnit(ctx context.Context, unit *models.BusUnit) error {
	if unit.ID == "" {
		unit.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bus_units (id, bus_id) VALUES (?, ?)",
		unit.ID, unit.BusID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bus unit: %w", err)
	}

	if err := insertMembers(ctx, tx, unit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateBusUnit replaces a bus unit's bus reference and member lists.
func (s *SQLiteStore) UpdateBusUnit(ctx context.Context, unit *models.BusUnit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bus_units SET bus_id = ? WHERE id = ?",
		unit.BusID, unit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bus unit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bus unit %s: %w", unit.ID, storage.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM bus_unit_members WHERE unit_id = ?", unit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear unit members: %w", err)
	}

	if err := insertMembers(ctx, tx, unit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteBusUnit removes a bus unit and its member rows. Schedule slots
// referencing the unit are the caller's responsibility.
func (s *SQLiteStore) DeleteBusUnit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bus_units WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bus unit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bus unit %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, unit *models.BusUnit) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, user_id FROM bus_unit_members WHERE unit_id = ? ORDER BY role, position",
		unit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get unit members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role, userID string
		if err := rows.Scan(&role, &userID); err != nil {
			return fmt.Errorf("failed to scan unit member: %w", err)
		}
		switch role {
		case roleMentor:
			unit.Mentors = append(unit.Mentors, userID)
		case roleClient:
			unit.Clients = append(unit.Clients, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate unit members: %w", err)
	}

	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, unit *models.BusUnit) error {
	insert := func(role string, userIDs []string) error {
		for i, userID := range userIDs {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO bus_unit_members (unit_id, role, position, user_id) VALUES (?, ?, ?, ?)",
				unit.ID, role, i, userID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert unit member: %w", err)
			}
		}
		return nil
	}

	if err := insert(roleMentor, unit.Mentors); err != nil {
		return err
	}
	return insert(roleClient, unit.Clients)
}
