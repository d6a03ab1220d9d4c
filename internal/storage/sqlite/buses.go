package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/storage"
)

// ListBuses returns all buses sorted by name.
func (s *SQLiteStore) ListBuses(ctx context.Context) ([]*models.Bus, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color FROM buses ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list buses: %w", err)
	}
	defer rows.Close()

	var buses []*models.Bus
	for rows.Next() {
		bus := &models.Bus{}
		if err := rows.Scan(&bus.ID, &bus.Name, &bus.Color); err != nil {
			return nil, fmt.Errorf("failed to scan bus: %w", err)
		}
		buses = append(buses, bus)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate buses: %w", err)
	}

	return buses, nil
}

// GetBus retrieves a bus by ID.
func (s *SQLiteStore) GetBus(ctx context.Context, id string) (*models.Bus, error) {
	bus := &models.Bus{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, color FROM buses WHERE id = ?", id,
	).Scan(&bus.ID, &bus.Name, &bus.Color)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bus %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}

	return bus, nil
}

// CreateBus persists a new bus, assigning an ID when empty.
func (s *SQLiteStore) CreateBus(ctx context.Context, bus *models.Bus) error {
	if bus.ID == "" {
		bus.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO buses (id, name, color) VALUES (?, ?, ?)",
		bus.ID, bus.Name, bus.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to create bus: %w", err)
	}

	return nil
}

// UpdateBus updates an existing bus.
func (s *SQLiteStore) UpdateBus(ctx context.Context, bus *models.Bus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE buses SET name = ?, color = ? WHERE id = ?",
		bus.Name, bus.Color, bus.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bus %s: %w", bus.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteBus removes a bus. Units referencing the bus are left as-is; their
// populated reads resolve the missing bus to nil.
func (s *SQLiteStore) DeleteBus(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM buses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bus %s: %w", id, storage.ErrNotFound)
	}

	return nil
}
