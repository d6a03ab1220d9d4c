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
	kindWorkday  = "workday"
	kindTemplate = "template"

	slotMorning = "morning"
	slotEvening = "evening"
)

// GetWorkday retrieves a workday with its slot lists.
func (s *SQLiteStore) GetWorkday(ctx context.Context, id string) (*models.Workday, error) {
	workday := &models.Workday{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, date FROM workdays WHERE id = ?", id,
	).Scan(&workday.ID, &workday.Date)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workday %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workday: %w", err)
	}

	if err := s.loadSlots(ctx, kindWorkday, id, &workday.Slots); err != nil {
		return nil, err
	}

	return workday, nil
}

// CreateWorkday persists a new workday, assigning an ID when empty.
func (s *SQLiteStore) CreateWorkday(ctx context.Context, workday *models.Workday) error {
	if workday.ID == "" {
		workday.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO workdays (id, date) VALUES (?, ?)",
		workday.ID, workday.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workday: %w", err)
	}

	if err := saveSlots(ctx, tx, kindWorkday, workday.ID, &workday.Slots); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateWorkday replaces a workday's date and slot lists.
func (s *SQLiteStore) UpdateWorkday(ctx context.Context, workday *models.Workday) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE workdays SET date = ? WHERE id = ?",
		workday.Date, workday.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workday: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("workday %s: %w", workday.ID, storage.ErrNotFound)
	}

	if err := saveSlots(ctx, tx, kindWorkday, workday.ID, &workday.Slots); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetWorkdayTemplate retrieves a template with its slot lists.
func (s *SQLiteStore) GetWorkdayTemplate(ctx context.Context, id string) (*models.WorkdayTemplate, error) {
	template := &models.WorkdayTemplate{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, week_number, day_number FROM workday_templates WHERE id = ?", id,
	).Scan(&template.ID, &template.Name, &template.WeekNumber, &template.DayNumber)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workday template %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workday template: %w", err)
	}

	if err := s.loadSlots(ctx, kindTemplate, id, &template.Slots); err != nil {
		return nil, err
	}

	return template, nil
}

// CreateWorkdayTemplate persists a new template, assigning an ID when empty.
func (s *SQLiteStore) CreateWorkdayTemplate(ctx context.Context, template *models.WorkdayTemplate) error {
	if template.ID == "" {
		template.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO workday_templates (id, name, week_number, day_number) VALUES (?, ?, ?, ?)",
		template.ID, template.Name, template.WeekNumber, template.DayNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workday template: %w", err)
	}

	if err := saveSlots(ctx, tx, kindTemplate, template.ID, &template.Slots); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateWorkdayTemplate replaces a template's fields and slot lists.
func (s *SQLiteStore) UpdateWorkdayTemplate(ctx context.Context, template *models.WorkdayTemplate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE workday_templates SET name = ?, week_number = ?, day_number = ? WHERE id = ?",
		template.Name, template.WeekNumber, template.DayNumber, template.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workday template: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("workday template %s: %w", template.ID, storage.ErrNotFound)
	}

	if err := saveSlots(ctx, tx, kindTemplate, template.ID, &template.Slots); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindWorkdaysUsing returns every workday whose morning or evening list
// contains the unit. Evaluated fresh on every call.
func (s *SQLiteStore) FindWorkdaysUsing(ctx context.Context, unitID string) ([]*models.Workday, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT w.id, w.date FROM workdays w
		JOIN schedule_slots ss ON ss.schedule_kind = ? AND ss.schedule_id = w.id
		WHERE ss.unit_id = ?
		ORDER BY w.id`,
		kindWorkday, unitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find workdays using unit: %w", err)
	}
	defer rows.Close()

	var workdays []*models.Workday
	for rows.Next() {
		workday := &models.Workday{}
		if err := rows.Scan(&workday.ID, &workday.Date); err != nil {
			return nil, fmt.Errorf("failed to scan workday: %w", err)
		}
		workdays = append(workdays, workday)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workdays: %w", err)
	}

	for _, workday := range workdays {
		if err := s.loadSlots(ctx, kindWorkday, workday.ID, &workday.Slots); err != nil {
			return nil, err
		}
	}

	return workdays, nil
}

// FindTemplatesUsing returns every workday template whose morning or
// evening list contains the unit. Evaluated fresh on every call.
func (s *SQLiteStore) FindTemplatesUsing(ctx context.Context, unitID string) ([]*models.WorkdayTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT t.id, t.name, t.week_number, t.day_number FROM workday_templates t
		JOIN schedule_slots ss ON ss.schedule_kind = ? AND ss.schedule_id = t.id
		WHERE ss.unit_id = ?
		ORDER BY t.id`,
		kindTemplate, unitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find templates using unit: %w", err)
	}
	defer rows.Close()

	var templates []*models.WorkdayTemplate
	for rows.Next() {
		template := &models.WorkdayTemplate{}
		if err := rows.Scan(&template.ID, &template.Name, &template.WeekNumber, &template.DayNumber); err != nil {
			return nil, fmt.Errorf("failed to scan workday template: %w", err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workday templates: %w", err)
	}

	for _, template := range templates {
		if err := s.loadSlots(ctx, kindTemplate, template.ID, &template.Slots); err != nil {
			return nil, err
		}
	}

	return templates, nil
}

func (s *SQLiteStore) loadSlots(ctx context.Context, kind, scheduleID string, slots *models.Slots) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT slot, unit_id FROM schedule_slots WHERE schedule_kind = ? AND schedule_id = ? ORDER BY slot, position",
		kind, scheduleID,
	)
	if err != nil {
		return fmt.Errorf("failed to get schedule slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot, unitID string
		if err := rows.Scan(&slot, &unitID); err != nil {
			return fmt.Errorf("failed to scan schedule slot: %w", err)
		}
		switch slot {
		case slotMorning:
			slots.MorningBusses = append(slots.MorningBusses, unitID)
		case slotEvening:
			slots.EveningBusses = append(slots.EveningBusses, unitID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate schedule slots: %w", err)
	}

	return nil
}

func saveSlots(ctx context.Context, tx *sql.Tx, kind, scheduleID string, slots *models.Slots) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM schedule_slots WHERE schedule_kind = ? AND schedule_id = ?",
		kind, scheduleID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear schedule slots: %w", err)
	}

	insert := func(slot string, unitIDs []string) error {
		for i, unitID := range unitIDs {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schedule_slots (schedule_kind, schedule_id, slot, position, unit_id) VALUES (?, ?, ?, ?, ?)",
				kind, scheduleID, slot, i, unitID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert schedule slot: %w", err)
			}
		}
		return nil
	}

	if err := insert(slotMorning, slots.MorningBusses); err != nil {
		return err
	}
	return insert(slotEvening, slots.EveningBusses)
}
