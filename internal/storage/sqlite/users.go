package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/storage"
)

const userColumns = "id, email, salt, hash, first_name, last_name, picture, street, postal_code, city, admin, birthday"

// ListUsers returns users matching the filter. AllUsers sorts by email,
// the role filters sort by first name, mirroring the original listings.
func (s *SQLiteStore) ListUsers(ctx context.Context, filter storage.UserFilter) ([]*models.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	switch filter {
	case storage.MentorsOnly:
		query += " WHERE admin = 1 ORDER BY first_name"
	case storage.ClientsOnly:
		query += " WHERE admin = 0 ORDER BY first_name"
	default:
		query += " ORDER BY email"
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	for _, user := range users {
		if err := s.loadAbsentDates(ctx, user); err != nil {
			return nil, err
		}
	}

	return users, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadAbsentDates(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a user by exact email match.
// Returns (nil, nil) when no user has the email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadAbsentDates(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// CreateUser inserts a new user, assigning an ID when empty.
// The unique index on email rejects duplicates.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Salt, user.Hash,
		user.FirstName, user.LastName, user.Picture,
		user.Address.Street, user.Address.PostalCode, user.Address.City,
		user.Admin, formatDate(user.Birthday),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := insertAbsentDates(ctx, tx, user); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateUser replaces a user's fields and absent-date list.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET email = ?, salt = ?, hash = ?, first_name = ?, last_name = ?,
			picture = ?, street = ?, postal_code = ?, city = ?, admin = ?, birthday = ?
		WHERE id = ?`,
		user.Email, user.Salt, user.Hash, user.FirstName, user.LastName,
		user.Picture, user.Address.Street, user.Address.PostalCode, user.Address.City,
		user.Admin, formatDate(user.Birthday), user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", user.ID, storage.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM user_absent_dates WHERE user_id = ?", user.ID)
	if err != nil {
		return fmt.Errorf("failed to clear absent dates: %w", err)
	}
	if err := insertAbsentDates(ctx, tx, user); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *SQLiteStore) loadAbsentDates(ctx context.Context, user *models.User) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date FROM user_absent_dates WHERE user_id = ? ORDER BY position",
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get absent dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("failed to scan absent date: %w", err)
		}
		date, err := parseDate(raw)
		if err != nil {
			return err
		}
		user.AbsentDates = append(user.AbsentDates, date)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate absent dates: %w", err)
	}

	return nil
}

func insertAbsentDates(ctx context.Context, tx *sql.Tx, user *models.User) error {
	for i, date := range user.AbsentDates {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO user_absent_dates (user_id, position, date) VALUES (?, ?, ?)",
			user.ID, i, formatDate(date),
		)
		if err != nil {
			return fmt.Errorf("failed to insert absent date: %w", err)
		}
	}
	return nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var birthday string
	err := row.Scan(
		&user.ID, &user.Email, &user.Salt, &user.Hash,
		&user.FirstName, &user.LastName, &user.Picture,
		&user.Address.Street, &user.Address.PostalCode, &user.Address.City,
		&user.Admin, &birthday,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if birthday != "" {
		user.Birthday, err = parseDate(birthday)
		if err != nil {
			return nil, err
		}
	}

	return user, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored date %q: %w", raw, err)
	}
	return t, nil
}
