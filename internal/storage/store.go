// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/kolv02/backend/internal/models"
)

// ErrNotFound is wrapped by Store implementations when a lookup misses.
var ErrNotFound = errors.New("not found")

// UserFilter selects which users a listing returns.
type UserFilter int

const (
	// AllUsers returns every user, sorted by email.
	AllUsers UserFilter = iota
	// MentorsOnly returns users with the admin flag set, sorted by first name.
	MentorsOnly
	// ClientsOnly returns users without the admin flag, sorted by first name.
	ClientsOnly
)

// Store defines the interface for persistence operations. This abstraction
// allows swapping storage backends without changing the service layer.
//
// Create* methods assign the record's ID when it is empty. Lookup misses
// return an error wrapping ErrNotFound, except GetUserByEmail which returns
// (nil, nil) so callers can probe email availability without unwrapping.
type Store interface {
	// Busses
	ListBuses(ctx context.Context) ([]*models.Bus, error)
	GetBus(ctx context.Context, id string) (*models.Bus, error)
	CreateBus(ctx context.Context, bus *models.Bus) error
	UpdateBus(ctx context.Context, bus *models.Bus) error
	DeleteBus(ctx context.Context, id string) error

	// Bus units
	ListBusUnits(ctx context.Context) ([]*models.BusUnit, error)
	GetBusUnit(ctx context.Context, id string) (*models.BusUnit, error)
	CreateBusUnit(ctx context.Context, unit *models.BusUnit) error
	UpdateBusUnit(ctx context.Context, unit *models.BusUnit) error
	DeleteBusUnit(ctx context.Context, id string) error

	// Users
	ListUsers(ctx context.Context, filter UserFilter) ([]*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error

	// Workdays and workday templates
	GetWorkday(ctx context.Context, id string) (*models.Workday, error)
	CreateWorkday(ctx context.Context, workday *models.Workday) error
	UpdateWorkday(ctx context.Context, workday *models.Workday) error
	GetWorkdayTemplate(ctx context.Context, id string) (*models.WorkdayTemplate, error)
	CreateWorkdayTemplate(ctx context.Context, template *models.WorkdayTemplate) error
	UpdateWorkdayTemplate(ctx context.Context, template *models.WorkdayTemplate) error

	// Reference index: every schedule document whose morning or evening
	// slot list contains the given unit. Queried fresh on every call;
	// implementations must not cache results.
	FindWorkdaysUsing(ctx context.Context, unitID string) ([]*models.Workday, error)
	FindTemplatesUsing(ctx context.Context, unitID string) ([]*models.WorkdayTemplate, error)

	// Close releases any resources held by the store.
	Close() error
}
