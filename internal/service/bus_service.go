package service

import (
	"context"
	"log/slog"

	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/storage"
)

// BusService implements the plain bus CRUD operations.
type BusService struct {
	store storage.Store
}

// NewBusService creates a new BusService with the given storage backend.
func NewBusService(store storage.Store) *BusService {
	return &BusService{store: store}
}

// List returns all buses sorted by name.
func (s *BusService) List(ctx context.Context) ([]*models.Bus, error) {
	return s.store.ListBuses(ctx)
}

// Get returns one bus by ID.
func (s *BusService) Get(ctx context.Context, id string) (*models.Bus, error) {
	return s.store.GetBus(ctx, id)
}

// Create validates and persists a new bus.
func (s *BusService) Create(ctx context.Context, name, color string) (*models.Bus, error) {
	if name == "" {
		return nil, ErrMissingFields
	}

	bus := &models.Bus{Name: name, Color: color}
	if err := s.store.CreateBus(ctx, bus); err != nil {
		return nil, err
	}

	slog.Info("Bus created", "bus_id", bus.ID, "name", bus.Name)
	return bus, nil
}

// Patch merges the provided fields onto an existing bus. Empty fields are
// left untouched.
func (s *BusService) Patch(ctx context.Context, id, name, color string) (*models.Bus, error) {
	bus, err := s.store.GetBus(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		bus.Name = name
	}
	if color != "" {
		bus.Color = color
	}

	if err := s.store.UpdateBus(ctx, bus); err != nil {
		return nil, err
	}

	return bus, nil
}

// Delete removes a bus. Units referencing it keep their dangling
// reference; populated reads resolve it to nil.
func (s *BusService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteBus(ctx, id); err != nil {
		return err
	}

	slog.Info("Bus deleted", "bus_id", id)
	return nil
}
