package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/storage"
)

// UnitService implements bus-unit CRUD and the scoped delete/patch
// protocol for units shared between schedules.
type UnitService struct {
	store storage.Store
}

// NewUnitService creates a new UnitService with the given storage backend.
func NewUnitService(store storage.Store) *UnitService {
	return &UnitService{store: store}
}

// UnitPatch carries the patchable BusUnit fields. A field applies only
// when set to a non-zero value; an empty value means "leave untouched", so
// a patch can never clear mentors or clients to an empty list. This
// mirrors the original API contract and is asserted in tests rather than
// fixed.
type UnitPatch struct {
	BusID   string
	Mentors []string
	Clients []string
}

func (p UnitPatch) applyTo(unit *models.BusUnit) {
	if p.BusID != "" {
		unit.BusID = p.BusID
	}
	if len(p.Mentors) > 0 {
		unit.Mentors = p.Mentors
	}
	if len(p.Clients) > 0 {
		unit.Clients = p.Clients
	}
}

// ScheduleScope identifies the schedule a scoped operation targets.
// WorkdayID takes precedence when both are set.
type ScheduleScope struct {
	WorkdayID  string
	TemplateID string
}

func (sc ScheduleScope) empty() bool {
	return sc.WorkdayID == "" && sc.TemplateID == ""
}

// Usage lists every schedule document referencing one bus unit.
//
// Two classification policies hang off it and they are deliberately not
// unified: patching counts all referencing documents including the target
// and forks above one, while deletion counts what remains once the target
// is stripped and keeps the unit above zero.
type Usage struct {
	Workdays  []*models.Workday
	Templates []*models.WorkdayTemplate
}

// Count is the total number of referencing schedule documents.
func (u Usage) Count() int {
	return len(u.Workdays) + len(u.Templates)
}

// SharedForPatch reports whether a patch must fork instead of mutating:
// more than one document references the unit, the target included. A unit
// referenced only by the target schedule is exclusive and safe to edit in
// place.
func (u Usage) SharedForPatch() bool {
	return u.Count() > 1
}

// RemainingExcluding counts the referencing documents that are not the
// given workday or template. This is the delete policy's survival count:
// zero means the unit is orphaned once the target drops its reference.
func (u Usage) RemainingExcluding(workdayID, templateID string) int {
	n := 0
	for _, w := range u.Workdays {
		if w.ID != workdayID {
			n++
		}
	}
	for _, t := range u.Templates {
		if t.ID != templateID {
			n++
		}
	}
	return n
}

// references resolves every schedule currently referencing the unit.
// Always queried fresh; schedules may have changed since the last call.
func (s *UnitService) references(ctx context.Context, unitID string) (Usage, error) {
	workdays, err := s.store.FindWorkdaysUsing(ctx, unitID)
	if err != nil {
		return Usage{}, err
	}
	templates, err := s.store.FindTemplatesUsing(ctx, unitID)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Workdays: workdays, Templates: templates}, nil
}

// List returns all bus units with bus and user references resolved.
func (s *UnitService) List(ctx context.Context) ([]*models.PopulatedBusUnit, error) {
	units, err := s.store.ListBusUnits(ctx)
	if err != nil {
		return nil, err
	}

	populated := make([]*models.PopulatedBusUnit, len(units))
	for i, unit := range units {
		if populated[i], err = s.populate(ctx, unit); err != nil {
			return nil, err
		}
	}

	return populated, nil
}

// Get returns one bus unit with its references resolved.
func (s *UnitService) Get(ctx context.Context, id string) (*models.PopulatedBusUnit, error) {
	unit, err := s.store.GetBusUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, unit)
}

// populate resolves the unit's bus and user references. References that no
// longer exist resolve to nil rather than failing the read, since unit
// creation never verified them.
func (s *UnitService) populate(ctx context.Context, unit *models.BusUnit) (*models.PopulatedBusUnit, error) {
	out := &models.PopulatedBusUnit{
		ID:      unit.ID,
		Mentors: make([]*models.User, 0, len(unit.Mentors)),
		Clients: make([]*models.User, 0, len(unit.Clients)),
	}

	bus, err := s.store.GetBus(ctx, unit.BusID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	out.Bus = bus

	resolve := func(userIDs []string, into *[]*models.User) error {
		for _, id := range userIDs {
			user, err := s.store.GetUserByID(ctx, id)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				return err
			}
			*into = append(*into, user)
		}
		return nil
	}

	if err := resolve(unit.Mentors, &out.Mentors); err != nil {
		return nil, err
	}
	if err := resolve(unit.Clients, &out.Clients); err != nil {
		return nil, err
	}

	return out, nil
}

// Create persists a new bus unit. The bus and user references are taken as
// supplied, without existence verification.
func (s *UnitService) Create(ctx context.Context, busID string, mentors, clients []string) (*models.BusUnit, error) {
	if busID == "" {
		return nil, ErrMissingFields
	}

	unit := &models.BusUnit{BusID: busID, Mentors: mentors, Clients: clients}
	if err := s.store.CreateBusUnit(ctx, unit); err != nil {
		return nil, err
	}

	slog.Info("Bus unit created", "unit_id", unit.ID, "bus_id", busID)
	return unit, nil
}

// ForceDelete removes a unit unconditionally, ignoring schedules that
// still reference it.
func (s *UnitService) ForceDelete(ctx context.Context, id string) error {
	if err := s.store.DeleteBusUnit(ctx, id); err != nil {
		return err
	}

	slog.Info("Bus unit force-deleted", "unit_id", id)
	return nil
}

// ForcePatch merges the patch onto the unit in place, ignoring usage.
// Every schedule referencing the unit sees the change.
func (s *UnitService) ForcePatch(ctx context.Context, id string, patch UnitPatch) (*models.BusUnit, error) {
	unit, err := s.store.GetBusUnit(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.applyTo(unit)
	if err := s.store.UpdateBusUnit(ctx, unit); err != nil {
		return nil, err
	}

	return unit, nil
}

// DeleteScoped removes the unit's references from one schedule, then
// deletes the unit itself only when no other schedule still uses it.
func (s *UnitService) DeleteScoped(ctx context.Context, unitID string, scope ScheduleScope) error {
	if scope.empty() {
		return ErrMissingFields
	}
	if _, err := s.store.GetBusUnit(ctx, unitID); err != nil {
		return err
	}

	usage, err := s.references(ctx, unitID)
	if err != nil {
		return err
	}

	var remaining int
	if scope.WorkdayID != "" {
		workday, err := s.store.GetWorkday(ctx, scope.WorkdayID)
		if err != nil {
			return err
		}
		workday.RemoveUnit(unitID)
		if err := s.store.UpdateWorkday(ctx, workday); err != nil {
			return err
		}
		remaining = usage.RemainingExcluding(workday.ID, "")
	} else {
		template, err := s.store.GetWorkdayTemplate(ctx, scope.TemplateID)
		if err != nil {
			return err
		}
		template.RemoveUnit(unitID)
		if err := s.store.UpdateWorkdayTemplate(ctx, template); err != nil {
			return err
		}
		remaining = usage.RemainingExcluding("", template.ID)
	}

	if remaining >= 1 {
		slog.Info("Bus unit kept, still in use",
			"unit_id", unitID, "remaining_usages", remaining)
		return nil
	}

	if err := s.store.DeleteBusUnit(ctx, unitID); err != nil {
		return err
	}

	slog.Info("Bus unit deleted with last usage", "unit_id", unitID)
	return nil
}

// PatchScoped edits the unit in the context of one schedule. A unit
// referenced by more than one schedule is forked: a new unit with the
// merged fields replaces the old reference in the target schedule only,
// and the original record keeps serving the other schedules. Otherwise the
// unit is mutated in place. Returns the surviving unit (the fork when one
// was made).
func (s *UnitService) PatchScoped(ctx context.Context, unitID string, scope ScheduleScope, patch UnitPatch) (*models.BusUnit, error) {
	if scope.empty() {
		return nil, ErrMissingFields
	}
	unit, err := s.store.GetBusUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	usage, err := s.references(ctx, unitID)
	if err != nil {
		return nil, err
	}

	shared := usage.SharedForPatch()
	resolved := resolveUnit(unit, patch, shared)

	if !shared {
		if err := s.store.UpdateBusUnit(ctx, resolved); err != nil {
			return nil, err
		}
		slog.Info("Bus unit patched in place", "unit_id", resolved.ID)
		return resolved, nil
	}

	// Fork: the unit is saved before the schedule referencing it.
	if scope.WorkdayID != "" {
		workday, err := s.store.GetWorkday(ctx, scope.WorkdayID)
		if err != nil {
			return nil, err
		}
		if err := s.store.CreateBusUnit(ctx, resolved); err != nil {
			return nil, err
		}
		workday.ReplaceUnit(unitID, resolved.ID)
		if err := s.store.UpdateWorkday(ctx, workday); err != nil {
			return nil, err
		}
	} else {
		template, err := s.store.GetWorkdayTemplate(ctx, scope.TemplateID)
		if err != nil {
			return nil, err
		}
		if err := s.store.CreateBusUnit(ctx, resolved); err != nil {
			return nil, err
		}
		template.ReplaceUnit(unitID, resolved.ID)
		if err := s.store.UpdateWorkdayTemplate(ctx, template); err != nil {
			return nil, err
		}
	}

	slog.Info("Bus unit forked for shared usage",
		"unit_id", unitID, "fork_id", resolved.ID, "usages", usage.Count())
	return resolved, nil
}

// resolveUnit applies the fork-or-mutate rule. Exclusive units are mutated
// in place and keep their identity. Shared units are left untouched; a new
// unit is built from the patch fields, falling back to the existing
// field wherever the patch omits one.
func resolveUnit(existing *models.BusUnit, patch UnitPatch, shared bool) *models.BusUnit {
	if !shared {
		patch.applyTo(existing)
		return existing
	}

	fork := &models.BusUnit{
		BusID:   existing.BusID,
		Mentors: slices.Clone(existing.Mentors),
		Clients: slices.Clone(existing.Clients),
	}
	patch.applyTo(fork)
	return fork
}
