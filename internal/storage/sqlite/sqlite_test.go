package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestBusCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bus := &models.Bus{Name: "Bus 1", Color: "#ff0000"}
	if err := store.CreateBus(ctx, bus); err != nil {
		t.Fatalf("CreateBus failed: %v", err)
	}
	if bus.ID == "" {
		t.Fatal("expected CreateBus to assign an ID")
	}

	got, err := store.GetBus(ctx, bus.ID)
	if err != nil {
		t.Fatalf("GetBus failed: %v", err)
	}
	if got.Name != "Bus 1" || got.Color != "#ff0000" {
		t.Errorf("unexpected bus: %+v", got)
	}

	bus.Color = "#00ff00"
	if err := store.UpdateBus(ctx, bus); err != nil {
		t.Fatalf("UpdateBus failed: %v", err)
	}
	got, err = store.GetBus(ctx, bus.ID)
	if err != nil {
		t.Fatalf("GetBus after update failed: %v", err)
	}
	if got.Color != "#00ff00" {
		t.Errorf("color: expected #00ff00, got %s", got.Color)
	}

	if err := store.DeleteBus(ctx, bus.ID); err != nil {
		t.Fatalf("DeleteBus failed: %v", err)
	}
	if _, err := store.GetBus(ctx, bus.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListBusesSortedByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		if err := store.CreateBus(ctx, &models.Bus{Name: name}); err != nil {
			t.Fatalf("CreateBus failed: %v", err)
		}
	}

	buses, err := store.ListBuses(ctx)
	if err != nil {
		t.Fatalf("ListBuses failed: %v", err)
	}

	var names []string
	for _, bus := range buses {
		names = append(names, bus.Name)
	}
	if !slices.Equal(names, []string{"Alpha", "Bravo", "Charlie"}) {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestBusUnitMemberOrderRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	unit := &models.BusUnit{
		BusID:   "bus-1",
		Mentors: []string{"m2", "m1", "m3"},
		Clients: []string{"c1", "c2"},
	}
	if err := store.CreateBusUnit(ctx, unit); err != nil {
		t.Fatalf("CreateBusUnit failed: %v", err)
	}

	got, err := store.GetBusUnit(ctx, unit.ID)
	if err != nil {
		t.Fatalf("GetBusUnit failed: %v", err)
	}
	if !slices.Equal(got.Mentors, []string{"m2", "m1", "m3"}) {
		t.Errorf("mentors order: expected [m2 m1 m3], got %v", got.Mentors)
	}
	if !slices.Equal(got.Clients, []string{"c1", "c2"}) {
		t.Errorf("clients: expected [c1 c2], got %v", got.Clients)
	}

	got.Mentors = []string{"m9"}
	if err := store.UpdateBusUnit(ctx, got); err != nil {
		t.Fatalf("UpdateBusUnit failed: %v", err)
	}
	updated, err := store.GetBusUnit(ctx, unit.ID)
	if err != nil {
		t.Fatalf("GetBusUnit after update failed: %v", err)
	}
	if !slices.Equal(updated.Mentors, []string{"m9"}) {
		t.Errorf("mentors: expected [m9], got %v", updated.Mentors)
	}
}

func TestWorkdaySlotOrderRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	workday := &models.Workday{
		Date: "2024-03-18",
		Slots: models.Slots{
			MorningBusses: []string{"u3", "u1", "u2", "u1"},
			EveningBusses: []string{"u2"},
		},
	}
	if err := store.CreateWorkday(ctx, workday); err != nil {
		t.Fatalf("CreateWorkday failed: %v", err)
	}

	got, err := store.GetWorkday(ctx, workday.ID)
	if err != nil {
		t.Fatalf("GetWorkday failed: %v", err)
	}
	if !slices.Equal(got.MorningBusses, []string{"u3", "u1", "u2", "u1"}) {
		t.Errorf("morning order not preserved: %v", got.MorningBusses)
	}
	if !slices.Equal(got.EveningBusses, []string{"u2"}) {
		t.Errorf("evening: expected [u2], got %v", got.EveningBusses)
	}

	got.RemoveUnit("u1")
	if err := store.UpdateWorkday(ctx, got); err != nil {
		t.Fatalf("UpdateWorkday failed: %v", err)
	}
	updated, err := store.GetWorkday(ctx, workday.ID)
	if err != nil {
		t.Fatalf("GetWorkday after update failed: %v", err)
	}
	if !slices.Equal(updated.MorningBusses, []string{"u3", "u2"}) {
		t.Errorf("morning after removal: expected [u3 u2], got %v", updated.MorningBusses)
	}
}

func TestFindSchedulesUsingUnit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	w1 := &models.Workday{Date: "2024-03-18", Slots: models.Slots{MorningBusses: []string{"u1", "u2"}}}
	w2 := &models.Workday{Date: "2024-03-19", Slots: models.Slots{EveningBusses: []string{"u1"}}}
	w3 := &models.Workday{Date: "2024-03-20", Slots: models.Slots{MorningBusses: []string{"u2"}}}
	for _, w := range []*models.Workday{w1, w2, w3} {
		if err := store.CreateWorkday(ctx, w); err != nil {
			t.Fatalf("CreateWorkday failed: %v", err)
		}
	}
	tmpl := &models.WorkdayTemplate{Name: "Week A", Slots: models.Slots{EveningBusses: []string{"u1", "u1"}}}
	if err := store.CreateWorkdayTemplate(ctx, tmpl); err != nil {
		t.Fatalf("CreateWorkdayTemplate failed: %v", err)
	}

	workdays, err := store.FindWorkdaysUsing(ctx, "u1")
	if err != nil {
		t.Fatalf("FindWorkdaysUsing failed: %v", err)
	}
	if len(workdays) != 2 {
		t.Fatalf("expected 2 workdays using u1, got %d", len(workdays))
	}

	templates, err := store.FindTemplatesUsing(ctx, "u1")
	if err != nil {
		t.Fatalf("FindTemplatesUsing failed: %v", err)
	}
	// u1 appears twice in one template: one document, counted once.
	if len(templates) != 1 {
		t.Fatalf("expected 1 template using u1, got %d", len(templates))
	}

	// Results reflect the store as it is now, not as it was.
	w2.RemoveUnit("u1")
	if err := store.UpdateWorkday(ctx, w2); err != nil {
		t.Fatalf("UpdateWorkday failed: %v", err)
	}
	workdays, err = store.FindWorkdaysUsing(ctx, "u1")
	if err != nil {
		t.Fatalf("FindWorkdaysUsing failed: %v", err)
	}
	if len(workdays) != 1 || workdays[0].ID != w1.ID {
		t.Errorf("expected only %s to use u1, got %d results", w1.ID, len(workdays))
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	birthday := time.Date(1995, 6, 14, 0, 0, 0, 0, time.UTC)
	user := &models.User{
		Email:     "jan@example.com",
		Salt:      "abcd",
		Hash:      "ef01",
		FirstName: "Jan",
		LastName:  "Peeters",
		Address:   models.Address{Street: "Kerkstraat 1", PostalCode: "2000", City: "Antwerpen"},
		Admin:     true,
		Birthday:  birthday,
		AbsentDates: []time.Time{
			time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		},
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Email != "jan@example.com" || !got.Admin {
		t.Errorf("unexpected user: %+v", got)
	}
	if !got.Birthday.Equal(birthday) {
		t.Errorf("birthday: expected %v, got %v", birthday, got.Birthday)
	}
	if len(got.AbsentDates) != 2 || !got.AbsentDates[0].Equal(user.AbsentDates[0]) {
		t.Errorf("absent dates not preserved: %v", got.AbsentDates)
	}
	if got.Salt != "abcd" || got.Hash != "ef01" {
		t.Error("credentials should round trip through the store")
	}
}

func TestGetUserByEmailMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	user, err := store.GetUserByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

func TestCreateUserDuplicateEmailFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &models.User{Email: "dup@example.com", Salt: "s", Hash: "h", FirstName: "A", LastName: "B"}
	if err := store.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	second := &models.User{Email: "dup@example.com", Salt: "s", Hash: "h", FirstName: "C", LastName: "D"}
	if err := store.CreateUser(ctx, second); err == nil {
		t.Error("expected unique constraint violation for duplicate email")
	}
}

func TestListUsersFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	users := []*models.User{
		{Email: "b@example.com", Salt: "s", Hash: "h", FirstName: "Zoe", LastName: "L", Admin: true},
		{Email: "a@example.com", Salt: "s", Hash: "h", FirstName: "Amir", LastName: "K", Admin: true},
		{Email: "c@example.com", Salt: "s", Hash: "h", FirstName: "Bart", LastName: "M"},
	}
	for _, u := range users {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	all, err := store.ListUsers(ctx, storage.AllUsers)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(all) != 3 || all[0].Email != "a@example.com" {
		t.Errorf("expected 3 users sorted by email, got %d starting with %s", len(all), all[0].Email)
	}

	mentors, err := store.ListUsers(ctx, storage.MentorsOnly)
	if err != nil {
		t.Fatalf("ListUsers mentors failed: %v", err)
	}
	if len(mentors) != 2 || mentors[0].FirstName != "Amir" {
		t.Errorf("expected 2 mentors sorted by first name, got %+v", mentors)
	}

	clients, err := store.ListUsers(ctx, storage.ClientsOnly)
	if err != nil {
		t.Fatalf("ListUsers clients failed: %v", err)
	}
	if len(clients) != 1 || clients[0].FirstName != "Bart" {
		t.Errorf("expected only Bart, got %+v", clients)
	}
}
