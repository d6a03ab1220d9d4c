package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/kolv02/backend/internal/auth"
	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/storage"
	"github.com/kolv02/backend/internal/storage/sqlite"
)

type testEnv struct {
	server *httptest.Server
	store  storage.Store
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	tokens := auth.NewManager("test-secret", time.Hour)
	server := httptest.NewServer(New(store, tokens).Handler())

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{server: server, store: store}
}

// do sends a JSON request, with a bearer token when one is given.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// registerUser registers a user through the API and returns its token.
func (e *testEnv) registerUser(t *testing.T, email string, admin bool) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/users/register", "", map[string]any{
		"email":     email,
		"password":  "horse-battery-staple-77",
		"firstName": "Test",
		"lastName":  "User",
		"admin":     admin,
		"birthday":  "1990-01-01T00:00:00Z",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register failed with status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	decodeInto(t, resp, &body)
	if body.Token == "" {
		t.Fatal("expected a token")
	}
	return body.Token
}

func TestBusRoutesRequireAuth(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodGet, "/busses", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestBusWriteRequiresAdmin(t *testing.T) {
	env := setupTestServer(t)
	clientToken := env.registerUser(t, "client@example.com", false)

	resp := env.do(t, http.MethodPost, "/busses", clientToken, map[string]string{"name": "Bus 1"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-admin, got %d", resp.StatusCode)
	}
}

func TestBusCRUDOverHTTP(t *testing.T) {
	env := setupTestServer(t)
	admin := env.registerUser(t, "admin@example.com", true)

	// Missing name rejected.
	resp := env.do(t, http.MethodPost, "/busses", admin, map[string]string{"color": "#fff"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/busses", admin, map[string]string{"name": "Bus 1", "color": "#ff0000"})
	var bus models.Bus
	decodeInto(t, resp, &bus)
	if bus.ID == "" || bus.Name != "Bus 1" {
		t.Fatalf("unexpected bus: %+v", bus)
	}

	resp = env.do(t, http.MethodPatch, "/busses/id/"+bus.ID, admin, map[string]string{"color": "#00ff00"})
	var patched models.Bus
	decodeInto(t, resp, &patched)
	if patched.Color != "#00ff00" || patched.Name != "Bus 1" {
		t.Errorf("unexpected patched bus: %+v", patched)
	}

	resp = env.do(t, http.MethodDelete, "/busses/id/"+bus.ID, admin, nil)
	var deleted bool
	decodeInto(t, resp, &deleted)
	if !deleted {
		t.Error("expected delete to respond true")
	}
}

func TestUserListingsNeverExposeCredentials(t *testing.T) {
	env := setupTestServer(t)
	env.registerUser(t, "jan@example.com", true)

	for _, path := range []string{"/users", "/users/mentors", "/users/jan@example.com"} {
		resp := env.do(t, http.MethodGet, path, "", nil)
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		if bytes.Contains(raw, []byte(`"salt"`)) || bytes.Contains(raw, []byte(`"hash"`)) {
			t.Errorf("%s leaked credential fields: %s", path, raw)
		}
	}
}

func TestLoginFailuresReportReason(t *testing.T) {
	env := setupTestServer(t)
	env.registerUser(t, "jan@example.com", false)

	resp := env.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "jan@example.com",
		"password": "wrong-password-123",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	var body struct {
		Message string `json:"message"`
	}
	decodeInto(t, resp, &body)
	if body.Message == "" {
		t.Error("expected a failure reason")
	}
}

func TestIsValidEmail(t *testing.T) {
	env := setupTestServer(t)
	env.registerUser(t, "taken@example.com", false)

	tests := []struct {
		body map[string]string
		want bool
	}{
		{map[string]string{"email": "free@example.com"}, true},
		{map[string]string{"email": "taken@example.com"}, false},
		{map[string]string{"email": "taken@example.com", "oldEmail": "taken@example.com"}, true},
		{map[string]string{"email": "not-an-email"}, false},
	}
	for _, tt := range tests {
		resp := env.do(t, http.MethodPost, "/users/isValidEmail", "", tt.body)
		var got bool
		decodeInto(t, resp, &got)
		if got != tt.want {
			t.Errorf("isValidEmail(%v): expected %v, got %v", tt.body, tt.want, got)
		}
	}

	resp := env.do(t, http.MethodPost, "/users/isValidEmail", "", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing email, got %d", resp.StatusCode)
	}
}

func TestDeleteUserNotImplemented(t *testing.T) {
	env := setupTestServer(t)
	admin := env.registerUser(t, "admin@example.com", true)

	resp := env.do(t, http.MethodDelete, "/users/id/some-id", admin, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("expected 501, got %d", resp.StatusCode)
	}
}

func TestScopedDeleteRequiresScheduleID(t *testing.T) {
	env := setupTestServer(t)
	admin := env.registerUser(t, "admin@example.com", true)

	resp := env.do(t, http.MethodPost, "/busses/units", admin, map[string]any{"bus": "bus-1"})
	var unit models.BusUnit
	decodeInto(t, resp, &unit)

	resp = env.do(t, http.MethodDelete, "/busses/units/id/"+unit.ID, admin, map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without workdayId/workdayTemplateId, got %d", resp.StatusCode)
	}
}

func TestScopedPatchForksSharedUnitOverHTTP(t *testing.T) {
	env := setupTestServer(t)
	admin := env.registerUser(t, "admin@example.com", true)
	ctx := context.Background()

	resp := env.do(t, http.MethodPost, "/busses/units", admin, map[string]any{
		"bus":     "bus-a",
		"mentors": []string{"m1"},
	})
	var unit models.BusUnit
	decodeInto(t, resp, &unit)

	// Two workdays reference the unit; schedules have no HTTP routes, so
	// seed them through the store.
	target := &models.Workday{Date: "2024-03-18", Slots: models.Slots{MorningBusses: []string{unit.ID}}}
	bystander := &models.Workday{Date: "2024-03-19", Slots: models.Slots{EveningBusses: []string{unit.ID}}}
	for _, w := range []*models.Workday{target, bystander} {
		if err := env.store.CreateWorkday(ctx, w); err != nil {
			t.Fatalf("failed to seed workday: %v", err)
		}
	}

	resp = env.do(t, http.MethodPatch, "/busses/units/id/"+unit.ID, admin, map[string]any{
		"bus":       "bus-b",
		"workdayId": target.ID,
	})
	var fork models.BusUnit
	decodeInto(t, resp, &fork)

	if fork.ID == unit.ID {
		t.Fatal("expected a fork for a shared unit")
	}
	if fork.BusID != "bus-b" || !slices.Equal(fork.Mentors, []string{"m1"}) {
		t.Errorf("unexpected fork: %+v", fork)
	}

	gotTarget, err := env.store.GetWorkday(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetWorkday failed: %v", err)
	}
	if !slices.Equal(gotTarget.MorningBusses, []string{fork.ID}) {
		t.Errorf("target should reference the fork, got %v", gotTarget.MorningBusses)
	}

	gotBystander, err := env.store.GetWorkday(ctx, bystander.ID)
	if err != nil {
		t.Fatalf("GetWorkday failed: %v", err)
	}
	if !slices.Equal(gotBystander.EveningBusses, []string{unit.ID}) {
		t.Errorf("bystander should keep the original, got %v", gotBystander.EveningBusses)
	}
}

func TestUnitReadsArePopulated(t *testing.T) {
	env := setupTestServer(t)
	admin := env.registerUser(t, "admin@example.com", true)

	resp := env.do(t, http.MethodPost, "/busses", admin, map[string]string{"name": "Bus 1"})
	var bus models.Bus
	decodeInto(t, resp, &bus)

	// Resolve the registered admin as a mentor of the unit.
	var mentors []models.User
	mresp := env.do(t, http.MethodGet, "/users/mentors", "", nil)
	decodeInto(t, mresp, &mentors)
	if len(mentors) != 1 {
		t.Fatalf("expected one mentor, got %d", len(mentors))
	}

	resp = env.do(t, http.MethodPost, "/busses/units", admin, map[string]any{
		"bus":     bus.ID,
		"mentors": []string{mentors[0].ID},
	})
	var unit models.BusUnit
	decodeInto(t, resp, &unit)

	resp = env.do(t, http.MethodGet, "/busses/units/id/"+unit.ID, admin, nil)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var populated struct {
		Bus     *models.Bus                  `json:"bus"`
		Mentors []map[string]json.RawMessage `json:"mentors"`
	}
	if err := json.Unmarshal(raw, &populated); err != nil {
		t.Fatalf("failed to decode populated unit: %v", err)
	}
	if populated.Bus == nil || populated.Bus.Name != "Bus 1" {
		t.Errorf("expected populated bus, got %+v", populated.Bus)
	}
	if len(populated.Mentors) != 1 {
		t.Fatalf("expected one populated mentor, got %d", len(populated.Mentors))
	}
	if _, ok := populated.Mentors[0]["salt"]; ok {
		t.Error("populated mentor leaked salt")
	}
	if _, ok := populated.Mentors[0]["hash"]; ok {
		t.Error("populated mentor leaked hash")
	}
}

func TestAddAbsentDateOverHTTP(t *testing.T) {
	env := setupTestServer(t)
	admin := env.registerUser(t, "admin@example.com", true)

	var users []models.User
	resp := env.do(t, http.MethodGet, "/users", "", nil)
	decodeInto(t, resp, &users)
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}

	path := "/users/addAbsentDate/" + users[0].ID
	resp = env.do(t, http.MethodPost, path, admin, map[string]string{"date": "2024-03-18T00:00:00Z"})
	var updated models.User
	decodeInto(t, resp, &updated)
	if len(updated.AbsentDates) != 1 {
		t.Errorf("expected one absent date, got %v", updated.AbsentDates)
	}

	// Same day again.
	resp = env.do(t, http.MethodPost, path, admin, map[string]string{"date": "2024-03-18T12:00:00Z"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate date, got %d", resp.StatusCode)
	}

	// Missing date.
	resp = env.do(t, http.MethodPost, path, admin, map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing date, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
}
