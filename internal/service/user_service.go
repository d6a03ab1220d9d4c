package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/kolv02/backend/internal/auth"
	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/storage"
)

// UserService implements registration, login, and user CRUD.
type UserService struct {
	store  storage.Store
	tokens *auth.Manager
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Store, tokens *auth.Manager) *UserService {
	return &UserService{store: store, tokens: tokens}
}

// AuthenticatedUser is a user together with a freshly issued session token,
// returned by registration and login.
type AuthenticatedUser struct {
	*models.User
	Token string `json:"token"`
}

// Registration carries the fields accepted by Register.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Picture   string
	Address   models.Address
	Admin     bool
	Birthday  time.Time
}

// Register creates a new user account and issues a token. The email is
// trimmed and lowercased before validation and storage, so duplicate
// detection is case-insensitive.
func (s *UserService) Register(ctx context.Context, reg Registration) (*AuthenticatedUser, error) {
	if reg.Email == "" || reg.Password == "" || reg.FirstName == "" ||
		reg.LastName == "" || reg.Birthday.IsZero() {
		return nil, ErrMissingFields
	}
	if err := auth.CheckPasswordStrength(reg.Password); err != nil {
		return nil, err
	}

	email := normalizeEmail(reg.Email)
	if !govalidator.IsEmail(email) {
		return nil, ErrInvalidEmail
	}
	if existing, err := s.store.GetUserByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailExists
	}

	salt, hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Salt:      salt,
		Hash:      hash,
		FirstName: strings.TrimSpace(reg.FirstName),
		LastName:  strings.TrimSpace(reg.LastName),
		Picture:   reg.Picture,
		Address:   reg.Address,
		Admin:     reg.Admin,
		Birthday:  reg.Birthday,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	return &AuthenticatedUser{User: user, Token: token}, nil
}

// Login verifies the credentials and issues a token. Verification failures
// surface the verifier's reason (unknown email or wrong password).
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthenticatedUser, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, auth.ErrUnknownEmail
	}
	if err := auth.VerifyPassword(user, password); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	slog.Info("User logged in", "user_id", user.ID)
	return &AuthenticatedUser{User: user, Token: token}, nil
}

// IsValidEmail reports whether the email can be used for an account:
// not yet taken and well-formed. An unchanged email (equal to oldEmail)
// is always acceptable.
func (s *UserService) IsValidEmail(ctx context.Context, email, oldEmail string) (bool, error) {
	if email == "" {
		return false, ErrMissingFields
	}
	if oldEmail != "" && email == oldEmail {
		return true, nil
	}

	normalized := normalizeEmail(email)
	existing, err := s.store.GetUserByEmail(ctx, normalized)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	return govalidator.IsEmail(normalized), nil
}

// List returns all users sorted by email.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx, storage.AllUsers)
}

// Mentors returns users with the admin flag, sorted by first name.
func (s *UserService) Mentors(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx, storage.MentorsOnly)
}

// Clients returns users without the admin flag, sorted by first name.
func (s *UserService) Clients(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx, storage.ClientsOnly)
}

// Get returns one user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// GetByEmail returns one user by exact email match.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

// UserPatch carries the patchable user fields. As with UnitPatch, a field
// applies only when set to a non-zero value: false can never clear the
// admin flag and an empty list can never clear absentDates.
type UserPatch struct {
	FirstName   string
	LastName    string
	Email       string
	Picture     string
	Address     models.Address
	Admin       bool
	Birthday    time.Time
	AbsentDates []time.Time
}

// Patch merges the provided fields onto an existing user.
func (s *UserService) Patch(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != "" {
		user.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		user.LastName = patch.LastName
	}
	if patch.Email != "" {
		user.Email = normalizeEmail(patch.Email)
	}
	if patch.Picture != "" {
		user.Picture = patch.Picture
	}
	if patch.Address.Street != "" {
		user.Address.Street = patch.Address.Street
	}
	if patch.Address.PostalCode != "" {
		user.Address.PostalCode = patch.Address.PostalCode
	}
	if patch.Address.City != "" {
		user.Address.City = patch.Address.City
	}
	if patch.Admin {
		user.Admin = true
	}
	if !patch.Birthday.IsZero() {
		user.Birthday = patch.Birthday
	}
	if len(patch.AbsentDates) > 0 {
		user.AbsentDates = patch.AbsentDates
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// AddAbsentDate appends a day to the user's absent list. Adding the same
// day twice is rejected.
func (s *UserService) AddAbsentDate(ctx context.Context, id string, date time.Time) (*models.User, error) {
	if date.IsZero() {
		return nil, ErrMissingFields
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, existing := range user.AbsentDates {
		if sameDay(existing, date) {
			return nil, ErrDateAlreadyPresent
		}
	}
	user.AbsentDates = append(user.AbsentDates, date)

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete is permanently unimplemented.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return ErrNotSupported
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
