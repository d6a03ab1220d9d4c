package server

import (
	"net/http"
	"time"

	"github.com/kolv02/backend/internal/auth"
	"github.com/kolv02/backend/internal/models"
	"github.com/kolv02/backend/internal/service"
)

type registerRequest struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Picture   string         `json:"picture"`
	Address   models.Address `json:"address"`
	Admin     bool           `json:"admin"`
	Birthday  time.Time      `json:"birthday"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailCheckRequest struct {
	Email    string `json:"email"`
	OldEmail string `json:"oldEmail"`
}

type userPatchRequest struct {
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Email       string         `json:"email"`
	Picture     string         `json:"picture"`
	Address     models.Address `json:"address"`
	Admin       bool           `json:"admin"`
	Birthday    time.Time      `json:"birthday"`
	AbsentDates []time.Time    `json:"absentDates"`
}

type absentDateRequest struct {
	Date time.Time `json:"date"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := s.users.List(r.Context())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, users)
}

func (s *Server) listMentors(w http.ResponseWriter, r *http.Request) error {
	users, err := s.users.Mentors(r.Context())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, users)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) error {
	users, err := s.users.Clients(r.Context())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) error {
	user, err := s.users.Get(r.Context(), r.PathValue("userId"))
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, user)
}

func (s *Server) getUserByEmail(w http.ResponseWriter, r *http.Request) error {
	user, err := s.users.GetByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, user)
}

func (s *Server) isValidEmail(w http.ResponseWriter, r *http.Request) error {
	var req emailCheckRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	ok, err := s.users.IsValidEmail(r.Context(), req.Email, req.OldEmail)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, ok)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	registered, err := s.users.Register(r.Context(), service.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Picture:   req.Picture,
		Address:   req.Address,
		Admin:     req.Admin,
		Birthday:  req.Birthday,
	})
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, registered)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	authed, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, authed)
}

func (s *Server) patchUser(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	var req userPatchRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	user, err := s.users.Patch(r.Context(), r.PathValue("userId"), service.UserPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Picture:     req.Picture,
		Address:     req.Address,
		Admin:       req.Admin,
		Birthday:    req.Birthday,
		AbsentDates: req.AbsentDates,
	})
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, user)
}

func (s *Server) addAbsentDate(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	var req absentDateRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	user, err := s.users.AddAbsentDate(r.Context(), r.PathValue("userId"), req.Date)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	return s.users.Delete(r.Context(), r.PathValue("userId"))
}
