// Package server exposes the HTTP/JSON surface. Route paths are kept
// exactly as the existing clients expect them.
//
// Handlers are plain functions receiving the authenticated principal as an
// explicit parameter; nothing is stashed on the request. A handler returns
// an error and the central responder classifies it: validation errors map
// to 400 with a message, permission failures to a bare 401, and everything
// else, missing records included, falls through as a generic 500.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kolv02/backend/internal/auth"
	"github.com/kolv02/backend/internal/service"
	"github.com/kolv02/backend/internal/storage"
)

// Server wires the services to the HTTP routes.
type Server struct {
	busses *service.BusService
	units  *service.UnitService
	users  *service.UserService
	tokens *auth.Manager
}

// New creates a Server over the given store and token manager.
func New(store storage.Store, tokens *auth.Manager) *Server {
	return &Server{
		busses: service.NewBusService(store),
		units:  service.NewUnitService(store),
		users:  service.NewUserService(store, tokens),
		tokens: tokens,
	}
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Busses
	mux.HandleFunc("GET /busses", s.withAuth(s.listBusses))
	mux.HandleFunc("GET /busses/id/{busId}", s.withAuth(s.getBus))
	mux.HandleFunc("POST /busses", s.withAdmin(s.createBus))
	mux.HandleFunc("PATCH /busses/id/{busId}", s.withAdmin(s.patchBus))
	mux.HandleFunc("DELETE /busses/id/{busId}", s.withAdmin(s.deleteBus))

	// Bus units
	mux.HandleFunc("GET /busses/units", s.withAuth(s.listUnits))
	mux.HandleFunc("GET /busses/units/id/{busUnitId}", s.withAuth(s.getUnit))
	mux.HandleFunc("POST /busses/units", s.withAdmin(s.createUnit))
	mux.HandleFunc("DELETE /busses/units/id/{busUnitId}/force", s.withAdmin(s.forceDeleteUnit))
	mux.HandleFunc("PATCH /busses/units/id/{busUnitId}/force", s.withAdmin(s.forcePatchUnit))
	mux.HandleFunc("DELETE /busses/units/id/{busUnitId}", s.withAdmin(s.deleteUnitScoped))
	mux.HandleFunc("PATCH /busses/units/id/{busUnitId}", s.withAdmin(s.patchUnitScoped))

	// Users
	mux.HandleFunc("GET /users", s.handle(s.listUsers))
	mux.HandleFunc("GET /users/mentors", s.handle(s.listMentors))
	mux.HandleFunc("GET /users/clients", s.handle(s.listClients))
	mux.HandleFunc("GET /users/id/{userId}", s.handle(s.getUser))
	mux.HandleFunc("GET /users/{email}", s.handle(s.getUserByEmail))
	mux.HandleFunc("POST /users/isValidEmail", s.handle(s.isValidEmail))
	mux.HandleFunc("POST /users/register", s.handle(s.register))
	mux.HandleFunc("POST /users/login", s.handle(s.login))
	mux.HandleFunc("PATCH /users/id/{userId}", s.withAuth(s.patchUser))
	mux.HandleFunc("POST /users/addAbsentDate/{userId}", s.withAdmin(s.addAbsentDate))
	mux.HandleFunc("DELETE /users/id/{userId}", s.withAdmin(s.deleteUser))

	// Operational
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
