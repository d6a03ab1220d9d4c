package server

import (
	"net/http"

	"github.com/kolv02/backend/internal/auth"
	"github.com/kolv02/backend/internal/service"
)

type busRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type unitRequest struct {
	Bus     string   `json:"bus"`
	Mentors []string `json:"mentors"`
	Clients []string `json:"clients"`
}

// scopedUnitRequest adds the schedule scope for the non-force delete and
// patch operations.
type scopedUnitRequest struct {
	unitRequest
	WorkdayID         string `json:"workdayId"`
	WorkdayTemplateID string `json:"workdayTemplateId"`
}

func (req scopedUnitRequest) scope() service.ScheduleScope {
	return service.ScheduleScope{
		WorkdayID:  req.WorkdayID,
		TemplateID: req.WorkdayTemplateID,
	}
}

func (req unitRequest) patch() service.UnitPatch {
	return service.UnitPatch{
		BusID:   req.Bus,
		Mentors: req.Mentors,
		Clients: req.Clients,
	}
}

func (s *Server) listBusses(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	busses, err := s.busses.List(r.Context())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, busses)
}

func (s *Server) getBus(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	bus, err := s.busses.Get(r.Context(), r.PathValue("busId"))
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, bus)
}

func (s *Server) createBus(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	var req busRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	bus, err := s.busses.Create(r.Context(), req.Name, req.Color)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, bus)
}

func (s *Server) patchBus(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	var req busRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	bus, err := s.busses.Patch(r.Context(), r.PathValue("busId"), req.Name, req.Color)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, bus)
}

func (s *Server) deleteBus(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	if err := s.busses.Delete(r.Context(), r.PathValue("busId")); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, true)
}

func (s *Server) listUnits(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	units, err := s.units.List(r.Context())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, units)
}

func (s *Server) getUnit(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	unit, err := s.units.Get(r.Context(), r.PathValue("busUnitId"))
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, unit)
}

func (s *Server) createUnit(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	var req unitRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	unit, err := s.units.Create(r.Context(), req.Bus, req.Mentors, req.Clients)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, unit)
}

func (s *Server) forceDeleteUnit(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	if err := s.units.ForceDelete(r.Context(), r.PathValue("busUnitId")); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, true)
}

func (s *Server) forcePatchUnit(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	var req unitRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	unit, err := s.units.ForcePatch(r.Context(), r.PathValue("busUnitId"), req.patch())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, unit)
}

func (s *Server) deleteUnitScoped(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	var req scopedUnitRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if err := s.units.DeleteScoped(r.Context(), r.PathValue("busUnitId"), req.scope()); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, true)
}

func (s *Server) patchUnitScoped(w http.ResponseWriter, r *http.Request, _ *auth.Claims) error {
	var req scopedUnitRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	unit, err := s.units.PatchScoped(r.Context(), r.PathValue("busUnitId"), req.scope(), req.patch())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, unit)
}
