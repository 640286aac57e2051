package http

import (
	"log/slog"
	"net/http"

	"tripledger/internal/core"
)

type idResponse struct {
	ID string `json:"id"`
}

type memberResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	trip := req.toTrip()
	if trip.Name == "" {
		UnprocessableEntityError("missing trip name").Write(w)
		return
	}

	id, err := s.ledger.CreateTrip(r.Context(), trip)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Trip created", "trip_id", id, "name", trip.Name)
	NewJSONResponse().Status(http.StatusCreated).Payload(idResponse{ID: id}).Write(w)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	var req addMemberRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	id, err := s.ledger.AddMember(r.Context(), tripID, core.Member{Name: sanitizeInput(req.Name)})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReport(tripID)
	NewJSONResponse().Status(http.StatusCreated).Payload(idResponse{ID: id}).Write(w)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	snap, err := s.ledger.Snapshot(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	members := make([]memberResponse, 0, len(snap.Members))
	for _, m := range snap.Members {
		members = append(members, memberResponse{ID: m.ID, Name: m.Name})
	}
	NewJSONResponse().Payload(members).Write(w)
}
