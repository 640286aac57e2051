package http

import (
	"log/slog"
	"net/http"
	"time"

	"tripledger/internal/core"
)

// Response DTOs keep the wire format stable and independent of core types.
type (
	balanceResponse struct {
		MemberID string  `json:"member_id"`
		Name     string  `json:"name"`
		Paid     float64 `json:"paid"`
		Share    float64 `json:"share"`
		Net      float64 `json:"net"`
	}

	settlementResponse struct {
		FromID   string  `json:"from_id"`
		FromName string  `json:"from_name"`
		ToID     string  `json:"to_id"`
		ToName   string  `json:"to_name"`
		Amount   float64 `json:"amount"`
	}

	budgetResponse struct {
		Target        *float64 `json:"target"`
		TotalActual   float64  `json:"total_actual"`
		TotalPlanned  float64  `json:"total_planned"`
		TotalCombined float64  `json:"total_combined"`
		OverBudget    bool     `json:"over_budget"`
		Overage       float64  `json:"overage"`
		Progress      float64  `json:"progress"`
	}

	ledgerReportResponse struct {
		TripID      string               `json:"trip_id"`
		Currency    string               `json:"currency"`
		TotalSpent  float64              `json:"total_spent"`
		Balances    []balanceResponse    `json:"balances"`
		Settlements []settlementResponse `json:"settlements"`
		Budget      budgetResponse       `json:"budget"`
		ComputedAt  time.Time            `json:"computed_at"`
	}
)

func toBudgetResponse(b core.BudgetStatus) budgetResponse {
	return budgetResponse{
		Target:        b.Target,
		TotalActual:   core.Round2(b.TotalActual),
		TotalPlanned:  core.Round2(b.TotalPlanned),
		TotalCombined: core.Round2(b.TotalCombined),
		OverBudget:    b.OverBudget,
		Overage:       core.Round2(b.Overage),
		Progress:      b.Progress,
	}
}

func toReportResponse(r core.LedgerReport) ledgerReportResponse {
	resp := ledgerReportResponse{
		TripID:      r.TripID,
		Currency:    r.Currency,
		TotalSpent:  core.Round2(r.TotalSpent),
		Balances:    make([]balanceResponse, 0, len(r.Balances)),
		Settlements: make([]settlementResponse, 0, len(r.Settlements)),
		Budget:      toBudgetResponse(r.Budget),
		ComputedAt:  r.ComputedAt,
	}
	for _, b := range r.Balances {
		resp.Balances = append(resp.Balances, balanceResponse{
			MemberID: b.MemberID,
			Name:     b.Name,
			Paid:     core.Round2(b.Paid),
			Share:    core.Round2(b.Share),
			Net:      core.Round2(b.Net),
		})
	}
	for _, t := range r.Settlements {
		resp.Settlements = append(resp.Settlements, settlementResponse{
			FromID:   t.FromID,
			FromName: t.FromName,
			ToID:     t.ToID,
			ToName:   t.ToName,
			Amount:   t.Amount,
		})
	}
	return resp
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Payload(toReportResponse(report)).Write(w)
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Payload(toReportResponse(report).Balances).Write(w)
}

func (s *Server) handleGetSettlements(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Payload(toReportResponse(report).Settlements).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Payload(toBudgetResponse(report.Budget)).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	var req setBudgetRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if !req.Target.Set {
		UnprocessableEntityError("missing target").Write(w)
		return
	}

	if err := s.ledger.SetBudget(r.Context(), tripID, req.Target.Value); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReport(tripID)
	slog.InfoContext(r.Context(), "Budget set", "trip_id", tripID, "target", req.Target.Value)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleClearBudget(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	if err := s.ledger.ClearBudget(r.Context(), tripID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReport(tripID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
