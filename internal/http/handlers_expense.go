package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	var req createExpenseRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	expense, err := req.toExpense(tripID)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	if err := expense.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	id, err := s.ledger.CreateExpense(r.Context(), expense)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReport(tripID)
	slog.InfoContext(r.Context(), "Expense created",
		"trip_id", tripID, "expense_id", id, "amount", expense.Amount)
	NewJSONResponse().Status(http.StatusCreated).Payload(idResponse{ID: id}).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")
	expenseID := r.PathValue("expenseID")

	if err := s.ledger.DeleteExpense(r.Context(), tripID, expenseID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReport(tripID)
	slog.InfoContext(r.Context(), "Expense deleted", "trip_id", tripID, "expense_id", expenseID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleAddPlannedCost(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	var req plannedCostRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	item, err := req.toPlannedCost()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	if err := item.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	id, err := s.ledger.AddPlannedCost(r.Context(), tripID, item)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReport(tripID)
	NewJSONResponse().Status(http.StatusCreated).Payload(idResponse{ID: id}).Write(w)
}
