// Package http provides the HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data. It reduces code duplication by providing reusable helpers for JSON
// decoding, amount parsing, and input sanitization patterns.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tripledger/internal/core"
)

// maxBodyBytes caps request bodies to keep decode costs bounded.
const maxBodyBytes = 1 << 20

// Amount accepts a monetary value either as a JSON number or as a string
// ("12.50", "12,50"). String values go through the same parser used
// everywhere else so separator and rounding rules stay uniform.
type Amount struct {
	Value float64
	Set   bool
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		return nil
	}
	if s[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v, err := core.ParseAmount(raw)
		if err != nil {
			return err
		}
		a.Value = v
		a.Set = true
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if err := core.ValidateAmount(v); err != nil {
		return err
	}
	a.Value = v
	a.Set = true
	return nil
}

// DecodeJSON reads and decodes a JSON request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

const dateLayout = "2006-01-02"

// parseDate parses an optional "YYYY-MM-DD" value. An empty string yields
// the zero Date, which downstream code treats as "no date".
func parseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return core.Date{Time: t}, nil
}

type createTripRequest struct {
	Name         string  `json:"name"`
	Currency     string  `json:"currency"`
	TargetBudget *Amount `json:"target_budget"`
}

func (req createTripRequest) toTrip() core.Trip {
	t := core.Trip{
		Name:     sanitizeInput(req.Name),
		Currency: strings.ToUpper(sanitizeInput(req.Currency)),
	}
	if req.TargetBudget != nil && req.TargetBudget.Set {
		v := req.TargetBudget.Value
		t.TargetBudget = &v
	}
	return t
}

type addMemberRequest struct {
	Name string `json:"name"`
}

type createExpenseRequest struct {
	Title    string `json:"title"`
	Amount   Amount `json:"amount"`
	Currency string `json:"currency"`
	PaidBy   string `json:"paid_by"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

func (req createExpenseRequest) toExpense(tripID string) (core.Expense, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	if !req.Amount.Set {
		return core.Expense{}, errors.New("missing amount")
	}
	return core.Expense{
		TripID:   tripID,
		Title:    sanitizeInput(req.Title),
		Amount:   req.Amount.Value,
		Currency: strings.ToUpper(sanitizeInput(req.Currency)),
		PaidBy:   sanitizeInput(req.PaidBy),
		Date:     date,
		Category: sanitizeInput(req.Category),
	}, nil
}

type plannedCostRequest struct {
	Title    string `json:"title"`
	Amount   Amount `json:"amount"`
	Currency string `json:"currency"`
	Date     string `json:"date"`
}

func (req plannedCostRequest) toPlannedCost() (core.PlannedCostItem, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return core.PlannedCostItem{}, err
	}
	if !req.Amount.Set {
		return core.PlannedCostItem{}, errors.New("missing amount")
	}
	return core.PlannedCostItem{
		Title:           sanitizeInput(req.Title),
		EstimatedAmount: req.Amount.Value,
		Currency:        strings.ToUpper(sanitizeInput(req.Currency)),
		Date:            date,
	}, nil
}

type setBudgetRequest struct {
	Target Amount `json:"target"`
}
