package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SourceManual  ExpenseSource = "manual"
	SourcePlanned ExpenseSource = "planned"
)

type (
	// ExpenseSource is a closed set of origins for tracked spend.
	ExpenseSource string

	Date struct {
		time.Time
	}

	// Trip is the unit every roster, expense, and budget hangs off.
	// TargetBudget is nil until a budget is set.
	Trip struct {
		ID           string
		Name         string
		Currency     string
		TargetBudget *float64
	}

	// Member is a trip participant. Identity is immutable; the roster is
	// owned by the trip store, the ledger only reads it.
	Member struct {
		ID   string
		Name string
	}

	// Expense is a recorded cost paid by a single member on behalf of the
	// whole group. Amount is in currency units, uniform per trip.
	Expense struct {
		ID       string
		TripID   string
		Title    string
		Amount   float64
		Currency string
		PaidBy   string // Member ID
		Date     Date
		Category string
		Source   ExpenseSource
	}

	// PlannedCostItem is forecast spend derived from itinerary planning.
	// It has no payer; it only feeds budget reconciliation.
	PlannedCostItem struct {
		ID              string
		Title           string
		EstimatedAmount float64
		Currency        string
		Date            Date
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyPayer    = errors.New("empty payer")
	ErrEmptyMemberID = errors.New("empty member id")
	ErrEmptyName     = errors.New("empty member name")
	ErrUnknownPayer  = errors.New("payer not in member roster")
	ErrMixedCurrency = errors.New("mixed currencies in one computation")
	ErrUnbalancedSum = errors.New("balances do not sum to zero")
	ErrInvalidSource = errors.New("invalid expense source")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the date was never set. Planned items may omit it.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (s ExpenseSource) Validate() error {
	switch s {
	case SourceManual, SourcePlanned:
		return nil
	default:
		return ErrInvalidSource
	}
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrEmptyMemberID
	}
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(e.PaidBy) == "" {
		return ErrEmptyPayer
	}
	if e.Source != "" {
		if err := e.Source.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p PlannedCostItem) Validate() error {
	if len(strings.TrimSpace(p.Title)) == 0 {
		return ErrEmptyTitle
	}
	if err := ValidateAmount(p.EstimatedAmount); err != nil {
		return err
	}
	return nil
}
