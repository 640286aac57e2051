package core

import (
	"errors"
	"strings"
	"testing"
)

func TestMemberValidate(t *testing.T) {
	tests := []struct {
		name    string
		member  Member
		wantErr error
	}{
		{"valid", Member{ID: "m1", Name: "Anna"}, nil},
		{"missing id", Member{Name: "Anna"}, ErrEmptyMemberID},
		{"blank id", Member{ID: "   ", Name: "Anna"}, ErrEmptyMemberID},
		{"missing name", Member{ID: "m1"}, ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.member.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Title:    "Hotel",
		Amount:   240.00,
		Currency: "EUR",
		PaidBy:   "m1",
		Date:     NewDate(2025, 6, 10),
		Category: "lodging",
		Source:   SourceManual,
	}

	t.Run("valid expense", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("empty title", func(t *testing.T) {
		e := valid
		e.Title = "  "
		if err := e.Validate(); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("Validate() = %v, want ErrEmptyTitle", err)
		}
	})

	t.Run("title too long", func(t *testing.T) {
		e := valid
		e.Title = strings.Repeat("x", 201)
		if err := e.Validate(); err == nil {
			t.Error("Validate() = nil, want error")
		}
	})

	t.Run("negative amount", func(t *testing.T) {
		e := valid
		e.Amount = -5
		if err := e.Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Validate() = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("zero amount is allowed", func(t *testing.T) {
		e := valid
		e.Amount = 0
		if err := e.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("missing payer", func(t *testing.T) {
		e := valid
		e.PaidBy = ""
		if err := e.Validate(); !errors.Is(err, ErrEmptyPayer) {
			t.Errorf("Validate() = %v, want ErrEmptyPayer", err)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		e := valid
		e.Source = "imported"
		if err := e.Validate(); !errors.Is(err, ErrInvalidSource) {
			t.Errorf("Validate() = %v, want ErrInvalidSource", err)
		}
	})
}

func TestPlannedCostItemValidate(t *testing.T) {
	p := PlannedCostItem{Title: "Museum tickets", EstimatedAmount: 45}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	p.EstimatedAmount = -1
	if err := p.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Validate() = %v, want ErrInvalidAmount", err)
	}

	p = PlannedCostItem{Title: "", EstimatedAmount: 10}
	if err := p.Validate(); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Validate() = %v, want ErrEmptyTitle", err)
	}
}

func TestBudgetStatusHasTarget(t *testing.T) {
	var b BudgetStatus
	if b.HasTarget() {
		t.Error("HasTarget() = true for nil target")
	}
	target := 500.0
	b.Target = &target
	if !b.HasTarget() {
		t.Error("HasTarget() = false for set target")
	}
}
