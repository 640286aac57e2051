package http

import (
	"encoding/json"
	"testing"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantSet bool
		wantErr bool
	}{
		{"number", `12.5`, 12.5, true, false},
		{"integer", `40`, 40, true, false},
		{"zero", `0`, 0, true, false},
		{"string with dot", `"12.50"`, 12.5, true, false},
		{"string with comma", `"12,50"`, 12.5, true, false},
		{"string rounds third decimal", `"0.005"`, 0.01, true, false},
		{"null leaves unset", `null`, 0, false, false},
		{"negative number", `-3`, 0, false, true},
		{"negative string", `"-3"`, 0, false, true},
		{"garbage string", `"abc"`, 0, false, true},
		{"bool", `true`, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.input), &a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if a.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", a.Set, tt.wantSet)
			}
			if a.Value != tt.want {
				t.Errorf("Value = %v, want %v", a.Value, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-07-14")
	if err != nil {
		t.Fatalf("parseDate() error = %v", err)
	}
	if d.Year() != 2026 || int(d.Month()) != 7 || d.Day() != 14 {
		t.Errorf("parseDate() = %v", d)
	}

	d, err = parseDate("")
	if err != nil {
		t.Fatalf("parseDate(\"\") error = %v", err)
	}
	if !d.IsEmpty() {
		t.Error("parseDate(\"\") should yield empty date")
	}

	if _, err := parseDate("14/07/2026"); err == nil {
		t.Error("parseDate() accepted wrong layout")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Hotel  ", "Hotel"},
		{"Taxi\x00ride", "Taxiride"},
		{"multi\nline", "multi\nline"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.input); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCreateExpenseRequestToExpense(t *testing.T) {
	req := createExpenseRequest{
		Title:  " Dinner ",
		Amount: Amount{Value: 42.5, Set: true},
		PaidBy: "m1",
		Date:   "2026-07-14",
	}
	e, err := req.toExpense("t1")
	if err != nil {
		t.Fatalf("toExpense() error = %v", err)
	}
	if e.TripID != "t1" || e.Title != "Dinner" || e.Amount != 42.5 || e.PaidBy != "m1" {
		t.Errorf("toExpense() = %+v", e)
	}

	req.Amount = Amount{}
	if _, err := req.toExpense("t1"); err == nil {
		t.Error("toExpense() accepted missing amount")
	}
}
