package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tripledger/internal/core"
	"tripledger/internal/trips"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

// Interface conformance.
var (
	_ trips.TripReader        = (*SQLiteRepository)(nil)
	_ trips.TripWriter        = (*SQLiteRepository)(nil)
	_ trips.MemberReader      = (*SQLiteRepository)(nil)
	_ trips.MemberWriter      = (*SQLiteRepository)(nil)
	_ trips.ExpenseReader     = (*SQLiteRepository)(nil)
	_ trips.ExpenseWriter     = (*SQLiteRepository)(nil)
	_ trips.ExpenseDeleter    = (*SQLiteRepository)(nil)
	_ trips.PlannedCostReader = (*SQLiteRepository)(nil)
	_ trips.PlannedCostWriter = (*SQLiteRepository)(nil)
	_ trips.BudgetWriter      = (*SQLiteRepository)(nil)
	_ trips.ReportWriter      = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateTrip(ctx context.Context, t core.Trip) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Currency == "" {
		t.Currency = "EUR"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trips (id, name, currency, target_budget) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.Currency, t.TargetBudget)
	if err != nil {
		return "", fmt.Errorf("create trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip created", "trip_id", t.ID, "name", t.Name, "currency", t.Currency)
	return t.ID, nil
}

func (r *SQLiteRepository) ReadTrip(ctx context.Context, tripID string) (core.Trip, error) {
	var (
		t      core.Trip
		target sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, currency, target_budget FROM trips WHERE id = ?`, tripID).
		Scan(&t.ID, &t.Name, &t.Currency, &target)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Trip{}, trips.ErrTripNotFound
	}
	if err != nil {
		return core.Trip{}, fmt.Errorf("read trip: %w", err)
	}
	if target.Valid {
		t.TargetBudget = &target.Float64
	}
	return t, nil
}

func (r *SQLiteRepository) AddMember(ctx context.Context, tripID string, m core.Member) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	if err := r.requireTrip(ctx, tripID); err != nil {
		return "", err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, trip_id, name) VALUES (?, ?, ?)`,
		m.ID, tripID, m.Name)
	if err != nil {
		return "", fmt.Errorf("add member: %w", err)
	}

	slog.InfoContext(ctx, "Member added", "trip_id", tripID, "member_id", m.ID, "name", m.Name)
	return m.ID, nil
}

func (r *SQLiteRepository) ListMembers(ctx context.Context, tripID string) ([]core.Member, error) {
	if err := r.requireTrip(ctx, tripID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM members WHERE trip_id = ? ORDER BY created_at, id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []core.Member
	for rows.Next() {
		var m core.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *SQLiteRepository) AppendExpense(ctx context.Context, e core.Expense) (string, error) {
	if e.Source == "" {
		e.Source = core.SourceManual
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	if err := r.requireTrip(ctx, e.TripID); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	var spentOn any
	if !e.Date.IsEmpty() {
		spentOn = e.Date.Format(dateLayout)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, title, amount, currency, paid_by, spent_on, category, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TripID, e.Title, e.Amount, e.Currency, e.PaidBy, spentOn, e.Category, string(e.Source))
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"trip_id", e.TripID,
		"title", e.Title,
		"amount", e.Amount,
		"paid_by", e.PaidBy)
	return e.ID, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error) {
	if err := r.requireTrip(ctx, tripID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, trip_id, title, amount, currency, paid_by, spent_on, category, source
		 FROM expenses WHERE trip_id = ? AND deleted_at IS NULL
		 ORDER BY spent_on, created_at`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			spentOn sql.NullString
			source  string
		)
		if err := rows.Scan(&e.ID, &e.TripID, &e.Title, &e.Amount, &e.Currency,
			&e.PaidBy, &spentOn, &e.Category, &source); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Source = core.ExpenseSource(source)
		if spentOn.Valid {
			if d, err := time.Parse(dateLayout, spentOn.String); err == nil {
				e.Date = core.Date{Time: d}
			}
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// DeleteExpense soft deletes so the row stays auditable.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, tripID, expenseID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND trip_id = ? AND deleted_at IS NULL`,
		expenseID, tripID)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s not found in trip %s", expenseID, tripID)
	}

	slog.InfoContext(ctx, "Expense soft deleted", "expense_id", expenseID, "trip_id", tripID)
	return nil
}

func (r *SQLiteRepository) AppendPlannedCost(ctx context.Context, tripID string, p core.PlannedCostItem) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if err := r.requireTrip(ctx, tripID); err != nil {
		return "", err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var plannedFor any
	if !p.Date.IsEmpty() {
		plannedFor = p.Date.Format(dateLayout)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO planned_costs (id, trip_id, title, estimated_amount, currency, planned_for)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, tripID, p.Title, p.EstimatedAmount, p.Currency, plannedFor)
	if err != nil {
		return "", fmt.Errorf("create planned cost: %w", err)
	}
	return p.ID, nil
}

func (r *SQLiteRepository) ListPlannedCosts(ctx context.Context, tripID string) ([]core.PlannedCostItem, error) {
	if err := r.requireTrip(ctx, tripID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, estimated_amount, currency, planned_for
		 FROM planned_costs WHERE trip_id = ? ORDER BY planned_for, created_at`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list planned costs: %w", err)
	}
	defer rows.Close()

	var items []core.PlannedCostItem
	for rows.Next() {
		var (
			p          core.PlannedCostItem
			plannedFor sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.EstimatedAmount, &p.Currency, &plannedFor); err != nil {
			return nil, fmt.Errorf("scan planned cost: %w", err)
		}
		if plannedFor.Valid {
			if d, err := time.Parse(dateLayout, plannedFor.String); err == nil {
				p.Date = core.Date{Time: d}
			}
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// SetBudget is the write boundary for target budgets: negative values are
// rejected here so the ledger core only ever sees validated targets.
func (r *SQLiteRepository) SetBudget(ctx context.Context, tripID string, target float64) error {
	if err := core.ValidateAmount(target); err != nil {
		return err
	}
	return r.updateBudget(ctx, tripID, target)
}

func (r *SQLiteRepository) ClearBudget(ctx context.Context, tripID string) error {
	return r.updateBudget(ctx, tripID, nil)
}

func (r *SQLiteRepository) updateBudget(ctx context.Context, tripID string, target any) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trips SET target_budget = ? WHERE id = ?`, target, tripID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if affected == 0 {
		return trips.ErrTripNotFound
	}

	slog.InfoContext(ctx, "Budget updated", "trip_id", tripID, "target", target)
	return nil
}

// SaveReport upserts the latest computed report for a trip. The worker
// writes these; readers can serve them without recomputing.
func (r *SQLiteRepository) SaveReport(ctx context.Context, report core.LedgerReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO ledger_reports (trip_id, payload, total_spent, settlement_count, computed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (trip_id) DO UPDATE SET
		   payload = excluded.payload,
		   total_spent = excluded.total_spent,
		   settlement_count = excluded.settlement_count,
		   computed_at = excluded.computed_at`,
		report.TripID, string(payload), report.TotalSpent, len(report.Settlements),
		report.ComputedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	slog.InfoContext(ctx, "Ledger report saved",
		"trip_id", report.TripID,
		"total_spent", report.TotalSpent,
		"settlements", len(report.Settlements))
	return nil
}

// ReadReport returns the last persisted report for a trip, or
// trips.ErrTripNotFound when none has been computed yet.
func (r *SQLiteRepository) ReadReport(ctx context.Context, tripID string) (core.LedgerReport, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM ledger_reports WHERE trip_id = ?`, tripID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.LedgerReport{}, trips.ErrTripNotFound
	}
	if err != nil {
		return core.LedgerReport{}, fmt.Errorf("read report: %w", err)
	}

	var report core.LedgerReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return core.LedgerReport{}, fmt.Errorf("unmarshal report: %w", err)
	}
	return report, nil
}

func (r *SQLiteRepository) requireTrip(ctx context.Context, tripID string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM trips WHERE id = ?`, tripID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return trips.ErrTripNotFound
	}
	if err != nil {
		return fmt.Errorf("check trip: %w", err)
	}
	return nil
}
