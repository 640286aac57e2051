package worker

import (
	"context"
	"errors"
	"testing"

	"tripledger/internal/amqp"
	"tripledger/internal/core"
	"tripledger/internal/services"
	"tripledger/internal/trips/memory"
)

type fakeReportStore struct {
	saved []core.LedgerReport
	fail  bool
}

func (f *fakeReportStore) SaveReport(_ context.Context, r core.LedgerReport) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.saved = append(f.saved, r)
	return nil
}

type fakeExporter struct {
	exported int
	fail     bool
}

func (f *fakeExporter) ExportReport(_ context.Context, _ core.LedgerReport) error {
	if f.fail {
		return errors.New("sheet unavailable")
	}
	f.exported++
	return nil
}

func newWorkerFixture(t *testing.T) (*services.LedgerService, string) {
	t.Helper()
	ctx := context.Background()
	svc := services.NewLedgerService(memory.New(), nil)
	tripID, err := svc.CreateTrip(ctx, core.Trip{Name: "Coast", Currency: "EUR"})
	if err != nil {
		t.Fatalf("CreateTrip() error = %v", err)
	}
	memberID, err := svc.AddMember(ctx, tripID, core.Member{Name: "A"})
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if _, err := svc.AddMember(ctx, tripID, core.Member{Name: "B"}); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if _, err := svc.CreateExpense(ctx, core.Expense{
		TripID: tripID, Title: "Ferry", Amount: 60, PaidBy: memberID,
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	return svc, tripID
}

func TestHandleRecompute(t *testing.T) {
	svc, tripID := newWorkerFixture(t)
	store := &fakeReportStore{}
	exporter := &fakeExporter{}
	w := NewReportWorker(svc, store, exporter)

	err := w.HandleRecompute(context.Background(), amqp.NewRecomputeMessage(tripID, amqp.ReasonExpenseCreated))
	if err != nil {
		t.Fatalf("HandleRecompute() error = %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d reports, want 1", len(store.saved))
	}
	if store.saved[0].TripID != tripID {
		t.Errorf("saved TripID = %q, want %q", store.saved[0].TripID, tripID)
	}
	if len(store.saved[0].Settlements) != 1 {
		t.Errorf("got %d settlements, want 1", len(store.saved[0].Settlements))
	}
	if exporter.exported != 1 {
		t.Errorf("exported %d reports, want 1", exporter.exported)
	}
}

func TestHandleRecomputeMissingTripIsDropped(t *testing.T) {
	svc := services.NewLedgerService(memory.New(), nil)
	store := &fakeReportStore{}
	w := NewReportWorker(svc, store, nil)

	err := w.HandleRecompute(context.Background(), amqp.NewRecomputeMessage("gone", amqp.ReasonExpenseDeleted))
	if err != nil {
		t.Fatalf("HandleRecompute() error = %v, missing trips must not requeue", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("saved %d reports, want 0", len(store.saved))
	}
}

func TestHandleRecomputeSaveFailureRequeues(t *testing.T) {
	svc, tripID := newWorkerFixture(t)
	w := NewReportWorker(svc, &fakeReportStore{fail: true}, nil)

	err := w.HandleRecompute(context.Background(), amqp.NewRecomputeMessage(tripID, amqp.ReasonExpenseCreated))
	if err == nil {
		t.Fatal("HandleRecompute() = nil, want error so the message requeues")
	}
}

func TestHandleRecomputeExportFailureIsNonFatal(t *testing.T) {
	svc, tripID := newWorkerFixture(t)
	store := &fakeReportStore{}
	w := NewReportWorker(svc, store, &fakeExporter{fail: true})

	err := w.HandleRecompute(context.Background(), amqp.NewRecomputeMessage(tripID, amqp.ReasonExpenseCreated))
	if err != nil {
		t.Fatalf("HandleRecompute() error = %v, export failure must not requeue", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("saved %d reports, want 1", len(store.saved))
	}
}
