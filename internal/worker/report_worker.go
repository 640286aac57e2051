// Package worker rebuilds ledger report snapshots in response to
// recompute events published by the API process.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tripledger/internal/amqp"
	"tripledger/internal/core"
	"tripledger/internal/log"
	"tripledger/internal/services"
	"tripledger/internal/trips"
)

// Exporter pushes a finished report to an external destination, e.g. a
// shared spreadsheet. Optional.
type Exporter interface {
	ExportReport(ctx context.Context, report core.LedgerReport) error
}

// ReportWorker recomputes a trip's ledger report and persists it as the
// trip's current snapshot. Because every recompute starts from the live
// snapshot, message ordering and duplicates are harmless.
type ReportWorker struct {
	service  *services.LedgerService
	reports  trips.ReportWriter
	exporter Exporter
	logs     *log.StructuredLogger
}

func NewReportWorker(service *services.LedgerService, reports trips.ReportWriter, exporter Exporter) *ReportWorker {
	cfg := log.DefaultConfig()
	cfg.Component = log.ComponentWorker
	return &ReportWorker{
		service:  service,
		reports:  reports,
		exporter: exporter,
		logs:     log.NewStructuredLogger(log.New(cfg)),
	}
}

// HandleRecompute processes a single recompute message.
func (w *ReportWorker) HandleRecompute(ctx context.Context, msg *amqp.RecomputeMessage) error {
	slog.InfoContext(ctx, "Recomputing ledger report",
		"trip_id", msg.TripID,
		"reason", msg.Reason)

	report, err := w.service.ComputeReport(ctx, msg.TripID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			// The trip disappeared after the event was queued. Drop the
			// message instead of requeueing it forever.
			slog.WarnContext(ctx, "Trip gone, dropping recompute message", "trip_id", msg.TripID)
			return nil
		}
		return fmt.Errorf("compute report: %w", err)
	}

	if err := w.reports.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	w.logs.LogReportComputed(ctx, report.TripID, report.TotalSpent, len(report.Settlements))

	if w.exporter != nil {
		if err := w.exporter.ExportReport(ctx, report); err != nil {
			// The snapshot is saved; a failed export should not requeue
			// the whole recompute.
			w.logs.LogError(ctx, "Failed to export report", err,
				log.ComponentExport, log.OpExport,
				log.LogFields{log.FieldTripID: msg.TripID})
		}
	}

	return nil
}
