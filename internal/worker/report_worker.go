package worker

// report_worker.go
// Processes closing-report jobs from QueueDayEndReport: renders the day-end
// summary as a PDF and hands the result to the email queue. The payload is
// the full summary, captured at close time — the worker never reads the
// database, so a report reflects exactly what was frozen.

import (
	"context"
	"encoding/json"
	"fmt"

	"anypos/internal/dto"
	"anypos/internal/infra"

	"github.com/rs/zerolog/log"
)

// ReportWorker renders day-end closing reports and dispatches them by mail.
type ReportWorker struct {
	dispatcher  *Dispatcher
	storagePath string
	recipient   string
}

func NewReportWorker(dispatcher *Dispatcher, storagePath, recipient string) *ReportWorker {
	return &ReportWorker{dispatcher: dispatcher, storagePath: storagePath, recipient: recipient}
}

// Process renders the PDF and enqueues the email job.
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var summary dto.DayEndSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}

	if w.recipient == "" {
		log.Debug().Str("day_end_id", summary.ID).Msg("report_worker: no recipient configured, skipping")
		return nil
	}

	pdfPath, err := infra.GenerateDayEndPDF(&summary, w.storagePath)
	if err != nil {
		return fmt.Errorf("report_worker: render PDF: %w", err)
	}

	body := fmt.Sprintf(
		"Day-end %s closed.\n\nSales: %d\nRevenue: $%s\nExpected cash: $%s\nActual cash: $%s\nVariance: $%s\n",
		summary.ID,
		summary.SalesSummary.TotalSales,
		summary.SalesSummary.TotalRevenue.StringFixed(2),
		summary.CashReconciliation.ExpectedCash.StringFixed(2),
		summary.CashReconciliation.ActualCash.StringFixed(2),
		summary.CashReconciliation.Variance.StringFixed(2),
	)

	err = w.dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: w.recipient,
		Subject: "Day-end closing report " + summary.ID,
		Body:    body,
		PDFPath: pdfPath,
	})
	if err != nil {
		return fmt.Errorf("report_worker: enqueue email: %w", err)
	}

	log.Info().Str("day_end_id", summary.ID).Str("pdf", pdfPath).Msg("report_worker: closing report generated")
	return nil
}
