package worker

// email_worker.go
// Processes email jobs from QueueEmail: delivers day-end closing reports via
// SMTP. Sends go through the circuit breaker so a dead relay fails fast
// instead of stalling the pool.

import (
	"context"
	"encoding/json"

	"anypos/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer  *infra.Mailer
	breaker *infra.CircuitBreaker
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer *infra.Mailer, breaker *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, breaker: breaker}
}

// Process sends an email with the report PDF as attachment.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := w.breaker.Execute(func() error {
		return w.mailer.SendReport(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return err
	}

	log.Info().Str("to", payload.ToEmail).Msg("email_worker: report sent")
	return nil
}
