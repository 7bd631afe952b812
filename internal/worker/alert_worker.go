package worker

// alert_worker.go
// Processes ops alerts from QueueAlert and mails them to the on-call
// recipients. Alerts are fired by the audit worker (delivery exhausted) and
// the reconcile cron (invariant violations).

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// AlertJobPayload is the job envelope sent to QueueAlert.
type AlertJobPayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// To overrides the default recipients when set.
	To []string `json:"to,omitempty"`
}

// AlertMailer sends one alert email. infra.Mailer is the production
// implementation.
type AlertMailer interface {
	SendAlert(to []string, subject, body string) error
}

// AlertWorker delivers ops alerts over SMTP.
type AlertWorker struct {
	mailer     AlertMailer
	recipients []string
}

func NewAlertWorker(mailer AlertMailer, recipients []string) *AlertWorker {
	return &AlertWorker{mailer: mailer, recipients: recipients}
}

// Process sends one alert email. Alerts are best-effort: a failed send is
// logged, never requeued — the underlying condition is already in the log.
func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload AlertJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return
	}

	to := payload.To
	if len(to) == 0 {
		to = w.recipients
	}
	if len(to) == 0 {
		log.Warn().Str("subject", payload.Subject).Msg("alert_worker: no recipients configured — skipping")
		return
	}

	if err := w.mailer.SendAlert(to, payload.Subject, payload.Body); err != nil {
		log.Error().Err(err).Str("subject", payload.Subject).Msg("alert_worker: failed to send alert")
		return
	}
	log.Info().Str("subject", payload.Subject).Int("recipients", len(to)).Msg("alert_worker: alert sent")
}
