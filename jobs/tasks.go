package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/carmine-visuals/carmine-web/internal/mailer"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// SendEmailJob delivers queued emails through the configured sender.
type SendEmailJob struct {
	sender mailer.Sender
	logger *slog.Logger
}

// NewSendEmailJob constructs a SendEmailJob.
func NewSendEmailJob(sender mailer.Sender, logger *slog.Logger) *SendEmailJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendEmailJob{sender: sender, logger: logger}
}

// Handle processes TaskTypeSendEmail tasks. A malformed payload is dropped
// rather than retried.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Warn("send email payload malformed", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if err := j.sender.Send(ctx, mailer.Message{To: payload.To, Subject: payload.Subject, Body: payload.Body}); err != nil {
		j.logger.Error("send email failed", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	j.logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}
