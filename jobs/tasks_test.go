package jobs_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/carmine-visuals/carmine-web/internal/mailer"
	"github.com/carmine-visuals/carmine-web/jobs"
	_ "github.com/carmine-visuals/carmine-web/testing"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestSendEmailJobDelivers(t *testing.T) {
	sender := &fakeSender{}
	job := jobs.NewSendEmailJob(sender, nil)

	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{
		To:      "alice@example.com",
		Subject: "hello",
		Body:    "body",
	})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, sender.sent, 1)
	require.Equal(t, "alice@example.com", sender.sent[0].To)
	require.Equal(t, "hello", sender.sent[0].Subject)
}

func TestSendEmailJobDropsMalformedPayload(t *testing.T) {
	sender := &fakeSender{}
	job := jobs.NewSendEmailJob(sender, nil)

	task := asynq.NewTask(jobs.TaskTypeSendEmail, []byte("not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, sender.sent)
}

func TestSendEmailJobPropagatesSendFailure(t *testing.T) {
	sendErr := errors.New("smtp down")
	sender := &fakeSender{err: sendErr}
	job := jobs.NewSendEmailJob(sender, nil)

	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{To: "a@b.c", Subject: "s", Body: "b"})
	require.NoError(t, err)

	require.ErrorIs(t, job.Handle(context.Background(), task), sendErr)
}
