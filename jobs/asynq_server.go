package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/carmine-visuals/carmine-web/internal/mailer"
)

// Worker wraps the Asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Sender    mailer.Sender
	Handlers  []TaskHandler
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Sender == nil {
		return nil, errors.New("jobs: sender is required")
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSendEmail, NewSendEmailJob(cfg.Sender, cfg.Logger).Handle)
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueSendEmail enqueues a send-email task.
func (c *Client) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error) {
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// QueuedSender pushes outbound emails through the job queue. It implements
// the notifiers the account service and the contact form expect; delivery
// failure surfaces to the caller only as an enqueue error, the actual send
// happens in the worker.
type QueuedSender struct {
	client       *Client
	contactInbox string
}

// NewQueuedSender constructs a QueuedSender. Contact notifications are routed
// to contactInbox.
func NewQueuedSender(client *Client, contactInbox string) *QueuedSender {
	return &QueuedSender{client: client, contactInbox: contactInbox}
}

// SendActivation enqueues the activation email.
func (q *QueuedSender) SendActivation(ctx context.Context, toEmail, recipientName, activationURL string) error {
	msg := mailer.ActivationMessage(toEmail, recipientName, activationURL)
	_, err := q.client.EnqueueSendEmail(ctx, SendEmailPayload{To: msg.To, Subject: msg.Subject, Body: msg.Body})
	return err
}

// SendContact enqueues a contact form notification for the site inbox.
func (q *QueuedSender) SendContact(ctx context.Context, name, email, service, message string) error {
	msg := mailer.ContactMessage(q.contactInbox, name, email, service, message)
	_, err := q.client.EnqueueSendEmail(ctx, SendEmailPayload{To: msg.To, Subject: msg.Subject, Body: msg.Body})
	return err
}
