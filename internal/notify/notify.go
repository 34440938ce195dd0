package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
)

// TaskCompleted describes a task that entered the done state and awaits
// approval.
type TaskCompleted struct {
	EventID    string
	TaskID     string
	TaskName   string
	AppAcronym string
	Owner      string
	Recipients []string
}

// Notifier delivers task-completion notifications. Delivery is best
// effort: callers must never fail a committed transition because a
// notification could not be sent.
type Notifier interface {
	TaskCompleted(ctx context.Context, event TaskCompleted) error
}

// NoopNotifier discards all notifications.
type NoopNotifier struct{}

func (NoopNotifier) TaskCompleted(context.Context, TaskCompleted) error { return nil }

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host string
	Port int
	From string
}

type smtpNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier sends completion mail through a plain SMTP relay.
func NewSMTPNotifier(cfg SMTPConfig) Notifier {
	return &smtpNotifier{cfg: cfg}
}

func (n *smtpNotifier) TaskCompleted(_ context.Context, event TaskCompleted) error {
	if len(event.Recipients) == 0 {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	subject := fmt.Sprintf("Task %s awaits approval", event.TaskID)
	body := fmt.Sprintf("Task %s (%s) in application %s was completed by %s and is ready for review.",
		event.TaskID, event.TaskName, event.AppAcronym, event.Owner)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(event.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n%s\r\n", subject, body)

	if err := smtp.SendMail(addr, nil, n.cfg.From, event.Recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("send completion mail for %s: %w", event.TaskID, err)
	}
	return nil
}

// Dispatcher wraps a Notifier with best-effort semantics: failures are
// logged with the event id and swallowed.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
}

func NewDispatcher(notifier Notifier, logger *slog.Logger) *Dispatcher {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Dispatch assigns the event an id and delivers it, logging instead of
// returning on failure.
func (d *Dispatcher) Dispatch(ctx context.Context, event TaskCompleted) {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if err := d.notifier.TaskCompleted(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "notification_failed",
			"event_id", event.EventID,
			"task_id", event.TaskID,
			"recipients", len(event.Recipients),
			"error", err.Error(),
		)
		return
	}
	d.logger.InfoContext(ctx, "notification_sent",
		"event_id", event.EventID,
		"task_id", event.TaskID,
		"recipients", len(event.Recipients),
	)
}
