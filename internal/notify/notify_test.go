package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	events []TaskCompleted
	err    error
}

func (c *captureNotifier) TaskCompleted(_ context.Context, event TaskCompleted) error {
	c.events = append(c.events, event)
	return c.err
}

func TestDispatch_AssignsEventID(t *testing.T) {
	capture := &captureNotifier{}
	d := NewDispatcher(capture, slog.New(slog.NewTextHandler(io.Discard, nil)))

	d.Dispatch(context.Background(), TaskCompleted{TaskID: "APP1_1"})

	require.Len(t, capture.events, 1)
	assert.NotEmpty(t, capture.events[0].EventID)
}

func TestDispatch_SwallowsDeliveryFailure(t *testing.T) {
	capture := &captureNotifier{err: errors.New("relay down")}
	var logBuf strings.Builder
	d := NewDispatcher(capture, slog.New(slog.NewTextHandler(&logBuf, nil)))

	d.Dispatch(context.Background(), TaskCompleted{TaskID: "APP1_1", Recipients: []string{"a@example.com"}})

	assert.Contains(t, logBuf.String(), "notification_failed")
	assert.Contains(t, logBuf.String(), "APP1_1")
}

func TestSMTPNotifier_NoRecipientsIsNoop(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "localhost", Port: 1})
	assert.NoError(t, n.TaskCompleted(context.Background(), TaskCompleted{TaskID: "APP1_1"}))
}
