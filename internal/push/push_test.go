package push

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type flakySender struct {
	sent []string
}

func (f *flakySender) Send(_ context.Context, token, _, _ string, _ map[string]string) error {
	if token == "bad" {
		return errors.New("unregistered")
	}
	f.sent = append(f.sent, token)
	return nil
}

func TestSendAll(t *testing.T) {
	sender := &flakySender{}
	failed := SendAll(context.Background(), sender, []string{"a", "bad", "b"}, "title", "body", nil)

	require.Equal(t, 1, failed)
	require.Equal(t, []string{"a", "b"}, sender.sent)
}

func TestLogSender(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, LogSender{}.Send(ctx, "tok", "t", "b", map[string]string{"k": "v"}))
	require.ErrorIs(t, LogSender{}.Send(ctx, "", "t", "b", nil), ErrEmptyToken)
}
