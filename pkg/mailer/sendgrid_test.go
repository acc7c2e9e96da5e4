package mailer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewSendGridRequiresCredentials(t *testing.T) {
	_, err := NewSendGrid("", "noreply@example.com", "Tuta", "Tuta", zerolog.Nop())
	require.Error(t, err)

	_, err = NewSendGrid("key", "", "Tuta", "Tuta", zerolog.Nop())
	require.Error(t, err)
}

func TestSendRejectsMissingRecipient(t *testing.T) {
	sender, err := NewSendGrid("key", "noreply@example.com", "Tuta", "Tuta", zerolog.Nop())
	require.NoError(t, err)

	require.ErrorIs(t, sender.Send(context.Background(), Message{Subject: "hi"}), ErrNoRecipient)
}

func TestPrepareBuildsPersonalizedMail(t *testing.T) {
	sender, err := NewSendGrid("key", "noreply@example.com", "Tuta Team", "Tuta", zerolog.Nop())
	require.NoError(t, err)

	m := sender.prepare(Message{ToName: "Alice", ToAddress: "alice@example.com", Subject: "Approved", PlainText: "hello", HTML: "<p>hello</p>"})
	require.Len(t, m.Personalizations, 1)
	require.Equal(t, "[Tuta] Approved", m.Personalizations[0].Subject)
	require.Equal(t, "alice@example.com", m.Personalizations[0].To[0].Address)
	require.Equal(t, "noreply@example.com", m.From.Address)
	require.Len(t, m.Content, 2)
}
