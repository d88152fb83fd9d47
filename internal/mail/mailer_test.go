package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com"})

	var sent *gomail.Msg
	m.transmit = func(_ context.Context, msg *gomail.Msg) error {
		sent = msg
		return nil
	}

	err := m.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi", Body: "hello"})
	require.NoError(t, err)
	require.NotNil(t, sent)

	rcpts, err := sent.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, rcpts)

	from, err := sent.GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", from)

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Hi")
	assert.Contains(t, buf.String(), "hello")
}

func TestSMTPMailer_EncodesNonASCIISubject(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})

	var sent *gomail.Msg
	m.transmit = func(_ context.Context, msg *gomail.Msg) error {
		sent = msg
		return nil
	}
	require.NoError(t, m.Send(context.Background(), Message{To: "ana@example.com", Subject: "Confirma tu cuenta, señora", Body: "hola"}))

	var buf bytes.Buffer
	_, err := sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: =?UTF-8?")
	assert.NotContains(t, buf.String(), "señora")
}

func TestSMTPMailer_InvalidRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	m.transmit = func(context.Context, *gomail.Msg) error {
		t.Fatal("should not send")
		return nil
	}
	assert.Error(t, m.Send(context.Background(), Message{To: "not an address"}))
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 25})
	m.transmit = func(context.Context, *gomail.Msg) error {
		t.Fatal("should not send")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: "x@example.com"}), context.Canceled)
}

func TestSMTPMailer_DialStopsOnCancelledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	out, err := compose("noreply@example.com", Message{To: "x@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	cancel()
	assert.Error(t, m.dialAndSend(ctx, out))
}
