package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"airdemo/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSelectsImplementation(t *testing.T) {
	lg := zap.NewNop().Sugar()
	assert.IsType(t, &LogMailer{}, New(config.SMTPConfig{}, lg))
	assert.IsType(t, &SMTPMailer{}, New(config.SMTPConfig{Host: "smtp.example.com", Port: 25}, lg))
}

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m := &SMTPMailer{
		cfg: config.SMTPConfig{Host: "smtp.example.com", Port: 2525, From: "noreply@example.com"},
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		},
	}
	err := m.Send(context.Background(), Message{To: "new@example.com", Subject: "Invite", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"new@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(string(gotMsg), "From: noreply@example.com\r\n"))
	assert.True(t, strings.HasSuffix(string(gotMsg), "\r\n\r\nhello"))

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	err = m.Send(context.Background(), Message{To: "new@example.com"})
	assert.ErrorContains(t, err, "refused")

	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipient)
}

func TestLogMailer(t *testing.T) {
	m := &LogMailer{lg: zap.NewNop().Sugar()}
	assert.NoError(t, m.Send(context.Background(), Message{To: "x@example.com"}))
	assert.ErrorIs(t, m.Send(context.Background(), Message{To: " "}), ErrNoRecipient)
}
