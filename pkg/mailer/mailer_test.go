package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovex/ideahub-api/pkg/config"
)

func TestNewFallsBackToNopWithoutHost(t *testing.T) {
	sender := New(config.SMTPConfig{}, nil)
	_, ok := sender.(*NopSender)
	require.True(t, ok)

	// The no-op sender accepts anything without dialing out.
	assert.NoError(t, sender.Send("a@example.com", "hello", "body"))
}

func TestNewUsesSMTPWhenConfigured(t *testing.T) {
	sender := New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, nil)
	_, ok := sender.(*SMTPSender)
	assert.True(t, ok)
}
