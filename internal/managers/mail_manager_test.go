package managers

import (
	"context"
	"testing"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-drive/internal/config"
)

func TestSendResetCodeSkippedOutsideProduction(t *testing.T) {
	cfg, err := config.FromEnv(func(string) string { return "" })
	require.NoError(t, err)

	mm := NewMailManager(cfg)
	assert.NoError(t, mm.SendResetCode(context.Background(), "jane@example.com", "Jane", "123456"))
}

func TestSendResetCodeWithoutMailgun(t *testing.T) {
	cfg, err := config.FromEnv(func(key string) string {
		if key == "ENVIRONMENT" {
			return "production"
		}
		return ""
	})
	require.NoError(t, err)

	mm := NewMailManager(cfg)
	assert.ErrorIs(t, mm.SendResetCode(context.Background(), "jane@example.com", "Jane", "123456"), errMailNotConfigured)
}

func TestSendResetCodeThroughMailgun(t *testing.T) {
	server := mailgun.NewMockServer()
	defer server.Stop()

	cfg, err := config.FromEnv(func(key string) string {
		switch key {
		case "ENVIRONMENT":
			return "production"
		case "MAILGUN_DOMAIN":
			return "mailgun.test"
		case "MAILGUN_API_KEY":
			return "api-key"
		}
		return ""
	})
	require.NoError(t, err)

	mm := NewMailManager(cfg).(*MailManager)
	mm.Mailgun.SetAPIBase(server.URL())

	assert.NoError(t, mm.SendResetCode(context.Background(), "jane@example.com", "Jane", "123456"))
}
