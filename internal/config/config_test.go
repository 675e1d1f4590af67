package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("CRYPTO_BOT_TOKEN", "crypto-token")
	t.Setenv("BOT_TOKEN", "bot-token")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "crypto-token", cfg.CryptoPay.APIToken)
	assert.Equal(t, "https://pay.crypt.bot/api", cfg.CryptoPay.BaseApiURL)
	assert.Equal(t, "bot-token", cfg.Telegram.BotToken)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.BaseApiURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/webhooks.db", cfg.Database.URL)
	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.OutboundTimeout)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Empty(t, cfg.AdminAPIKey)
}

func TestParseRequiresTokens(t *testing.T) {
	t.Setenv("CRYPTO_BOT_TOKEN", "")
	t.Setenv("BOT_TOKEN", "")

	cfg := &Config{}
	assert.Error(t, env.Parse(cfg))
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("CRYPTO_BOT_TOKEN", "crypto-token")
	t.Setenv("BOT_TOKEN", "bot-token")
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("OUTBOUND_TIMEOUT", "3s")
	t.Setenv("NOTIFY_TIMEOUT", "2s")
	t.Setenv("TELEGRAM_BALANCE_CHAT_ID", "-100123")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3*time.Second, cfg.OutboundTimeout)
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "-100123", cfg.Telegram.BalanceChatID)
}
