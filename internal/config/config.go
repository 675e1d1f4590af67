package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database

	OutboundTimeout time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"15s"`
	AdminAPIKey     string        `env:"ADMIN_API_KEY"`

	// NotifyTimeout bounds the post-payment Telegram calls, which the
	// webhook response waits for.
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`

	CryptoPay CryptoPay
	Telegram  Telegram
}

// CryptoPay holds the payment gateway settings. The API token doubles as the
// webhook signing secret.
type CryptoPay struct {
	APIToken           string `env:"CRYPTO_BOT_TOKEN,notEmpty"`
	BaseApiURL         string `env:"CRYPTO_PAY_BASE_API_URL" envDefault:"https://pay.crypt.bot/api"`
	PaidButtonURL      string `env:"CRYPTO_PAY_PAID_BTN_URL" envDefault:"https://t.me/BotRolseBot?start=paid_{user_id}_{amount}"`
	DefaultDescription string `env:"CRYPTO_PAY_DEFAULT_DESCRIPTION" envDefault:"Balance top-up"`
}

type Telegram struct {
	BotToken      string `env:"BOT_TOKEN,notEmpty"`
	BaseApiURL    string `env:"TELEGRAM_BASE_API_URL" envDefault:"https://api.telegram.org"`
	BalanceChatID string `env:"TELEGRAM_BALANCE_CHAT_ID"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"json"`
	File       string `env:"LOG_FILE" envDefault:"webhook_server.log"`
	MaxSize    int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAge     int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"8000"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"data/webhooks.db"`
}
