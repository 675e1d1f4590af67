package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const telegramService = "telegram"

// TelegramClient delivers user notifications and balance-update commands
// through the Telegram Bot API.
type TelegramClient interface {
	SendMessage(ctx context.Context, msg *Message) error
	UpdateBalance(ctx context.Context, userID string, amount decimal.Decimal) error
}

type telegramClientImpl struct {
	httpClient    *http.Client
	log           *zap.Logger
	botURL        string
	balanceChatID string
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type Message struct {
	ChatID      string                `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func NewTelegramClient(cfg *config.Telegram, timeout time.Duration, log *zap.Logger) TelegramClient {
	return &telegramClientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:           log.Named(telegramService),
		botURL:        fmt.Sprintf("%s/bot%s", strings.TrimRight(cfg.BaseApiURL, "/"), cfg.BotToken),
		balanceChatID: cfg.BalanceChatID,
	}
}

func (c *telegramClientImpl) SendMessage(ctx context.Context, msg *Message) error {
	if err := c.sendMessage(ctx, msg); err != nil {
		return err
	}

	c.log.Info("notification sent", zap.String("chat_id", msg.ChatID))
	return nil
}

// UpdateBalance asks the bot to credit userID by amount. The command goes to
// the configured balance chat, or to the user's own chat when none is set.
func (c *telegramClientImpl) UpdateBalance(ctx context.Context, userID string, amount decimal.Decimal) error {
	chatID := c.balanceChatID
	if chatID == "" {
		chatID = userID
	}

	err := c.sendMessage(ctx, &Message{
		ChatID: chatID,
		Text:   fmt.Sprintf("/update_balance %s %s", userID, amount.String()),
	})
	if err != nil {
		return err
	}

	c.log.Info("balance update command sent", zap.String("user_id", userID), zap.String("amount", amount.String()))
	return nil
}

func (c *telegramClientImpl) sendMessage(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.botURL+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.UpstreamError{Service: telegramService, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperrors.UpstreamError{Service: telegramService, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("send message failed",
			zap.String("chat_id", msg.ChatID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return &apperrors.UpstreamError{Service: telegramService, StatusCode: resp.StatusCode}
	}

	var result telegramResponse
	if err := json.Unmarshal(respBody, &result); err == nil && !result.OK {
		return &apperrors.UpstreamError{Service: telegramService, Message: result.Description}
	}

	return nil
}
