package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptobot-webhook-relay/internal/apperrors"
	"cryptobot-webhook-relay/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTelegramClient(t *testing.T, balanceChatID string, handler http.HandlerFunc) TelegramClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewTelegramClient(&config.Telegram{
		BotToken:      "123:bot",
		BaseApiURL:    srv.URL,
		BalanceChatID: balanceChatID,
	}, time.Second, zap.NewNop())
}

func TestSendMessage(t *testing.T) {
	var got Message
	c := newTestTelegramClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:bot/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	err := c.SendMessage(context.Background(), &Message{
		ChatID:    "42",
		Text:      "<b>hi</b>",
		ParseMode: "HTML",
		ReplyMarkup: &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "Play", CallbackData: "play_game"}},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	require.NotNil(t, got.ReplyMarkup)
	assert.Equal(t, "play_game", got.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
}

func TestUpdateBalanceTargetsUserChatByDefault(t *testing.T) {
	var got Message
	c := newTestTelegramClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, c.UpdateBalance(context.Background(), "42", decimal.NewFromInt(10)))
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "/update_balance 42 10", got.Text)
}

func TestUpdateBalanceUsesConfiguredChat(t *testing.T) {
	var got Message
	c := newTestTelegramClient(t, "-1001", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, c.UpdateBalance(context.Background(), "42", decimal.RequireFromString("2.5")))
	assert.Equal(t, "-1001", got.ChatID)
	assert.Equal(t, "/update_balance 42 2.5", got.Text)
}

func TestSendMessageFailures(t *testing.T) {
	c := newTestTelegramClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
	})

	err := c.SendMessage(context.Background(), &Message{ChatID: "42", Text: "x"})

	var upstream *apperrors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)

	c = newTestTelegramClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err = c.SendMessage(context.Background(), &Message{ChatID: "42", Text: "x"})
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "Bad Request: chat not found", upstream.Message)
}

func TestSendMessageTruncatedResponse(t *testing.T) {
	c := newTestTelegramClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "64")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":`))
	})

	err := c.SendMessage(context.Background(), &Message{ChatID: "42", Text: "x"})
	require.Error(t, err)

	var upstream *apperrors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, telegramService, upstream.Service)
	assert.Error(t, upstream.Err)
}
