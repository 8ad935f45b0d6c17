package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"nightwatcher/internal/config"
)

// telegramSendRequest is the Bot API sendMessage payload.
type telegramSendRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// telegramSendResponse is the Bot API response envelope.
type telegramSendResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramSink delivers notifications through the Telegram Bot API.
type TelegramSink struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewTelegramSink creates a Telegram sink with the default Bot API URL.
func NewTelegramSink(token string) *TelegramSink {
	slog.Info("telegram sink initialized", "baseURL", config.TelegramAPIURL)
	return NewTelegramSinkWithURL(config.TelegramAPIURL, token)
}

// NewTelegramSinkWithURL creates a Telegram sink with a custom base URL (for testing).
func NewTelegramSinkWithURL(baseURL, token string) *TelegramSink {
	return &TelegramSink{
		client:  &http.Client{Timeout: config.NotifyRequestTimeout},
		baseURL: baseURL,
		token:   token,
	}
}

func (t *TelegramSink) Name() string { return "telegram" }

// Send posts a sendMessage call for chatID. A blocked bot, a dead chat,
// or a transport failure all surface as config.ErrNotificationFailed.
func (t *TelegramSink) Send(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(telegramSendRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %v", config.ErrNotificationFailed, err)
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", config.ErrNotificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrNotificationFailed, err)
	}
	defer resp.Body.Close()

	var envelope telegramSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decode response: %v", config.ErrNotificationFailed, err)
	}

	if !envelope.OK {
		return fmt.Errorf("%w: chat %d: %s", config.ErrNotificationFailed, chatID, envelope.Description)
	}

	slog.Debug("notification delivered", "sink", "telegram", "chatID", chatID)
	return nil
}
