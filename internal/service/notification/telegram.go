package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/tidwall/gjson"
)

var _ Notifier = (*Telegram)(nil)

var ErrTelegramConfig = errors.New("telegram: bot token or chat id missing")

const defaultTelegramEndpoint = "https://api.telegram.org"

// Telegram 机器人通知, 失败最多重试 3 次
type Telegram struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client
	clock    schedule.Clock
	attempts int
}

type TelegramOption func(*Telegram)

func WithEndpoint(endpoint string) TelegramOption {
	return func(t *Telegram) {
		t.endpoint = endpoint
	}
}

func WithHTTPClient(client *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.client = client
	}
}

func WithClock(clock schedule.Clock) TelegramOption {
	return func(t *Telegram) {
		t.clock = clock
	}
}

func NewTelegram(botToken, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		botToken: botToken,
		chatID:   chatID,
		endpoint: defaultTelegramEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		clock:    schedule.NewRealClock(),
		attempts: 3,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if t.botToken == "" || t.chatID == "" {
		return ErrTelegramConfig
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.endpoint, t.botToken)
	body, err := json.Marshal(map[string]any{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < t.attempts; i++ {
		if i > 0 {
			if err := t.clock.Sleep(ctx, time.Duration(i)*time.Second); err != nil {
				return err
			}
		}
		lastErr = t.send(ctx, url, body)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("telegram send after %d attempts: %w", t.attempts, lastErr)
}

func (t *Telegram) send(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("telegram status=%d: %s", resp.StatusCode, gjson.GetBytes(raw, "description").String())
	}
	// 200 也可能 ok=false
	if !gjson.GetBytes(raw, "ok").Bool() {
		return fmt.Errorf("telegram rejected: %s", gjson.GetBytes(raw, "description").String())
	}
	return nil
}
