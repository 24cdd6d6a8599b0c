package ioc

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/KNICEX/scalp-runner/internal/service/notification"
	"github.com/spf13/viper"
)

// InitNotifier 未配置 telegram 时不发送通知
func InitNotifier() *notification.Dispatcher {
	type TelegramConfig struct {
		BotToken string        `mapstructure:"bot_token"`
		ChatId   string        `mapstructure:"chat_id"`
		Endpoint string        `mapstructure:"endpoint"`
		Timeout  time.Duration `mapstructure:"timeout"`
	}
	type Config struct {
		QueueSize int            `mapstructure:"queue_size"`
		Telegram  TelegramConfig `mapstructure:"telegram"`
	}

	cfg := Config{QueueSize: 64, Telegram: TelegramConfig{Timeout: 10 * time.Second}}
	if err := viper.UnmarshalKey("notification", &cfg); err != nil {
		panic(err)
	}

	var notifier notification.Notifier
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatId == "" {
		slog.Warn("telegram not configured, notifications disabled")
		notifier = notification.NewNopNotifier()
	} else {
		opts := []notification.TelegramOption{
			notification.WithHTTPClient(&http.Client{Timeout: cfg.Telegram.Timeout}),
		}
		if cfg.Telegram.Endpoint != "" {
			opts = append(opts, notification.WithEndpoint(cfg.Telegram.Endpoint))
		}
		notifier = notification.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatId, opts...)
	}
	return notification.NewDispatcher(notifier, cfg.QueueSize)
}

func InitLogQueue() *notification.LogQueue {
	type Config struct {
		Buffer int `mapstructure:"buffer"`
	}
	cfg := Config{Buffer: 1024}
	if err := viper.UnmarshalKey("relay", &cfg); err != nil {
		panic(err)
	}
	return notification.NewLogQueue(cfg.Buffer)
}
