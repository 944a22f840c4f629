// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/danielhkuo/treat-pageant/cliparse"
)

// Notifier delivers a plain-text alert to the admin channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Log writes notifications to the structured log. Used when no bot is configured.
type Log struct{}

func (Log) Notify(ctx context.Context, text string) error {
	slog.Info("admin notification", "text", text)
	return nil
}

// Telegram posts notifications to a single chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, chatID, tgbotapi.APIEndpoint, &http.Client{Timeout: 15 * time.Second})
}

// NewTelegramWithEndpoint lets tests point the bot at a fake Bot API.
// endpoint uses the tgbotapi format "<base>/bot%s/%s".
func NewTelegramWithEndpoint(token string, chatID int64, endpoint string, client *http.Client) (*Telegram, error) {
	b, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	b.Debug = false
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// New picks Telegram when a token and chat are configured, otherwise Log.
func New(cfg cliparse.Config) (Notifier, error) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return Log{}, nil
	}
	return NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
}

// Dispatcher sends notifications off the request goroutine.
type Dispatcher struct {
	n       Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	if n == nil {
		n = Log{}
	}
	return &Dispatcher{n: n, timeout: timeout}
}

// Send returns immediately; failures are logged.
func (d *Dispatcher) Send(text string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.n.Notify(ctx, text); err != nil {
			slog.Warn("notification failed", "error", err)
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
