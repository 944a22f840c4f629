// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Clock supplies the current time to handlers.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

var ErrRateLimited = errors.New("time api rate limited")

const DefaultSyncInterval = 30 * time.Minute

// WorldTime corrects the local clock with the offset reported by a
// worldtimeapi-compatible endpoint.
type WorldTime struct {
	url      string
	client   *http.Client
	interval time.Duration
	local    func() time.Time

	mu     sync.RWMutex
	offset time.Duration
	synced time.Time
}

func NewWorldTime(url string, client *http.Client) *WorldTime {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WorldTime{
		url:      url,
		client:   client,
		interval: DefaultSyncInterval,
		local:    time.Now,
	}
}

func (c *WorldTime) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.local().Add(c.offset)
}

func (c *WorldTime) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

type worldTimeResponse struct {
	Datetime string `json:"datetime"`
}

// Sync fetches the remote time once. A rate-limited response keeps the
// previous offset; any other failure resets it to zero.
func (c *WorldTime) Sync(ctx context.Context) error {
	remote, sent, received, err := c.fetch(ctx)
	if err != nil {
		if !errors.Is(err, ErrRateLimited) {
			c.mu.Lock()
			c.offset = 0
			c.mu.Unlock()
		}
		return err
	}

	mid := sent.Add(received.Sub(sent) / 2)
	offset := remote.Sub(mid)

	c.mu.Lock()
	c.offset = offset
	c.synced = received
	c.mu.Unlock()
	return nil
}

func (c *WorldTime) fetch(ctx context.Context) (time.Time, time.Time, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("build time request: %w", err)
	}

	sent := c.local()
	resp, err := c.client.Do(req)
	received := c.local()
	if err != nil {
		return time.Time{}, sent, received, fmt.Errorf("time api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return time.Time{}, sent, received, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, sent, received, fmt.Errorf("time api returned %d", resp.StatusCode)
	}

	var body worldTimeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return time.Time{}, sent, received, fmt.Errorf("decode time api: %w", err)
	}
	remote, err := time.Parse(time.RFC3339Nano, body.Datetime)
	if err != nil {
		return time.Time{}, sent, received, fmt.Errorf("parse datetime %q: %w", body.Datetime, err)
	}
	return remote, sent, received, nil
}

// Run syncs immediately and then on every interval until ctx is done.
func (c *WorldTime) Run(ctx context.Context) {
	c.syncAndLog(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.syncAndLog(ctx)
		}
	}
}

func (c *WorldTime) syncAndLog(ctx context.Context) {
	if err := c.Sync(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrRateLimited) {
			slog.Warn("time api rate limited, keeping previous offset", "offset", c.Offset())
			return
		}
		slog.Warn("time sync failed, using system clock", "error", err)
		return
	}
	slog.Debug("time synced", "offset", c.Offset())
}
