// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/danielhkuo/safeweb/ingest"
	"github.com/danielhkuo/safeweb/models"
)

// Poller fetches readings from an HTTP endpoint on a fixed interval. The
// endpoint may return a single reading object or an array of them.
// Readings that are not newer than the last one seen for their device are
// skipped, so an endpoint serving a sliding window does not create
// duplicates.
type Poller struct {
	state
	url      string
	interval time.Duration
	client   *resty.Client
	recorder Recorder

	lastSeen map[string]time.Time
}

func NewPoller(url string, interval time.Duration, rec Recorder) *Poller {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")

	return &Poller{
		url:      url,
		interval: interval,
		client:   client,
		recorder: rec,
		lastSeen: make(map[string]time.Time),
	}
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("http poller started", "url", p.url, "interval", p.interval)
	p.running.Store(true)
	defer p.running.Store(false)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if n, err := p.Poll(ctx); err != nil {
			slog.Warn("poll failed", "url", p.url, "error", err)
		} else if n > 0 {
			slog.Debug("poll stored readings", "count", n)
		}

		select {
		case <-ctx.Done():
			slog.Info("http poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll performs one fetch and returns how many readings were stored.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	resp, err := p.client.R().SetContext(ctx).Get(p.url)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("unexpected status %s", resp.Status())
	}

	readings, err := decodeReadings(resp.Body())
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, req := range readings {
		ts := req.Timestamp.Time
		if !ts.IsZero() {
			if last, ok := p.lastSeen[req.DeviceID]; ok && !ts.After(last) {
				continue
			}
		}

		if _, err := p.recorder.Record(ctx, ingest.SourcePoll, req); err != nil {
			slog.Warn("reading rejected", "device_id", req.DeviceID, "error", err)
			continue
		}
		if !ts.IsZero() {
			p.lastSeen[req.DeviceID] = ts
		}
		stored++
	}
	return stored, nil
}

func decodeReadings(body []byte) ([]models.IngestReadingRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if body[0] == '[' {
		var many []models.IngestReadingRequest
		if err := json.Unmarshal(body, &many); err != nil {
			return nil, fmt.Errorf("invalid readings payload: %w", err)
		}
		return many, nil
	}

	var one models.IngestReadingRequest
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, fmt.Errorf("invalid reading payload: %w", err)
	}
	return []models.IngestReadingRequest{one}, nil
}
