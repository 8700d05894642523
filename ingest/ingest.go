// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/safeweb/anomaly"
	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/report"
	"github.com/danielhkuo/safeweb/store"
)

var ErrInvalidReading = errors.New("invalid reading")

// Sources recorded in metrics.
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
	SourcePoll = "poll"
)

// Optional side channels. Any of them may be nil.
type (
	Mirror interface {
		Write(ctx context.Context, r models.Reading) error
	}
	Cache interface {
		Put(ctx context.Context, lr models.LatestReading) error
	}
	Broadcaster interface {
		Broadcast(lr models.LatestReading)
	}
	Notifier interface {
		Notify(r models.Reading, alertID int64, message string)
	}
	Metrics interface {
		ReadingIngested(source string, anomaly bool)
		AlertCreated()
		SideEffectFailed(channel string)
	}
)

// Service stores readings, flags anomalies and raises alerts. Side channels
// run after the row is committed and never fail the ingest.
type Service struct {
	store      *store.Store
	thresholds anomaly.Thresholds
	now        func() time.Time

	Mirror   Mirror
	Cache    Cache
	Live     Broadcaster
	Notifier Notifier
	Metrics  Metrics
}

func NewService(s *store.Store, th anomaly.Thresholds) *Service {
	return &Service{store: s, thresholds: th, now: time.Now}
}

// Result describes a stored reading.
type Result struct {
	Reading models.Reading
	AlertID *int64
}

// Record validates and stores one reading. A zero timestamp means "now".
// Readings from devices that are not registered are stored without a
// location.
func (s *Service) Record(ctx context.Context, source string, req models.IngestReadingRequest) (Result, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return Result{}, fmt.Errorf("%w: device_id is required", ErrInvalidReading)
	}
	if req.Temperature == nil && req.Humidity == nil {
		return Result{}, fmt.Errorf("%w: temperature or humidity is required", ErrInvalidReading)
	}

	ts := req.Timestamp.Time
	if ts.IsZero() {
		ts = s.now()
	}

	locationID, err := s.store.LocationForDevice(ctx, deviceID)
	if err != nil {
		return Result{}, err
	}

	violations := s.thresholds.Check(req.Temperature, req.Humidity)
	r := models.Reading{
		Timestamp:   ts.UTC().Truncate(time.Microsecond),
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		DeviceID:    deviceID,
		IsAnomaly:   len(violations) > 0,
		LocationID:  locationID,
	}
	if err := s.store.InsertReading(ctx, &r); err != nil {
		return Result{}, err
	}

	res := Result{Reading: r}
	var message string
	if r.IsAnomaly {
		message = anomaly.Message(deviceID, violations)
		id, err := s.store.CreateAlert(ctx, r.ID, s.now(), message)
		if err != nil {
			// the reading itself is stored and flagged
			slog.Error("failed to create alert", "reading_id", r.ID, "error", err)
		} else {
			res.AlertID = &id
		}
	}

	slog.Debug("reading stored", "id", r.ID, "device_id", deviceID, "anomaly", r.IsAnomaly, "source", source)
	s.fanOut(ctx, source, res, message)
	return res, nil
}

func (s *Service) fanOut(ctx context.Context, source string, res Result, message string) {
	r := res.Reading
	latest := report.ToLatest(r)

	if s.Metrics != nil {
		s.Metrics.ReadingIngested(source, r.IsAnomaly)
		if res.AlertID != nil {
			s.Metrics.AlertCreated()
		}
	}
	if s.Mirror != nil {
		if err := s.Mirror.Write(ctx, r); err != nil {
			slog.Warn("mirror write failed", "reading_id", r.ID, "error", err)
			s.sideFailed("influx")
		}
	}
	if s.Cache != nil {
		if err := s.Cache.Put(ctx, latest); err != nil {
			slog.Warn("cache update failed", "device_id", r.DeviceID, "error", err)
			s.sideFailed("redis")
		}
	}
	if s.Live != nil {
		s.Live.Broadcast(latest)
	}
	if s.Notifier != nil && res.AlertID != nil {
		s.Notifier.Notify(r, *res.AlertID, message)
	}
}

func (s *Service) sideFailed(channel string) {
	if s.Metrics != nil {
		s.Metrics.SideEffectFailed(channel)
	}
}
