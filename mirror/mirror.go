// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sony/gobreaker"

	"github.com/danielhkuo/safeweb/models"
)

const measurement = "sensor_reading"

type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string

	// Consecutive failures before the breaker opens, and how long it stays open.
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Influx copies stored readings into an InfluxDB bucket. Writes go through a
// circuit breaker so an unreachable server costs one fast failure per
// reading instead of a timeout.
type Influx struct {
	client  influxdb2.Client
	write   api.WriteAPIBlocking
	breaker *gobreaker.CircuitBreaker

	mu        sync.Mutex
	lastError time.Time
}

func New(cfg Config) (*Influx, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.New("influx config incomplete")
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Influx{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "influx-mirror",
			Timeout: cfg.OpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= cfg.MaxFailures
			},
		}),
	}, nil
}

// Point converts a reading to an InfluxDB point. Missing measurements are
// left out of the field set.
func Point(r models.Reading) *write.Point {
	tags := map[string]string{"device_id": r.DeviceID}
	if r.LocationID != nil {
		tags["location_id"] = fmt.Sprint(*r.LocationID)
	}
	fields := map[string]interface{}{"is_anomaly": r.IsAnomaly}
	if r.Temperature != nil {
		fields["temperature"] = *r.Temperature
	}
	if r.Humidity != nil {
		fields["humidity"] = *r.Humidity
	}
	return influxdb2.NewPoint(measurement, tags, fields, r.Timestamp)
}

func (m *Influx) Write(ctx context.Context, r models.Reading) error {
	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.write.WritePoint(ctx, Point(r))
	})
	if err != nil {
		m.mu.Lock()
		m.lastError = time.Now()
		m.mu.Unlock()
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

// State reports the breaker state ("closed", "half-open" or "open").
func (m *Influx) State() string {
	return m.breaker.State().String()
}

// LastErrorAge is the time since the last failed write, or a very large
// duration if none has failed.
func (m *Influx) LastErrorAge() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastError.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return time.Since(m.lastError)
}

func (m *Influx) Close() {
	m.client.Close()
}
