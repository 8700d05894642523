// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/danielhkuo/safeweb/ingest"
	"github.com/danielhkuo/safeweb/models"
)

type MQTTConfig struct {
	Broker   string
	Topic    string
	Username string
	Password string
	ClientID string

	// MaxRetries bounds connection attempts; MaxElapsed bounds their total time.
	MaxRetries uint64
	MaxElapsed time.Duration
}

// MQTT subscribes to a topic filter and records every message as a reading.
// When the payload has no device_id it is taken from the topic level that
// matches the first "+" wildcard, so "sensors/+/data" reads the device from
// "sensors/dev-1/data".
type MQTT struct {
	state
	cfg        MQTTConfig
	recorder   Recorder
	subscribed atomic.Bool
}

func NewMQTT(cfg MQTTConfig, rec Recorder) *MQTT {
	if cfg.ClientID == "" {
		cfg.ClientID = "safeweb-" + uuid.NewString()[:8]
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	if cfg.MaxElapsed == 0 {
		cfg.MaxElapsed = 30 * time.Second
	}
	return &MQTT{cfg: cfg, recorder: rec}
}

func (f *MQTT) connect(ctx context.Context) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(f.cfg.Broker)
	opts.SetUsername(f.cfg.Username)
	opts.SetPassword(f.cfg.Password)
	opts.SetClientID(f.cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		f.running.Store(false)
		slog.Warn("mqtt connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		// resubscribe after an automatic reconnect
		if f.subscribed.Load() {
			f.subscribe(ctx, c)
		}
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = f.cfg.MaxElapsed

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			slog.Warn("failed to connect to MQTT broker", "broker", f.cfg.Broker, "error", token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, f.cfg.MaxRetries-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}
	return client, nil
}

func (f *MQTT) subscribe(ctx context.Context, c mqtt.Client) {
	token := c.Subscribe(f.cfg.Topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		f.handle(ctx, msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		slog.Error("mqtt subscribe failed", "topic", f.cfg.Topic, "error", token.Error())
		return
	}
	f.running.Store(true)
	slog.Info("subscribed", "topic", f.cfg.Topic)
}

// Run connects, subscribes and blocks until ctx is done.
func (f *MQTT) Run(ctx context.Context) error {
	client, err := f.connect(ctx)
	if err != nil {
		return err
	}
	slog.Info("connected to MQTT broker", "broker", f.cfg.Broker, "client_id", f.cfg.ClientID)

	f.subscribe(ctx, client)
	f.subscribed.Store(true)

	<-ctx.Done()

	f.running.Store(false)
	client.Unsubscribe(f.cfg.Topic).WaitTimeout(time.Second)
	client.Disconnect(250)
	slog.Info("mqtt fetcher stopped")
	return nil
}

func (f *MQTT) handle(ctx context.Context, topic string, payload []byte) {
	var req models.IngestReadingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		slog.Warn("invalid reading payload", "topic", topic, "error", err)
		return
	}
	if req.DeviceID == "" {
		req.DeviceID = DeviceFromTopic(f.cfg.Topic, topic)
	}

	if _, err := f.recorder.Record(ctx, ingest.SourceMQTT, req); err != nil {
		slog.Warn("reading rejected", "topic", topic, "error", err)
	}
}

// DeviceFromTopic returns the level of topic matched by the first "+" in
// filter, or "" if filter has no single-level wildcard.
func DeviceFromTopic(filter, topic string) string {
	f := strings.Split(filter, "/")
	t := strings.Split(topic, "/")
	for i, level := range f {
		if level == "+" && i < len(t) {
			return t[i]
		}
	}
	return ""
}
