// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier announces collection writes to other instances sharing the same
// database and relays their announcements back.
type Notifier interface {
	// Notify announces that collection changed.
	Notify(ctx context.Context, collection string) error
	// Listen calls onChange for every change announced by another
	// instance. It blocks until ctx is done.
	Listen(ctx context.Context, onChange func(collection string)) error
}

// NopNotifier is used by a single instance.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, string) error { return nil }

// Listen blocks until ctx is done.
func (NopNotifier) Listen(ctx context.Context, _ func(string)) error {
	<-ctx.Done()
	return nil
}

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "ocms-admin:collections"

type changeMessage struct {
	Origin     string `json:"origin"`
	Collection string `json:"collection"`
}

// RedisNotifier propagates changes over Redis pub/sub.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
	origin  string
	logger  *slog.Logger
}

// NewRedisNotifier creates a notifier on channel. An empty channel uses
// DefaultChannel.
func NewRedisNotifier(client redis.UniversalClient, channel string, logger *slog.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisNotifier{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Notify publishes a change message tagged with this instance's origin.
func (n *RedisNotifier) Notify(ctx context.Context, collection string) error {
	payload, err := json.Marshal(changeMessage{Origin: n.origin, Collection: collection})
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing change: %w", err)
	}
	return nil
}

// Listen subscribes to the channel and forwards changes from other
// instances. Messages published by this instance are ignored.
func (n *RedisNotifier) Listen(ctx context.Context, onChange func(collection string)) error {
	pubsub := n.client.Subscribe(ctx, n.channel)
	defer func() { _ = pubsub.Close() }()

	// Wait for the subscription to be confirmed.
	if _, err := pubsub.Receive(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("subscribing to %s: %w", n.channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change changeMessage
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				n.logger.Warn("ignoring malformed change message", "error", err)
				continue
			}
			if change.Origin == n.origin || change.Collection == "" {
				continue
			}
			onChange(change.Collection)
		}
	}
}
