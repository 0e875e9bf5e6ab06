// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package eventprocessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/metrics"
)

// Handler processes one engagement event. A returned error nacks the
// message so the transport can redeliver it.
type Handler func(ctx context.Context, ev engagement.Event) error

// Consumer outcomes recorded in metrics.
const (
	outcomeHandled  = "handled"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

// Subscription is the part of Bus a Consumer needs.
type Subscription interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// Consumer drains the engagement topic. It is a suture.Service: Serve runs
// until ctx is cancelled and returns an error if the subscription ends early,
// which lets the supervisor restart it.
type Consumer struct {
	source  Subscription
	handler Handler
	logger  zerolog.Logger
}

// NewConsumer creates a consumer that feeds events from source to handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewConsumer(source Subscription, handler Handler, logger zerolog.Logger) *Consumer {
	return &Consumer{
		source:  source,
		handler: handler,
		logger:  logger.With().Str("component", "event_consumer").Logger(),
	}
}

// String implements fmt.Stringer for supervisor logs.
func (c *Consumer) String() string {
	return "engagement-event-consumer"
}

// Serve implements suture.Service.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.logger.Info().Msg("Engagement event consumer started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Engagement event consumer stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("engagement subscription closed")
			}
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg *message.Message) {
	ev, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		// Redelivering a malformed payload cannot succeed.
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed engagement event")
		metrics.RecordEventConsumed(msg.Metadata.Get(metadataEventType), outcomeRejected)
		msg.Ack()
		return
	}

	if err := c.handler(ctx, ev); err != nil {
		c.logger.Error().Err(err).Str("event_id", ev.ID).Str("event_type", ev.Type).Msg("Engagement event handler failed")
		metrics.RecordEventConsumed(ev.Type, outcomeFailed)
		msg.Nack()
		return
	}

	metrics.RecordEventConsumed(ev.Type, outcomeHandled)
	msg.Ack()
}

// LogHandler returns a Handler that writes each event to logger at debug level.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func LogHandler(logger zerolog.Logger) Handler {
	return func(_ context.Context, ev engagement.Event) error {
		logger.Debug().
			Str("event_id", ev.ID).
			Str("event_type", ev.Type).
			Str("user_id", ev.UserID).
			Str("resource_id", ev.ResourceID).
			Str("kind", string(ev.Kind)).
			Time("occurred_at", ev.OccurredAt).
			Msg("Engagement event")
		return nil
	}
}
