// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/logging"
	"github.com/tomtom215/postcraft/internal/metrics"
)

// ErrBusClosed is returned by operations on a closed Bus.
var ErrBusClosed = errors.New("event bus is closed")

// Bus publishes engagement events and hands out subscriptions to them.
// It implements engagement.EventSink.
type Bus struct {
	cfg        Config
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *gobreaker.CircuitBreaker[struct{}]
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ engagement.EventSink = (*Bus)(nil)

// NewBus creates the bus described by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	cfg = cfg.withDefaults()
	logger = logger.With().Str("component", "event_bus").Str("topic", cfg.Topic).Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	b := &Bus{cfg: cfg, logger: logger}

	if cfg.URL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.OutputBuffer}, wmLogger)
		b.publisher, b.subscriber = ch, ch
		logger.Info().Msg("Engagement events use the in-process bus")
	} else {
		pub, sub, err := newNATSPubSub(cfg, wmLogger)
		if err != nil {
			return nil, err
		}
		b.publisher, b.subscriber = pub, sub
		logger.Info().Str("url", cfg.URL).Msg("Engagement events use NATS")
	}

	b.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "event-bus-" + cfg.Topic,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] Event bus state changed")
		},
	})
	return b, nil
}

// newNATSPubSub builds a core NATS publisher and subscriber. Engagement
// events are notifications, so JetStream persistence is not used.
func newNATSPubSub(cfg Config, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
	marshaler := &wmNats.NATSMarshaler{}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   marshaler,
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: "postcraft",
		SubscribersCount: 1,
		NatsOptions:      natsOpts,
		Unmarshaler:      marshaler,
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create nats subscriber: %w", err)
	}
	return pub, sub, nil
}

// Topic returns the topic events are published on.
func (b *Bus) Topic() string {
	return b.cfg.Topic
}

// PublishEngagement implements engagement.EventSink.
func (b *Bus) PublishEngagement(ctx context.Context, ev engagement.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	payload, err := MarshalEvent(&ev)
	if err != nil {
		return err
	}

	msg := message.NewMessage(ev.ID, payload)
	msg.Metadata.Set(metadataEventType, ev.Type)
	msg.Metadata.Set(metadataKind, string(ev.Kind))
	msg.Metadata.Set(natsgo.MsgIdHdr, ev.ID)
	msg.SetContext(ctx)

	_, err = b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.publisher.Publish(b.cfg.Topic, msg)
	})
	metrics.RecordEventPublish(b.cfg.Topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Subscribe returns the message stream for the bus topic. The channel closes
// when ctx is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, b.cfg.Topic)
}

// BreakerState reports the publish circuit breaker state.
func (b *Bus) BreakerState() string {
	return b.breaker.State().String()
}

// Close shuts down the publisher and subscriber. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	// The in-process bus is one object serving both roles.
	if any(b.subscriber) != any(b.publisher) {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	return errors.Join(errs...)
}
