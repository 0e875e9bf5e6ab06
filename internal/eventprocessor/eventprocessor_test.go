// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package eventprocessor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/models"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus, err := NewBus(DefaultConfig(""), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func testEvent(id string) engagement.Event {
	return engagement.Event{
		ID:         id,
		Type:       engagement.EventLikeCreated,
		UserID:     "u1",
		ResourceID: "tpl-1",
		Kind:       models.EngagementLike,
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSerializer(t *testing.T) {
	t.Parallel()

	ev := testEvent("e1")
	data, err := MarshalEvent(&ev)
	if err != nil {
		t.Fatalf("MarshalEvent: %v", err)
	}
	got, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("UnmarshalEvent: %v", err)
	}
	if got.ID != ev.ID || got.Kind != ev.Kind || !got.OccurredAt.Equal(ev.OccurredAt) {
		t.Errorf("decoded %+v, want %+v", got, ev)
	}

	tests := []struct {
		name string
		ev   engagement.Event
	}{
		{"missing id", engagement.Event{Type: "x", UserID: "u", ResourceID: "r"}},
		{"missing type", engagement.Event{ID: "x", UserID: "u", ResourceID: "r"}},
		{"missing user", engagement.Event{ID: "x", Type: "t", ResourceID: "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := MarshalEvent(&tt.ev); !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("err = %v, want ErrInvalidEvent", err)
			}
		})
	}

	if _, err := UnmarshalEvent([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.PublishEngagement(ctx, testEvent("e42")); err != nil {
		t.Fatalf("PublishEngagement: %v", err)
	}

	select {
	case msg := <-messages:
		if msg.UUID != "e42" {
			t.Errorf("UUID = %s, want e42", msg.UUID)
		}
		if got := msg.Metadata.Get(metadataEventType); got != engagement.EventLikeCreated {
			t.Errorf("event_type metadata = %q", got)
		}
		if got := msg.Metadata.Get(metadataKind); got != "like" {
			t.Errorf("kind metadata = %q", got)
		}
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}

	if bus.BreakerState() != "closed" {
		t.Errorf("breaker state = %s, want closed", bus.BreakerState())
	}
}

func TestBus_RejectsInvalidEvent(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	err := bus.PublishEngagement(context.Background(), engagement.Event{Type: engagement.EventLikeCreated})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("err = %v, want ErrInvalidEvent", err)
	}
}

func TestBus_Close(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(DefaultConfig(""), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := bus.PublishEngagement(context.Background(), testEvent("e1")); !errors.Is(err, ErrBusClosed) {
		t.Errorf("publish after close: %v", err)
	}
	if _, err := bus.Subscribe(context.Background()); !errors.Is(err, ErrBusClosed) {
		t.Errorf("subscribe after close: %v", err)
	}
}

// chanSource feeds hand-built messages to a Consumer.
type chanSource struct {
	ch chan *message.Message
}

func (s *chanSource) Subscribe(context.Context) (<-chan *message.Message, error) {
	return s.ch, nil
}

func TestConsumer_AckAndNack(t *testing.T) {
	t.Parallel()

	src := &chanSource{ch: make(chan *message.Message, 3)}
	var attempts atomic.Int32
	handler := func(_ context.Context, ev engagement.Event) error {
		if ev.ID == "fail" {
			attempts.Add(1)
			return errors.New("downstream unavailable")
		}
		return nil
	}
	c := NewConsumer(src, handler, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	good := testEvent("ok")
	goodPayload, _ := MarshalEvent(&good)
	bad := testEvent("fail")
	badPayload, _ := MarshalEvent(&bad)

	okMsg := message.NewMessage("ok", goodPayload)
	failMsg := message.NewMessage("fail", badPayload)
	poison := message.NewMessage("poison", []byte("garbage"))

	src.ch <- okMsg
	src.ch <- failMsg
	src.ch <- poison

	waitFor := func(name string, ch <-chan struct{}) {
		t.Helper()
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("%s was not settled", name)
		}
	}
	waitFor("ok ack", okMsg.Acked())
	waitFor("fail nack", failMsg.Nacked())
	waitFor("poison ack", poison.Acked())

	if attempts.Load() != 1 {
		t.Errorf("handler attempts = %d, want 1", attempts.Load())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
}

func TestConsumer_ClosedSubscriptionReturnsError(t *testing.T) {
	t.Parallel()

	src := &chanSource{ch: make(chan *message.Message)}
	close(src.ch)
	c := NewConsumer(src, LogHandler(zerolog.Nop()), zerolog.Nop())

	if err := c.Serve(context.Background()); err == nil {
		t.Error("expected error when the subscription closes while running")
	}
	if c.String() == "" {
		t.Error("String must name the service")
	}
}

func TestConsumer_EndToEnd(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)

	received := make(chan string, 64)
	c := NewConsumer(bus, func(_ context.Context, ev engagement.Event) error {
		received <- ev.Type
		return nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- c.Serve(ctx) }()

	dl := testEvent("d1")
	dl.Type = engagement.EventDownloadRecorded
	dl.Kind = models.EngagementDownload

	// The in-process bus drops messages published before anyone subscribes,
	// so keep publishing until one arrives.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case typ := <-received:
			if typ != engagement.EventDownloadRecorded {
				t.Fatalf("event type = %s, want %s", typ, engagement.EventDownloadRecorded)
			}
			cancel()
			<-served
			return
		case <-tick.C:
			if err := bus.PublishEngagement(ctx, dl); err != nil {
				t.Fatalf("publish: %v", err)
			}
		case <-deadline:
			t.Fatal("download event not consumed")
		}
	}
}
