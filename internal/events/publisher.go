// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinetrack/internal/metrics"
)

// Metadata keys set on published messages. The NATS marshaler copies
// metadata into headers, so metadataMsgID doubles as the JetStream
// deduplication header.
const (
	metadataEventType = "event_type"
	metadataUserID    = "user_id"
)

// Publisher publishes activity events through the configured backend.
// When a circuit breaker is attached (NATS mode), publishes that fail
// repeatedly trip it and subsequent publishes are rejected immediately
// instead of blocking API handlers on a dead broker.
type Publisher struct {
	pub     message.Publisher
	breaker *gobreaker.CircuitBreaker[interface{}]

	mu     sync.Mutex
	closed bool
}

func newPublisher(pub message.Publisher, breaker *gobreaker.CircuitBreaker[interface{}]) *Publisher {
	return &Publisher{pub: pub, breaker: breaker}
}

// PublishEvent serializes and publishes a single activity event.
func (p *Publisher) PublishEvent(ctx context.Context, event *ActivityEvent) error {
	data, err := SerializeEvent(event)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set(metadataEventType, event.Type)
	msg.Metadata.Set(metadataUserID, strconv.FormatInt(event.UserID, 10))
	// JetStream dedupes on this header within the stream's duplicate
	// window, so publish retries cannot double-count an event.
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)

	return p.publish(event.Topic(), msg)
}

func (p *Publisher) publish(topic string, msg *message.Message) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrBusClosed
	}
	p.mu.Unlock()

	start := time.Now()
	var err error
	if p.breaker != nil {
		_, err = p.breaker.Execute(func() (interface{}, error) {
			return nil, p.pub.Publish(topic, msg)
		})
		metrics.RecordCircuitBreakerRequest(breakerName, breakerResult(err))
	} else {
		err = p.pub.Publish(topic, msg)
	}
	metrics.RecordEventPublish(topic, time.Since(start), err)
	return err
}

// Close shuts down the underlying publisher. Safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.pub.Close()
}
