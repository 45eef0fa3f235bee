// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinetrack/internal/config"
	"github.com/tomtom215/cinetrack/internal/logging"
)

// Bus modes, reported by health checks and startup logs.
const (
	// ModeInProcess delivers events over an in-memory channel. Events
	// reach subscribers in this process only and are not persisted.
	ModeInProcess = "inproc"

	// ModeNATS publishes to an external NATS JetStream server.
	ModeNATS = "nats"

	// ModeNATSEmbedded publishes to an in-process NATS JetStream server.
	ModeNATSEmbedded = "nats-embedded"
)

const (
	subscriberAckWait      = 30 * time.Second
	subscriberCloseTimeout = 10 * time.Second
	subscriberMaxDeliver   = 3
	subscriberMaxAckPend   = 512
)

// Bus routes activity events from API handlers to subscribers (the
// websocket hub). The backend is chosen at startup from EventsConfig:
// an in-memory channel by default, NATS JetStream when enabled, with an
// optional embedded server for single-binary deployments.
type Bus struct {
	mode       string
	publisher  *Publisher
	subscriber message.Subscriber
	embedded   *EmbeddedServer
	nc         *natsgo.Conn
	streamInit *StreamInitializer
	log        zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewBus builds the event bus for the configured backend. In NATS mode
// it starts the embedded server if requested, provisions the activity
// stream, and keeps a monitor connection open for health checks.
func NewBus(ctx context.Context, cfg *config.EventsConfig) (*Bus, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	log := logging.WithComponent("events")
	wmLogger := newWatermillLogger()

	if !cfg.Enabled {
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, wmLogger)
		log.Info().Str("mode", ModeInProcess).Msg("Event bus started")
		return &Bus{
			mode:       ModeInProcess,
			publisher:  newPublisher(ch, nil),
			subscriber: ch,
			log:        log,
		}, nil
	}

	mode := ModeNATS
	url := cfg.URL

	var embedded *EmbeddedServer
	if cfg.EmbeddedServer {
		var err error
		embedded, err = NewEmbeddedServer(cfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded server: %w", err)
		}
		url = embedded.ClientURL()
		mode = ModeNATSEmbedded
	}

	bus, err := newNATSBus(ctx, cfg, url, mode, embedded, log, wmLogger)
	if err != nil {
		if embedded != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = embedded.Shutdown(sctx)
			cancel()
		}
		return nil, err
	}
	return bus, nil
}

func newNATSBus(ctx context.Context, cfg *config.EventsConfig, url, mode string,
	embedded *EmbeddedServer, log zerolog.Logger, wmLogger watermill.LoggerAdapter) (*Bus, error) {

	reconnectWait := cfg.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}

	// Monitor connection: provisions the stream at startup and backs
	// Healthy() afterwards. No RetryOnFailedConnect here; an unreachable
	// broker should fail startup loudly and let the supervisor retry.
	nc, err := natsgo.Connect(url,
		natsgo.Name("cinetrack-monitor"),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(reconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	streamInit, err := NewStreamInitializer(js, cfg.StreamRetentionDays)
	if err != nil {
		nc.Close()
		return nil, err
	}
	if _, err := streamInit.EnsureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("provision activity stream: %w", err)
	}

	pub, err := newNATSPublisher(cfg, url, reconnectWait, wmLogger)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create publisher: %w", err)
	}

	sub, err := newNATSSubscriber(cfg, url, reconnectWait, wmLogger)
	if err != nil {
		_ = pub.Close()
		nc.Close()
		return nil, fmt.Errorf("create subscriber: %w", err)
	}

	breaker := newPublishBreaker(cfg.BreakerFailureThreshold, cfg.BreakerOpenTimeout)

	log.Info().
		Str("mode", mode).
		Str("url", url).
		Str("stream", StreamName).
		Msg("Event bus started")

	return &Bus{
		mode:       mode,
		publisher:  newPublisher(pub, breaker),
		subscriber: sub,
		embedded:   embedded,
		nc:         nc,
		streamInit: streamInit,
		log:        log,
	}, nil
}

func natsOptions(cfg *config.EventsConfig, reconnectWait time.Duration, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(reconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}
}

func newNATSPublisher(cfg *config.EventsConfig, url string, reconnectWait time.Duration,
	logger watermill.LoggerAdapter) (message.Publisher, error) {

	wmCfg := wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(cfg, reconnectWait, logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // stream is pre-created by StreamInitializer
			TrackMsgId:    true,  // dedupe on Nats-Msg-Id
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}
	return wmNats.NewPublisher(wmCfg, logger)
}

func newNATSSubscriber(cfg *config.EventsConfig, url string, reconnectWait time.Duration,
	logger watermill.LoggerAdapter) (message.Subscriber, error) {

	// Ephemeral, non-queued consumers: every instance's feed sees every
	// event, and a restarted instance picks up live traffic rather than
	// replaying history.
	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(subscriberMaxDeliver),
		natsgo.MaxAckPending(subscriberMaxAckPend),
		natsgo.AckWait(subscriberAckWait),
		natsgo.DeliverNew(),
		// Bind to the provisioned stream; AutoProvision would fight the
		// retention settings StreamInitializer applied.
		natsgo.BindStream(StreamName),
	}

	wmCfg := wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   subscriberAckWait,
		CloseTimeout:     subscriberCloseTimeout,
		NatsOptions:      natsOptions(cfg, reconnectWait, logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    false,
			AckAsync:         false,
			SubscribeOptions: subOpts,
		},
	}
	return wmNats.NewSubscriber(wmCfg, logger)
}

// Mode reports which backend the bus is running on.
func (b *Bus) Mode() string {
	return b.mode
}

// Publisher exposes the underlying publisher, mainly for tests.
func (b *Bus) Publisher() *Publisher {
	return b.publisher
}

// Emit publishes an event best-effort. Handler paths call this after the
// database write has committed; a broker outage must not fail the API
// request, so errors are logged and swallowed.
func (b *Bus) Emit(ctx context.Context, event *ActivityEvent) {
	if event == nil {
		return
	}
	if err := b.publisher.PublishEvent(ctx, event); err != nil {
		b.log.Warn().
			Err(err).
			Str("event_type", event.Type).
			Str("event_id", event.EventID).
			Msg("Activity event dropped")
	}
}

// Subscribe returns a message channel for the given topic. The channel
// closes when the context is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}
	b.mu.Unlock()
	return b.subscriber.Subscribe(ctx, topic)
}

// ConsumeActivity subscribes to the activity topic and invokes fn for
// each event until the context is cancelled. Events are acked when fn
// succeeds and nacked for redelivery when it fails. Payloads that fail
// to deserialize are acked and logged; redelivering them cannot help.
func (b *Bus) ConsumeActivity(ctx context.Context, fn func(ctx context.Context, event *ActivityEvent) error) error {
	messages, err := b.Subscribe(ctx, TopicActivity)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TopicActivity, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := DeserializeEvent(msg.Payload)
			if err != nil {
				b.log.Error().
					Err(err).
					Str("message_uuid", msg.UUID).
					Msg("Discarding undecodable activity event")
				msg.Ack()
				continue
			}
			if err := fn(ctx, event); err != nil {
				b.log.Error().
					Err(err).
					Str("event_type", event.Type).
					Str("event_id", event.EventID).
					Msg("Activity event handling failed")
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

// Healthy reports whether the bus can reach its backend. The in-process
// backend is healthy while open; NATS modes require a live connection.
func (b *Bus) Healthy() bool {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return false
	}
	if b.nc != nil {
		return b.nc.IsConnected()
	}
	return true
}

// Close shuts the bus down: publisher and subscriber first so in-flight
// messages drain, then the monitor connection, then the embedded server.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var firstErr error
	if err := b.publisher.Close(); err != nil {
		firstErr = err
	}
	if err := b.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if b.nc != nil {
		b.nc.Close()
	}
	if b.embedded != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.embedded.Shutdown(sctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.log.Info().Str("mode", b.mode).Msg("Event bus stopped")
	return firstErr
}
