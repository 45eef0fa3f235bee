// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// duplicateWindow is how long JetStream remembers Nats-Msg-Id headers.
// Publish retries land well inside it.
const duplicateWindow = 2 * time.Minute

// JetStreamContext is the subset of jetstream.JetStream the initializer
// needs, kept as an interface so tests can substitute a mock.
type JetStreamContext interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// StreamInitializer provisions the activity stream before publishers and
// subscribers start, so the first event of a fresh deployment is never
// dropped for want of a stream.
type StreamInitializer struct {
	js            JetStreamContext
	retentionDays int
}

// NewStreamInitializer creates an initializer for the activity stream.
func NewStreamInitializer(js JetStreamContext, retentionDays int) (*StreamInitializer, error) {
	if js == nil {
		return nil, errors.New("jetstream context required")
	}
	if retentionDays <= 0 {
		retentionDays = 7
	}
	return &StreamInitializer{js: js, retentionDays: retentionDays}, nil
}

// EnsureStream creates the activity stream or updates its configuration
// if it already exists. Idempotent across restarts.
func (s *StreamInitializer) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	streamCfg := s.streamConfig()

	_, err := s.js.Stream(ctx, StreamName)
	if err == nil {
		stream, err := s.js.UpdateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("update stream %s: %w", StreamName, err)
		}
		return stream, nil
	}

	if errors.Is(err, jetstream.ErrStreamNotFound) {
		stream, err := s.js.CreateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("create stream %s: %w", StreamName, err)
		}
		return stream, nil
	}

	return nil, fmt.Errorf("check stream %s: %w", StreamName, err)
}

// IsHealthy reports whether the stream exists and is queryable.
func (s *StreamInitializer) IsHealthy(ctx context.Context) bool {
	_, err := s.js.Stream(ctx, StreamName)
	return err == nil
}

func (s *StreamInitializer) streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        StreamName,
		Description: "CineTrack activity events",
		Subjects:    []string{TopicActivity},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      time.Duration(s.retentionDays) * 24 * time.Hour,
		MaxBytes:    -1,
		MaxMsgs:     -1,
		Duplicates:  duplicateWindow,
		Replicas:    1,
		Storage:     jetstream.FileStorage,
		AllowDirect: true,
		Discard:     jetstream.DiscardOld,
	}
}
