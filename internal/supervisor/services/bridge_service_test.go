// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockActivityRunner is a test double for ActivityRunner interface.
type mockActivityRunner struct {
	runErr   error
	runCount atomic.Int32
}

func (m *mockActivityRunner) Run(ctx context.Context) error {
	m.runCount.Add(1)
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockActivityRunner) RunCount() int {
	return int(m.runCount.Load())
}

func TestActivityBridgeService_Interface(t *testing.T) {
	// Verify ActivityBridgeService implements suture.Service
	var _ suture.Service = (*ActivityBridgeService)(nil)
}

func TestNewActivityBridgeService(t *testing.T) {
	bridge := &mockActivityRunner{}
	svc := NewActivityBridgeService(bridge)

	if svc == nil {
		t.Fatal("NewActivityBridgeService returned nil")
	}
	if svc.bridge != bridge {
		t.Error("bridge not assigned correctly")
	}
	if svc.name != "activity-bridge" {
		t.Errorf("expected name 'activity-bridge', got %q", svc.name)
	}
}

func TestActivityBridgeService_Serve(t *testing.T) {
	t.Run("returns context error on cancellation", func(t *testing.T) {
		bridge := &mockActivityRunner{}
		svc := NewActivityBridgeService(bridge)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Error("Serve did not return after context cancellation")
		}

		if bridge.RunCount() != 1 {
			t.Errorf("expected 1 run, got %d", bridge.RunCount())
		}
	})

	t.Run("propagates subscription errors", func(t *testing.T) {
		expectedErr := errors.New("subscribe failed")
		bridge := &mockActivityRunner{runErr: expectedErr}
		svc := NewActivityBridgeService(bridge)

		err := svc.Serve(context.Background())
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected %v, got %v", expectedErr, err)
		}
	})
}

func TestActivityBridgeService_String(t *testing.T) {
	bridge := &mockActivityRunner{}
	svc := NewActivityBridgeService(bridge)

	if svc.String() != "activity-bridge" {
		t.Errorf("expected 'activity-bridge', got %q", svc.String())
	}
}

func TestActivityBridgeService_WithSupervisor(t *testing.T) {
	bridge := &mockActivityRunner{}
	svc := NewActivityBridgeService(bridge)

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	errCh := sup.ServeBackground(ctx)

	// Wait for the bridge to start with polling (more reliable in CI under load)
	var started bool
	for i := 0; i < 10; i++ {
		time.Sleep(20 * time.Millisecond)
		if bridge.RunCount() >= 1 {
			started = true
			break
		}
	}

	if !started {
		t.Error("bridge Run was not called")
	}

	cancel()
	<-errCh
}
