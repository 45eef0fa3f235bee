// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package auth

import (
	"context"
	"testing"
	"time"
)

func newTestLockoutManager(maxAttempts int, trackByIP bool) (*LockoutManager, *MemoryLockoutStore) {
	store := NewMemoryLockoutStore()
	manager := NewLockoutManager(store, &LockoutConfig{
		MaxAttempts:        maxAttempts,
		LockoutDuration:    time.Hour,
		MaxLockoutDuration: 24 * time.Hour,
		CleanupInterval:    time.Minute,
		TrackByIP:          trackByIP,
	})
	return manager, store
}

func TestLockout_LocksAfterMaxAttempts(t *testing.T) {
	manager, _ := newTestLockoutManager(3, false)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		locked, _, err := manager.RecordFailedAttempt(ctx, "alice", "10.0.0.1")
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if locked {
			t.Fatalf("locked after %d attempts, limit is 3", i+1)
		}
	}

	locked, remaining, err := manager.RecordFailedAttempt(ctx, "alice", "10.0.0.1")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !locked {
		t.Fatal("third failure should lock")
	}
	if remaining <= 59*time.Minute || remaining > time.Hour {
		t.Errorf("remaining = %v, want about an hour", remaining)
	}

	isLocked, _, err := manager.CheckLocked(ctx, "alice")
	if err != nil || !isLocked {
		t.Errorf("CheckLocked = %v (%v), want locked", isLocked, err)
	}

	// Unrelated accounts are unaffected.
	isLocked, _, err = manager.CheckLocked(ctx, "bob")
	if err != nil || isLocked {
		t.Errorf("bob should not be locked: %v (%v)", isLocked, err)
	}
}

func TestLockout_SuccessResetsStrikes(t *testing.T) {
	manager, _ := newTestLockoutManager(3, false)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, _, err := manager.RecordFailedAttempt(ctx, "alice", ""); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if err := manager.RecordSuccessfulLogin(ctx, "alice"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	// The counter restarted, so two more failures stay under the limit.
	for i := 0; i < 2; i++ {
		locked, _, err := manager.RecordFailedAttempt(ctx, "alice", "")
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if locked {
			t.Fatal("locked even though the counter was reset")
		}
	}
}

func TestLockout_ExponentialBackoff(t *testing.T) {
	manager, store := newTestLockoutManager(2, false)
	ctx := context.Background()

	// First lockout: base duration.
	manager.RecordFailedAttempt(ctx, "alice", "")
	locked, first, err := manager.RecordFailedAttempt(ctx, "alice", "")
	if err != nil || !locked {
		t.Fatalf("expected first lockout, got locked=%v err=%v", locked, err)
	}

	// Simulate the lockout elapsing without clearing the history.
	entry, err := store.GetEntry(ctx, "alice")
	if err != nil {
		t.Fatalf("get entry failed: %v", err)
	}
	entry.LockedUntil = time.Now().Add(-time.Second)
	if err := store.SaveEntry(ctx, entry); err != nil {
		t.Fatalf("save entry failed: %v", err)
	}

	manager.RecordFailedAttempt(ctx, "alice", "")
	locked, second, err := manager.RecordFailedAttempt(ctx, "alice", "")
	if err != nil || !locked {
		t.Fatalf("expected second lockout, got locked=%v err=%v", locked, err)
	}
	if second <= first {
		t.Errorf("second lockout %v not longer than first %v", second, first)
	}
}

func TestLockout_BackoffIsCapped(t *testing.T) {
	store := NewMemoryLockoutStore()
	manager := NewLockoutManager(store, &LockoutConfig{
		MaxAttempts:        1,
		LockoutDuration:    time.Hour,
		MaxLockoutDuration: 2 * time.Hour,
		CleanupInterval:    time.Minute,
	})
	ctx := context.Background()

	// Drive the lockout count high, then confirm the cap holds.
	if err := store.SaveEntry(ctx, &LockoutEntry{Subject: "alice", LockoutCount: 10}); err != nil {
		t.Fatalf("save entry failed: %v", err)
	}
	locked, remaining, err := manager.RecordFailedAttempt(ctx, "alice", "")
	if err != nil || !locked {
		t.Fatalf("expected lockout, got locked=%v err=%v", locked, err)
	}
	if remaining > 2*time.Hour {
		t.Errorf("remaining = %v exceeds the cap", remaining)
	}
}

func TestLockout_TracksByIP(t *testing.T) {
	manager, _ := newTestLockoutManager(2, true)
	ctx := context.Background()

	// One attacker rotating usernames from a single address.
	if _, _, err := manager.RecordFailedAttempt(ctx, "alice", "203.0.113.9"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	locked, _, err := manager.RecordFailedAttempt(ctx, "bob", "203.0.113.9")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !locked {
		t.Error("second failure from the same IP should lock the IP subject")
	}

	isLocked, _, err := manager.CheckLocked(ctx, "ip:203.0.113.9")
	if err != nil || !isLocked {
		t.Errorf("IP subject not locked: %v (%v)", isLocked, err)
	}
}

func TestMemoryLockoutStore_CleanupExpired(t *testing.T) {
	store := NewMemoryLockoutStore()
	ctx := context.Background()

	stale := &LockoutEntry{Subject: "old", LastAttempt: time.Now().Add(-25 * time.Hour)}
	if err := store.SaveEntry(ctx, stale); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	active := &LockoutEntry{
		Subject:     "current",
		LastAttempt: time.Now().Add(-25 * time.Hour),
		LockedUntil: time.Now().Add(time.Hour),
	}
	if err := store.SaveEntry(ctx, active); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	count, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if count != 1 {
		t.Errorf("cleaned %d, want 1", count)
	}
	if _, err := store.GetEntry(ctx, "old"); err == nil {
		t.Error("stale entry survived cleanup")
	}
	// Locked entries stay no matter how old the last attempt is.
	if _, err := store.GetEntry(ctx, "current"); err != nil {
		t.Errorf("locked entry was cleaned: %v", err)
	}
}
