// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/cinetrack/internal/logging"
)

// Lockout errors.
var (
	// ErrLockoutNotFound is returned when no entry exists for a subject.
	ErrLockoutNotFound = errors.New("lockout entry not found")

	// ErrAccountLocked blocks authentication during an active lockout.
	ErrAccountLocked = errors.New("account temporarily locked due to too many failed attempts")
)

// LockoutConfig tunes the failed-login lockout.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration

	// MaxLockoutDuration caps the exponential backoff: each repeat
	// lockout doubles the period up to this bound.
	MaxLockoutDuration time.Duration

	// CleanupInterval is how often expired entries are dropped.
	CleanupInterval time.Duration

	// TrackByIP also counts failures per client IP, so one attacker
	// rotating through usernames still gets locked.
	TrackByIP bool
}

// DefaultLockoutConfig returns the production defaults: five strikes,
// fifteen minutes, doubling per repeat offense up to a day.
func DefaultLockoutConfig() *LockoutConfig {
	return &LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
		CleanupInterval:    5 * time.Minute,
		TrackByIP:          true,
	}
}

// LockoutEntry tracks failed login attempts for one subject (a
// username, or "ip:<addr>" when tracking by IP).
type LockoutEntry struct {
	Subject        string
	FailedAttempts int
	LastAttempt    time.Time
	LockoutCount   int
	LockedUntil    time.Time
	LastFailedIP   string
}

// IsLocked reports whether the entry is inside an active lockout.
func (e *LockoutEntry) IsLocked() bool {
	return time.Now().Before(e.LockedUntil)
}

// LockoutStore persists lockout state.
type LockoutStore interface {
	GetEntry(ctx context.Context, subject string) (*LockoutEntry, error)
	SaveEntry(ctx context.Context, entry *LockoutEntry) error
	DeleteEntry(ctx context.Context, subject string) error
	CleanupExpired(ctx context.Context) (int, error)
}

// LockoutManager decides when repeated login failures lock a subject
// out. Lockout state is advisory security state, not user data: losing
// it on restart merely resets counters, so the in-memory store is fine
// even in production.
type LockoutManager struct {
	cfg   *LockoutConfig
	store LockoutStore
}

// NewLockoutManager creates a lockout manager. A nil config selects
// the defaults.
func NewLockoutManager(store LockoutStore, cfg *LockoutConfig) *LockoutManager {
	if cfg == nil {
		cfg = DefaultLockoutConfig()
	}
	return &LockoutManager{cfg: cfg, store: store}
}

// CheckLocked reports whether subject is locked out and for how much
// longer.
func (m *LockoutManager) CheckLocked(ctx context.Context, subject string) (bool, time.Duration, error) {
	entry, err := m.store.GetEntry(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrLockoutNotFound) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("check lockout: %w", err)
	}

	if !entry.IsLocked() {
		return false, 0, nil
	}
	return true, time.Until(entry.LockedUntil), nil
}

// RecordFailedAttempt counts a failed login and reports whether the
// subject is now locked. With TrackByIP set the client IP accrues
// strikes too.
func (m *LockoutManager) RecordFailedAttempt(ctx context.Context, username, ip string) (locked bool, remaining time.Duration, err error) {
	locked, remaining, err = m.recordAttempt(ctx, username, ip)
	if err != nil || locked {
		return locked, remaining, err
	}

	if !m.cfg.TrackByIP || ip == "" {
		return false, 0, nil
	}
	return m.recordAttempt(ctx, "ip:"+ip, ip)
}

// RecordSuccessfulLogin clears any strike count for the subject.
func (m *LockoutManager) RecordSuccessfulLogin(ctx context.Context, username string) error {
	if err := m.store.DeleteEntry(ctx, username); err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

// StartCleanupRoutine drops expired entries on the configured interval
// until ctx is canceled.
func (m *LockoutManager) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count, err := m.store.CleanupExpired(ctx)
				if err != nil {
					logging.Error().Err(err).Msg("Lockout cleanup failed")
				} else if count > 0 {
					logging.Debug().Int("count", count).Msg("Dropped expired lockout entries")
				}
			}
		}
	}()
}

func (m *LockoutManager) recordAttempt(ctx context.Context, subject, ip string) (bool, time.Duration, error) {
	entry, err := m.store.GetEntry(ctx, subject)
	if err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return false, 0, fmt.Errorf("get lockout entry: %w", err)
	}
	if entry == nil {
		entry = &LockoutEntry{Subject: subject}
	}

	if entry.IsLocked() {
		return true, time.Until(entry.LockedUntil), nil
	}

	now := time.Now()
	entry.FailedAttempts++
	entry.LastAttempt = now
	entry.LastFailedIP = ip

	if entry.FailedAttempts < m.cfg.MaxAttempts {
		if err := m.store.SaveEntry(ctx, entry); err != nil {
			return false, 0, fmt.Errorf("save lockout entry: %w", err)
		}
		return false, 0, nil
	}

	duration := m.lockoutDuration(entry.LockoutCount)
	entry.LockedUntil = now.Add(duration)
	entry.LockoutCount++
	entry.FailedAttempts = 0 // next cycle starts fresh after unlock

	logging.Warn().
		Str("subject", entry.Subject).
		Dur("duration", duration).
		Int("lockout_count", entry.LockoutCount).
		Msg("Account locked after repeated failures")

	if err := m.store.SaveEntry(ctx, entry); err != nil {
		return false, 0, fmt.Errorf("save locked entry: %w", err)
	}
	return true, duration, nil
}

// lockoutDuration doubles the base period per prior lockout, capped.
func (m *LockoutManager) lockoutDuration(priorLockouts int) time.Duration {
	duration := m.cfg.LockoutDuration
	for i := 0; i < priorLockouts; i++ {
		duration *= 2
		if duration >= m.cfg.MaxLockoutDuration {
			return m.cfg.MaxLockoutDuration
		}
	}
	return duration
}

// MemoryLockoutStore keeps lockout state in process memory.
type MemoryLockoutStore struct {
	mu      sync.RWMutex
	entries map[string]*LockoutEntry
}

// NewMemoryLockoutStore creates an empty in-memory lockout store.
func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{entries: make(map[string]*LockoutEntry)}
}

// GetEntry retrieves a lockout entry.
func (s *MemoryLockoutStore) GetEntry(ctx context.Context, subject string) (*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[subject]
	if !ok {
		return nil, ErrLockoutNotFound
	}
	copied := *entry
	return &copied, nil
}

// SaveEntry persists a lockout entry.
func (s *MemoryLockoutStore) SaveEntry(ctx context.Context, entry *LockoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	s.entries[entry.Subject] = &copied
	return nil
}

// DeleteEntry removes a lockout entry.
func (s *MemoryLockoutStore) DeleteEntry(ctx context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[subject]; !ok {
		return ErrLockoutNotFound
	}
	delete(s.entries, subject)
	return nil
}

// CleanupExpired drops entries that are unlocked and stale. Entries
// linger a day past their last attempt so slow-drip attacks still
// accumulate strikes.
func (s *MemoryLockoutStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := time.Now().Add(-24 * time.Hour)
	count := 0
	for subject, entry := range s.entries {
		if !entry.IsLocked() && entry.LastAttempt.Before(threshold) {
			delete(s.entries, subject)
			count++
		}
	}
	return count, nil
}
