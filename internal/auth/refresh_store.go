// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/metrics"
)

// Refresh token errors.
var (
	// ErrRefreshNotFound means the token was never issued, was already
	// redeemed, or was revoked. Callers treat all three the same.
	ErrRefreshNotFound = errors.New("refresh token not found")

	// ErrRefreshExpired means the token outlived its TTL.
	ErrRefreshExpired = errors.New("refresh token expired")

	// ErrRefreshStoreClosed indicates the store has been closed.
	ErrRefreshStoreClosed = errors.New("refresh token store is closed")
)

const (
	// refreshTokenPrefix marks CineTrack refresh tokens so they are
	// recognizable in logs and support tickets without being guessable.
	refreshTokenPrefix = "ctrk_rt_"

	// refreshSecretLength is the random portion in bytes.
	refreshSecretLength = 32
)

// BadgerDB key prefixes. The user index exists so all of a user's
// tokens can be revoked without scanning the whole store.
const (
	badgerRefreshKeyPrefix     = "refresh:"
	badgerRefreshUserKeyPrefix = "refresh_user:"
)

// NewRefreshToken generates an opaque refresh token. The plaintext is
// returned to the client exactly once; only its digest is stored.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshSecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return refreshTokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashRefreshToken digests a plaintext token into the store key.
// SHA-256 keeps lookups O(1) (unlike bcrypt, which salts) while still
// making stored keys useless to an attacker who reads the store.
func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshRecord is the server-side state of one outstanding refresh
// token. The plaintext token is deliberately absent.
type RefreshRecord struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issued_at"`
	// ExpiresAt bounds the token's life; redeeming past it fails.
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *RefreshRecord) expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// RefreshStore tracks outstanding refresh tokens.
type RefreshStore interface {
	// Save stores the record under the token's digest. The record's
	// ExpiresAt must already be set.
	Save(ctx context.Context, token string, record *RefreshRecord) error

	// Redeem atomically looks up and consumes a token. Returns
	// ErrRefreshNotFound for unknown or already-consumed tokens and
	// ErrRefreshExpired for known-but-stale ones; either way the token
	// is unusable afterwards.
	Redeem(ctx context.Context, token string) (*RefreshRecord, error)

	// Revoke discards a token. Revoking an unknown token is a no-op,
	// which keeps logout idempotent.
	Revoke(ctx context.Context, token string) error

	// RevokeUser discards every outstanding token for a user and
	// returns how many were removed. Used when a role changes or an
	// account is deactivated.
	RevokeUser(ctx context.Context, userID int64) (int, error)

	// CleanupExpired removes stale entries and returns how many.
	CleanupExpired(ctx context.Context) (int, error)

	// Size returns the number of outstanding tokens.
	Size(ctx context.Context) (int, error)

	// Close releases resources. The store rejects operations afterwards.
	Close() error
}

// MemoryRefreshStore keeps refresh tokens in process memory. Tokens do
// not survive a restart, which forces all users to log in again; fine
// for development, use the BadgerDB store in production.
type MemoryRefreshStore struct {
	mu      sync.Mutex
	entries map[string]*RefreshRecord
	byUser  map[int64]map[string]struct{}
	closed  bool
}

// NewMemoryRefreshStore creates an empty in-memory refresh store.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{
		entries: make(map[string]*RefreshRecord),
		byUser:  make(map[int64]map[string]struct{}),
	}
}

// Save stores a record under the token digest.
func (s *MemoryRefreshStore) Save(ctx context.Context, token string, record *RefreshRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrRefreshStoreClosed
	}

	hash := hashRefreshToken(token)
	copied := *record
	s.entries[hash] = &copied

	if s.byUser[record.UserID] == nil {
		s.byUser[record.UserID] = make(map[string]struct{})
	}
	s.byUser[record.UserID][hash] = struct{}{}

	metrics.RefreshTokensActive.Set(float64(len(s.entries)))
	return nil
}

// Redeem consumes a token.
func (s *MemoryRefreshStore) Redeem(ctx context.Context, token string) (*RefreshRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrRefreshStoreClosed
	}

	hash := hashRefreshToken(token)
	record, ok := s.entries[hash]
	if !ok {
		return nil, ErrRefreshNotFound
	}

	s.removeLocked(hash, record.UserID)
	metrics.RefreshTokensActive.Set(float64(len(s.entries)))

	if record.expired(time.Now()) {
		return nil, ErrRefreshExpired
	}
	copied := *record
	return &copied, nil
}

// Revoke discards a token if present.
func (s *MemoryRefreshStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrRefreshStoreClosed
	}

	hash := hashRefreshToken(token)
	if record, ok := s.entries[hash]; ok {
		s.removeLocked(hash, record.UserID)
		metrics.RefreshTokensActive.Set(float64(len(s.entries)))
	}
	return nil
}

// RevokeUser discards every token belonging to userID.
func (s *MemoryRefreshStore) RevokeUser(ctx context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrRefreshStoreClosed
	}

	hashes := s.byUser[userID]
	count := len(hashes)
	for hash := range hashes {
		delete(s.entries, hash)
	}
	delete(s.byUser, userID)

	metrics.RefreshTokensActive.Set(float64(len(s.entries)))
	return count, nil
}

// CleanupExpired drops tokens past their expiry.
func (s *MemoryRefreshStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrRefreshStoreClosed
	}

	now := time.Now()
	count := 0
	for hash, record := range s.entries {
		if record.expired(now) {
			s.removeLocked(hash, record.UserID)
			count++
		}
	}

	metrics.RefreshTokensSwept.Add(float64(count))
	metrics.RefreshTokensActive.Set(float64(len(s.entries)))
	return count, nil
}

// Size returns the number of outstanding tokens.
func (s *MemoryRefreshStore) Size(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrRefreshStoreClosed
	}
	return len(s.entries), nil
}

// Close discards all state.
func (s *MemoryRefreshStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	s.byUser = nil
	return nil
}

// removeLocked deletes one entry and its user-index member. Callers
// hold s.mu.
func (s *MemoryRefreshStore) removeLocked(hash string, userID int64) {
	delete(s.entries, hash)
	if set, ok := s.byUser[userID]; ok {
		delete(set, hash)
		if len(set) == 0 {
			delete(s.byUser, userID)
		}
	}
}

// BadgerRefreshStore persists refresh tokens in BadgerDB so sessions
// survive restarts. Entries carry a TTL matching the token lifetime;
// CleanupExpired additionally sweeps whatever compaction has not
// collected yet.
type BadgerRefreshStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// NewBadgerRefreshStore wraps an existing BadgerDB handle. The handle
// is shared; Close does not close it.
func NewBadgerRefreshStore(db *badger.DB) *BadgerRefreshStore {
	return &BadgerRefreshStore{db: db}
}

func refreshKey(hash string) []byte {
	return []byte(badgerRefreshKeyPrefix + hash)
}

func refreshUserKey(userID int64, hash string) []byte {
	return []byte(badgerRefreshUserKeyPrefix + strconv.FormatInt(userID, 10) + ":" + hash)
}

func (s *BadgerRefreshStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Save stores a record under the token digest with a matching TTL.
func (s *BadgerRefreshStore) Save(ctx context.Context, token string, record *RefreshRecord) error {
	if s.isClosed() {
		return ErrRefreshStoreClosed
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal refresh record: %w", err)
	}

	hash := hashRefreshToken(token)
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refresh record already expired at %s", record.ExpiresAt)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(refreshKey(hash), data).WithTTL(ttl)
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		userEntry := badger.NewEntry(refreshUserKey(record.UserID, hash), []byte(hash)).WithTTL(ttl)
		return txn.SetEntry(userEntry)
	})
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}

	metrics.RefreshTokensActive.Inc()
	return nil
}

// Redeem consumes a token. Lookup and delete share one transaction, so
// two concurrent redeems of the same token cannot both succeed.
func (s *BadgerRefreshStore) Redeem(ctx context.Context, token string) (*RefreshRecord, error) {
	if s.isClosed() {
		return nil, ErrRefreshStoreClosed
	}

	hash := hashRefreshToken(token)
	var record RefreshRecord
	wasExpired := false

	// Returning an error from the Update callback would roll the
	// deletes back, so the expired case is flagged and reported after
	// the transaction commits.
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(refreshKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRefreshNotFound
		}
		if err != nil {
			return err
		}

		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}

		if err := txn.Delete(refreshKey(hash)); err != nil {
			return err
		}
		if err := txn.Delete(refreshUserKey(record.UserID, hash)); err != nil {
			return err
		}

		wasExpired = record.expired(time.Now())
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("redeem refresh token: %w", err)
	}

	metrics.RefreshTokensActive.Dec()
	if wasExpired {
		return nil, ErrRefreshExpired
	}
	return &record, nil
}

// Revoke discards a token if present.
func (s *BadgerRefreshStore) Revoke(ctx context.Context, token string) error {
	if s.isClosed() {
		return ErrRefreshStoreClosed
	}

	hash := hashRefreshToken(token)
	removed := false

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(refreshKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var record RefreshRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}

		if err := txn.Delete(refreshKey(hash)); err != nil {
			return err
		}
		if err := txn.Delete(refreshUserKey(record.UserID, hash)); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	if removed {
		metrics.RefreshTokensActive.Dec()
	}
	return nil
}

// RevokeUser discards every token belonging to userID.
func (s *BadgerRefreshStore) RevokeUser(ctx context.Context, userID int64) (int, error) {
	if s.isClosed() {
		return 0, ErrRefreshStoreClosed
	}

	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(badgerRefreshUserKeyPrefix + strconv.FormatInt(userID, 10) + ":")
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var hashes []string
		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				hashes = append(hashes, string(val))
				return nil
			}); err != nil {
				return err
			}
		}

		for _, hash := range hashes {
			if err := txn.Delete(refreshKey(hash)); err != nil {
				return err
			}
			if err := txn.Delete(refreshUserKey(userID, hash)); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("revoke user tokens: %w", err)
	}

	metrics.RefreshTokensActive.Sub(float64(count))
	return count, nil
}

// CleanupExpired sweeps stale entries BadgerDB's own TTL handling has
// not compacted away yet, then corrects the active-token gauge.
func (s *BadgerRefreshStore) CleanupExpired(ctx context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrRefreshStoreClosed
	}

	now := time.Now()
	count := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerRefreshKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		type stale struct {
			hash   string
			userID int64
		}
		var expired []stale

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var record RefreshRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				continue
			}
			if record.expired(now) {
				hash := string(item.Key()[len(badgerRefreshKeyPrefix):])
				expired = append(expired, stale{hash: hash, userID: record.UserID})
			}
		}

		for _, e := range expired {
			if err := txn.Delete(refreshKey(e.hash)); err != nil {
				return err
			}
			if err := txn.Delete(refreshUserKey(e.userID, e.hash)); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("cleanup refresh tokens: %w", err)
	}

	metrics.RefreshTokensSwept.Add(float64(count))
	if size, sizeErr := s.Size(ctx); sizeErr == nil {
		metrics.RefreshTokensActive.Set(float64(size))
	}

	if count > 0 {
		logging.Debug().Int("count", count).Msg("Swept expired refresh tokens")
	}
	return count, nil
}

// Size counts outstanding tokens.
func (s *BadgerRefreshStore) Size(ctx context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrRefreshStoreClosed
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerRefreshKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close marks the store closed. The shared BadgerDB handle is owned by
// the factory and stays open.
func (s *BadgerRefreshStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
