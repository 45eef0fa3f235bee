// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package auth

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/cinetrack/internal/config"
)

// Refresh store backends selectable via TOKEN_STORE_BACKEND.
const (
	RefreshStoreMemory = "memory"
	RefreshStoreBadger = "badger"
)

// RefreshStoreFactory owns the optional BadgerDB handle behind the
// refresh store. The factory, not the store, closes the database, so
// one handle can back several consumers.
type RefreshStoreFactory struct {
	db *badger.DB
}

// NewRefreshStoreFactory opens the configured backend. "badger" opens
// (or creates) a BadgerDB at cfg.Path; "memory" or empty opens nothing.
func NewRefreshStoreFactory(cfg *config.TokenStoreConfig) (*RefreshStoreFactory, error) {
	factory := &RefreshStoreFactory{}

	switch cfg.Backend {
	case RefreshStoreBadger:
		opts := badger.DefaultOptions(cfg.Path)
		opts.Logger = nil // BadgerDB's own logger is noisy at startup
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger db for refresh tokens: %w", err)
		}
		factory.db = db
	case RefreshStoreMemory, "":
	default:
		return nil, fmt.Errorf("unknown token store backend %q", cfg.Backend)
	}

	return factory, nil
}

// CreateStore returns a RefreshStore on the factory's backend.
func (f *RefreshStoreFactory) CreateStore() RefreshStore {
	if f.db != nil {
		return NewBadgerRefreshStore(f.db)
	}
	return NewMemoryRefreshStore()
}

// Close closes the underlying BadgerDB if one was opened.
func (f *RefreshStoreFactory) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}
