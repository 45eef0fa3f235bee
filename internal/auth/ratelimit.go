// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// failureSweepInterval bounds how often stale buckets are dropped.
	failureSweepInterval = 5 * time.Minute

	// failureBucketTTL is how long an idle bucket survives.
	failureBucketTTL = time.Hour
)

// FailureLimiter throttles failure events per client with token buckets.
// Valid requests never touch it; only failed token validations consume
// from a bucket, so an IP farming 401 responses runs dry while normal
// traffic is untouched. Stale buckets are swept inline on the next
// Allow call, so there is no cleanup goroutine to manage.
type FailureLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*failureBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

type failureBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewFailureLimiter allows events failures per window per key before
// throttling.
func NewFailureLimiter(events int, window time.Duration) *FailureLimiter {
	return &FailureLimiter{
		buckets:   make(map[string]*failureBucket),
		limit:     rate.Every(window / time.Duration(events)),
		burst:     events,
		lastSweep: time.Now(),
	}
}

// Allow consumes one failure event for key. False means the bucket is
// dry and the caller should reject outright.
func (fl *FailureLimiter) Allow(key string) bool {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	now := time.Now()
	if now.Sub(fl.lastSweep) > failureSweepInterval {
		fl.sweepLocked(now)
	}

	bucket, ok := fl.buckets[key]
	if !ok {
		bucket = &failureBucket{limiter: rate.NewLimiter(fl.limit, fl.burst)}
		fl.buckets[key] = bucket
	}
	bucket.lastSeen = now

	return bucket.limiter.Allow()
}

func (fl *FailureLimiter) sweepLocked(now time.Time) {
	threshold := now.Add(-failureBucketTTL)
	for key, bucket := range fl.buckets {
		if bucket.lastSeen.Before(threshold) {
			delete(fl.buckets, key)
		}
	}
	fl.lastSweep = now
}

// clientIP resolves the client address for throttling keys. X-Real-IP
// is trusted when present (set by the reverse proxy); otherwise the
// connection's remote address is used.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
