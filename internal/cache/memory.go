// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memory is an in-process expiring store. Expired entries are swept on every
// Set, and continuously while Start is running.
type Memory struct {
	items *ttlcache.Cache[string, string]

	mu      sync.Mutex
	running bool
}

// NewMemory returns an empty in-memory store. Reads never extend an entry's
// lifetime.
func NewMemory() *Memory {
	return &Memory{
		items: ttlcache.New[string, string](
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}
}

// Start runs the expiry loop in the background until Stop. Calling it again
// while running is a no-op.
func (m *Memory) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	go m.items.Start()
}

// Stop ends the expiry loop started by Start.
func (m *Memory) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.items.Stop()
	m.running = false
}

// Get returns the value for key unless it is missing or expired.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return "", false
	}
	return item.Value(), true
}

// Set stores value under key for ttl, replacing any previous value. A
// non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.items.DeleteExpired()
	m.items.Set(key, value, ttl)
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.items.Len()
}

// Nop never stores anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) (string, bool) { return "", false }

// Set discards the value.
func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }
