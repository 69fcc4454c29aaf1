// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/apex/log"
)

// Entry represents a cached fragment on disk.
// Key is the clear-text key; EncodedKey is the hashed filename.
type Entry struct {
	Key        string
	EncodedKey string
	Path       string
	Data       []byte
	// ExpiresAt is zero for entries that never expire.
	ExpiresAt time.Time
}

// Expired reports whether the entry is stale at now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Environment variables controlling the file cache.
const (
	EnvDir     = "SITECOUNTS_CACHE_DIR"
	EnvEnabled = "SITECOUNTS_CACHE"
)

// Dir returns $SITECOUNTS_CACHE_DIR, else <user cache dir>/sitecounts. ok is
// false when neither resolves.
func Dir() (dir string, ok bool) {
	if dir = os.Getenv(EnvDir); dir != "" {
		return dir, true
	}
	userDir, err := os.UserCacheDir()
	if err != nil || userDir == "" {
		return "", false
	}
	return filepath.Join(userDir, "sitecounts"), true
}

// Enabled is false only when SITECOUNTS_CACHE is "0" or "false".
func Enabled() bool {
	switch os.Getenv(EnvEnabled) {
	case "0", "false":
		return false
	}
	return true
}

// EnsureBaseDir creates Dir() when caching is on. usable is false when the
// cache is off, unresolvable or could not be created.
func EnsureBaseDir() (base string, usable bool, err error) {
	if !Enabled() {
		return "", false, nil
	}
	if base, usable = Dir(); !usable {
		return "", false, nil
	}
	if err = os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// EntryPath is where clearKey lives beneath subdirs, and whether it exists.
func EntryPath(subdirs []string, clearKey string) (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	parts := append([]string{base}, subdirs...)
	p := filepath.Join(append(parts, EncodeKey(clearKey))...)
	_, err := os.Stat(p)
	return p, err == nil
}

// Purge deletes cache files last written more than hours ago and returns how
// many went. hours <= 0 disables it.
func Purge(hours int) (int, error) {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return 0, nil
	}
	base, ok := Dir()
	if !ok {
		return 0, nil
	}

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	var removed int
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(p); err != nil {
			log.WithError(err).WithField("path", p).Warn("failed to remove cache file")
			return nil
		}
		log.WithField("path", p).Debug("removed cache file")
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}

// Read attempts to read a cached entry. The first line of the file holds the
// expiry as Unix nanoseconds (0 for none); the rest is the value, verbatim.
func Read(subdirs []string, clearKey string) (*Entry, bool) {
	if !Enabled() {
		return nil, false
	}
	p, ok := EntryPath(subdirs, clearKey)
	if !ok {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}

	header, data, found := bytes.Cut(b, []byte("\n"))
	if !found {
		log.Debugf("ignoring malformed cache file %s", p)
		return nil, false
	}
	nanos, err := strconv.ParseInt(string(bytes.TrimSpace(header)), 10, 64)
	if err != nil {
		log.Debugf("ignoring malformed cache file %s", p)
		return nil, false
	}

	entry := &Entry{
		Key:        clearKey,
		EncodedKey: EncodeKey(clearKey),
		Path:       p,
		Data:       data,
	}
	if nanos > 0 {
		entry.ExpiresAt = time.Unix(0, nanos)
	}
	return entry, true
}

// Write stores data for the given key beneath subdirs, expiring at expiresAt
// (zero for never). Creates directories as needed.
func Write(subdirs []string, clearKey string, data []byte, expiresAt time.Time) error {
	if !Enabled() {
		return nil // treat as disabled.
	}
	base, ok := Dir()
	if !ok {
		return nil // treat as disabled.
	}
	dir := filepath.Join(append([]string{base}, subdirs...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	var nanos int64
	if !expiresAt.IsZero() {
		nanos = expiresAt.UnixNano()
	}

	var buf bytes.Buffer
	buf.WriteString(strconv.FormatInt(nanos, 10))
	buf.WriteByte('\n')
	buf.Write(data)

	// Write then rename so concurrent readers never see a partial entry.
	p := filepath.Join(dir, EncodeKey(clearKey))
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// EncodeKey hashes k with MD5 and returns the hex string.
func EncodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}

// Store is a file-backed fragment cache rooted at Dir()/subdirs.
type Store struct {
	subdirs []string
	clock   func() time.Time
}

// NewStore returns a Store keeping entries beneath subdirs of the cache dir.
func NewStore(subdirs ...string) *Store {
	return &Store{subdirs: subdirs, clock: time.Now}
}

// WithClock replaces the store's time source.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

// Get returns the value for key unless it is missing or expired.
func (s *Store) Get(_ context.Context, key string) (string, bool) {
	entry, ok := Read(s.subdirs, key)
	if !ok {
		return "", false
	}
	if entry.Expired(s.clock()) {
		log.Debugf("cache entry expired: %s", entry.Path)
		return "", false
	}
	return string(entry.Data), true
}

// Set stores value under key for ttl. A non-positive ttl never expires.
func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.clock().Add(ttl)
	}
	return Write(s.subdirs, key, []byte(value), expiresAt)
}
