// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package block

import (
	"context"
	"time"
)

// Post statuses understood by the content store.
const (
	StatusPublish = "publish"
	StatusInherit = "inherit"
	StatusAny     = "any"
)

// PostType describes a content type as the store reports it.
type PostType struct {
	Slug string
	// AttachmentLike types count items in "inherit" status rather than
	// "publish".
	AttachmentLike bool
	Singular       string
	Plural         string
}

// CountStatus is the status whose items are counted for the type.
func (pt PostType) CountStatus() string {
	if pt.AttachmentLike {
		return StatusInherit
	}
	return StatusPublish
}

// HourRange bounds the hour of day an item was created in. Both bounds are
// inclusive and applied independently (hour >= Min AND hour <= Max); no
// ordering between them is assumed.
type HourRange struct {
	Min int
	Max int
}

// Query selects item ids from the content store. Zero values mean "no
// constraint" except Types, which must name at least one type.
type Query struct {
	Types    []string
	Status   string
	Tag      string
	Category string
	Hours    *HourRange
	Limit    int
}

// ContentStore is the read side of the host's content storage.
type ContentStore interface {
	CountItems(ctx context.Context, postType, status string) (int, error)
	QueryIDs(ctx context.Context, q Query) ([]int64, error)
	Title(ctx context.Context, id int64) (string, error)
	PublicTypes(ctx context.Context) ([]PostType, error)
}

// CacheStore is an expiring key/value store for rendered fragments. Get
// reports a miss for absent or expired keys; errors are the store's to log.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RenderContext carries what the host knows about the current render.
type RenderContext struct {
	// BlockName is the registered name of the block instance. Empty falls
	// back to the block's metadata name.
	BlockName     string
	CurrentItemID int64
}
