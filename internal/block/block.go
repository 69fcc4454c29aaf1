// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package block

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/sitecounts/internal/markup"
)

// DefaultName is the name the block registers under unless overridden.
const DefaultName = "xwp/site-counts"

// DefaultTTL is how long a rendered fragment stays cached.
const DefaultTTL = 10 * time.Second

// Metadata describes the block to the host at registration time.
type Metadata struct {
	Name       string
	Title      string
	Category   string
	Attributes []string
}

// DefaultMetadata returns the metadata for the stock block.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:       DefaultName,
		Title:      "Site Counts",
		Category:   "widgets",
		Attributes: []string{"className"},
	}
}

// Block renders the site counts markup. A Block is safe for concurrent use
// as long as its store and cache are.
type Block struct {
	meta   Metadata
	store  ContentStore
	cache  CacheStore
	filter Filter
	ttl    time.Duration
}

// Option customizes a Block.
type Option func(*Block)

// WithMetadata overrides the registration metadata. A blank name keeps the
// default.
func WithMetadata(m Metadata) Option {
	return func(b *Block) {
		if m.Name == "" {
			m.Name = b.meta.Name
		}
		b.meta = m
	}
}

// WithFilter sets the matching-posts filter.
func WithFilter(f Filter) Option {
	return func(b *Block) { b.filter = f }
}

// WithTTL sets the cache lifetime of rendered fragments. Non-positive values
// are passed to the cache as-is, which stores them without expiry.
func WithTTL(ttl time.Duration) Option {
	return func(b *Block) { b.ttl = ttl }
}

// New registers a block backed by store. A nil cache disables caching.
func New(store ContentStore, cache CacheStore, opts ...Option) *Block {
	if cache == nil {
		cache = noCache{}
	}

	b := &Block{
		meta:   DefaultMetadata(),
		store:  store,
		cache:  cache,
		filter: DefaultFilter(),
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(b)
	}

	log.Debugf("registered block %s (ttl=%s, filter=%+v)", b.meta.Name, b.ttl, b.filter)
	return b
}

// Metadata returns the block's registration metadata.
func (b *Block) Metadata() Metadata {
	return b.meta
}

// Filter returns the block's matching-posts filter.
func (b *Block) Filter() Filter {
	return b.filter
}

// Render produces the block markup: the post type counts followed by the
// posts matching the filter, wrapped in a div carrying the class name. It
// never fails; missing data renders as zero counts or an omitted section.
func (b *Block) Render(ctx context.Context, attrs Attributes, rc RenderContext) string {
	name := rc.BlockName
	if name == "" {
		name = b.meta.Name
	}

	counts := b.cached(ctx, CountKey(name), func() string {
		return b.renderCounts(ctx)
	})
	matches := b.cached(ctx, MatchKey(name, rc.CurrentItemID, b.filter), func() string {
		return b.renderMatches(ctx, rc.CurrentItemID)
	})

	return markup.Render(
		markup.Element("div", markup.Class(attrs.ClassName),
			markup.Raw(counts),
			markup.Raw(matches),
		),
	)
}

// cached serves key from the cache, or builds and stores it on a miss.
// Concurrent misses on the same key both build; the last write wins.
func (b *Block) cached(ctx context.Context, key string, build func() string) string {
	if v, ok := b.cache.Get(ctx, key); ok {
		log.WithField("key", key).Debug("fragment cache hit")
		return v
	}

	log.WithField("key", key).Debug("fragment cache miss")
	v := build()

	if err := b.cache.Set(ctx, key, v, b.ttl); err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to cache fragment")
	}

	return v
}

// CountKey is the cache key of the post type count fragment. It is shared by
// every render of the named block.
func CountKey(blockName string) string {
	return blockName + "_all_posts_count"
}

// keyPartEscaper keeps "_" unique to MatchKey separators.
var keyPartEscaper = strings.NewReplacer("%", "%25", "_", "%5F")

// MatchKey is the cache key of the matching-posts fragment for one current
// item and filter. Tag and category are escaped so distinct filters never
// share a key.
func MatchKey(blockName string, currentID int64, f Filter) string {
	return fmt.Sprintf("%s_%d_%s_%s_%d_%d_%d",
		blockName, currentID, keyPartEscaper.Replace(f.Tag), keyPartEscaper.Replace(f.Category),
		f.MaxMatches, f.MinHour, f.MaxHour)
}

// noCache misses on every read and drops every write.
type noCache struct{}

func (noCache) Get(context.Context, string) (string, bool) { return "", false }

func (noCache) Set(context.Context, string, string, time.Duration) error { return nil }
