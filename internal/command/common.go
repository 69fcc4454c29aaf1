// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/attrs"
	"github.com/staranto/sitecounts/internal/block"
	"github.com/staranto/sitecounts/internal/cache"
	"github.com/staranto/sitecounts/internal/cacheutil"
	"github.com/staranto/sitecounts/internal/config"
	"github.com/staranto/sitecounts/internal/content"
	"github.com/staranto/sitecounts/internal/meta"
	"github.com/staranto/sitecounts/internal/output"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// Writer returns where a command's results go.
func Writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// OpenStore opens the content database named by --db.
func OpenStore(ctx context.Context, cmd *cli.Command) (*content.Store, error) {
	path := cmd.String("db")
	log.Debugf("db: %s", path)

	store, err := content.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open content database: %w", err)
	}
	return store, nil
}

// NewCacheStore builds the fragment cache named by --cache. SITECOUNTS_CACHE=0
// forces caching off.
func NewCacheStore(ctx context.Context, cmd *cli.Command) (cache.Store, error) {
	driver := cmd.String("cache")
	if !cacheutil.Enabled() {
		driver = cache.DriverNone
	}

	bucket, _ := config.GetString("cache.s3.bucket", "")
	prefix, _ := config.GetString("cache.s3.prefix", "")
	region, _ := config.GetString("cache.s3.region", "")
	profile, _ := config.GetString("cache.s3.profile", "")
	endpoint, _ := config.GetString("cache.s3.endpoint", "")

	return cache.New(ctx, cache.Options{
		Driver: driver,
		S3: cache.S3Options{
			Bucket:   bucket,
			Prefix:   prefix,
			Region:   region,
			Profile:  profile,
			Endpoint: endpoint,
		},
	})
}

// FilterFromFlags reads the matching-posts filter flags.
func FilterFromFlags(cmd *cli.Command) (block.Filter, error) {
	f := block.Filter{
		Tag:        cmd.String("tag"),
		Category:   cmd.String("category"),
		MaxMatches: cmd.Int("max"),
		MinHour:    cmd.Int("min-hour"),
		MaxHour:    cmd.Int("max-hour"),
	}
	if err := f.Validate(); err != nil {
		return block.Filter{}, err
	}
	return f, nil
}

// BlockMetadata is the block metadata with the configured name.
func BlockMetadata() block.Metadata {
	m := block.DefaultMetadata()
	m.Name, _ = config.GetString("block.name", m.Name)
	return m
}

// NewBlock opens the store and cache and registers the block. The returned
// close func releases the store and stops the memory cache's expiry loop.
func NewBlock(ctx context.Context, cmd *cli.Command) (*block.Block, func(), error) {
	f, err := FilterFromFlags(cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := OpenStore(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close content database")
		}
	}

	c, err := NewCacheStore(ctx, cmd)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	release := closeStore
	if m, ok := c.(*cache.Memory); ok {
		m.Start()
		release = func() {
			m.Stop()
			closeStore()
		}
	}

	b := block.New(store, c,
		block.WithMetadata(BlockMetadata()),
		block.WithFilter(f),
		block.WithTTL(cmd.Duration("ttl")),
	)
	return b, release, nil
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	al.SetGlobalTransformSpec()
	return al, nil
}

// OutputOptions reads the output flags.
func OutputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	}
}

// CommandBuilder constructs a subcommand with a consistent shape: metadata
// wired, sorted flags, and the shared validator.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	ArgsUsage string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		ArgsUsage: cb.ArgsUsage,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: cb.Flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: cb.Action,
	}
}

// GlobalFlagsValidator rejects more positional arguments than a command
// takes.
func GlobalFlagsValidator(_ context.Context, c *cli.Command) error {
	limit := 0
	if c.ArgsUsage != "" {
		limit = 1
	}
	if n := c.Args().Len(); n > limit {
		return fmt.Errorf("%s: too many arguments (%d)", c.Name, n)
	}
	return nil
}
