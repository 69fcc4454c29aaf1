// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	awsx "github.com/staranto/sitecounts/internal/aws"
	"github.com/staranto/sitecounts/internal/cacheutil"
)

// Driver names accepted by New.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverS3     = "s3"
	DriverNone   = "none"
)

// Drivers lists the accepted driver names.
var Drivers = []string{DriverMemory, DriverFile, DriverS3, DriverNone}

// Sentinel errors for store construction.
var (
	ErrUnknownDriver = errors.New("unknown cache driver")
	ErrBucketNotSet  = errors.New("s3 cache bucket is not set")
)

// Store is an expiring key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// S3Options configures the S3 driver.
type S3Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Profile  string
	Endpoint string
}

// Options selects and configures a store.
type Options struct {
	Driver string
	// Subdir is the directory beneath the cache dir used by the file driver.
	Subdir string
	S3     S3Options
}

// New builds the store named by opts.Driver. An empty driver means memory.
func New(ctx context.Context, opts Options) (Store, error) {
	log.Debugf("cache driver: %q", opts.Driver)

	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverNone:
		return Nop{}, nil
	case DriverFile:
		subdir := opts.Subdir
		if subdir == "" {
			subdir = "fragments"
		}
		if _, _, err := cacheutil.EnsureBaseDir(); err != nil {
			return nil, err
		}
		return cacheutil.NewStore(subdir), nil
	case DriverS3:
		if opts.S3.Bucket == "" {
			return nil, ErrBucketNotSet
		}
		client, err := awsx.NewS3Client(ctx, awsx.Settings{
			Profile:  opts.S3.Profile,
			Region:   opts.S3.Region,
			Endpoint: opts.S3.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return NewS3(client, opts.S3.Bucket, opts.S3.Prefix), nil
	}

	return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownDriver, opts.Driver, Drivers)
}
