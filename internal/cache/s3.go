// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/staranto/sitecounts/internal/cacheutil"
)

// expiresMetaKey is the object metadata key holding the expiry as Unix
// nanoseconds. The SDK lower-cases metadata keys on read.
const expiresMetaKey = "expires-at"

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 keeps each entry as one object under Prefix. Expired objects read as
// misses and are left for a bucket lifecycle rule to remove.
type S3 struct {
	client S3API
	bucket string
	prefix string
	clock  func() time.Time
}

// NewS3 returns a store writing to bucket beneath prefix.
func NewS3(client S3API, bucket, prefix string) *S3 {
	return &S3{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		clock:  time.Now,
	}
}

// WithClock replaces the store's time source.
func (s *S3) WithClock(clock func() time.Time) *S3 {
	s.clock = clock
	return s
}

// objectKey maps a clear-text key onto a flat object name.
func (s *S3) objectKey(key string) string {
	return path.Join(s.prefix, cacheutil.EncodeKey(key))
}

// Get returns the value for key unless it is missing, expired or unreadable.
func (s *S3) Get(ctx context.Context, key string) (string, bool) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(s.objectKey(key)),
	})
	if err != nil {
		log.WithError(err).WithField("key", key).Debug("s3 cache miss")
		return "", false
	}
	defer out.Body.Close()

	if raw, ok := out.Metadata[expiresMetaKey]; ok {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.WithField("key", key).Warnf("ignoring s3 cache object with bad expiry %q", raw)
			return "", false
		}
		if nanos > 0 && !s.clock().Before(time.Unix(0, nanos)) {
			return "", false
		}
	}

	body, err := io.ReadAll(out.Body)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to read s3 cache object")
		return "", false
	}
	return string(body), true
}

// Set writes value under key for ttl. A non-positive ttl never expires.
func (s *S3) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	in := &s3.PutObjectInput{
		Bucket:      awsv2.String(s.bucket),
		Key:         awsv2.String(s.objectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: awsv2.String("text/html; charset=utf-8"),
		Metadata:    map[string]string{expiresMetaKey: "0"},
	}
	if ttl > 0 {
		expiresAt := s.clock().Add(ttl)
		in.Metadata[expiresMetaKey] = strconv.FormatInt(expiresAt.UnixNano(), 10)
		in.Expires = awsv2.Time(expiresAt)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to write s3 cache object: %w", err)
	}
	return nil
}
