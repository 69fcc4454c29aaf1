// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jellydator/ttlcache/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/sitecounts/internal/cacheutil"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v1", 50*time.Millisecond))
	require.NoError(t, m.Set(ctx, "forever", "f", 0))
	require.NoError(t, m.Set(ctx, "negative", "n", -time.Second))

	v, ok := m.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	time.Sleep(100 * time.Millisecond)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok, "expired")

	v, ok = m.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, "f", v)
	v, ok = m.Get(ctx, "negative")
	assert.True(t, ok, "non-positive ttl never expires")
	assert.Equal(t, "n", v)

	require.NoError(t, m.Set(ctx, "forever", "g", time.Minute))
	v, _ = m.Get(ctx, "forever")
	assert.Equal(t, "g", v)
}

func TestMemory_ReadDoesNotExtend(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", "v", 150*time.Millisecond))
	for i := 0; i < 4; i++ {
		time.Sleep(50 * time.Millisecond)
		_, _ = m.Get(ctx, "k")
	}
	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_SetSweepsExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var evicted atomic.Int64
	m.items.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, string]) {
		if reason == ttlcache.EvictionReasonExpired {
			evicted.Add(1)
		}
	})

	for i := 0; i < 1000; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("xwp/site-counts_%d_foo_baz_5_9_17", i), "x", 20*time.Millisecond))
	}
	require.NoError(t, m.Set(ctx, "kept", "y", 0))
	assert.Equal(t, 1001, m.Len())

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, m.Set(ctx, "xwp/site-counts_all_posts_count", "z", time.Minute))

	// Expired keys that were never read again are dropped by the next write.
	assert.Eventually(t, func() bool { return evicted.Load() == 1000 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, m.Len())
	v, ok := m.Get(ctx, "kept")
	assert.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestMemory_StartEvicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Start()
	m.Start()
	defer m.Stop()

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), "v", 20*time.Millisecond))
	}

	assert.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMemory_StopWithoutStart(t *testing.T) {
	m := NewMemory()
	m.Stop()

	m.Start()
	m.Stop()
	m.Stop()
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Set(ctx, "k", "v", time.Minute)
			_, _ = m.Get(ctx, "k")
		}()
	}
	wg.Wait()

	v, ok := m.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var n Nop
	require.NoError(t, n.Set(ctx, "k", "v", time.Minute))
	_, ok := n.Get(ctx, "k")
	assert.False(t, ok)
}

type fakeS3 struct {
	objects map[string]*s3.PutObjectInput
	bodies  map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]*s3.PutObjectInput{}, bodies: map[string][]byte{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := f.objects[*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:     io.NopCloser(bytes.NewReader(f.bodies[*in.Key])),
		Metadata: obj.Metadata,
	}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = in
	f.bodies[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	api := newFakeS3()
	s := NewS3(api, "bucket", "/blocks/").WithClock(c.Now)

	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "<p>v</p>", 10*time.Second))

	objKey := "blocks/" + cacheutil.EncodeKey("k")
	require.Contains(t, api.objects, objKey)
	put := api.objects[objKey]
	assert.Equal(t, "bucket", *put.Bucket)
	assert.Equal(t, "text/html; charset=utf-8", *put.ContentType)
	require.NotNil(t, put.Expires)
	assert.True(t, put.Expires.Equal(c.now.Add(10*time.Second)))

	v, ok := s.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "<p>v</p>", v)

	c.now = c.now.Add(10 * time.Second)
	_, ok = s.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "forever", "f", 0))
	assert.Nil(t, api.objects["blocks/"+cacheutil.EncodeKey("forever")].Expires)
	c.now = c.now.Add(1000 * time.Hour)
	v, ok = s.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, "f", v)
}

func TestS3_BadExpiry(t *testing.T) {
	ctx := context.Background()
	api := newFakeS3()
	s := NewS3(api, "bucket", "")

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	api.objects[cacheutil.EncodeKey("k")].Metadata[expiresMetaKey] = "soon"

	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestS3_PutError(t *testing.T) {
	api := newFakeS3()
	api.putErr = errors.New("denied")
	s := NewS3(api, "bucket", "")

	err := s.Set(context.Background(), "k", "v", time.Minute)
	assert.ErrorContains(t, err, "denied")
}

func TestNew(t *testing.T) {
	t.Setenv("SITECOUNTS_CACHE_DIR", t.TempDir())
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    Options
		want    Store
		wantErr error
	}{
		{name: "default is memory", opts: Options{}, want: &Memory{}},
		{name: "memory", opts: Options{Driver: DriverMemory}, want: &Memory{}},
		{name: "none", opts: Options{Driver: DriverNone}, want: Nop{}},
		{name: "file", opts: Options{Driver: DriverFile}, want: &cacheutil.Store{}},
		{name: "s3 without bucket", opts: Options{Driver: DriverS3}, wantErr: ErrBucketNotSet},
		{name: "unknown", opts: Options{Driver: "redis"}, wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(ctx, tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}
