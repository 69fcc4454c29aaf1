// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/sitecounts/internal/block"
)

// ErrInvalidDump is returned for content dumps that are not JSON objects.
var ErrInvalidDump = errors.New("invalid content dump")

// ImportStats reports what an Import wrote.
type ImportStats struct {
	PostTypes int
	Posts     int
}

// Import loads a JSON content dump of the form
//
//	{
//	  "post_types": [{"slug": "book", "public": true, "attachment_like": false,
//	                  "singular": "book", "plural": "books"}],
//	  "posts": [{"id": 7, "type": "post", "status": "publish", "title": "A",
//	             "created": "2026-01-02 10:00:00", "tags": ["foo"],
//	             "categories": ["baz"]}]
//	}
//
// Post types default to public. Created accepts CreatedLayout or RFC 3339.
// The whole dump is written in one transaction.
func (s *Store) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	raw, err := io.ReadAll(r)
	if err != nil {
		return stats, fmt.Errorf("reading content dump: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return stats, fmt.Errorf("%w: not valid JSON", ErrInvalidDump)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return stats, fmt.Errorf("%w: expected an object", ErrInvalidDump)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range doc.Get("post_types").Array() {
		pt := block.PostType{
			Slug:           t.Get("slug").String(),
			AttachmentLike: t.Get("attachment_like").Bool(),
			Singular:       t.Get("singular").String(),
			Plural:         t.Get("plural").String(),
		}
		public := true
		if p := t.Get("public"); p.Exists() {
			public = p.Bool()
		}
		if err := s.addPostType(ctx, tx, pt, public, -1, true); err != nil {
			return stats, err
		}
		stats.PostTypes++
	}

	for i, p := range doc.Get("posts").Array() {
		post := Post{
			ID:         p.Get("id").Int(),
			Type:       p.Get("type").String(),
			Status:     p.Get("status").String(),
			Title:      p.Get("title").String(),
			Tags:       stringsOf(p.Get("tags")),
			Categories: stringsOf(p.Get("categories")),
		}
		if c := p.Get("created").String(); c != "" {
			created, err := parseCreated(c)
			if err != nil {
				return stats, fmt.Errorf("post %d: %w", i, err)
			}
			post.Created = created
		}
		if _, err := addPost(ctx, tx, post); err != nil {
			return stats, err
		}
		stats.Posts++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("committing content dump: %w", err)
	}

	log.Debugf("imported %d post types and %d posts", stats.PostTypes, stats.Posts)
	return stats, nil
}

func stringsOf(r gjson.Result) []string {
	var out []string
	for _, v := range r.Array() {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseCreated(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(CreatedLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("created %q: want %q or RFC 3339", s, CreatedLayout)
	}
	return t, nil
}
