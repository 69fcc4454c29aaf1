// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	_ "modernc.org/sqlite"

	"github.com/staranto/sitecounts/internal/block"
)

// CreatedLayout is how creation times are stored. Times are kept as wall
// clock values so the hour filter sees the hour the author saw.
const CreatedLayout = "2006-01-02 15:04:05"

// Taxonomies used for post terms.
const (
	TaxonomyTag      = "post_tag"
	TaxonomyCategory = "category"
)

// Sentinel errors for lookups and fixtures.
var (
	ErrNotFound        = errors.New("post not found")
	ErrInvalidPostType = errors.New("post type slug is required")
)

// Post is a content item as stored.
type Post struct {
	ID         int64
	Type       string
	Status     string
	Title      string
	Created    time.Time
	Tags       []string
	Categories []string
}

// Store is a SQLite-backed content store.
type Store struct {
	db *sql.DB
}

var _ block.ContentStore = (*Store)(nil)

// Open opens (creating if needed) the database at path and ensures the
// schema and built-in post types exist.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening content db: %w", err)
	}
	// One connection keeps :memory: databases coherent and serializes
	// writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debugf("opened content store %s", path)
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS post_types (
			slug            TEXT PRIMARY KEY,
			public          INTEGER NOT NULL DEFAULT 1,
			attachment_like INTEGER NOT NULL DEFAULT 0,
			singular        TEXT NOT NULL DEFAULT '',
			plural          TEXT NOT NULL DEFAULT '',
			position        INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS posts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_type  TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'publish',
			title      TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_type_status ON posts(post_type, status);
		CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at DESC);

		CREATE TABLE IF NOT EXISTS post_terms (
			post_id  INTEGER NOT NULL,
			taxonomy TEXT NOT NULL,
			slug     TEXT NOT NULL,
			PRIMARY KEY (post_id, taxonomy, slug),
			FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_post_terms_slug ON post_terms(taxonomy, slug);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}

	for i, pt := range builtinTypes() {
		if err := s.addPostType(ctx, s.db, pt, true, i, false); err != nil {
			return err
		}
	}

	return nil
}

// builtinTypes are the public types every site has.
func builtinTypes() []block.PostType {
	return []block.PostType{
		{Slug: "post", Singular: "post", Plural: "posts"},
		{Slug: "page", Singular: "page", Plural: "pages"},
		{Slug: "attachment", AttachmentLike: true, Singular: "attachment", Plural: "attachments"},
	}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AddPostType registers or replaces a post type. Types are listed in the
// order they were first added.
func (s *Store) AddPostType(ctx context.Context, pt block.PostType, public bool) error {
	return s.addPostType(ctx, s.db, pt, public, -1, true)
}

func (s *Store) addPostType(ctx context.Context, ex execer, pt block.PostType, public bool, position int, replace bool) error {
	if pt.Slug == "" {
		return ErrInvalidPostType
	}

	verb := "INSERT OR IGNORE"
	if replace {
		verb = "INSERT"
	}

	// A negative position appends after the existing types.
	q := verb + ` INTO post_types (slug, public, attachment_like, singular, plural, position)
		VALUES (?, ?, ?, ?, ?, CASE WHEN ? >= 0 THEN ? ELSE (SELECT COALESCE(MAX(position), -1) + 1 FROM post_types) END)`
	if replace {
		q += ` ON CONFLICT(slug) DO UPDATE SET
			public = excluded.public,
			attachment_like = excluded.attachment_like,
			singular = excluded.singular,
			plural = excluded.plural`
	}

	if _, err := ex.ExecContext(ctx, q, pt.Slug, public, pt.AttachmentLike, pt.Singular, pt.Plural, position, position); err != nil {
		return fmt.Errorf("adding post type %s: %w", pt.Slug, err)
	}
	return nil
}

// AddPost inserts a post with its terms and returns its id. A zero ID is
// assigned by the database; an existing ID is replaced.
func (s *Store) AddPost(ctx context.Context, p Post) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := addPost(ctx, tx, p)
	if err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

func addPost(ctx context.Context, tx *sql.Tx, p Post) (int64, error) {
	if p.Type == "" {
		p.Type = "post"
	}
	if p.Status == "" {
		p.Status = block.StatusPublish
	}
	if p.Created.IsZero() {
		p.Created = time.Now()
	}
	created := p.Created.Format(CreatedLayout)

	var (
		res sql.Result
		err error
	)
	if p.ID > 0 {
		if _, err = tx.ExecContext(ctx, "DELETE FROM post_terms WHERE post_id = ?", p.ID); err != nil {
			return 0, fmt.Errorf("clearing terms of post %d: %w", p.ID, err)
		}
		res, err = tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO posts (id, post_type, status, title, created_at) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.Type, p.Status, p.Title, created)
	} else {
		res, err = tx.ExecContext(ctx,
			"INSERT INTO posts (post_type, status, title, created_at) VALUES (?, ?, ?, ?)",
			p.Type, p.Status, p.Title, created)
	}
	if err != nil {
		return 0, fmt.Errorf("adding post %q: %w", p.Title, err)
	}

	id := p.ID
	if id == 0 {
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	}

	terms := map[string][]string{
		TaxonomyTag:      p.Tags,
		TaxonomyCategory: p.Categories,
	}
	for taxonomy, slugs := range terms {
		for _, slug := range slugs {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO post_terms (post_id, taxonomy, slug) VALUES (?, ?, ?)",
				id, taxonomy, slug); err != nil {
				return 0, fmt.Errorf("tagging post %d with %s %s: %w", id, taxonomy, slug, err)
			}
		}
	}

	return id, nil
}

// PublicTypes implements block.ContentStore.
func (s *Store) PublicTypes(ctx context.Context) ([]block.PostType, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT slug, attachment_like, singular, plural FROM post_types WHERE public = 1 ORDER BY position, slug")
	if err != nil {
		return nil, fmt.Errorf("listing post types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var types []block.PostType
	for rows.Next() {
		var pt block.PostType
		if err := rows.Scan(&pt.Slug, &pt.AttachmentLike, &pt.Singular, &pt.Plural); err != nil {
			return nil, err
		}
		types = append(types, pt)
	}

	return types, rows.Err()
}

// CountItems implements block.ContentStore.
func (s *Store) CountItems(ctx context.Context, postType, status string) (int, error) {
	where, args := statusClause(status)
	args = append([]any{postType}, args...)

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts p WHERE p.post_type = ?"+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s posts: %w", postType, err)
	}
	return n, nil
}

// QueryIDs implements block.ContentStore. Results are newest first.
func (s *Store) QueryIDs(ctx context.Context, q block.Query) ([]int64, error) {
	if len(q.Types) == 0 {
		return nil, nil
	}

	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT p.id FROM posts p WHERE p.post_type IN (?")
	sb.WriteString(strings.Repeat(", ?", len(q.Types)-1))
	sb.WriteString(")")
	for _, t := range q.Types {
		args = append(args, t)
	}

	where, statusArgs := statusClause(q.Status)
	sb.WriteString(where)
	args = append(args, statusArgs...)

	for taxonomy, slug := range map[string]string{TaxonomyTag: q.Tag, TaxonomyCategory: q.Category} {
		if slug == "" {
			continue
		}
		sb.WriteString(" AND EXISTS (SELECT 1 FROM post_terms t WHERE t.post_id = p.id AND t.taxonomy = ? AND t.slug = ?)")
		args = append(args, taxonomy, slug)
	}

	if q.Hours != nil {
		sb.WriteString(" AND CAST(strftime('%H', p.created_at) AS INTEGER) >= ?")
		sb.WriteString(" AND CAST(strftime('%H', p.created_at) AS INTEGER) <= ?")
		args = append(args, q.Hours.Min, q.Hours.Max)
	}

	sb.WriteString(" ORDER BY p.created_at DESC, p.id DESC")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	log.Debugf("QueryIDs: %s %v", sb.String(), args)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Title implements block.ContentStore.
func (s *Store) Title(ctx context.Context, id int64) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx, "SELECT title FROM posts WHERE id = ?", id).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading title of post %d: %w", id, err)
	}
	return title, nil
}

// statusClause builds the status predicate. "any" matches every status but
// trash and auto-draft; an empty status matches everything.
func statusClause(status string) (string, []any) {
	switch status {
	case "":
		return "", nil
	case block.StatusAny:
		return " AND p.status NOT IN ('trash', 'auto-draft')", nil
	default:
		return " AND p.status = ?", []any{status}
	}
}
