// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/block"
	"github.com/staranto/sitecounts/internal/meta"
)

// run executes the app with args and returns what it wrote.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	full := append([]string{"sitecounts"}, args...)
	app, err := InitApp(context.Background(), full)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut

	err = app.Run(context.Background(), full)
	return out.String(), err
}

// seeded returns the path of a database loaded with testdata/site.json.
func seeded(t *testing.T) string {
	t.Helper()

	db := filepath.Join(t.TempDir(), "site.db")
	out, err := run(t, "seed", "--db", db, filepath.Join("testdata", "site.json"))
	require.NoError(t, err)
	assert.Equal(t, "imported 0 post types and 15 posts into "+db+"\n", out)
	return db
}

const wantRender = `<div class="is-wide">` +
	"<h2>Post Counts</h2><ul>" +
	"<li>There are 10 posts</li>" +
	"<li>There are 2 pages</li>" +
	"<li>There is 1 attachment</li>" +
	"</ul>" +
	"<p>The current post id is 42</p>" +
	"<h2>2 posts with the tag of foo and the category of baz</h2>" +
	"<ul><li>B</li><li>A</li></ul>" +
	"</div>\n"

func TestRender(t *testing.T) {
	db := seeded(t)

	out, err := run(t, "render", "--db", db, "--cache", "none", "--class", "is-wide", "42")
	require.NoError(t, err)
	assert.Equal(t, wantRender, out)
}

func TestRender_AttrsJSON(t *testing.T) {
	t.Setenv("SITECOUNTS_CACHE_DIR", t.TempDir())
	db := seeded(t)

	out, err := run(t, "render", "--db", db, "--cache", "memory", "--attrs", `{"className":"is-wide"}`, "42")
	require.NoError(t, err)
	assert.Equal(t, wantRender, out)

	out, err = run(t, "render", "--db", db, "--attrs", `{"className":"x"}`, "--class", "is-wide", "42")
	require.NoError(t, err)
	assert.Equal(t, wantRender, out, "--class overrides className")
}

func TestRender_FileCache(t *testing.T) {
	t.Setenv("SITECOUNTS_CACHE_DIR", t.TempDir())
	db := seeded(t)

	first, err := run(t, "render", "--db", db, "--cache", "file", "--ttl", "1h", "--class", "is-wide", "42")
	require.NoError(t, err)
	assert.Equal(t, wantRender, first)

	// Cached fragments outlive the database contents.
	require.NoError(t, os.Remove(db))
	second, err := run(t, "render", "--db", db, "--cache", "file", "--ttl", "1h", "--class", "is-wide", "42")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_DefaultCacheIsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SITECOUNTS_CACHE_DIR", dir)
	t.Setenv("SITECOUNTS_CACHE_DRIVER", "")
	t.Setenv("SITECOUNTS_CACHE", "")
	db := seeded(t)

	first, err := run(t, "render", "--db", db, "--ttl", "1h", "--class", "is-wide", "42")
	require.NoError(t, err)
	assert.Equal(t, wantRender, first)

	entries, err := os.ReadDir(filepath.Join(dir, "fragments"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "count and matching fragments on disk")

	// A second process is served from the files.
	require.NoError(t, os.Remove(db))
	second, err := run(t, "render", "--db", db, "--ttl", "1h", "--class", "is-wide", "42")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDefaultCacheDriver(t *testing.T) {
	tests := []struct {
		ns   string
		want string
	}{
		{ns: "render", want: "file"},
		{ns: "serve", want: "memory"},
		{ns: "", want: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.ns, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultCacheDriver(tt.ns))
		})
	}
}

func TestNewBlock_MemoryCacheStopped(t *testing.T) {
	db := seeded(t)

	app, err := InitApp(context.Background(), []string{"sitecounts", "serve"})
	require.NoError(t, err)

	var called bool
	for _, c := range app.Commands {
		if c.Name != "serve" {
			continue
		}
		c.Action = func(ctx context.Context, cmd *cli.Command) error {
			called = true
			b, release, err := NewBlock(ctx, cmd)
			require.NoError(t, err)
			defer release()
			assert.Contains(t, b.Render(ctx, block.Attributes{}, block.RenderContext{CurrentItemID: 42}), "<p>The current post id is 42</p>")
			return nil
		}
	}

	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run(context.Background(), []string{"sitecounts", "serve", "--db", db}))
	assert.True(t, called)
}

func TestRender_Filter(t *testing.T) {
	db := seeded(t)

	out, err := run(t, "render", "--db", db, "--cache", "none", "--max", "1", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>1 post with the tag of foo and the category of baz</h2><ul><li>B</li></ul>")

	out, err = run(t, "render", "--db", db, "--cache", "none", "--tag", "nope", "42")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "<p>The current post id is 42</p></div>\n"), out)
}

func TestRender_Errors(t *testing.T) {
	t.Setenv("SITECOUNTS_CACHE_DIR", t.TempDir())
	db := seeded(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "missing post id", args: []string{"render", "--db", db}, wantErr: errNoPostID},
		{name: "bad post id", args: []string{"render", "--db", db, "abc"}, wantErr: block.ErrInvalidItemID},
		{name: "bad class", args: []string{"render", "--db", db, "--class", "<b>", "1"}, wantErr: block.ErrInvalidClassName},
		{name: "bad attrs", args: []string{"render", "--db", db, "--attrs", "[]", "1"}, wantErr: block.ErrInvalidAttributes},
		{name: "bad hour", args: []string{"render", "--db", db, "--max-hour", "24", "1"}, wantMsg: "between 0 and 23"},
		{name: "negative max", args: []string{"render", "--db", db, "--max", "-1", "1"}, wantMsg: "must not be negative"},
		{name: "bad driver", args: []string{"render", "--db", db, "--cache", "redis", "1"}, wantMsg: "one of"},
		{name: "too many args", args: []string{"render", "--db", db, "1", "2"}, wantMsg: "too many arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.ErrorContains(t, err, tt.wantMsg)
			}
		})
	}
}

func TestCounts_JSON(t *testing.T) {
	db := seeded(t)

	out, err := run(t, "counts", "--db", db, "-o", "json")
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, map[string]interface{}{"type": "post", "count": 10.0, "line": "There are 10 posts"}, got[0])
	assert.Equal(t, "page", got[1]["type"])
	assert.Equal(t, "There is 1 attachment", got[2]["line"])
}

func TestCounts_FilterSortAttrs(t *testing.T) {
	db := seeded(t)

	out, err := run(t, "counts", "--db", db, "-o", "yaml", "-f", "count<10", "--sort=-type", "-a", "!line,status")
	require.NoError(t, err)
	assert.Equal(t, "- type: page\n  count: 2\n  status: publish\n"+
		"- type: attachment\n  count: 1\n  status: inherit\n", out)
}

func TestCounts_Text(t *testing.T) {
	db := seeded(t)

	out, err := run(t, "counts", "--db", db, "--titles")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "type")
	assert.Contains(t, lines[1], "There are 10 posts")
}

func TestCounts_BadOutput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "site.db")
	_, err := run(t, "counts", "--db", db, "-o", "raw")
	assert.ErrorContains(t, err, "one of")
}

func TestSeed_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "site.db")

	_, err := run(t, "seed", "--db", db)
	assert.ErrorIs(t, err, errNoDump)

	_, err = run(t, "seed", "--db", db, filepath.Join("testdata", "missing.json"))
	assert.ErrorContains(t, err, "failed to open dump")
}

func TestSeed_Stdin(t *testing.T) {
	db := filepath.Join(t.TempDir(), "site.db")
	full := []string{"sitecounts", "seed", "--db", db, "-"}

	app, err := InitApp(context.Background(), full)
	require.NoError(t, err)
	var out bytes.Buffer
	app.Writer = &out
	app.Reader = strings.NewReader(`{"posts":[{"title":"x"}]}`)

	require.NoError(t, app.Run(context.Background(), full))
	assert.Contains(t, out.String(), "imported 0 post types and 1 posts")
}

func TestPurge(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SITECOUNTS_CACHE_DIR", dir)

	stale := filepath.Join(dir, "fragments", "old")
	fresh := filepath.Join(dir, "fragments", "new")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("0\nx"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("0\ny"), 0o600))
	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	out, err := run(t, "purge", "--hours", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "purged 1 entries older than 2h")
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)

	out, err = run(t, "purge", "--hours", "0")
	require.NoError(t, err)
	assert.Equal(t, "cache cleaning disabled\n", out)
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _sitecounts sitecounts")

	out, err = run(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef sitecounts")

	_, ok := CompletionScript("fish")
	assert.False(t, ok)
}

func TestInitApp(t *testing.T) {
	app, err := InitApp(context.Background(), []string{"sitecounts", "render"})
	require.NoError(t, err)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
		m := GetMeta(c)
		assert.Equal(t, []string{"sitecounts", "render"}, m.Args)

		for i := 1; i < len(c.Flags); i++ {
			assert.LessOrEqual(t, c.Flags[i-1].Names()[0], c.Flags[i].Names()[0], "%s flags sorted", c.Name)
		}
	}
	assert.ElementsMatch(t, []string{"completion", "counts", "purge", "render", "seed", "serve"}, names)
}

func TestGetMeta(t *testing.T) {
	assert.Equal(t, meta.Meta{}, GetMeta(nil))
}

func TestCountsDataset(t *testing.T) {
	rows := CountsDataset([]block.TypeCount{
		{PostType: block.PostType{Slug: "attachment", AttachmentLike: true}, Count: 1, Line: "There is 1 attachment"},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "inherit", rows[0]["status"])
	assert.Equal(t, 1, rows[0]["count"])
}
