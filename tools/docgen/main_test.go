// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const purgeDoc = "# sitecounts purge\n\n## Short description\n\nRemove stale\nfile cache entries.\n\n" +
	"## Quick examples\n\n```\n# Remove entries older than a day\nsitecounts   purge\n\nsitecounts purge --hours 2\n```\n"

func TestParsePage(t *testing.T) {
	p := parsePage("purge", purgeDoc)

	assert.Equal(t, "sitecounts purge", p.Title)
	assert.Equal(t, "Remove stale file cache entries.", p.Short)
	assert.Equal(t, []example{
		{Desc: "Remove entries older than a day", Cmd: "sitecounts purge"},
		{Desc: "Example", Cmd: "sitecounts purge --hours 2"},
	}, p.Examples)
}

func TestTLDR(t *testing.T) {
	tests := []struct {
		name string
		page page
		want string
	}{
		{
			name: "examples",
			page: parsePage("purge", purgeDoc),
			want: "# sitecounts-purge\n\n> Remove stale file cache entries.\n> More information: https://github.com/staranto/sitecounts.\n\n" +
				"- Remove entries older than a day:\n\n`sitecounts purge`\n\n- Example:\n\n`sitecounts purge --hours 2`\n",
		},
		{
			name: "no sections",
			page: parsePage("seed", "# sitecounts seed\n"),
			want: "# sitecounts-seed\n\n> sitecounts seed.\n> More information: https://github.com/staranto/sitecounts.\n\n" +
				"- Show help for the command:\n\n`sitecounts seed --help`\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.TLDR())
		})
	}
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "commands"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "commands", "purge.md"), []byte(purgeDoc), 0o644))

	n, err := generate(root, []string{"purge", "seed"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.FileExists(t, filepath.Join(root, "docs", "man", "share", "man1", "sitecounts-purge.1"))
	tldr, err := os.ReadFile(filepath.Join(root, "docs", "tldr", "sitecounts-purge.md"))
	require.NoError(t, err)
	assert.Contains(t, string(tldr), "`sitecounts purge --hours 2`")

	// Unchanged content leaves the file alone.
	_, err = generate(root, nil, true)
	require.NoError(t, err)
}

func TestGenerateNoPages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "commands"), 0o755))

	_, err := generate(root, nil, true)
	assert.ErrorContains(t, err, "no command markdown found")
}

func TestMissing(t *testing.T) {
	got := missing([]string{"serve", "counts", "purge"}, map[string]bool{"purge": true})
	assert.Equal(t, []string{"counts", "serve"}, got)
}
