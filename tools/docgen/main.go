// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Command docgen turns docs/commands/<cmd>.md into man pages
// (docs/man/share/man1/sitecounts-<cmd>.1) and tldr pages
// (docs/tldr/sitecounts-<cmd>.md). Commands registered with the CLI but
// missing a markdown page are reported.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	md2man "github.com/cpuguy83/go-md2man/v2/md2man"

	"github.com/staranto/sitecounts/internal/command"
	ilog "github.com/staranto/sitecounts/internal/log"
)

const (
	binary  = "sitecounts"
	homeURL = "https://github.com/staranto/sitecounts"
)

func main() {
	var (
		root          string
		onlyIfChanged bool
	)
	flag.StringVar(&root, "root", ".", "repo root")
	flag.BoolVar(&onlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	ilog.InitLogger()

	app, err := command.InitApp(context.Background(), []string{binary})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	var registered []string
	for _, c := range app.Commands {
		registered = append(registered, c.Name)
	}

	n, err := generate(root, registered, onlyIfChanged)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log.Debugf("generated docs for %d commands", n)
}

// generate renders every page under <root>/docs/commands and returns how many
// were processed.
func generate(root string, registered []string, onlyIfChanged bool) (int, error) {
	commandsDir := filepath.Join(root, "docs", "commands")
	manDir := filepath.Join(root, "docs", "man", "share", "man1")
	tldrDir := filepath.Join(root, "docs", "tldr")

	for _, d := range []string{manDir, tldrDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", commandsDir, err)
	}

	seen := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cmd := strings.TrimSuffix(e.Name(), ".md")

		raw, err := os.ReadFile(filepath.Join(commandsDir, e.Name()))
		if err != nil {
			return 0, err
		}

		manPath := filepath.Join(manDir, fmt.Sprintf("%s-%s.1", binary, cmd))
		if err := writeFileIfChanged(manPath, md2man.Render(raw), onlyIfChanged); err != nil {
			return 0, fmt.Errorf("failed to write man page for %s: %w", cmd, err)
		}

		p := parsePage(cmd, string(raw))
		tldrPath := filepath.Join(tldrDir, fmt.Sprintf("%s-%s.md", binary, cmd))
		if err := writeFileIfChanged(tldrPath, []byte(p.TLDR()), onlyIfChanged); err != nil {
			return 0, fmt.Errorf("failed to write tldr page for %s: %w", cmd, err)
		}

		seen[cmd] = true
	}

	if len(seen) == 0 {
		return 0, fmt.Errorf("no command markdown found under %s", commandsDir)
	}

	for _, m := range missing(registered, seen) {
		log.Warnf("command %s has no page in %s", m, commandsDir)
	}

	return len(seen), nil
}

func missing(registered []string, seen map[string]bool) []string {
	var out []string
	for _, r := range registered {
		if !seen[r] {
			out = append(out, r)
		}
	}
	sort.Strings(out)
	return out
}

func writeFileIfChanged(path string, data []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(data)):
			return nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

type example struct {
	Desc string
	Cmd  string
}

// page is the part of a command doc that feeds the tldr output.
type page struct {
	Command  string
	Title    string
	Short    string
	Examples []example
}

// parsePage reads the H1, the first paragraph of "## Short description" and
// the first fenced block of "## Quick examples".
func parsePage(cmd, md string) page {
	p := page{Command: cmd}
	sections := map[string][]string{}

	var current string
	for _, ln := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		switch {
		case strings.HasPrefix(ln, "# ") && p.Title == "":
			p.Title = strings.TrimSpace(ln[2:])
			current = ""
		case strings.HasPrefix(ln, "## "):
			current = strings.ToLower(strings.TrimSpace(ln[3:]))
		case current != "":
			sections[current] = append(sections[current], ln)
		}
	}

	p.Short = firstParagraph(sections["short description"])
	if p.Short == "" && p.Title != "" {
		p.Short = p.Title + "."
	}
	p.Examples = parseExamples(firstFence(sections["quick examples"]))
	return p
}

func firstParagraph(lines []string) string {
	var words []string
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			if len(words) > 0 {
				break
			}
			continue
		}
		words = append(words, strings.TrimSpace(ln))
	}
	return strings.Join(words, " ")
}

func firstFence(lines []string) []string {
	var (
		out    []string
		inside bool
	)
	for _, ln := range lines {
		if strings.HasPrefix(strings.TrimSpace(ln), "```") {
			if inside {
				return out
			}
			inside = true
			continue
		}
		if inside {
			out = append(out, ln)
		}
	}
	return nil
}

// parseExamples pairs each "# description" comment with the command line
// after it.
func parseExamples(lines []string) []example {
	var (
		exs  []example
		desc string
	)
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		switch {
		case s == "":
		case strings.HasPrefix(s, "#"):
			desc = strings.TrimSpace(strings.TrimLeft(s, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(s), " ")})
			desc = ""
		}
	}
	return exs
}

func (p page) TLDR() string {
	var b strings.Builder

	b.WriteString("# " + binary + "-" + p.Command + "\n\n")
	switch {
	case p.Short != "":
		b.WriteString("> " + p.Short + "\n")
	default:
		b.WriteString("> " + binary + " " + p.Command + "\n")
	}
	b.WriteString("> More information: " + homeURL + ".\n\n")

	exs := p.Examples
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: binary + " " + p.Command + " --help"}}
	}
	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex.Desc + ":\n\n")
		b.WriteString("`" + ex.Cmd + "`\n")
	}
	return b.String()
}
