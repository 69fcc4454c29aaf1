// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package block

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"golang.org/x/net/html"

	"github.com/staranto/sitecounts/internal/markup"
)

const countsHeading = "Post Counts"

// TypeCount is the count of one public post type.
type TypeCount struct {
	PostType
	Count int
	Line  string
}

// Tally counts every public post type in store order. A type whose count
// cannot be read is reported with zero; only a failure to list the types is
// returned.
func Tally(ctx context.Context, store ContentStore) ([]TypeCount, error) {
	types, err := store.PublicTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list public post types: %w", err)
	}

	counts := make([]TypeCount, 0, len(types))
	for _, pt := range types {
		n, err := store.CountItems(ctx, pt.Slug, pt.CountStatus())
		if err != nil {
			log.WithError(err).WithField("type", pt.Slug).Warn("failed to count posts")
			n = 0
		}
		counts = append(counts, TypeCount{PostType: pt, Count: n, Line: CountLine(n, pt)})
	}
	return counts, nil
}

// renderCounts builds the post type count fragment.
func (b *Block) renderCounts(ctx context.Context) string {
	counts, err := Tally(ctx, b.store)
	if err != nil {
		log.WithError(err).Warn("rendering empty counts")
	}

	items := make([]*html.Node, 0, len(counts))
	for _, c := range counts {
		items = append(items, markup.Element("li", nil, markup.Text(c.Line)))
	}

	return markup.Render(
		markup.Element("h2", nil, markup.Text(countsHeading)),
		markup.Element("ul", nil, items...),
	)
}

// CountLine phrases the count of one post type, e.g. "There are 10 posts" or
// "There is 1 attachment". Only a count of exactly one is singular.
func CountLine(n int, pt PostType) string {
	if n < 0 {
		n = 0
	}

	singular, plural := pt.Singular, pt.Plural
	if singular == "" {
		singular = pt.Slug
	}
	if plural == "" {
		plural = english.PluralWord(2, singular, "")
	}

	verb := "are"
	if n == 1 {
		verb = "is"
	}

	return fmt.Sprintf("There %s %s %s", verb, humanize.Comma(int64(n)), english.PluralWord(n, singular, plural))
}

// renderMatches builds the matching-posts fragment for currentID.
func (b *Block) renderMatches(ctx context.Context, currentID int64) string {
	nodes := []*html.Node{
		markup.Element("p", nil, markup.Text("The current post id is "+strconv.FormatInt(currentID, 10))),
	}

	titles := b.matchingTitles(ctx, currentID)
	if len(titles) > 0 {
		items := make([]*html.Node, 0, len(titles))
		for _, t := range titles {
			items = append(items, markup.Element("li", nil, markup.Text(t)))
		}
		nodes = append(nodes,
			markup.Element("h2", nil, markup.Text(MatchHeading(len(titles), b.filter))),
			markup.Element("ul", nil, items...),
		)
	}

	return markup.Render(nodes...)
}

// matchingTitles returns the titles of at most MaxMatches items satisfying
// the filter, excluding currentID.
func (b *Block) matchingTitles(ctx context.Context, currentID int64) []string {
	if b.filter.MaxMatches <= 0 {
		return nil
	}

	ids, err := b.store.QueryIDs(ctx, b.filter.query())
	if err != nil {
		log.WithError(err).Warn("failed to query matching posts")
		return nil
	}

	var titles []string
	for _, id := range ids {
		if len(titles) >= b.filter.MaxMatches {
			break
		}
		if id == currentID {
			continue
		}

		title, err := b.store.Title(ctx, id)
		if err != nil {
			log.WithError(err).Warnf("failed to read title of post %d", id)
		}
		titles = append(titles, title)
	}

	return titles
}

// MatchHeading phrases the matching-posts heading, e.g. "2 posts with the
// tag of foo and the category of baz".
func MatchHeading(n int, f Filter) string {
	return fmt.Sprintf("%s %s with the tag of %s and the category of %s",
		humanize.Comma(int64(n)), english.PluralWord(n, "post", "posts"), f.Tag, f.Category)
}
