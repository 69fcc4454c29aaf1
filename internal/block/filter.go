// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package block

import "fmt"

// Filter selects the posts listed in the matching-posts fragment.
type Filter struct {
	Tag        string `yaml:"tag"`
	Category   string `yaml:"category"`
	MaxMatches int    `yaml:"max"`
	MinHour    int    `yaml:"min_hour"`
	MaxHour    int    `yaml:"max_hour"`
}

// DefaultFilter returns the stock filter: tag foo, category baz, at most five
// posts created between 09:00 and 17:59.
func DefaultFilter() Filter {
	return Filter{
		Tag:        "foo",
		Category:   "baz",
		MaxMatches: 5,
		MinHour:    9,
		MaxHour:    17,
	}
}

// Validate checks the hour bounds are real hours. MinHour > MaxHour is
// accepted; it simply matches nothing.
func (f Filter) Validate() error {
	if f.MinHour < 0 || f.MinHour > 23 {
		return fmt.Errorf("min hour %d: %w", f.MinHour, ErrInvalidHour)
	}
	if f.MaxHour < 0 || f.MaxHour > 23 {
		return fmt.Errorf("max hour %d: %w", f.MaxHour, ErrInvalidHour)
	}
	if f.MaxMatches < 0 {
		return fmt.Errorf("max matches %d: %w", f.MaxMatches, ErrInvalidMaxMatches)
	}
	return nil
}

// query is the content-store query for the filter. One extra row is asked
// for so the current item can be skipped without a second round trip.
func (f Filter) query() Query {
	return Query{
		Types:    []string{"post", "page"},
		Status:   StatusAny,
		Tag:      f.Tag,
		Category: f.Category,
		Hours:    &HourRange{Min: f.MinHour, Max: f.MaxHour},
		Limit:    f.MaxMatches + 1,
	}
}
