// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package block renders the Site Counts block: a count of published posts per
// public post type, and a short list of posts matching a tag, category and
// creation-hour filter. Each of the two fragments is cached separately; the
// count fragment is shared by every render of the block while the matching
// fragment is cached per current post and filter.
package block
