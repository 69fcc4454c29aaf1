// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package content is a SQLite content store holding post types, posts and
// their tag and category terms. It serves the queries the block needs.
package content
