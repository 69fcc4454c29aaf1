// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the expiring key/value stores that hold rendered
// block fragments: in memory, on disk, in S3, or not at all.
package cache
