// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package version carries the release version, overridden at link time with
// -ldflags "-X github.com/staranto/sitecounts/internal/version.Version=...".
package version

var Version = "0.1.0-dev"
