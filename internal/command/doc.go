// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command holds the sitecounts subcommands (render, counts, seed,
// serve, purge, completion) and the flag sources they share with the
// config file.
package command
