// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/cacheutil"
	"github.com/staranto/sitecounts/internal/meta"
)

// PurgeCommandAction removes file-cache entries older than --hours.
func PurgeCommandAction(_ context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	base, ok := cacheutil.Dir()
	if !ok {
		return fmt.Errorf("cache directory cannot be resolved")
	}

	hours := cmd.Int("hours")
	if hours == 0 {
		_, err := fmt.Fprintln(Writer(cmd), "cache cleaning disabled")
		return err
	}
	n, err := cacheutil.Purge(hours)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(Writer(cmd), "purged %d entries older than %dh from %s\n", n, hours, base)
	return err
}

// PurgeCommandBuilder constructs the cli.Command definition for "purge".
func PurgeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "purge",
		Usage:     "remove stale file cache entries",
		UsageText: "sitecounts purge [options]",
		Flags:     []cli.Flag{NewHoursFlag("purge")},
		Action:    PurgeCommandAction,
		Meta:      meta,
	}).Build()
}
