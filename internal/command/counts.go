// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/block"
	"github.com/staranto/sitecounts/internal/meta"
	"github.com/staranto/sitecounts/internal/output"
)

// countsDefaultAttrs are the columns shown without --attrs.
var countsDefaultAttrs = []string{"type", "count", "line"}

// CountsCommandAction lists the post counts per public type as a table, json
// or yaml.
func CountsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	al, err := BuildAttrs(cmd, countsDefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())

	store, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close content database")
		}
	}()

	counts, err := block.Tally(ctx, store)
	if err != nil {
		return err
	}

	return output.SliceDiceSpit(CountsDataset(counts), al, OutputOptions(cmd), Writer(cmd))
}

// CountsDataset flattens counts into output rows.
func CountsDataset(counts []block.TypeCount) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, map[string]interface{}{
			"type":     c.Slug,
			"singular": c.Singular,
			"plural":   c.Plural,
			"status":   c.CountStatus(),
			"count":    c.Count,
			"line":     c.Line,
		})
	}
	return rows
}

// CountsCommandBuilder constructs the cli.Command definition for "counts".
func CountsCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "counts",
		Usage:     "list post counts per public post type",
		UsageText: "sitecounts counts [options]",
		Flags:     append([]cli.Flag{NewDBFlag("counts")}, NewOutputFlags("counts")...),
		Action:    CountsCommandAction,
		Meta:      meta,
	}).Build()
}
