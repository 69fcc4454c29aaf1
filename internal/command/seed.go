// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/meta"
)

var errNoDump = errors.New("a dump file is required (use - for stdin)")

// SeedCommandAction imports a JSON content dump into the database.
func SeedCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if cmd.Args().Len() == 0 {
		return errNoDump
	}

	var r io.Reader
	if path := cmd.Args().First(); path == "-" {
		r = cmd.Root().Reader
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open dump: %w", err)
		}
		defer f.Close()
		r = f
	}

	store, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close content database")
		}
	}()

	stats, err := store.Import(ctx, r)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(Writer(cmd), "imported %d post types and %d posts into %s\n",
		stats.PostTypes, stats.Posts, cmd.String("db"))
	return err
}

// SeedCommandBuilder constructs the cli.Command definition for "seed".
func SeedCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "seed",
		Usage:     "import a JSON content dump into the database",
		UsageText: "sitecounts seed <file.json|-> [options]",
		ArgsUsage: "<file.json|->",
		Flags:     []cli.Flag{NewDBFlag("seed")},
		Action:    SeedCommandAction,
		Meta:      meta,
	}).Build()
}
