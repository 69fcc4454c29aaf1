// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/meta"
	"github.com/staranto/sitecounts/internal/server"
)

// ServeCommandAction runs the preview server until interrupted.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	b, release, err := NewBlock(ctx, cmd)
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(b,
		server.WithAddr(cmd.String("addr")),
		server.WithShutdownTimeout(cmd.Duration("shutdown-timeout")),
	)
	log.Infof("block %s on %s", b.Metadata().Name, srv.Addr())

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ServeCommandBuilder constructs the cli.Command definition for "serve".
func ServeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		NewDBFlag("serve"),
		NewAddrFlag("serve"),
		NewShutdownFlag("serve"),
	}
	flags = append(flags, NewCacheFlags("serve")...)
	flags = append(flags, NewFilterFlags("serve")...)

	return (&CommandBuilder{
		Name:      "serve",
		Usage:     "serve rendered blocks over HTTP for previewing",
		UsageText: "sitecounts serve [options]",
		Flags:     flags,
		Action:    ServeCommandAction,
		Meta:      meta,
	}).Build()
}
