// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/block"
	"github.com/staranto/sitecounts/internal/meta"
)

var errNoPostID = errors.New("a post id is required")

// RenderCommandAction prints the block markup for the current post id given
// as the only argument.
func RenderCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if cmd.Args().Len() == 0 {
		return errNoPostID
	}
	id, err := block.ParseItemID(cmd.Args().First())
	if err != nil {
		return err
	}

	attrs, err := renderAttributes(cmd)
	if err != nil {
		return err
	}

	b, release, err := NewBlock(ctx, cmd)
	if err != nil {
		return err
	}
	defer release()

	markup := b.Render(ctx, attrs, block.RenderContext{
		BlockName:     cmd.String("name"),
		CurrentItemID: id,
	})
	_, err = fmt.Fprintln(Writer(cmd), markup)
	return err
}

// renderAttributes reads --attrs JSON and lets --class override its
// className.
func renderAttributes(cmd *cli.Command) (block.Attributes, error) {
	attrs, err := block.ParseAttributes([]byte(cmd.String("attrs")))
	if err != nil {
		return block.Attributes{}, err
	}

	if cmd.IsSet("class") {
		attrs.ClassName = block.NormalizeClassName(cmd.String("class"))
		if err := attrs.Validate(); err != nil {
			return block.Attributes{}, err
		}
	}
	return attrs, nil
}

// RenderCommandBuilder constructs the cli.Command definition for "render".
func RenderCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		NewDBFlag("render"),
		&cli.StringFlag{
			Name:  "class",
			Usage: "CSS class name(s) for the block wrapper",
		},
		&cli.StringFlag{
			Name:  "attrs",
			Usage: `block attributes as JSON, e.g. '{"className":"is-wide"}'`,
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "block instance name used to scope cached fragments",
		},
	}
	flags = append(flags, NewCacheFlags("render")...)
	flags = append(flags, NewFilterFlags("render")...)

	return (&CommandBuilder{
		Name:      "render",
		Usage:     "render the block markup for a post",
		UsageText: "sitecounts render <postID> [options]",
		ArgsUsage: "<postID>",
		Flags:     flags,
		Action:    RenderCommandAction,
		Meta:      meta,
	}).Build()
}
