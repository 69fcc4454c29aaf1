// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/block"
	"github.com/staranto/sitecounts/internal/cache"
	"github.com/staranto/sitecounts/internal/config"
	"github.com/staranto/sitecounts/internal/output"
	"github.com/staranto/sitecounts/internal/server"
)

func init() {
	cfg, _ = config.Load("")
}

var cfg config.Type

// configSources builds a value source chain from env vars followed by config
// file keys, in that order of precedence.
func configSources(path string, envs []string, keys ...string) cli.ValueSourceChain {
	srcs := make([]cli.ValueSource, 0, len(envs)+len(keys))
	for _, e := range envs {
		srcs = append(srcs, cli.EnvVar(e))
	}
	for _, k := range keys {
		srcs = append(srcs, yaml.YAML(k, altsrc.StringSourcer(path)))
	}
	return cli.NewValueSourceChain(srcs...)
}

// NewOutputFlags returns the tabular output flags, namespaced to the command
// ns in the config file.
func NewOutputFlags(ns string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: configSources(cfg.Source, nil, ns+".attrs"),
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: configSources(cfg.Source, nil, ns+".color", "color"),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: configSources(cfg.Source, nil, ns+".output", "output"),
			Value:   output.FormatText,
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: configSources(cfg.Source, nil, ns+".sort"),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: configSources(cfg.Source, nil, ns+".titles", "titles"),
			Value:   false,
		},
	}

	return
}

// NewDBFlag returns the content database flag.
func NewDBFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "path of the content database",
		Sources: configSources(cfg.Source, []string{"SITECOUNTS_DB"}, ns+".db", "db"),
		Value:   "sitecounts.db",
		Validator: func(value string) error {
			return FlagValidators(value, NotBlankValidator, JammedFlagValidator)
		},
	}
}

// DefaultCacheDriver is the driver a command uses when nothing else is set.
// Only serve lives long enough to hit an in-memory cache.
func DefaultCacheDriver(ns string) string {
	if ns == "serve" {
		return cache.DriverMemory
	}
	return cache.DriverFile
}

// NewCacheFlags returns the fragment cache flags.
func NewCacheFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			Usage:   "fragment cache driver (memory, file, s3, none)",
			Sources: configSources(cfg.Source, []string{"SITECOUNTS_CACHE_DRIVER"}, ns+".cache", "cache.driver"),
			Value:   DefaultCacheDriver(ns),
			Validator: func(value string) error {
				return FlagValidators(value, CacheDriverValidator)
			},
		},
		&cli.DurationFlag{
			Name:    "ttl",
			Usage:   "lifetime of cached fragments; 0 never expires",
			Sources: configSources(cfg.Source, nil, ns+".ttl", "cache.ttl"),
			Value:   block.DefaultTTL,
		},
	}
}

// NewFilterFlags returns the matching-posts filter flags. Defaults are the
// stock block filter.
func NewFilterFlags(ns string) []cli.Flag {
	def := block.DefaultFilter()
	hour := func(value int) error {
		return FlagValidators(value, HourValidator)
	}

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "tag",
			Usage:   "tag slug matching posts must carry",
			Sources: configSources(cfg.Source, nil, ns+".tag", "filter.tag"),
			Value:   def.Tag,
		},
		&cli.StringFlag{
			Name:    "category",
			Usage:   "category slug matching posts must carry",
			Sources: configSources(cfg.Source, nil, ns+".category", "filter.category"),
			Value:   def.Category,
		},
		&cli.IntFlag{
			Name:    "max",
			Usage:   "maximum number of matching posts listed",
			Sources: configSources(cfg.Source, nil, ns+".max", "filter.max"),
			Value:   def.MaxMatches,
			Validator: func(value int) error {
				return FlagValidators(value, NonNegativeValidator)
			},
		},
		&cli.IntFlag{
			Name:      "min-hour",
			Usage:     "earliest hour of day (0-23) a matching post was created in",
			Sources:   configSources(cfg.Source, nil, ns+".min_hour", "filter.min_hour"),
			Value:     def.MinHour,
			Validator: hour,
		},
		&cli.IntFlag{
			Name:      "max-hour",
			Usage:     "latest hour of day (0-23) a matching post was created in",
			Sources:   configSources(cfg.Source, nil, ns+".max_hour", "filter.max_hour"),
			Value:     def.MaxHour,
			Validator: hour,
		},
	}
}

// NewAddrFlag returns the preview server listen address flag.
func NewAddrFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "addr",
		Usage:   "address the preview server listens on",
		Sources: configSources(cfg.Source, []string{"SITECOUNTS_ADDR"}, ns+".addr"),
		Value:   server.DefaultAddr,
	}
}

// NewHoursFlag returns the purge age flag.
func NewHoursFlag(ns string) *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "hours",
		Usage:   "remove cache entries older than this many hours; 0 disables",
		Sources: configSources(cfg.Source, nil, ns+".hours", "cache.clean"),
		Value:   24, //nolint:mnd
		Validator: func(value int) error {
			return FlagValidators(value, NonNegativeValidator)
		},
	}
}

// NewShutdownFlag returns the server drain timeout flag.
func NewShutdownFlag(ns string) *cli.DurationFlag {
	return &cli.DurationFlag{
		Name:    "shutdown-timeout",
		Usage:   "how long to wait for in-flight requests on shutdown",
		Sources: configSources(cfg.Source, nil, ns+".shutdown_timeout"),
		Value:   server.DefaultShutdownTimeout,
		Validator: func(value time.Duration) error {
			if value <= 0 {
				return errMustBePositive
			}
			return nil
		},
	}
}
