// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/sitecounts/internal/meta"
)

const bashCompletionScript = `# bash completion for sitecounts
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_sitecounts()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "render counts seed serve purge completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local block="--db -d --cache --ttl --tag --category --max --min-hour --max-hour"

    case "$cmd" in
        render)
            local opts="$block --class --attrs --name"
            ;;
        counts)
            local opts="--db -d --attrs -a --color -c --filter -f --output -o --sort -s --titles -t"
            ;;
        seed)
            local opts="--db -d"
            ;;
        serve)
            local opts="$block --addr --shutdown-timeout"
            ;;
        purge)
            local opts="--hours"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts=""
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --cache)
            COMPREPLY=( $(compgen -W "memory file s3 none" -- "$cur") )
            return 0
            ;;
        --db|-d)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cmd" == "seed" && "$cur" != -* ]]; then
        COMPREPLY=( $(compgen -f -X '!*.json' -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _sitecounts sitecounts
`

const zshCompletionScript = `#compdef sitecounts

_sitecounts() {
  local -a cmds
  cmds=(
    'render:render the block markup for a post'
    'counts:list post counts per public post type'
    'seed:import a JSON content dump into the database'
    'serve:serve rendered blocks over HTTP for previewing'
    'purge:remove stale file cache entries'
    'completion:generate shell completion script'
  )

  local -a blockopts
  blockopts=(
  '(-d --db)'{-d,--db}'[content database]:file:_files'
  '--cache[cache driver]:driver:(memory file s3 none)'
  '--ttl[fragment lifetime]:duration'
  '--tag[tag slug]:tag'
  '--category[category slug]:category'
  '--max[maximum matches]:count'
  '--min-hour[earliest hour]:hour'
  '--max-hour[latest hour]:hour'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'sitecounts commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    render)
      _arguments -C \
        $blockopts \
        '--class[wrapper class names]:class' \
        '--attrs[block attributes JSON]:json' \
        '--name[block instance name]:name' \
        '1:post id'
      ;;
    counts)
      _arguments -C \
        '(-d --db)'{-d,--db}'[content database]:file:_files' \
        '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs' \
        '(-c --color)'{-c,--color}'[enable colored text]' \
        '(-f --filter)'{-f,--filter}'[filters to apply]:filters' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '(-s --sort)'{-s,--sort}'[sort attributes]:attrs' \
        '(-t --titles)'{-t,--titles}'[show titles]'
      ;;
    seed)
      _arguments -C \
        '(-d --db)'{-d,--db}'[content database]:file:_files' \
        '1:dump:_files -g "*.json"'
      ;;
    serve)
      _arguments -C \
        $blockopts \
        '--addr[listen address]:addr' \
        '--shutdown-timeout[drain timeout]:duration'
      ;;
    purge)
      _arguments -C '--hours[maximum age in hours]:hours'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _sitecounts sitecounts
`

// CompletionScript returns the completion script for shell, falling back to
// $SHELL when shell is empty. ok is false for unsupported shells.
func CompletionScript(shell string) (script string, ok bool) {
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}
	switch shell {
	case "bash":
		return bashCompletionScript, true
	case "zsh":
		return zshCompletionScript, true
	}
	return "", false
}

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	script, ok := CompletionScript(cmd.Args().First())
	if !ok {
		fmt.Fprintln(os.Stderr, "usage: sitecounts completion [bash|zsh]")
		return nil
	}
	_, err := fmt.Fprint(Writer(cmd), script)
	return err
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "sitecounts completion [bash|zsh]",
		ArgsUsage: "[bash|zsh]",
		Action:    CompletionCommandAction,
		Meta:      meta,
	}).Build()
}
