package cmd

import (
	"fmt"
	"io"
)

// Completion writes the completion script for shell to w
func Completion(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletion)
	case "zsh":
		fmt.Fprint(w, zshCompletion)
	case "fish":
		fmt.Fprint(w, fishCompletion)
	default:
		return fmt.Errorf("unknown shell: %s\nSupported: bash, zsh, fish", shell)
	}
	return nil
}

const bashCompletion = `_envlock() {
    local cur prev words cword
    _init_completion || return

    local commands="init push pull export diff rm ls status passwd compact keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    case "$prev" in
        -s|--snapshot)
            COMPREPLY=($(compgen -W "$(envlock ls --names 2>/dev/null)" -- "$cur"))
            return
            ;;
        -f|--format)
            if [[ "${words[1]}" == diff ]]; then
                COMPREPLY=($(compgen -W "inline side-by-side summary" -- "$cur"))
            else
                COMPREPLY=($(compgen -W "env json yaml export" -- "$cur"))
            fi
            return
            ;;
        --color)
            COMPREPLY=($(compgen -W "auto always never" -- "$cur"))
            return
            ;;
        -e|--env-file|-o|--output)
            _filedir
            return
            ;;
    esac

    local cmd="${words[1]}"
    case "$cmd" in
        push)
            COMPREPLY=($(compgen -W "-e --env-file -s --snapshot" -- "$cur"))
            ;;
        pull)
            COMPREPLY=($(compgen -W "-e --env-file -s --snapshot --force" -- "$cur"))
            ;;
        export)
            COMPREPLY=($(compgen -W "-s --snapshot -f --format -o --output" -- "$cur"))
            ;;
        diff)
            COMPREPLY=($(compgen -W "-e --env-file -s --snapshot -f --format -l --local-only --color --raw --exit-code" -- "$cur"))
            ;;
        rm)
            COMPREPLY=($(compgen -W "$(envlock ls --names 2>/dev/null)" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _envlock envlock
`

const zshCompletion = `#compdef envlock

_envlock() {
    local -a commands
    commands=(
        'init:Create a .envlock vault in current directory'
        'push:Encrypt the env file into a snapshot'
        'pull:Restore the env file from a snapshot'
        'export:Print a snapshot as env, json, yaml or export'
        'diff:Compare the env file with a snapshot'
        'rm:Remove snapshots from the vault'
        'ls:Show vault status'
        'status:Show vault status'
        'passwd:Change vault password'
        'compact:Compact vault to reclaim disk space'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'envlock commands' commands
            ;;
        args)
            case "${words[2]}" in
                push)
                    _arguments \
                        '(-e --env-file)'{-e,--env-file}'[Env file to read]:file:_files' \
                        '(-s --snapshot)'{-s,--snapshot}'[Snapshot name]:snapshot:_envlock_snapshots'
                    ;;
                pull)
                    _arguments \
                        '(-e --env-file)'{-e,--env-file}'[Env file to write]:file:_files' \
                        '(-s --snapshot)'{-s,--snapshot}'[Snapshot name]:snapshot:_envlock_snapshots' \
                        '--force[Overwrite a different local file]'
                    ;;
                export)
                    _arguments \
                        '(-s --snapshot)'{-s,--snapshot}'[Snapshot name]:snapshot:_envlock_snapshots' \
                        '(-f --format)'{-f,--format}'[Output format]:format:(env json yaml export)' \
                        '(-o --output)'{-o,--output}'[Write to file]:file:_files'
                    ;;
                diff)
                    _arguments \
                        '(-e --env-file)'{-e,--env-file}'[Env file to compare]:file:_files' \
                        '(-s --snapshot)'{-s,--snapshot}'[Snapshot name]:snapshot:_envlock_snapshots' \
                        '(-f --format)'{-f,--format}'[Diff format]:format:(inline side-by-side summary)' \
                        '*'{-l,--local-only}'[Key that exists only locally]:key:' \
                        '--color[Colour output]:mode:(auto always never)' \
                        '--raw[Unified text diff]' \
                        '--exit-code[Exit 1 when there are changes]'
                    ;;
                rm)
                    _arguments '*:snapshot:_envlock_snapshots'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'envlock commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_envlock_snapshots() {
    local -a snapshots
    snapshots=(${(f)"$(envlock ls --names 2>/dev/null)"})
    _describe -t snapshots 'snapshots' snapshots
}

_envlock "$@"
`

const fishCompletion = `# envlock fish completions

set -l commands init push pull export diff rm ls status passwd compact keyring help completion

complete -c envlock -f

# Commands
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create a .envlock vault'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a push -d 'Encrypt env file into a snapshot'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a pull -d 'Restore env file from a snapshot'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a export -d 'Print a snapshot'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare env file with a snapshot'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove snapshots'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a ls -d 'Show vault status'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Change vault password'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact vault'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c envlock -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# shared flags
complete -c envlock -n "__fish_seen_subcommand_from push pull export diff" -s s -l snapshot -x -a "(envlock ls --names 2>/dev/null)" -d 'Snapshot name'
complete -c envlock -n "__fish_seen_subcommand_from push pull diff" -s e -l env-file -r -F -d 'Env file'

# pull flags
complete -c envlock -n "__fish_seen_subcommand_from pull" -l force -d 'Overwrite a different local file'

# export flags
complete -c envlock -n "__fish_seen_subcommand_from export" -s f -l format -x -a "env json yaml export" -d 'Output format'
complete -c envlock -n "__fish_seen_subcommand_from export" -s o -l output -r -F -d 'Write to file'

# diff flags
complete -c envlock -n "__fish_seen_subcommand_from diff" -s f -l format -x -a "inline side-by-side summary" -d 'Diff format'
complete -c envlock -n "__fish_seen_subcommand_from diff" -s l -l local-only -x -d 'Key that exists only locally'
complete -c envlock -n "__fish_seen_subcommand_from diff" -l color -x -a "auto always never" -d 'Colour output'
complete -c envlock -n "__fish_seen_subcommand_from diff" -l raw -d 'Unified text diff'
complete -c envlock -n "__fish_seen_subcommand_from diff" -l exit-code -d 'Exit 1 when there are changes'

# rm snapshots
complete -c envlock -n "__fish_seen_subcommand_from rm" -a "(envlock ls --names 2>/dev/null)"

# keyring subcommands
complete -c envlock -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c envlock -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c envlock -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
