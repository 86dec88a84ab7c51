package cmd

import (
	"fmt"
	"io"
	"os"
)

type CompletionCmd struct {
	Shell string `arg:"" help:"Shell type: bash, zsh, or fish" enum:"bash,zsh,fish"`

	Out io.Writer `kong:"-"`
}

func (c *CompletionCmd) Run() error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}

	var script string
	switch c.Shell {
	case "bash":
		script = bashCompletion
	case "zsh":
		script = zshCompletion
	case "fish":
		script = fishCompletion
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", c.Shell)
	}
	_, err := fmt.Fprint(out, script)
	return err
}

const bashCompletion = `# bash completion for goweldx

_goweldx_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main commands
    if [[ ${COMP_CWORD} -eq 1 ]]; then
        opts="build inspect transform version completion -v --verbose"
        COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        return 0
    fi

    # Options for build command
    if [[ ${COMP_WORDS[1]} == "build" ]]; then
        case "${prev}" in
            -o|--output)
                COMPREPLY=( $(compgen -f -X '!*.@(yaml|yml)' -- ${cur}) )
                return 0
                ;;
            *)
                if [[ ${cur} == -* ]]; then
                    opts="-o --output -h --help"
                    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
                else
                    COMPREPLY=( $(compgen -f -X '!*.@(yaml|yml)' -- ${cur}) )
                fi
                return 0
                ;;
        esac
    fi

    # Options for inspect and transform commands
    if [[ ${COMP_WORDS[1]} == "inspect" || ${COMP_WORDS[1]} == "transform" ]]; then
        case "${prev}" in
            --from|--to|--key)
                return 0
                ;;
        esac
        if [[ ${cur} == -* ]]; then
            if [[ ${COMP_WORDS[1]} == "transform" ]]; then
                opts="--from --to --key -h --help"
            else
                opts="-h --help"
            fi
            COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -f -X '!*.@(yaml|yml)' -- ${cur}) )
        fi
        return 0
    fi

    # Options for completion command
    if [[ ${COMP_WORDS[1]} == "completion" ]]; then
        if [[ ${COMP_CWORD} -eq 2 ]]; then
            opts="bash zsh fish"
            COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        fi
        return 0
    fi
}

complete -F _goweldx_completions goweldx
`

const zshCompletion = `#compdef goweldx

_goweldx() {
    local -a commands
    commands=(
        'build:Build a hierarchy file from a YAML definition'
        'inspect:Inspect a hierarchy file and show its coordinate systems'
        'transform:Transform points between two coordinate systems'
        'version:Show version information'
        'completion:Generate shell completion script'
    )

    local -a build_opts
    build_opts=(
        '(-o --output)'{-o,--output}'[Output file path]:output file:_files -g "*.{yaml,yml}"'
        '(-h --help)'{-h,--help}'[Show help]'
        '*:definition:_files -g "*.{yaml,yml}"'
    )

    local -a inspect_opts
    inspect_opts=(
        '(-h --help)'{-h,--help}'[Show help]'
        '*:hierarchy file:_files -g "*.{yaml,yml}"'
    )

    local -a transform_opts
    transform_opts=(
        '--from[System the points are given in]:system:'
        '--to[System to express the points in]:system:'
        '--key[Tree entry of the manager]:key:'
        '(-h --help)'{-h,--help}'[Show help]'
        '1:hierarchy file:_files -g "*.{yaml,yml}"'
        '*:point:'
    )

    local -a completion_shells
    completion_shells=(
        'bash:Generate bash completion'
        'zsh:Generate zsh completion'
        'fish:Generate fish completion'
    )

    _arguments -C \
        '(-v --verbose)'{-v,--verbose}'[Show detailed output]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                build)
                    _arguments $build_opts
                    ;;
                inspect)
                    _arguments $inspect_opts
                    ;;
                transform)
                    _arguments $transform_opts
                    ;;
                completion)
                    _describe 'shell' completion_shells
                    ;;
                version)
                    _arguments '(-h --help)'{-h,--help}'[Show help]'
                    ;;
            esac
            ;;
    esac
}

_goweldx
`

const fishCompletion = `# fish completion for goweldx

# Main commands
complete -c goweldx -f -n "__fish_use_subcommand" -a "build" -d "Build a hierarchy file from a YAML definition"
complete -c goweldx -f -n "__fish_use_subcommand" -a "inspect" -d "Inspect a hierarchy file"
complete -c goweldx -f -n "__fish_use_subcommand" -a "transform" -d "Transform points between two coordinate systems"
complete -c goweldx -f -n "__fish_use_subcommand" -a "version" -d "Show version information"
complete -c goweldx -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"
complete -c goweldx -f -s v -l verbose -d "Show detailed output"

# build command options
complete -c goweldx -f -n "__fish_seen_subcommand_from build" -s o -l output -d "Output file path" -r -a "(__fish_complete_suffix .yaml)"
complete -c goweldx -f -n "__fish_seen_subcommand_from build" -s h -l help -d "Show help"
complete -c goweldx -n "__fish_seen_subcommand_from build" -a "(__fish_complete_suffix .yaml)" -d "Definition"
complete -c goweldx -n "__fish_seen_subcommand_from build" -a "(__fish_complete_suffix .yml)" -d "Definition"

# inspect command options
complete -c goweldx -f -n "__fish_seen_subcommand_from inspect" -s h -l help -d "Show help"
complete -c goweldx -n "__fish_seen_subcommand_from inspect" -a "(__fish_complete_suffix .yaml)" -d "Hierarchy file"

# transform command options
complete -c goweldx -f -n "__fish_seen_subcommand_from transform" -l from -d "System the points are given in" -r
complete -c goweldx -f -n "__fish_seen_subcommand_from transform" -l to -d "System to express the points in" -r
complete -c goweldx -f -n "__fish_seen_subcommand_from transform" -l key -d "Tree entry of the manager" -r
complete -c goweldx -n "__fish_seen_subcommand_from transform" -a "(__fish_complete_suffix .yaml)" -d "Hierarchy file"

# completion command options
complete -c goweldx -f -n "__fish_seen_subcommand_from completion" -a "bash" -d "Generate bash completion"
complete -c goweldx -f -n "__fish_seen_subcommand_from completion" -a "zsh" -d "Generate zsh completion"
complete -c goweldx -f -n "__fish_seen_subcommand_from completion" -a "fish" -d "Generate fish completion"

# version command options
complete -c goweldx -f -n "__fish_seen_subcommand_from version" -s h -l help -d "Show help"
`

func (c *CompletionCmd) Help() string {
	return `
Generate shell completion scripts for goweldx.

Examples:
  # Bash
  goweldx completion bash > /etc/bash_completion.d/goweldx
  # or
  goweldx completion bash > ~/.local/share/bash-completion/completions/goweldx

  # Zsh
  goweldx completion zsh > ~/.zsh/completion/_goweldx
  # or add to .zshrc:
  autoload -U compinit && compinit

  # Fish
  goweldx completion fish > ~/.config/fish/completions/goweldx.fish
`
}
