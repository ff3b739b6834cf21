package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Println("envlock - Encrypted .env snapshots that live next to your code")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  envlock <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create a .envlock vault in current directory")
	fmt.Println("  push        Encrypt the env file into a snapshot")
	fmt.Println("  pull        Restore the env file from a snapshot")
	fmt.Println("  export      Print a snapshot as env, json, yaml or export")
	fmt.Println("  diff        Compare the env file with a snapshot")
	fmt.Println("  rm          Remove snapshots from the vault")
	fmt.Println("  ls, status  Show vault status")
	fmt.Println("  passwd      Change vault password")
	fmt.Println("  compact     Compact vault to reclaim disk space")
	fmt.Println("  keyring     Manage password in OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  envlock init                         # Create new vault")
	fmt.Println("  envlock push                         # Store .env as snapshot 'default'")
	fmt.Println("  envlock diff -f side-by-side         # See what changed locally")
	fmt.Println("  envlock export -s prod -f json       # Print snapshot 'prod' as JSON")
	fmt.Println()
	fmt.Println("Every command accepts -v, --verbose to log diagnostics to stderr.")
	fmt.Println("Use 'envlock help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("envlock init")
		fmt.Println()
		fmt.Println("Creates a .envlock vault file in the current directory.")
		fmt.Println("Prompts for a password that will be used for encryption,")
		fmt.Println("or reads it from ENVLOCK_PASSWORD.")
		fmt.Println("The password is not stored anywhere - you must remember it.")
	case "push":
		fmt.Println("envlock push [-e <env-file>] [-s <snapshot>]")
		fmt.Println()
		fmt.Println("Reads the env file and stores it, encrypted, as a named snapshot.")
		fmt.Println("An existing snapshot with the same name is replaced.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -e, --env-file   Env file to read (default .env)")
		fmt.Println("  -s, --snapshot   Snapshot name (default 'default')")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  envlock push")
		fmt.Println("  envlock push -e .env.production -s production")
	case "pull":
		fmt.Println("envlock pull [-e <env-file>] [-s <snapshot>] [--force]")
		fmt.Println()
		fmt.Println("Writes a snapshot to the env file (mode 0600).")
		fmt.Println("Refuses to overwrite a local file that differs, or cannot be parsed,")
		fmt.Println("unless --force is given.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -e, --env-file   Env file to write (default .env)")
		fmt.Println("  -s, --snapshot   Snapshot name (default 'default')")
		fmt.Println("  --force          Overwrite a local file that differs")
	case "export":
		fmt.Println("envlock export [-s <snapshot>] [-f env|json|yaml|export] [-o <file>]")
		fmt.Println()
		fmt.Println("Prints a snapshot in the chosen format, keeping key order.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -s, --snapshot   Snapshot name (default 'default')")
		fmt.Println("  -f, --format     env, json, yaml or export (default env)")
		fmt.Println("  -o, --output     Write to file instead of stdout")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  eval \"$(envlock export -f export)\"")
		fmt.Println("  envlock export -f json -o secrets.json")
	case "diff":
		fmt.Println("envlock diff [-e <env-file>] [-s <snapshot>] [-f <format>] [-l KEY]... [--color <mode>] [--raw]")
		fmt.Println()
		fmt.Println("Shows what pulling the snapshot would change in the local env file.")
		fmt.Println("Keys only in the snapshot are added (+), keys only in the env file")
		fmt.Println("are removed (-), changed values are modified (~). Keys named with")
		fmt.Println("--local-only (or local_only in .envlock.yaml) are expected to live only")
		fmt.Println("in the env file and are reported as local (!) instead of removed.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -f, --format       inline, side-by-side or summary (default inline)")
		fmt.Println("  -l, --local-only   Key expected only locally (repeatable)")
		fmt.Println("  --color            auto, always or never (default auto)")
		fmt.Println("  --raw              Unified diff from the snapshot (a/) to the env file (b/)")
		fmt.Println("  --exit-code        Exit with status 1 when there are changes (local-only keys do not count)")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  envlock diff")
		fmt.Println("  envlock diff -f side-by-side -l DEBUG")
		fmt.Println("  envlock diff -f summary --exit-code")
	case "rm":
		fmt.Println("envlock rm <snapshot> [snapshot...]")
		fmt.Println()
		fmt.Println("Removes snapshots from the vault and compacts it.")
	case "ls", "status":
		fmt.Println("envlock status [-e <env-file>] [--names]")
		fmt.Println()
		fmt.Println("Shows vault status including:")
		fmt.Println("  - Vault size and encryption details")
		fmt.Println("  - Snapshots with key counts and whether the env file matches")
		fmt.Println("  - Git tracking warnings for .envlock and the env file")
		fmt.Println()
		fmt.Println("Does not require a password. 'ls' is an alias.")
		fmt.Println("With --names, prints snapshot names only.")
	case "passwd":
		fmt.Println("envlock passwd")
		fmt.Println()
		fmt.Println("Changes the vault password.")
		fmt.Println("Requires both the current and new passwords.")
		fmt.Println("Re-encrypts all snapshots with the new password.")
	case "compact":
		fmt.Println("envlock compact")
		fmt.Println()
		fmt.Println("Compacts the .envlock database to reclaim unused disk space.")
		fmt.Println("This is automatically done after 'rm' and 'passwd' commands,")
		fmt.Println("but can be run manually if needed.")
	case "keyring":
		fmt.Println("envlock keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Stores the vault password in the OS keychain so commands")
		fmt.Println("do not prompt. ENVLOCK_PASSWORD still takes precedence.")
	case "completion":
		fmt.Println("envlock completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(envlock completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(envlock completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  envlock completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
