package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/illarion/envlock/cmd"
	"github.com/illarion/envlock/internal/config"
	"github.com/illarion/envlock/internal/diffview"
	"github.com/illarion/envlock/internal/format"
	"github.com/illarion/envlock/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(ctx, os.Args[2:])
	case "push":
		err = runPush(ctx, os.Args[2:])
	case "pull":
		err = runPull(ctx, os.Args[2:])
	case "export":
		err = runExport(ctx, os.Args[2:])
	case "diff":
		err = runDiff(ctx, os.Args[2:])
	case "rm":
		err = runRm(ctx, os.Args[2:])
	case "ls", "status":
		err = runStatus(ctx, os.Args[1], os.Args[2:])
	case "passwd":
		err = runPasswd(ctx, os.Args[2:])
	case "compact":
		err = runCompact(ctx, os.Args[2:])
	case "keyring":
		err = runKeyring(ctx, os.Args[2:])
	case "completion":
		err = runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		stop()
		cmd.HandleError(err)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.BoolP("verbose", "v", false, "Log diagnostics to stderr")
	fs.Usage = func() { printCommandHelp(name) }
	return fs
}

// setup parses flags, then loads config and the logger
func setup(fs *pflag.FlagSet, args []string) *cmd.App {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	verbose, _ := fs.GetBool("verbose")
	logger, err := logging.New(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %s\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("command", fs.Name()),
		zap.String("env_file", cfg.EnvFile),
		zap.String("snapshot", cfg.Snapshot))

	return &cmd.App{Dir: ".", Config: cfg, Logger: logger}
}

// withDefault applies a config value to a flag the user did not set
func withDefault(fs *pflag.FlagSet, name string, value *string, def string) {
	if !fs.Changed(name) {
		*value = def
	}
}

func runInit(_ context.Context, args []string) error {
	fs := newFlagSet("init")
	app := setup(fs, args)

	return cmd.Init(app)
}

func runPush(ctx context.Context, args []string) error {
	fs := newFlagSet("push")
	envFile := fs.StringP("env-file", "e", "", "Env file to read (default from config, .env)")
	snapshot := fs.StringP("snapshot", "s", "", "Snapshot name (default from config, default)")
	app := setup(fs, args)
	withDefault(fs, "env-file", envFile, app.Config.EnvFile)
	withDefault(fs, "snapshot", snapshot, app.Config.Snapshot)

	return cmd.Push(ctx, app, cmd.PushOptions{EnvFile: *envFile, Snapshot: *snapshot})
}

func runPull(ctx context.Context, args []string) error {
	fs := newFlagSet("pull")
	envFile := fs.StringP("env-file", "e", "", "Env file to write (default from config, .env)")
	snapshot := fs.StringP("snapshot", "s", "", "Snapshot name (default from config, default)")
	force := fs.Bool("force", false, "Overwrite a local file that differs")
	app := setup(fs, args)
	withDefault(fs, "env-file", envFile, app.Config.EnvFile)
	withDefault(fs, "snapshot", snapshot, app.Config.Snapshot)

	return cmd.Pull(ctx, app, cmd.PullOptions{EnvFile: *envFile, Snapshot: *snapshot, Force: *force})
}

func runExport(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	snapshot := fs.StringP("snapshot", "s", "", "Snapshot name (default from config, default)")
	formatName := fs.StringP("format", "f", "", "Output format: env, json, yaml, export")
	output := fs.StringP("output", "o", "", "Write to file instead of stdout")
	app := setup(fs, args)
	withDefault(fs, "snapshot", snapshot, app.Config.Snapshot)
	withDefault(fs, "format", formatName, string(app.Config.Format))

	f, err := format.Parse(*formatName)
	if err != nil {
		return err
	}
	return cmd.Export(ctx, app, cmd.ExportOptions{Snapshot: *snapshot, Format: f, Output: *output})
}

func runDiff(ctx context.Context, args []string) error {
	fs := newFlagSet("diff")
	envFile := fs.StringP("env-file", "e", "", "Env file to compare (default from config, .env)")
	snapshot := fs.StringP("snapshot", "s", "", "Snapshot name (default from config, default)")
	formatName := fs.StringP("format", "f", "", "Diff format: inline, side-by-side, summary")
	localOnly := fs.StringArrayP("local-only", "l", nil, "Key that is expected only locally (repeatable)")
	color := fs.String("color", "", "Colour output: auto, always, never")
	raw := fs.Bool("raw", false, "Show a unified text diff of the env renderings")
	exitCode := fs.Bool("exit-code", false, "Exit with status 1 when there are changes")
	app := setup(fs, args)
	withDefault(fs, "env-file", envFile, app.Config.EnvFile)
	withDefault(fs, "snapshot", snapshot, app.Config.Snapshot)
	withDefault(fs, "format", formatName, string(app.Config.DiffFormat))
	withDefault(fs, "color", color, string(app.Config.Color))

	diffFormat, err := diffview.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	colorMode, err := config.ParseColorMode(*color)
	if err != nil {
		return err
	}

	return cmd.Diff(ctx, app, cmd.DiffOptions{
		EnvFile:   *envFile,
		Snapshot:  *snapshot,
		Format:    diffFormat,
		LocalOnly: *localOnly,
		Color:     colorMode,
		Raw:       *raw,
		ExitCode:  *exitCode,
	})
}

func runRm(ctx context.Context, args []string) error {
	fs := newFlagSet("rm")
	app := setup(fs, args)

	return cmd.Remove(ctx, app, fs.Args())
}

func runStatus(ctx context.Context, name string, args []string) error {
	fs := newFlagSet(name)
	envFile := fs.StringP("env-file", "e", "", "Env file to compare (default from config, .env)")
	names := fs.Bool("names", false, "Print snapshot names only")
	app := setup(fs, args)
	withDefault(fs, "env-file", envFile, app.Config.EnvFile)

	if *names {
		return cmd.ListNames(ctx, app)
	}
	return cmd.Status(ctx, app, *envFile)
}

func runPasswd(_ context.Context, args []string) error {
	fs := newFlagSet("passwd")
	app := setup(fs, args)

	return cmd.Passwd(app)
}

func runCompact(_ context.Context, args []string) error {
	fs := newFlagSet("compact")
	app := setup(fs, args)

	return cmd.Compact(app)
}

func runKeyring(_ context.Context, args []string) error {
	fs := newFlagSet("keyring")
	app := setup(fs, args)

	switch fs.Arg(0) {
	case "save":
		return cmd.KeyringSave(app)
	case "delete":
		return cmd.KeyringDelete(app)
	case "status":
		return cmd.KeyringStatus(app)
	case "":
		return errors.New("usage: envlock keyring <save|delete|status>")
	}
	return fmt.Errorf("unknown keyring command: %s\nUsage: envlock keyring <save|delete|status>", fs.Arg(0))
}

func runCompletion(_ context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: envlock completion <bash|zsh|fish>")
	}
	return cmd.Completion(os.Stdout, args[0])
}
