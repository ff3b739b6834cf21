package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/envlock/internal/config"
	"github.com/illarion/envlock/internal/core"
	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/diff"
	"github.com/illarion/envlock/internal/diffview"
	"github.com/illarion/envlock/internal/dotenv"
)

// DiffOptions control the diff command
type DiffOptions struct {
	EnvFile   string
	Snapshot  string
	Format    diffview.Format
	LocalOnly []string // added to the config's local_only keys
	Color     config.ColorMode
	Raw       bool
	ExitCode  bool // return ErrChangesFound when differences are found
}

// Diff compares the local env file (source) with a vault snapshot (target)
func Diff(ctx context.Context, app *App, opts DiffOptions) error {
	vault := app.Vault()
	local, err := ReadEnvFile(opts.EnvFile)
	if err != nil {
		return err
	}

	password, err := GetPasswordWithRetry(app, vault, "Enter password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	snapshot, err := vault.Snapshot(ctx, password, opts.Snapshot)
	if err != nil {
		return err
	}

	var (
		out     string
		changed bool
	)
	if opts.Raw {
		out = core.UnifiedDiff(opts.Snapshot, opts.EnvFile, string(dotenv.Encode(snapshot)), string(dotenv.Encode(local)))
		changed = out != ""
	} else {
		result := diff.Compare(local, snapshot, append(append([]string(nil), app.Config.LocalOnly...), opts.LocalOnly...))
		changed = result.HasChanges()
		out, err = diffview.Render(result, diffview.Options{
			Format:   opts.Format,
			Colorize: UseColor(opts.Color),
		})
		if err != nil {
			return err
		}
	}

	switch {
	case out != "":
		fmt.Fprint(app.stdout(), out)
		if out[len(out)-1] != '\n' {
			fmt.Fprintln(app.stdout())
		}
	case !changed:
		fmt.Fprintln(app.stderr(), "No changes detected")
	}

	if opts.ExitCode && changed {
		return ErrChangesFound
	}
	return nil
}
