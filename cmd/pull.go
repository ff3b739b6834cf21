package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/diff"
	"github.com/illarion/envlock/internal/diffview"
	"github.com/illarion/envlock/internal/dotenv"
	"github.com/illarion/envlock/internal/secrets"
)

// PullOptions select what pull restores
type PullOptions struct {
	EnvFile  string
	Snapshot string
	Force    bool
}

// Pull writes a vault snapshot to the local env file. An existing file
// with different contents, or one that cannot be parsed, is only replaced
// with Force.
func Pull(ctx context.Context, app *App, opts PullOptions) error {
	vault := app.Vault()

	password, err := GetPasswordWithRetry(app, vault, "Enter password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	snapshot, err := vault.Snapshot(ctx, password, opts.Snapshot)
	if err != nil {
		return err
	}

	if !opts.Force {
		done, err := checkOverwrite(app, opts, snapshot)
		if err != nil || done {
			return err
		}
	}

	if err := dotenv.WriteFile(opts.EnvFile, snapshot); err != nil {
		return err
	}

	fmt.Fprintf(app.stdout(), "pulled %s from snapshot %q to %s\n", pluralKeys(snapshot.Len()), opts.Snapshot, opts.EnvFile)
	return nil
}

// checkOverwrite compares an existing env file with snapshot. done is true
// when the file already matches.
func checkOverwrite(app *App, opts PullOptions, snapshot *secrets.Map) (done bool, err error) {
	local, err := dotenv.ReadFile(opts.EnvFile)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: %s cannot be parsed (%v)", ErrWouldOverwrite, opts.EnvFile, err)
	case local.Equal(snapshot):
		fmt.Fprintf(app.stdout(), "%s is up to date with snapshot %q\n", opts.EnvFile, opts.Snapshot)
		return true, nil
	}

	result := diff.Compare(local, snapshot, nil)
	summary, err := diffview.Render(result, diffview.Options{Format: diffview.Summary})
	if err != nil {
		return false, err
	}
	if summary == "" {
		summary = "key order differs"
	}
	return false, fmt.Errorf("%w: %s differs from snapshot %q (%s)", ErrWouldOverwrite, opts.EnvFile, opts.Snapshot, summary)
}
