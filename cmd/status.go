package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/illarion/envlock/internal/core"
	"github.com/illarion/envlock/internal/git"
)

// Status shows the vault, its snapshots and how the env file compares
func Status(ctx context.Context, app *App, envFile string) error {
	vault := app.Vault()
	out := app.stdout()

	if _, err := os.Stat(vault.Path()); os.IsNotExist(err) {
		fmt.Fprintf(out, "No %s file found in current directory\n", core.VaultFile)
		fmt.Fprintln(out, "Run 'envlock init' to create one")
		return nil
	}

	status, err := vault.Status(ctx, envFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Vault: %s (%s, modified %s)\n", core.VaultFile, humanize.Bytes(uint64(status.Size)), humanize.Time(status.Modified))
	fmt.Fprintf(out, "Encryption: %s (t=%d, m=%s, p=%d)\n",
		status.Algorithm, status.KDF.Time, humanize.IBytes(uint64(status.KDF.Memory)*1024), status.KDF.Threads)

	switch {
	case status.EnvErr != nil:
		fmt.Fprintf(out, "Env file: %s (unreadable: %s)\n", envFile, status.EnvErr)
	case status.EnvPresent:
		fmt.Fprintf(out, "Env file: %s (%s)\n", envFile, pluralKeys(status.EnvKeys))
	default:
		fmt.Fprintf(out, "Env file: %s (missing)\n", envFile)
	}

	fmt.Fprintln(out, "\nSnapshots:")
	if len(status.Snapshots) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, s := range status.Snapshots {
		state := "differs"
		switch {
		case s.InSync:
			state = "in sync"
		case !status.EnvPresent || status.EnvErr != nil:
			state = "vault only"
		}
		fmt.Fprintf(out, "  %s  %s, updated %s  [%s]\n", s.Name, pluralKeys(s.Keys), humanize.Time(s.Updated), state)
	}

	fmt.Fprint(out, git.Format(status.GitStatus))
	return nil
}

// ListNames prints one snapshot name per line, for scripts and completion
func ListNames(ctx context.Context, app *App) error {
	entries, err := app.Vault().List(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintln(app.stdout(), e.Name)
	}
	return nil
}
