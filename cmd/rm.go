package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/illarion/envlock/internal/crypto"
)

// Remove deletes snapshots from the vault
func Remove(ctx context.Context, app *App, names []string) error {
	if len(names) == 0 {
		return errors.New("rm requires at least one snapshot name\nUsage: envlock rm <snapshot> [snapshot...]")
	}

	vault := app.Vault()

	password, err := GetPasswordWithRetry(app, vault, "Enter password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	for _, name := range names {
		if err := vault.Remove(ctx, password, name); err != nil {
			return err
		}
		fmt.Fprintf(app.stdout(), "removed: %s\n", name)
	}

	// Compact database to reclaim space
	if err := vault.Compact(); err != nil {
		fmt.Fprintf(app.stderr(), "warning: compaction failed: %s\n", err)
	}
	return nil
}
