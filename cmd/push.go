package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/illarion/envlock/internal/crypto"
)

// PushOptions select what push stores
type PushOptions struct {
	EnvFile  string
	Snapshot string
}

// Push encrypts the local env file into a vault snapshot
func Push(ctx context.Context, app *App, opts PushOptions) error {
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

	entry, err := vault.Push(ctx, password, opts.Snapshot, local)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout(), "pushed %s from %s to snapshot %q (%s)\n",
		pluralKeys(entry.Keys), opts.EnvFile, entry.Name, humanize.Bytes(uint64(entry.Size)))
	return nil
}

func pluralKeys(n int) string {
	if n == 1 {
		return "1 key"
	}
	return humanize.Comma(int64(n)) + " keys"
}
