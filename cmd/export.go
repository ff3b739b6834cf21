package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/dotenv"
	"github.com/illarion/envlock/internal/format"
)

// ExportOptions select the snapshot and encoding for export
type ExportOptions struct {
	Snapshot string
	Format   format.Format
	Output   string // file to write; stdout when empty
}

// Export prints a snapshot in the requested format
func Export(ctx context.Context, app *App, opts ExportOptions) error {
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

	text, err := format.Render(snapshot, opts.Format)
	if err != nil {
		return err
	}
	if text != "" {
		text += "\n"
	}

	if opts.Output == "" {
		fmt.Fprint(app.stdout(), text)
		return nil
	}

	if err := os.WriteFile(opts.Output, []byte(text), dotenv.FilePerm); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(opts.Output, dotenv.FilePerm); err != nil {
		return err
	}
	fmt.Fprintf(app.stderr(), "exported %s from snapshot %q to %s\n", pluralKeys(snapshot.Len()), opts.Snapshot, opts.Output)
	return nil
}
