package cmd

import (
	"fmt"

	"github.com/illarion/envlock/internal/core"
	"github.com/illarion/envlock/internal/crypto"
)

// Init creates a new .envlock vault
func Init(app *App) error {
	vault := app.Vault()

	password, err := GetPasswordForInit()
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	if err := vault.Init(password); err != nil {
		return err
	}

	fmt.Fprintf(app.stdout(), "✓ Initialized %s\n", core.VaultFile)
	return nil
}
