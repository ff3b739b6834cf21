package cmd

import (
	"fmt"

	"github.com/illarion/envlock/internal/core"
	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/keyring"
)

// Passwd changes the password for .envlock
func Passwd(app *App) error {
	vault := app.Vault()

	// Get vault ID for keyring lookup
	vaultID, _ := vault.GetVaultID()

	currentPassword, err := GetPasswordWithRetry(app, vault, "Enter current password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(currentPassword)

	if err := vault.VerifyPassword(currentPassword); err != nil {
		return err
	}

	fmt.Fprintln(app.stderr(), "New password")
	newPassword, err := core.ReadPasswordConfirm()
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(newPassword)

	if err := vault.ChangePassword(currentPassword, newPassword); err != nil {
		return err
	}

	// Refresh an existing keyring entry so it does not go stale
	if vaultID != "" && keyring.HasPassword(vaultID) {
		if err := keyring.SavePassword(vaultID, newPassword); err == nil {
			fmt.Fprintln(app.stdout(), "Keyring updated with new password")
		}
	}

	// Compact database after rewriting all data
	if err := vault.Compact(); err != nil {
		fmt.Fprintf(app.stderr(), "warning: compaction failed: %s\n", err)
	}

	fmt.Fprintln(app.stdout(), "password changed successfully")
	return nil
}
