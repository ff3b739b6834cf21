package cmd

import (
	"errors"
	"fmt"

	"github.com/illarion/envlock/internal/core"
	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/keyring"
)

// KeyringSave saves the password to the OS keyring
func KeyringSave(app *App) error {
	vault := app.Vault()

	password, err := GetPassword("Enter password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	if err := vault.VerifyPassword(password); err != nil {
		return err
	}

	vaultID, err := vault.GetOrCreateVaultID()
	if err != nil {
		return err
	}

	if err := keyring.SavePassword(vaultID, password); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}

	fmt.Fprintln(app.stdout(), "Password saved to keyring")
	return nil
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete(app *App) error {
	vaultID, err := app.Vault().GetVaultID()
	if err != nil {
		if errors.Is(err, core.ErrNotInitialized) {
			return err
		}
		fmt.Fprintln(app.stdout(), "No password stored in keyring")
		return nil
	}

	if err := keyring.DeletePassword(vaultID); err != nil {
		fmt.Fprintln(app.stdout(), "No password stored in keyring")
		return nil
	}

	fmt.Fprintln(app.stdout(), "Password removed from keyring")
	return nil
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(app *App) error {
	vaultID, err := app.Vault().GetVaultID()
	if err != nil {
		if errors.Is(err, core.ErrNotInitialized) {
			return err
		}
		fmt.Fprintln(app.stdout(), "Password: not stored")
		return nil
	}

	if keyring.HasPassword(vaultID) {
		fmt.Fprintln(app.stdout(), "Password: stored in keyring")
	} else {
		fmt.Fprintln(app.stdout(), "Password: not stored")
	}
	return nil
}
