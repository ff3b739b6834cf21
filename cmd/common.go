// Package cmd implements the envlock sub-commands. Each command prints its
// own user-facing output and returns an error; main reports it through
// HandleError once deferred cleanup has run.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/illarion/envlock/internal/config"
	"github.com/illarion/envlock/internal/core"
	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/dotenv"
	"github.com/illarion/envlock/internal/keyring"
	"github.com/illarion/envlock/internal/secrets"
)

var (
	// ErrChangesFound is returned by diff --exit-code when the env file and
	// snapshot differ. HandleError exits 1 without a message.
	ErrChangesFound = errors.New("changes found")
	// ErrWouldOverwrite is returned when pull refuses to replace a local file
	ErrWouldOverwrite = errors.New("refusing to overwrite")
)

// App carries the state shared by all commands
type App struct {
	Dir    string
	Config config.Config
	Logger *zap.Logger

	// Out and Err default to os.Stdout and os.Stderr
	Out io.Writer
	Err io.Writer

	VaultOptions []core.Option
}

// Vault opens the vault in the working directory
func (a *App) Vault() *core.Vault {
	return core.New(a.Dir, a.Logger, a.VaultOptions...)
}

func (a *App) stdout() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) stderr() io.Writer {
	if a.Err == nil {
		return os.Stderr
	}
	return a.Err
}

// GetPassword retrieves password from environment or prompts user
// The caller is responsible for calling crypto.ClearBytes on the returned password
func GetPassword(prompt string) ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}
	return core.ReadPassword(prompt)
}

// GetPasswordForInit retrieves password for init command
// Checks environment variable first, then prompts with confirmation
func GetPasswordForInit() ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}
	return core.ReadPasswordConfirm()
}

// GetPasswordWithRetry resolves the vault password from ENVLOCK_PASSWORD,
// then the OS keyring, then a prompt. A keyring entry that no longer
// matches the vault is reported and skipped.
func GetPasswordWithRetry(app *App, vault *core.Vault, prompt string) ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}

	if vaultID, err := vault.GetVaultID(); err == nil {
		password, err := keyring.GetPassword(vaultID)
		switch {
		case err == nil:
			verr := vault.VerifyPassword(password)
			if verr == nil {
				app.Logger.Debug("password from keyring")
				return password, nil
			}
			crypto.ClearBytes(password)
			if !errors.Is(verr, core.ErrWrongPassword) {
				return nil, verr
			}
			fmt.Fprintln(app.stderr(), "warning: keyring password is stale (run 'envlock keyring save' to update)")
		case !keyring.IsNotFound(err):
			app.Logger.Debug("keyring unavailable", zap.Error(err))
		}
	}

	return core.ReadPassword(prompt)
}

// ReadEnvFile parses the local env file. A missing file is reported by
// name.
func ReadEnvFile(path string) (*secrets.Map, error) {
	m, err := dotenv.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// UseColor resolves a colour mode against stdout
func UseColor(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// HandleError reports err on stderr and exits with status 1
func HandleError(err error) {
	switch {
	case errors.Is(err, ErrChangesFound):
	case errors.Is(err, ErrWouldOverwrite):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'envlock diff' to inspect or 'envlock pull --force' to overwrite\n")
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: envlock not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'envlock init' first\n")
	case errors.Is(err, core.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: %s already exists in this directory\n", core.VaultFile)
		fmt.Fprintf(os.Stderr, "Use 'envlock status' to see current state\n")
	case errors.Is(err, core.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, core.ErrPasswordRequired):
		fmt.Fprintf(os.Stderr, "Error: password required\n")
		fmt.Fprintf(os.Stderr, "Set %s or run from a terminal\n", core.PasswordEnv)
	case errors.Is(err, core.ErrSnapshotNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'envlock status' to list snapshots\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
