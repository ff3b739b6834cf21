package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Status describes how git sees the vault and the env file
type Status struct {
	IsRepo       bool
	VaultFile    string
	VaultTracked bool
	EnvFile      string
	EnvTracked   bool
	EnvIgnored   bool
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(ctx context.Context, workDir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(ctx context.Context, workDir, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(ctx context.Context, workDir, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	// exit code 0 means ignored
	return cmd.Run() == nil
}

// Check inspects vaultFile and envFile relative to workDir. Outside a
// repository only IsRepo is meaningful.
func Check(ctx context.Context, workDir, vaultFile, envFile string) *Status {
	status := &Status{VaultFile: vaultFile, EnvFile: envFile}
	if !IsGitRepo(ctx, workDir) {
		return status
	}
	status.IsRepo = true
	status.VaultTracked = IsTracked(ctx, workDir, vaultFile)
	status.EnvTracked = IsTracked(ctx, workDir, envFile)
	status.EnvIgnored = IsIgnored(ctx, workDir, envFile)
	return status
}

// Format renders status for display. It returns "" outside a repository.
func Format(status *Status) string {
	if status == nil || !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit Integration:\n")

	if status.VaultTracked {
		fmt.Fprintf(&result, "   ok: %s is tracked by git\n", status.VaultFile)
	} else {
		fmt.Fprintf(&result, "   warning: %s not tracked (run: git add %s)\n", status.VaultFile, status.VaultFile)
	}

	switch {
	case status.EnvTracked:
		fmt.Fprintf(&result, "   error: %s is tracked by git (run: git rm --cached %s)\n", status.EnvFile, status.EnvFile)
	case !status.EnvIgnored:
		fmt.Fprintf(&result, "   warning: %s not in .gitignore (add it to .gitignore)\n", status.EnvFile)
	default:
		fmt.Fprintf(&result, "   ok: %s is ignored by git\n", status.EnvFile)
	}

	return result.String()
}
