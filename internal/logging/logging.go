// Package logging builds the diagnostic logger shared by envlock commands.
//
// Diagnostics go to stderr as JSON and are quiet by default; user-facing
// output is printed by the commands themselves. Secret values must never
// be passed to the logger, only names and counts.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugEnv enables debug logging when set to a non-empty value
const DebugEnv = "ENVLOCK_DEBUG"

// New returns a production logger writing to stderr. Only warnings and
// errors are shown unless verbose is set or ENVLOCK_DEBUG is non-empty.
func New(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose || os.Getenv(DebugEnv) != "" {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.Sampling = nil
	config.DisableStacktrace = true
	return config.Build()
}
