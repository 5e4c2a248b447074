package logger

import (
	"github.com/fatih/color" // Colored console output for progress and log lines
)

// Colorized printing functions for the different log levels.
// Each behaves like fmt.Printf; callers add the "[INFO]"-style prefix and trailing newline.

// Info logs informational and success messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs recovered failures in bright magenta.
// Non-critical step failures end up here and the run continues.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs fatal conditions in red, always before the run is aborted.
var Error = color.New(color.FgRed).PrintfFunc()

// Skip logs steps whose postcondition already holds.
var Skip = color.New(color.FgHiBlack).PrintfFunc()

// Debug logs debug messages in cyan once enabled through Init.
// It starts out as a no-op so packages can log before the CLI has parsed its flags.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
// When enabled, Debug prints cyan messages; otherwise it silently drops them.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
