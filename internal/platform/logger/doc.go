// Package logger configures the application's structured JSON logging
// on top of the standard library's log/slog package.
package logger
