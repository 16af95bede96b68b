// Package logging provides structured logging configuration for the SDK.
//
// This package wraps log/slog to keep logger construction consistent
// across SDK packages. Components that accept a logger default to
// logging.Nop() so library code stays silent unless the application
// opts in.
//
// Create a logger with the desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("request executed", "method", "GET", "url", url)
package logging
