// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// All output goes to stderr by default. The supervisor is usually started
// by a media center that owns its stdin/stdout pipes, and stdin closing is
// how the parent signals that it went away.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Launching browser", zap.Strings("argv", argv))
//	logger.Warn("Mixer failed", zap.Error(err))
package logging
