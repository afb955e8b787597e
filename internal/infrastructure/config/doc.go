// Package config loads the supervisor configuration from environment
// variables using envconfig. Command-line flags are layered on top by the
// CLI; see cmd/remotebrowser.
package config
