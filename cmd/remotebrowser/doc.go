// Package main is the entry point for the remote-controlled browser
// supervisor.
//
// The supervisor launches a web browser, raises its window, and turns LIRC
// remote control buttons into keyboard and mouse input until the browser
// exits, the user presses the exit button, the supervisor is told to stop,
// or the parent media center goes away.
//
// Commands:
//   - drive [url]: run one browser session in the foreground
//   - serve: run the linkcast HTTP server, one session per cast link
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Started by a media center, which watches our stdin
//	./remotebrowser drive --browser /usr/bin/firefox --suspend-parent https://example.com
//
//	# Cast links from phones on the local network
//	./remotebrowser serve --port 8086
//
// Signals:
//   - SIGINT, SIGTERM: close the browser and exit
package main
