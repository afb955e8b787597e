// Package session runs one remote-controlled browser from launch to teardown.
//
// A session spawns the browser, raises its windows, and then loops: it waits
// for remote codes, the browser's exit, cancellation of its context or the
// parent going away, and wakes early when a multi-tap candidate is due to be
// committed. Codes go through the dispatcher and the resulting inputs are
// sent to the display. However the loop ends, the raise task is cancelled
// and joined and the browser tree is shut down before Launch returns.
//
// Manager allows one session at a time for the linkcast server.
package session
