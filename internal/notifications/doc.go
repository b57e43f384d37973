// Package notifications delivers human-readable status messages.
//
// A Notifier fans each message out to its sinks: the console, the
// application state log, and an ntfy topic when one is configured. The
// channel is write-only. Sink failures are logged and never reach the caller,
// so a broken push endpoint cannot fail a scan or sync.
package notifications
