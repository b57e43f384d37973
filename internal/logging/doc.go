// Package logging assembles the slog loggers used by otakurganizer.
//
// It owns the console and JSON handlers, level parsing, and output routing.
// Context helpers tag records with the record id, workflow stage, and
// correlation id stored by the services package, so organizer and catalog
// code never has to thread those fields by hand.
package logging
