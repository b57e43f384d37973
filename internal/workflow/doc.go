// Package workflow runs the user-facing commands end to end.
//
// The Manager wires the scanner, parser, catalog, mover, suggestion provider,
// and description enrichment together: Scan parses and indexes a directory,
// Group fills missing series by semantic similarity and fetches synopses,
// AIOrganize applies provider suggestions, Sync organizes every record into
// the target root, and Undo reverses the journal. Each sweep is sequential,
// reports progress through the application state, and sends human-readable
// results through the notifier. Per-file failures are reported and skipped.
// Only infrastructure failures (catalog, journal, cancellation) are returned.
package workflow
