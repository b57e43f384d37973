// Package state holds the application state observed by the CLI: the working
// set of file records, a bounded log, progress of the running sweep, and the
// last index statistics.
//
// State is an explicit object passed to whoever needs it. Every mutation bumps
// a version counter. Renderers either poll Version and Snapshot or register a
// Subscriber, which is called synchronously after each change with an
// immutable snapshot.
package state
