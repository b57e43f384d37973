// Package main hosts the otakurganizer CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, opens the catalog, and
// hands each invocation to the workflow manager. Commands that modify the
// catalog or move files hold the catalog lock for their whole run so two
// terminals cannot interleave moves against the same journal.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through a command or flag here.
package main
