// Package catalog persists file records in SQLite and answers exact and
// semantic queries over them.
//
// Store owns the database: the files table, its embedding blobs, and the
// move_log journal used for undo. Catalog layers the in-memory vector index
// on top. Index fans embedding requests out concurrently, drops records whose
// embedding failed, persists the survivors in one transaction, and only then
// feeds their vectors to the index. One Catalog supports a single writer.
package catalog
