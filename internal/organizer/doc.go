// Package organizer places catalog records into the canonical library layout
// and reverses those placements on demand.
//
// Destinations follow <target>/<series>/Season N/Episode M/<file>, with every
// segment sanitized and the final directory checked for containment under the
// target root before anything on disk changes. Moves try rename first and fall
// back to a verified copy plus source delete across filesystems. Each fully
// committed move is pushed onto a Journal; Undo drains it newest first.
//
// A Mover is not safe for concurrent Organize or Undo sweeps against the same
// target root. Callers serialize them (the CLI holds the catalog lock).
package organizer
