// Package scanner walks a directory tree and produces pending file records
// for every video with an allowed extension, attaching sibling subtitle files
// that share the video's base name.
package scanner
