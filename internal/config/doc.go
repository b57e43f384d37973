// Package config loads, normalizes, and validates otakurganizer configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the OTAKU_AI_API_KEY and OTAKU_EMBEDDING_API_KEY
// environment fallbacks. Downstream packages receive absolute paths,
// lowercased extension lists, and canonical log settings.
package config
