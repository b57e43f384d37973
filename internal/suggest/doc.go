// Package suggest turns a filename into a series/season/episode guess from an
// external provider.
//
// Provider responses are untrusted. Validate accepts only a JSON object with a
// non-blank string series and non-negative integer season and episode.
// Anything else is rejected exactly as if no suggestion had been made.
package suggest
