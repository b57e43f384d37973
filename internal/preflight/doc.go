// Package preflight provides readiness checks for the directories and
// external services otakurganizer depends on.
//
// The CLI "otakurganizer status" command runs RunAll and renders each
// Result. Network checks are gated by their config toggle; disabled
// features are reported as skipped rather than failed.
package preflight
