// Package media defines the records that flow through the catalog pipeline.
//
// A FileRecord is created by the scanner, enriched by the filename parser and
// suggestion providers, persisted by the catalog and finally placed on disk by
// the organizer. Validators in this package guard every boundary where
// external data enters the pipeline (scan results, suggestion payloads and
// persisted rows) so downstream stages can rely on the record invariants.
package media
