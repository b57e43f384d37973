package media_test

import (
	"errors"
	"path/filepath"
	"testing"

	"otakurganizer/internal/media"
)

func TestNewFileRecordDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Show S01E02.MKV")
	record, err := media.NewFileRecord(path, 42)
	if err != nil {
		t.Fatalf("NewFileRecord returned error: %v", err)
	}
	if record.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if record.Status != media.StatusPending {
		t.Fatalf("expected pending status, got %q", record.Status)
	}
	if record.Format != ".mkv" {
		t.Fatalf("expected lowercased format, got %q", record.Format)
	}
	if record.Name != "Show S01E02.MKV" {
		t.Fatalf("unexpected name %q", record.Name)
	}
}

func TestValidateRejectsInvariantViolations(t *testing.T) {
	base := media.FileRecord{
		ID:     "a",
		Path:   filepath.Join(string(filepath.Separator), "media", "a.mkv"),
		Name:   "a.mkv",
		Status: media.StatusPending,
	}
	tests := []struct {
		name   string
		mutate func(*media.FileRecord)
	}{
		{"missing id", func(r *media.FileRecord) { r.ID = " " }},
		{"relative path", func(r *media.FileRecord) { r.Path = "a.mkv" }},
		{"missing name", func(r *media.FileRecord) { r.Name = "" }},
		{"negative size", func(r *media.FileRecord) { r.Size = -1 }},
		{"negative season", func(r *media.FileRecord) { r.Season = media.IntPtr(-1) }},
		{"negative episode", func(r *media.FileRecord) { r.Episode = media.IntPtr(-3) }},
		{"unknown status", func(r *media.FileRecord) { r.Status = "archived" }},
		{"relative subtitle", func(r *media.FileRecord) { r.Subtitles = []string{"a.srt"} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := base.Clone()
			tc.mutate(&record)
			err := record.Validate()
			if !errors.Is(err, media.ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
	valid := base.Clone()
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected base record to validate: %v", err)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	original := media.FileRecord{Season: media.IntPtr(1), Subtitles: []string{"/a.srt"}}
	clone := original.Clone()
	*clone.Season = 5
	clone.Subtitles[0] = "/b.srt"
	if *original.Season != 1 || original.Subtitles[0] != "/a.srt" {
		t.Fatalf("clone aliased original: %+v", original)
	}
}

func TestParseStatus(t *testing.T) {
	if status, err := media.ParseStatus(" Completed "); err != nil || status != media.StatusCompleted {
		t.Fatalf("ParseStatus = %q, %v", status, err)
	}
	if _, err := media.ParseStatus("bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
