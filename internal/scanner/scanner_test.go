package scanner_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/scanner"
	"otakurganizer/internal/services"
	"otakurganizer/internal/testsupport"
)

func TestScanFiltersAndAttachesSubtitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := testsupport.MediaDir(cfg)

	testsupport.WriteFile(t, filepath.Join(root, "Frieren - 01.mkv"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Frieren - 01.srt"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "Frieren - 01.en.SRT"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "Frieren - 010.srt"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "nested", "Bleach 1x02.MP4"), 20)
	testsupport.WriteFile(t, filepath.Join(root, "notes.txt"), 1)
	testsupport.WriteFile(t, filepath.Join(root, ".hidden", "Secret.mkv"), 1)

	var progress []int
	s := scanner.New(cfg, logging.NewNop(), scanner.WithProgress(func(found int) { progress = append(progress, found) }))
	records, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if len(progress) != 2 || progress[1] != 2 {
		t.Fatalf("unexpected progress calls %v", progress)
	}

	first := records[0]
	if first.Name != "Frieren - 01.mkv" || first.Format != ".mkv" || first.Size != 10 {
		t.Fatalf("unexpected first record %+v", first)
	}
	if first.Status != media.StatusPending || first.ID == "" {
		t.Fatalf("expected pending record with id, got %+v", first)
	}
	if len(first.Subtitles) != 2 {
		t.Fatalf("expected two subtitles, got %v", first.Subtitles)
	}
	for _, sub := range first.Subtitles {
		if filepath.Base(sub) == "Frieren - 010.srt" {
			t.Fatalf("subtitle for a different episode attached: %v", first.Subtitles)
		}
	}

	second := records[1]
	if second.Format != ".mp4" || len(second.Subtitles) != 0 {
		t.Fatalf("unexpected second record %+v", second)
	}
}

func TestScanWithoutSubtitles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutSubtitles())
	root := testsupport.MediaDir(cfg)
	testsupport.WriteFile(t, filepath.Join(root, "Show S01E01.mkv"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "Show S01E01.srt"), 1)

	records, err := scanner.New(cfg, nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 1 || len(records[0].Subtitles) != 0 {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestScanMissingRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := scanner.New(cfg, nil).Scan(context.Background(), filepath.Join(testsupport.BaseDir(cfg), "missing"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := testsupport.MediaDir(cfg)
	testsupport.WriteFile(t, filepath.Join(root, "Show S01E01.mkv"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := scanner.New(cfg, nil).Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanMatchesSubtitlesByBaseName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := testsupport.MediaDir(cfg)
	testsupport.WriteFile(t, filepath.Join(root, "Ep1.mkv"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "Ep1.en.srt"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "Ep10.srt"), 1)

	records, err := scanner.New(cfg, nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 1 || len(records[0].Subtitles) != 1 || filepath.Base(records[0].Subtitles[0]) != "Ep1.en.srt" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"[Erai-raws] Spy_x_Family - 05 (1080p).mkv": "Spy x Family 05",
		"Cowboy-Bebop.mp4":                          "Cowboy Bebop",
		"plain":                                     "plain",
	}
	for input, want := range tests {
		if got := scanner.NormalizeName(input); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}
