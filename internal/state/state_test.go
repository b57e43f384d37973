package state

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"otakurganizer/internal/media"
	"otakurganizer/internal/notifications"
)

func TestMutationsBumpVersionAndNotifySubscribers(t *testing.T) {
	s := New()
	var seen []uint64
	unsubscribe := s.Subscribe(func(snap Snapshot) { seen = append(seen, snap.Version) })

	s.SetFiles([]media.FileRecord{{ID: "a", Name: "a.mkv"}})
	s.UpdateFile(media.FileRecord{ID: "a", Name: "renamed.mkv"})
	s.UpdateFile(media.FileRecord{ID: "b", Name: "b.mkv"})

	if s.Version() != 3 {
		t.Fatalf("version = %d, want 3", s.Version())
	}
	if len(seen) != 3 || seen[2] != 3 {
		t.Fatalf("subscriber saw %v", seen)
	}
	files := s.Files()
	if len(files) != 2 || files[0].Name != "renamed.mkv" {
		t.Fatalf("files = %+v", files)
	}

	unsubscribe()
	s.AddLog(notifications.LevelInfo, "after unsubscribe")
	if len(seen) != 3 {
		t.Fatalf("unsubscribed callback still called: %v", seen)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := New()
	s.SetFiles([]media.FileRecord{{ID: "a", Subtitles: []string{"/x.srt"}}})
	snap := s.Snapshot()
	snap.Files[0].Subtitles[0] = "/changed.srt"
	if got := s.Files()[0].Subtitles[0]; got != "/x.srt" {
		t.Fatalf("snapshot aliases state: %s", got)
	}
}

func TestLogIsBounded(t *testing.T) {
	s := New()
	for i := range MaxLogEntries + 5 {
		s.AddLog(notifications.LevelInfo, fmt.Sprintf("entry %d", i))
	}
	logs := s.Snapshot().Logs
	if len(logs) != MaxLogEntries {
		t.Fatalf("log length = %d, want %d", len(logs), MaxLogEntries)
	}
	if logs[0].Message != "entry 5" {
		t.Fatalf("oldest entry = %q, want entry 5", logs[0].Message)
	}
}

func TestProgressSpeedAndETA(t *testing.T) {
	s := New()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.UpdateProgress(0, 10, "starting")
	clock = clock.Add(4 * time.Second)
	s.UpdateProgress(2, 10, "working")

	p := s.Snapshot().Progress
	if p == nil {
		t.Fatal("progress missing")
	}
	if p.Speed != 0.5 {
		t.Fatalf("speed = %v, want 0.5", p.Speed)
	}
	if p.ETA != 16*time.Second {
		t.Fatalf("eta = %v, want 16s", p.ETA)
	}
	if p.Percent() != 20 {
		t.Fatalf("percent = %v, want 20", p.Percent())
	}

	s.ClearProgress()
	if s.Snapshot().Progress != nil {
		t.Fatal("progress not cleared")
	}
}

func TestSinkAndHandlerFeedLog(t *testing.T) {
	s := New()
	n := notifications.New(nil, s.Sink())
	n.Success(context.Background(), "done")

	logger := slog.New(NewHandler(s, slog.LevelWarn))
	logger.Info("not mirrored")
	logger.Warn("mirrored warning")
	logger.Error("mirrored error")

	logs := s.Snapshot().Logs
	if len(logs) != 3 {
		t.Fatalf("logs = %+v", logs)
	}
	want := []notifications.Level{notifications.LevelSuccess, notifications.LevelWarning, notifications.LevelError}
	for i, level := range want {
		if logs[i].Level != level {
			t.Fatalf("log %d level = %s, want %s", i, logs[i].Level, level)
		}
	}
}
