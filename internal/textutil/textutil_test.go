package textutil

import (
	"slices"
	"testing"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My Anime/Series", "My Anime_Series"},
		{`Back\Slash`, "Back_Slash"},
		{"..", "_"},
		{"../../etc", "____etc"},
		{"Dr. Stone", "Dr. Stone"},
		{"Wait...What", "Wait_What"},
		{"  Padded  ", "Padded"},
	}
	for _, tt := range tests {
		if got := SanitizeSegment(tt.input); got != tt.want {
			t.Errorf("SanitizeSegment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		haystack, needle string
		want             bool
	}{
		{"One Piece", "piece", true},
		{"ONE PIECE", "One", true},
		{"Straße", "STRASSE", true},
		{"Naruto", "bleach", false},
		{"anything", "", true},
	}
	for _, tt := range tests {
		if got := ContainsFold(tt.haystack, tt.needle); got != tt.want {
			t.Errorf("ContainsFold(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("[SubsPlease] Sousou no Frieren - 12 (1080p).mkv")
	want := []string{"subsplease", "sousou", "no", "frieren", "12", "1080p", "mkv"}
	if !slices.Equal(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	if got := Tokenize("進撃の巨人"); len(got) != 1 {
		t.Fatalf("expected non-latin title kept as one token, got %v", got)
	}
}

func TestTrigrams(t *testing.T) {
	got := Trigrams("abc")
	want := []string{" ab", "abc", "bc "}
	if !slices.Equal(got, want) {
		t.Fatalf("Trigrams = %v, want %v", got, want)
	}
}
