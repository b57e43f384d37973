package metadata

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTitle   string
		wantSeason  int
		wantEpisode int
		wantMovie   bool
	}{
		{name: "verbose season episode", input: "Naruto Season 02 Episode 15.mkv", wantTitle: "Naruto", wantSeason: 2, wantEpisode: 15},
		{name: "compact with fansub tags", input: "[Fansub] One Piece S01E05 [1080p].mp4", wantTitle: "One Piece", wantSeason: 1, wantEpisode: 5},
		{name: "movie", input: "Spirited Away.mp4", wantTitle: "Spirited Away", wantMovie: true},
		{name: "resolution is not a cross marker", input: "Anime Movie 1280x720.mkv", wantTitle: "Anime Movie 1280x720", wantMovie: true},
		{name: "short resolution", input: "Show 720x480.mkv", wantTitle: "Show 720x480", wantMovie: true},
		{name: "explicit wins over resolution", input: "Naruto 720x480 S02E15.mkv", wantTitle: "Naruto 720x480", wantSeason: 2, wantEpisode: 15},
		{name: "explicit wins when resolution trails", input: "Naruto S02E15 1920x1080.mkv", wantTitle: "Naruto", wantSeason: 2, wantEpisode: 15},
		{name: "cross form", input: "Bleach 3x07.avi", wantTitle: "Bleach", wantSeason: 3, wantEpisode: 7},
		{name: "dash episode defaults season", input: "[SubsPlease] Frieren - 12 (1080p).mkv", wantTitle: "Frieren", wantSeason: 1, wantEpisode: 12},
		{name: "episode word", input: "Cowboy_Bebop_Episode_05.mkv", wantTitle: "Cowboy Bebop", wantSeason: 1, wantEpisode: 5},
		{name: "ep abbreviation", input: "Mushishi Ep.3.mkv", wantTitle: "Mushishi", wantSeason: 1, wantEpisode: 3},
		{name: "season and episode fallbacks", input: "Gintama S4 E12.mkv", wantTitle: "Gintama", wantSeason: 4, wantEpisode: 12},
		{name: "dotted episode marker", input: "Monster.E05", wantTitle: "Monster", wantSeason: 1, wantEpisode: 5},
		{name: "season zero kept", input: "Show S00E01.mkv", wantTitle: "Show", wantSeason: 0, wantEpisode: 1},
		{name: "path input", input: "/media/anime/Mob-Psycho S02E03.mkv", wantTitle: "Mob Psycho", wantSeason: 2, wantEpisode: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got.Title != tt.wantTitle {
				t.Fatalf("title = %q, want %q", got.Title, tt.wantTitle)
			}
			if tt.wantMovie {
				if !got.Movie() {
					t.Fatalf("expected movie, got season=%v episode=%v", got.Season, got.Episode)
				}
				return
			}
			if got.Season == nil || *got.Season != tt.wantSeason {
				t.Fatalf("season = %v, want %d", got.Season, tt.wantSeason)
			}
			if got.Episode == nil || *got.Episode != tt.wantEpisode {
				t.Fatalf("episode = %v, want %d", got.Episode, tt.wantEpisode)
			}
		})
	}
}

func TestParseSeasonOnly(t *testing.T) {
	got := Parse("Haikyuu Season 3 [BD].mkv")
	if got.Season == nil || *got.Season != 3 {
		t.Fatalf("season = %v, want 3", got.Season)
	}
	if got.Episode != nil {
		t.Fatalf("episode = %d, want unset", *got.Episode)
	}
	if got.Title != "Haikyuu" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestParseEmptyInput(t *testing.T) {
	got := Parse("")
	if got.Title != "" || !got.Movie() {
		t.Fatalf("unexpected result for empty input: %+v", got)
	}
}
