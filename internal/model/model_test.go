package model

import "testing"

func TestSongHasVideo(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"http://a", true},
		{NoLink, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (Song{VideoLink: tt.link}).HasVideo(); got != tt.want {
			t.Errorf("HasVideo(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}

func TestSongEmbedURL(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"watch with extras", "https://youtube.com/watch?v=abc123&t=42s", "https://www.youtube.com/embed/abc123"},
		{"short link", "https://youtu.be/abc123", "https://www.youtube.com/embed/abc123"},
		{"shorts", "https://www.youtube.com/shorts/xyz", "https://www.youtube.com/embed/xyz"},
		{"mobile", "https://m.youtube.com/watch?v=mob", "https://www.youtube.com/embed/mob"},
		{"other host", "http://a", ""},
		{"no link", NoLink, ""},
		{"channel page", "https://www.youtube.com/@someone", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Song{VideoLink: tt.link}.EmbedURL()
			if got != tt.want {
				t.Errorf("EmbedURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSongLabel(t *testing.T) {
	s := Song{Title: "Sundari", Film: "Thalapathy"}
	if got := s.Label(); got != "Sundari (Thalapathy)" {
		t.Errorf("Label() = %q", got)
	}
}

func TestResultStates(t *testing.T) {
	if (RagaResults{}).State() != NoQuery {
		t.Error("empty raga query should be NoQuery")
	}
	if (RagaResults{Query: "x"}).State() != NoResults {
		t.Error("raga query without groups should be NoResults")
	}
	if (RagaResults{Query: "x", Groups: []RagaGroup{{Name: "X"}}}).State() != Found {
		t.Error("raga query with groups should be Found")
	}
	if (SongResults{}).State() != NoQuery {
		t.Error("empty song query should be NoQuery")
	}
	if (SongResults{Query: "x"}).State() != NoResults {
		t.Error("song query without matches should be NoResults")
	}
}

func TestRagaGroupSelect(t *testing.T) {
	g := RagaGroup{Name: "Kalyani", Songs: []Song{{ID: 3}, {ID: 7}}}
	if g.Count() != 2 {
		t.Fatalf("Count() = %d", g.Count())
	}
	s, ok := g.Select(1)
	if !ok || s.ID != 7 {
		t.Errorf("Select(1) = %v, %v", s, ok)
	}
	if _, ok := g.Select(2); ok {
		t.Error("Select out of range should fail")
	}
	if _, ok := g.Select(-1); ok {
		t.Error("Select(-1) should fail")
	}
}
