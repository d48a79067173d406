package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "AppTitle")
	if got != "Tamil Film Ragam Magic" {
		t.Errorf("T(AppTitle) = %q, want 'Tamil Film Ragam Magic'", got)
	}

	got = T(ctx, "NewQuestion")
	if got != "Play a Mystery Song" {
		t.Errorf("T(NewQuestion) = %q, want 'Play a Mystery Song'", got)
	}
}

func TestTranslateTamil(t *testing.T) {
	ctx := initLang(t, "ta")

	got := T(ctx, "Raga")
	if got != "ராகம்" {
		t.Errorf("T(Raga) = %q, want 'ராகம்'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "SongCount", 1); got != "1 song" {
		t.Errorf("Tp(SongCount, 1) = %q, want '1 song'", got)
	}
	if got := Tp(ctx, "SongCount", 5); got != "5 songs" {
		t.Errorf("Tp(SongCount, 5) = %q, want '5 songs'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "AnswerRaga", map[string]any{"Raga": "Kalyani"})
	if got != "Raga: Kalyani" {
		t.Errorf("Td(AnswerRaga) = %q, want 'Raga: Kalyani'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestMatch(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{"nothing", nil, "en"},
		{"query", []string{"ta", ""}, "ta"},
		{"header", []string{"", "ta-IN,ta;q=0.9,en;q=0.8"}, "ta"},
		{"query wins", []string{"en", "ta"}, "en"},
		{"unsupported", []string{"", "fr-FR"}, "en"},
		{"garbage", []string{"!!", ""}, "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.prefs...); got != tt.want {
				t.Errorf("Match(%v) = %q, want %q", tt.prefs, got, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	var got string
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "Search")
	}))

	req := httptest.NewRequest(http.MethodGet, "/?lang=ta", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "தேடு" {
		t.Errorf("tamil Search = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Search" {
		t.Errorf("default Search = %q", got)
	}
}
