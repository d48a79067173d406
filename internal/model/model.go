package model

import (
	"context"
	"net/url"
	"strings"
)

// NoLink is stored in place of a missing video link.
const NoLink = "No Link"

// Song is one row of the catalog.
type Song struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Film      string `json:"film"`
	Raga      string `json:"raga,omitempty"` // empty when the source row had no raga
	VideoLink string `json:"video_link"`
}

// HasRaga reports whether the raga was present in the source data.
func (s Song) HasRaga() bool {
	return s.Raga != ""
}

// HasVideo reports whether the song carries a playable link.
func (s Song) HasVideo() bool {
	return strings.Contains(s.VideoLink, "http")
}

// Label is the display label used to tell apart songs with the same title.
func (s Song) Label() string {
	return s.Title + " (" + s.Film + ")"
}

// EmbedURL returns an embeddable player URL for YouTube links, or "" when the
// link cannot be embedded.
func (s Song) EmbedURL() string {
	if !s.HasVideo() {
		return ""
	}
	u, err := url.Parse(s.VideoLink)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		}
	}
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(id)
}

// ResultState distinguishes "nothing asked yet" from "asked, nothing found".
type ResultState int

const (
	NoQuery ResultState = iota
	NoResults
	Found
)

// RagaGroup holds the matched songs sharing one exact raga name.
type RagaGroup struct {
	Name  string `json:"name"`
	Songs []Song `json:"songs"`
}

// Count returns the number of songs in the group.
func (g RagaGroup) Count() int {
	return len(g.Songs)
}

// Select returns the i-th member song. Nothing is selected until a caller asks.
func (g RagaGroup) Select(i int) (Song, bool) {
	if i < 0 || i >= len(g.Songs) {
		return Song{}, false
	}
	return g.Songs[i], true
}

// RagaResults is the outcome of a raga-name search.
type RagaResults struct {
	Query  string      `json:"query"`
	Groups []RagaGroup `json:"groups"`
}

// State reports whether a query ran and whether it matched.
func (r RagaResults) State() ResultState {
	switch {
	case r.Query == "":
		return NoQuery
	case len(r.Groups) == 0:
		return NoResults
	default:
		return Found
	}
}

// Group looks up a group by its exact raga name.
func (r RagaResults) Group(name string) (RagaGroup, bool) {
	for _, g := range r.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return RagaGroup{}, false
}

// SongMatch is one entry of a song-title search.
type SongMatch struct {
	SongID int    `json:"song_id"`
	Label  string `json:"label"`
}

// SongResults is the outcome of a song-title search.
type SongResults struct {
	Query   string      `json:"query"`
	Matches []SongMatch `json:"matches"`
}

// State reports whether a query ran and whether it matched.
func (r SongResults) State() ResultState {
	switch {
	case r.Query == "":
		return NoQuery
	case len(r.Matches) == 0:
		return NoResults
	default:
		return Found
	}
}

// Question is one quiz round: a target song and a fixed choice order.
type Question struct {
	ID      string   `json:"id"`
	Song    Song     `json:"song"`
	Choices []string `json:"choices"`
}

// Verdict is the result of judging an answer.
type Verdict string

const (
	Correct   Verdict = "correct"
	Incorrect Verdict = "incorrect"
)

// AppConfig holds runtime options set via CLI flags.
type AppConfig struct {
	DataPath      string // CSV dataset path
	BasePath      string // URL prefix for sub-path deployments (e.g. "/ragam")
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

type gateCtxKey struct{}

// ContextWithGateSession stores the visitor's gate session ID in context.
func ContextWithGateSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, gateCtxKey{}, id)
}

// GateSessionFromContext retrieves the visitor's gate session ID, or "".
func GateSessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(gateCtxKey{}).(string)
	return id
}
