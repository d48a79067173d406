package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ragam/ragam/internal/catalog"
	"github.com/ragam/ragam/internal/handler/views"
	appI18n "github.com/ragam/ragam/internal/i18n"
	"github.com/ragam/ragam/internal/model"
	"github.com/ragam/ragam/internal/quiz"
	"github.com/ragam/ragam/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	catalog  *catalog.Loader
	quiz     *quiz.Generator
	gateHash []byte
	config   model.AppConfig
}

// MaxPassphraseLen is the longest gate passphrase in bytes. bcrypt ignores
// anything past it, so longer inputs could never be matched exactly.
const MaxPassphraseLen = 72

// New creates a new Handler. passphrase is the shared secret for the gate.
func New(s *store.Store, l *catalog.Loader, g *quiz.Generator, passphrase string, cfg model.AppConfig) (*Handler, error) {
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if len(passphrase) > MaxPassphraseLen {
		return nil, fmt.Errorf("passphrase is %d bytes, at most %d allowed", len(passphrase), MaxPassphraseLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash passphrase: %w", err)
	}
	return &Handler{store: s, catalog: l, quiz: g, gateHash: hash, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireGate)
			r.Get("/", h.handleSearch)
			r.Get("/quiz", h.handleQuizPage)
			r.Post("/quiz/new", h.handleNewQuestion)
			r.Post("/quiz/answer", h.handleAnswer)
			r.Post("/logout", h.handleLogout)
		})
	})
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// path prefixes an app path with the base path.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalog.Load()
	if err != nil {
		h.render(w, r, http.StatusServiceUnavailable, views.SearchPage(views.SearchData{LoadError: err.Error()}))
		return
	}

	q := r.URL.Query()
	data := views.SearchData{
		Songs:  cat.Len(),
		Ragas:  cat.SearchRagas(q.Get("raga")),
		Titles: cat.SearchSongs(q.Get("song")),
	}

	// A raga group member is shown only once the visitor picks one.
	if name := q.Get("group"); name != "" {
		if g, ok := data.Ragas.Group(name); ok {
			if i, err := strconv.Atoi(q.Get("member")); err == nil {
				if s, ok := g.Select(i); ok {
					data.OpenGroup = g.Name
					data.RagaChoice = &s
				}
			}
		}
	}

	// Same for song matches, even when there is exactly one.
	if id, err := strconv.Atoi(q.Get("pick")); err == nil {
		for _, m := range data.Titles.Matches {
			if m.SongID != id {
				continue
			}
			if s, err := cat.Song(id); err == nil {
				data.TitleChoice = &s
			}
			break
		}
	}

	h.render(w, r, http.StatusOK, views.SearchPage(data))
}

func (h *Handler) handleQuizPage(w http.ResponseWriter, r *http.Request) {
	q, err := h.store.CurrentQuestion(model.GateSessionFromContext(r.Context()))
	if err != nil {
		slog.Error("failed to load quiz state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, views.QuizPage(views.QuizData{
		Question: q,
		Reveal:   q != nil && r.URL.Query().Get("reveal") == "1",
	}))
}

func (h *Handler) handleNewQuestion(w http.ResponseWriter, r *http.Request) {
	sessID := model.GateSessionFromContext(r.Context())

	cat, err := h.catalog.Load()
	if err != nil {
		h.renderQuizNotice(w, r, views.QuizData{LoadError: err.Error()}, http.StatusServiceUnavailable)
		return
	}

	q, err := h.quiz.NewQuestion(cat)
	if errors.Is(err, quiz.ErrEmptyPool) {
		h.renderQuizNotice(w, r, views.QuizData{Notice: appI18n.T(r.Context(), "EmptyPool")}, http.StatusOK)
		return
	}
	if err != nil {
		slog.Error("failed to build question", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.store.SaveQuestion(sessID, q); err != nil {
		slog.Error("failed to save question", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	slog.Debug("new quiz question", "question_id", q.ID, "song_id", q.Song.ID, "choices", len(q.Choices))

	http.Redirect(w, r, h.path("/quiz"), http.StatusSeeOther)
}

// renderQuizNotice shows data on top of the visitor's current question, if any.
func (h *Handler) renderQuizNotice(w http.ResponseWriter, r *http.Request, data views.QuizData, status int) {
	q, err := h.store.CurrentQuestion(model.GateSessionFromContext(r.Context()))
	if err != nil {
		slog.Error("failed to load quiz state", "error", err)
	}
	data.Question = q
	h.render(w, r, status, views.QuizPage(data))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sessID := model.GateSessionFromContext(r.Context())

	q, err := h.store.CurrentQuestion(sessID)
	if err != nil {
		slog.Error("failed to load quiz state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	choice := r.FormValue("choice")
	if q == nil || r.FormValue("question_id") != q.ID {
		h.render(w, r, http.StatusConflict, views.QuizPage(views.QuizData{
			Question: q,
			Notice:   appI18n.T(r.Context(), "StaleQuestion"),
		}))
		return
	}

	verdict := quiz.Check(*q, choice)
	slog.Debug("quiz answer", "question_id", q.ID, "verdict", verdict)
	h.render(w, r, http.StatusOK, views.QuizPage(views.QuizData{
		Question: q,
		Answer:   choice,
		Verdict:  verdict,
	}))
}
