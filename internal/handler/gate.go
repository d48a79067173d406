package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ragam/ragam/internal/handler/views"
	appI18n "github.com/ragam/ragam/internal/i18n"
	"github.com/ragam/ragam/internal/model"
)

const (
	sessionCookieName = "ragam_session"
	csrfCookieName    = "csrf_token"
)

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

// issueCSRFToken sets a fresh CSRF cookie and returns the token.
func (h *Handler) issueCSRFToken(w http.ResponseWriter) (string, error) {
	token, err := generateCSRFToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: false,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			cookie, err := r.Cookie(csrfCookieName)
			if err != nil || cookie.Value == "" {
				slog.Warn("CSRF cookie missing")
				http.Error(w, "csrf token missing", http.StatusForbidden)
				return
			}

			formToken := r.FormValue("csrf_token")
			if formToken == "" {
				slog.Warn("CSRF form token missing")
				http.Error(w, "csrf token missing", http.StatusForbidden)
				return
			}

			if len(formToken) != len(cookie.Value) || subtle.ConstantTimeCompare([]byte(formToken), []byte(cookie.Value)) != 1 {
				slog.Warn("CSRF token mismatch")
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}

		token, err := h.issueCSRFToken(w)
		if err != nil {
			slog.Error("failed to generate CSRF token", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		ctx := model.ContextWithCSRFToken(r.Context(), token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireGate blocks every catalog route until the visitor has passed the
// passphrase gate.
func (h *Handler) requireGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessID, ok := h.gateSession(r)
		if !ok {
			h.redirectToLogin(w, r)
			return
		}
		ctx := model.ContextWithGateSession(r.Context(), sessID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// gateSession returns the visitor's valid gate session ID, if any.
func (h *Handler) gateSession(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	sess, err := h.store.GetGateSession(cookie.Value)
	if err != nil {
		slog.Error("failed to get gate session", "error", err)
		return "", false
	}
	if sess == nil {
		return "", false
	}
	return sess.ID, true
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	loginPath := h.path("/login")
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", loginPath)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.gateSession(r); ok {
		http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, views.LoginPage(""))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	passphrase := strings.TrimSpace(r.FormValue("passphrase"))

	if len(passphrase) > MaxPassphraseLen || bcrypt.CompareHashAndPassword(h.gateHash, []byte(passphrase)) != nil {
		slog.Info("passphrase rejected", "remote", r.RemoteAddr)
		h.render(w, r, http.StatusUnauthorized, views.LoginPage(appI18n.T(r.Context(), "AccessDenied")))
		return
	}

	token, err := h.store.CreateGateSession()
	if err != nil {
		slog.Error("failed to create gate session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteGateSession(model.GateSessionFromContext(r.Context())); err != nil {
		slog.Error("failed to delete gate session", "error", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	http.Redirect(w, r, h.path("/login"), http.StatusSeeOther)
}
