package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ragam/ragam/internal/catalog"
	"github.com/ragam/ragam/internal/handler"
	appI18n "github.com/ragam/ragam/internal/i18n"
	"github.com/ragam/ragam/internal/model"
	"github.com/ragam/ragam/internal/quiz"
	"github.com/ragam/ragam/internal/store"
)

//go:generate templ generate -path ../..

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ragam",
		Short: "Browse Tamil film songs by raga and quiz yourself on them",
	}

	serve := serveCmd()
	root.AddCommand(serve, searchCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `ragam --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("data", "songs_updated.csv", "Song dataset CSV path")
	f.String("db", "ragam.db", "SQLite database path for visitor sessions")
	f.String("passphrase", "", "Shared passphrase for the access gate, at most 72 bytes (or set RAGAM_PASSPHRASE)")
	f.StringP("lang", "l", "en", "Default UI language (en, ta)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /ragam)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("RAGAM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("ragam")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/ragam")
	v.AddConfigPath("/etc/ragam")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// normalizeBasePath turns "ragam/" into "/ragam" and "/" into "".
func normalizeBasePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	basePath := normalizeBasePath(v.GetString("base-path"))
	cfg := model.AppConfig{
		DataPath:      v.GetString("data"),
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
	}

	// A load failure is not fatal; the web UI reports it and retries.
	loader := catalog.NewLoader(cfg.DataPath)
	if _, err := loader.Load(); err != nil {
		slog.Warn("catalog not available yet", "error", err)
	}

	h, err := handler.New(db, loader, quiz.New(nil), v.GetString("passphrase"), cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w (set --passphrase or RAGAM_PASSPHRASE)", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware())

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go cleanupSessions(ctx, db, time.Hour)

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	slog.Info("starting server",
		"addr", addr,
		"data", cfg.DataPath,
		"lang", lang,
		"base_path", basePath,
		"secure_cookies", cfg.SecureCookies,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func cleanupSessions(ctx context.Context, db *store.Store, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		n, err := db.CleanupExpiredSessions()
		if err != nil {
			slog.Warn("session cleanup failed", "error", err)
		} else if n > 0 {
			slog.Info("removed expired sessions", "count", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
