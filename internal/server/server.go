package server

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	wayfinder "github.com/rsheldon/wayfinder"
	"github.com/rsheldon/wayfinder/internal/ai"
	"github.com/rsheldon/wayfinder/internal/analytics"
	"github.com/rsheldon/wayfinder/internal/chat"
	"github.com/rsheldon/wayfinder/internal/config"
	"github.com/rsheldon/wayfinder/internal/content"
	"github.com/rsheldon/wayfinder/internal/database"
)

// Visitor chat sessions are held in memory and reaped when idle.
const (
	chatTTL         = 30 * time.Minute
	maxChatSessions = 1000
	janitorInterval = 10 * time.Minute
)

type chatEntry struct {
	sess     *chat.Session
	lastSeen time.Time
}

type Server struct {
	cfg      config.Config
	db       *database.DB
	ai       *ai.Client
	fixer    *analytics.Fixer
	crawler  *content.Crawler
	hasUsers atomic.Bool
	version  string

	recordHitFn func(url, referrer, agent string)

	chatMu   sync.Mutex
	chats    map[string]*chatEntry
	maxChats int
	notfound *template.Template
	httpSrv  *http.Server
	crawling atomic.Bool
}

func New(cfg config.Config, db *database.DB, aiClient *ai.Client, crawler *content.Crawler, version string) *Server {
	s := &Server{
		cfg:      cfg,
		db:       db,
		ai:       aiClient,
		fixer:    &analytics.Fixer{Index: db},
		crawler:  crawler,
		version:  version,
		chats:    make(map[string]*chatEntry),
		maxChats: maxChatSessions,
	}
	s.recordHitFn = s.recordHit
	if count, _ := db.UserCount(); count > 0 {
		s.hasUsers.Store(true)
	}
	return s
}

// Start loads templates, sets up routes, and starts the HTTP server.
func (s *Server) Start() error {
	if err := s.loadTemplates(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	mux := http.NewServeMux()
	s.routes(mux)

	handler := recoveryMiddleware(loggingMiddleware(mux))

	s.sweepSessions()
	go s.janitor()

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	slog.Info("Starting server", "addr", addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// janitor reaps expired admin sessions and idle chat transcripts for
// the life of the server.
func (s *Server) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.sweepSessions()
		s.evictIdleChats(time.Now())
	}
}

func (s *Server) sweepSessions() {
	n, err := s.db.DeleteExpiredSessions()
	if err != nil {
		slog.Warn("sweep expired sessions", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("Swept expired admin sessions", "count", n)
	}
}

func (s *Server) routes(mux *http.ServeMux) {
	staticFS, _ := fs.Sub(wayfinder.StaticFS, "web/static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Visitor-facing API — public
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/chat", s.handleChatSubmit)
	mux.HandleFunc("GET /api/chat", s.handleChatTranscript)
	mux.HandleFunc("POST /api/chat/reset", s.handleChatReset)
	mux.HandleFunc("POST /api/track", s.handleTrack)

	// Admin auth — public
	mux.HandleFunc("POST /api/admin/login", s.handleLogin)
	mux.HandleFunc("POST /api/admin/logout", s.handleLogout)

	// Admin API — session protected
	mux.Handle("GET /api/admin/settings", s.requireAuth(http.HandlerFunc(s.handleSettingsGet)))
	mux.Handle("PUT /api/admin/settings", s.requireAuth(http.HandlerFunc(s.handleSettingsUpdate)))
	mux.Handle("GET /api/admin/analytics", s.requireAuth(http.HandlerFunc(s.handleAnalyticsList)))
	mux.Handle("GET /api/admin/analytics/{id}", s.requireAuth(http.HandlerFunc(s.handleAnalyticsDetail)))
	mux.Handle("PATCH /api/admin/analytics/{id}", s.requireAuth(http.HandlerFunc(s.handleAnalyticsStatus)))
	mux.Handle("GET /api/admin/analytics/export", s.requireAuth(http.HandlerFunc(s.handleAnalyticsExport)))
	mux.Handle("GET /api/admin/status", s.requireAuth(http.HandlerFunc(s.handleStatus)))
	mux.Handle("POST /api/admin/test", s.requireAuth(http.HandlerFunc(s.handleProviderTest)))
	mux.Handle("POST /api/admin/crawl", s.requireAuth(http.HandlerFunc(s.handleCrawl)))

	// Everything else is a 404 and gets the recovery page.
	mux.HandleFunc("/", s.handleNotFoundPage)
}

func (s *Server) loadTemplates() error {
	tmpl, err := template.ParseFS(wayfinder.TemplateFS, "web/templates/notfound.html")
	if err != nil {
		return err
	}
	s.notfound = tmpl
	return nil
}
