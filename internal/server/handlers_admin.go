package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rsheldon/wayfinder/internal/analytics"
	"github.com/rsheldon/wayfinder/internal/auth"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}

	// The admin user is created out of band, so recheck before
	// rejecting in case one appeared after startup.
	if !s.hasUsers.Load() {
		if n, _ := s.db.UserCount(); n > 0 {
			s.hasUsers.Store(true)
		} else {
			jsonError(w, "No admin account exists; run the create-admin command first", http.StatusForbidden)
			return
		}
	}

	sess, err := auth.Login(s.db, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			jsonError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		slog.Error("login failed", "error", err)
		jsonError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isHTTPS(r),
	})
	jsonResponse(w, map[string]bool{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := auth.Logout(s.db, cookie.Value); err != nil {
			slog.Warn("logout", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	jsonResponse(w, map[string]bool{"ok": true})
}

// isHTTPS checks X-Forwarded-Proto (set by reverse proxies) or the
// TLS state of the connection itself.
func isHTTPS(r *http.Request) bool {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.TLS != nil
}

// Settings the admin API may read and write. API keys are write-only:
// reads report configured/not configured instead of the key itself.
var editableSettings = map[string]bool{
	"ai_provider":       true,
	"openai_api_key":    true,
	"openai_model":      true,
	"anthropic_api_key": true,
	"anthropic_model":   true,
	"gemini_api_key":    true,
	"gemini_model":      true,
	"suggestion_source": true,
	"brand_tone":        true,
	"brand_industry":    true,
	"writing_sample":    true,
	"message_length":    true,
	"include_emoji":     true,
	"fallback_message":  true,
	"chat_enabled":      true,
	"analytics_enabled": true,
	"admin_api_key":     true,
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	all, err := s.db.GetAllSettings()
	if err != nil {
		slog.Error("load settings", "error", err)
		jsonError(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	result := make(map[string]string, len(all))
	for key, value := range all {
		if !editableSettings[key] {
			continue
		}
		if strings.HasSuffix(key, "_api_key") {
			if value != "" {
				result[key] = "configured"
			} else {
				result[key] = ""
			}
			continue
		}
		result[key] = value
	}
	jsonResponse(w, map[string]any{
		"settings": result,
		"provider": s.ai.ProviderName(),
	})
}

func (s *Server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}

	for key, value := range req {
		if !editableSettings[key] {
			jsonError(w, fmt.Sprintf("unknown setting %q", key), http.StatusBadRequest)
			return
		}
		if err := s.db.SetSetting(key, value); err != nil {
			slog.Error("save setting", "key", key, "error", err)
			jsonError(w, "Failed to save settings", http.StatusInternalServerError)
			return
		}
	}
	jsonResponse(w, map[string]bool{"ok": true})
}

func (s *Server) handleAnalyticsList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.db.ListNotFound(status, limit)
	if err != nil {
		slog.Error("list 404s", "error", err)
		jsonError(w, "Failed to list 404s", http.StatusInternalServerError)
		return
	}

	type entryResp struct {
		ID           int64   `json:"id"`
		URL          string  `json:"url"`
		Hits         int     `json:"hits"`
		Clicks       int     `json:"clicks"`
		SuccessRate  float64 `json:"success_rate"`
		Status       string  `json:"status"`
		Notes        string  `json:"notes"`
		SuggestedFix string  `json:"suggested_fix"`
		FirstSeen    string  `json:"first_seen"`
		LastSeen     string  `json:"last_seen"`
		TopReferrer  string  `json:"top_referrer"`
	}

	result := make([]entryResp, 0, len(entries))
	for _, e := range entries {
		result = append(result, entryResp{
			ID:           e.ID,
			URL:          e.URL,
			Hits:         e.Hits,
			Clicks:       e.Clicks,
			SuccessRate:  e.SuccessRate(),
			Status:       e.Status,
			Notes:        e.Notes,
			SuggestedFix: s.fixer.SuggestFix(r.Context(), e.URL),
			FirstSeen:    e.FirstSeen.Format(time.RFC3339),
			LastSeen:     e.LastSeen.Format(time.RFC3339),
			TopReferrer:  e.TopReferrer,
		})
	}
	jsonResponse(w, map[string]any{"entries": result})
}

// handleAnalyticsDetail returns the per-referrer and per-agent hit
// breakdowns for one tracked URL.
func (s *Server) handleAnalyticsDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}

	referrers, err := s.db.ReferrerBreakdown(id)
	if err != nil {
		slog.Error("referrer breakdown", "id", id, "error", err)
		jsonError(w, "Failed to load breakdown", http.StatusInternalServerError)
		return
	}
	agents, err := s.db.AgentBreakdown(id)
	if err != nil {
		slog.Error("agent breakdown", "id", id, "error", err)
		jsonError(w, "Failed to load breakdown", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]any{
		"referrers": referrers,
		"agents":    agents,
	})
}

func (s *Server) handleAnalyticsStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := s.db.UpdateNotFoundStatus(id, req.Status, req.Notes); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonResponse(w, map[string]bool{"ok": true})
}

func (s *Server) handleAnalyticsExport(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.ListNotFound("", 10000)
	if err != nil {
		slog.Error("export 404s", "error", err)
		jsonError(w, "Failed to export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="404-errors-%s.csv"`, time.Now().Format("2006-01-02")))

	err = analytics.WriteCSV(w, entries, func(url string) string {
		return s.fixer.SuggestFix(r.Context(), url)
	})
	if err != nil {
		slog.Error("write csv", "error", err)
	}
}

// handleStatus reports the service health the dashboard shows: which
// provider answers, how big the index and database are, and whether a
// crawl is underway.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbSize, err := s.db.DatabaseSizeBytes()
	if err != nil {
		slog.Warn("stat database", "error", err)
	}
	contentItems, err := s.db.ContentItemCount()
	if err != nil {
		slog.Warn("count content items", "error", err)
	}
	jsonResponse(w, map[string]any{
		"version":       s.version,
		"provider":      s.ai.ProviderName(),
		"db_size_bytes": dbSize,
		"content_items": contentItems,
		"crawling":      s.crawling.Load(),
	})
}

func (s *Server) handleProviderTest(w http.ResponseWriter, r *http.Request) {
	reply, err := s.ai.TestProvider(r.Context())
	if err != nil {
		jsonResponse(w, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	jsonResponse(w, map[string]any{"ok": true, "provider": s.ai.ProviderName(), "reply": reply})
}

// handleCrawl kicks off a content index rebuild. Only one crawl runs
// at a time; a second request while one is active is rejected.
func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}

	baseURL := req.URL
	if baseURL == "" {
		baseURL = s.cfg.Crawl.BaseURL
	}
	if baseURL == "" {
		jsonError(w, "no crawl URL configured", http.StatusBadRequest)
		return
	}

	if !s.crawling.CompareAndSwap(false, true) {
		jsonError(w, "crawl already running", http.StatusConflict)
		return
	}

	go func() {
		defer s.crawling.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		n, err := s.crawler.Crawl(ctx, baseURL, s.db)
		if err != nil {
			slog.Error("crawl failed", "url", baseURL, "error", err)
			return
		}
		slog.Info("crawl finished", "url", baseURL, "pages", n)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"started": true, "url": baseURL})
}

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
