package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rsheldon/wayfinder/internal/ai"
	"github.com/rsheldon/wayfinder/internal/analytics"
	"github.com/rsheldon/wayfinder/internal/auth"
	"github.com/rsheldon/wayfinder/internal/chat"
)

const chatCookie = "wayfinder_chat"

// handleNotFoundPage serves the recovery page for any URL that matched
// no route. The page's script calls /api/analyze to fill itself in.
func (s *Server) handleNotFoundPage(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	data := map[string]any{
		"URL":     r.URL.String(),
		"Version": s.version,
	}
	if err := s.notfound.Execute(w, data); err != nil {
		slog.Error("render 404 page", "error", err)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Referrer string `json:"referrer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}

	// Tracking must never delay the visitor-facing answer.
	go s.recordHitFn(req.URL, req.Referrer, r.UserAgent())

	answer := s.ai.AnalyzeBrokenURL(r.Context(), req.URL, req.Referrer)
	jsonResponse(w, answer)
}

func (s *Server) recordHit(url, referrer, userAgent string) {
	if enabled, _ := s.db.GetSetting("analytics_enabled"); enabled == "false" {
		return
	}
	agent := analytics.SimplifyUserAgent(userAgent)
	if err := s.db.RecordHit(url, referrer, agent); err != nil {
		slog.Error("record 404 hit", "url", url, "error", err)
	}
}

// handleTrack records a suggestion click. Fire-and-forget from the
// page, so failures only get logged.
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}

	if err := s.db.RecordClick(req.URL); err != nil {
		slog.Error("record click", "url", req.URL, "error", err)
	}
	jsonResponse(w, map[string]bool{"ok": true})
}

type aiResponder struct {
	client *ai.Client
	url    string
}

func (a aiResponder) Chat(ctx context.Context, message string) (string, error) {
	return a.client.Chat(ctx, message, a.url)
}

// chatSession finds or creates the visitor's conversation, keyed by a
// random cookie so transcripts survive across requests. pageURL is the
// broken URL the visitor landed on; it only matters when the session
// is first created.
func (s *Server) chatSession(w http.ResponseWriter, r *http.Request, pageURL string) (*chat.Session, error) {
	var key string
	if cookie, err := r.Cookie(chatCookie); err == nil && cookie.Value != "" {
		key = cookie.Value
	} else {
		var err error
		key, err = auth.GenerateToken()
		if err != nil {
			return nil, err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     chatCookie,
			Value:    key,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	now := time.Now()

	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	entry, ok := s.chats[key]
	if !ok {
		if len(s.chats) >= s.maxChats {
			s.evictLocked(now)
		}
		entry = &chatEntry{sess: chat.NewSession(aiResponder{client: s.ai, url: pageURL})}
		s.chats[key] = entry
	}
	entry.lastSeen = now
	return entry.sess, nil
}

// evictIdleChats drops transcripts that have been idle longer than the
// chat TTL, as of the given time.
func (s *Server) evictIdleChats(now time.Time) {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	for key, entry := range s.chats {
		if now.Sub(entry.lastSeen) > chatTTL {
			delete(s.chats, key)
		}
	}
}

// evictLocked makes room for a new session when the map is at capacity.
// Idle sessions go first; if none are idle the least recently used one
// is dropped. Caller holds chatMu.
func (s *Server) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for key, entry := range s.chats {
		if now.Sub(entry.lastSeen) > chatTTL {
			delete(s.chats, key)
			continue
		}
		if oldestKey == "" || entry.lastSeen.Before(oldest) {
			oldestKey, oldest = key, entry.lastSeen
		}
	}
	if len(s.chats) >= s.maxChats && oldestKey != "" {
		delete(s.chats, oldestKey)
	}
}

func (s *Server) handleChatSubmit(w http.ResponseWriter, r *http.Request) {
	if enabled, _ := s.db.GetSetting("chat_enabled"); enabled == "false" {
		jsonError(w, "Chat is disabled", http.StatusForbidden)
		return
	}

	var req struct {
		Message string `json:"message"`
		URL     string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}

	sess, err := s.chatSession(w, r, req.URL)
	if err != nil {
		slog.Error("open chat session", "error", err)
		jsonError(w, "Chat is unavailable", http.StatusInternalServerError)
		return
	}
	if err := sess.Submit(r.Context(), req.Message); err != nil {
		slog.Warn("chat turn failed", "error", err)
	}
	jsonResponse(w, map[string]any{"messages": sess.Messages()})
}

func (s *Server) handleChatTranscript(w http.ResponseWriter, r *http.Request) {
	sess, err := s.chatSession(w, r, "")
	if err != nil {
		slog.Error("open chat session", "error", err)
		jsonError(w, "Chat is unavailable", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]any{
		"messages": sess.Messages(),
		"awaiting": sess.Awaiting(),
	})
}

func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.chatSession(w, r, "")
	if err != nil {
		slog.Error("open chat session", "error", err)
		jsonError(w, "Chat is unavailable", http.StatusInternalServerError)
		return
	}
	sess.Reset()
	jsonResponse(w, map[string]bool{"ok": true})
}
