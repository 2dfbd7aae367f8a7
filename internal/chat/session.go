// Package chat manages a single visitor's conversation on the 404
// page: an ordered transcript of user and AI turns, with long AI
// replies staged behind a short "thinking" placeholder.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rsheldon/wayfinder/internal/markdown"
)

// Replies longer than this get a placeholder first so the transcript
// shows immediate activity while the full text is swapped in.
const longReplyThreshold = 100

const thinkingDelay = 800 * time.Millisecond

const (
	placeholderText = "AI is thinking..."
	apologyText     = "Sorry, I'm having trouble responding right now. Please try the suggestions above!"
)

// Sender identifies who authored a transcript turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one turn in the transcript. Text is the raw input;
// RenderedHTML is what the page displays. User turns are escaped only,
// AI turns go through the markdown renderer.
type Message struct {
	ID           int       `json:"id"`
	Sender       Sender    `json:"sender"`
	Text         string    `json:"text"`
	RenderedHTML string    `json:"html"`
	Pending      bool      `json:"pending"`
	Timestamp    time.Time `json:"timestamp"`
}

// Responder produces the AI's reply to a user message.
type Responder interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Session is a single conversation. Methods are safe for concurrent
// use; messages are append-only and IDs are assigned in order.
type Session struct {
	mu        sync.Mutex
	messages  []Message
	nextID    int
	awaiting  bool
	responder Responder
	delay     time.Duration
	now       func() time.Time
}

func NewSession(responder Responder) *Session {
	return &Session{
		responder: responder,
		nextID:    1,
		delay:     thinkingDelay,
		now:       time.Now,
	}
}

// Messages returns a copy of the transcript in order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Awaiting reports whether a reply is still in flight. New input is
// ignored until the pending turn resolves.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Reset clears the transcript and any pending state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.nextID = 1
	s.awaiting = false
}

// Submit records a user turn and blocks for the AI reply. Blank input
// and input sent while a reply is pending are dropped without adding
// a turn. On responder failure the AI turn is a fixed apology.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" || s.awaiting {
		s.mu.Unlock()
		return nil
	}
	s.awaiting = true
	s.appendLocked(Message{
		Sender:       SenderUser,
		Text:         text,
		RenderedHTML: markdown.EscapeText(text),
		Timestamp:    s.now(),
	})
	s.mu.Unlock()

	reply, err := s.responder.Chat(ctx, text)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.awaiting = false
		s.appendLocked(Message{
			Sender:       SenderAI,
			Text:         apologyText,
			RenderedHTML: markdown.Render(apologyText),
			Timestamp:    s.now(),
		})
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaiting = false

	if len(reply) > longReplyThreshold {
		id := s.appendLocked(Message{
			Sender:       SenderAI,
			Text:         placeholderText,
			RenderedHTML: markdown.EscapeText(placeholderText),
			Pending:      true,
			Timestamp:    s.now(),
		})
		go s.resolve(id, reply)
		return nil
	}

	s.appendLocked(Message{
		Sender:       SenderAI,
		Text:         reply,
		RenderedHTML: markdown.Render(reply),
		Timestamp:    s.now(),
	})
	return nil
}

// resolve swaps a placeholder turn for the real reply after the
// staging delay. The turn may have been cleared by Reset in the
// meantime, in which case the swap is dropped.
func (s *Session) resolve(id int, reply string) {
	time.Sleep(s.delay)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id && s.messages[i].Pending {
			s.messages[i].Text = reply
			s.messages[i].RenderedHTML = markdown.Render(reply)
			s.messages[i].Pending = false
			s.messages[i].Timestamp = s.now()
			return
		}
	}
}

func (s *Session) appendLocked(m Message) int {
	m.ID = s.nextID
	s.nextID++
	s.messages = append(s.messages, m)
	return m.ID
}
