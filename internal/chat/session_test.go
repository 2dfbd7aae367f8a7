package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type scriptedResponder struct {
	reply string
	err   error
	calls int
}

func (r *scriptedResponder) Chat(_ context.Context, _ string) (string, error) {
	r.calls++
	return r.reply, r.err
}

func TestSubmitAppendsUserAndAITurns(t *testing.T) {
	s := NewSession(&scriptedResponder{reply: "Try the **pricing** page."})

	if err := s.Submit(context.Background(), "where is pricing?"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != SenderUser || msgs[1].Sender != SenderAI {
		t.Errorf("unexpected senders: %v, %v", msgs[0].Sender, msgs[1].Sender)
	}
	if msgs[0].ID >= msgs[1].ID {
		t.Errorf("IDs not ordered: %d, %d", msgs[0].ID, msgs[1].ID)
	}
	if !strings.Contains(msgs[1].RenderedHTML, "<strong>pricing</strong>") {
		t.Errorf("AI turn not rendered as markdown: %q", msgs[1].RenderedHTML)
	}
}

func TestSubmitEscapesUserText(t *testing.T) {
	s := NewSession(&scriptedResponder{reply: "ok"})

	if err := s.Submit(context.Background(), "<script>alert(1)</script> **hi**"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	user := s.Messages()[0]
	if strings.Contains(user.RenderedHTML, "<script") {
		t.Errorf("user HTML not escaped: %q", user.RenderedHTML)
	}
	if strings.Contains(user.RenderedHTML, "<strong>") {
		t.Errorf("user text interpreted as markdown: %q", user.RenderedHTML)
	}
}

func TestSubmitIgnoresBlankInput(t *testing.T) {
	r := &scriptedResponder{reply: "ok"}
	s := NewSession(r)

	for _, input := range []string{"", "   ", "\n\t"} {
		if err := s.Submit(context.Background(), input); err != nil {
			t.Fatalf("Submit(%q) error = %v", input, err)
		}
	}

	if len(s.Messages()) != 0 {
		t.Errorf("blank input produced messages: %v", s.Messages())
	}
	if r.calls != 0 {
		t.Errorf("responder called %d times for blank input", r.calls)
	}
}

func TestSubmitFailureAppendsApology(t *testing.T) {
	wantErr := errors.New("provider down")
	s := NewSession(&scriptedResponder{err: wantErr})

	err := s.Submit(context.Background(), "hello?")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Submit() error = %v, want %v", err, wantErr)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected user turn plus apology, got %d messages", len(msgs))
	}
	if msgs[1].Sender != SenderAI || !strings.Contains(msgs[1].Text, "trouble responding") {
		t.Errorf("apology turn missing: %+v", msgs[1])
	}
	if s.Awaiting() {
		t.Error("session stuck awaiting after failure")
	}
}

func TestLongReplyStagedBehindPlaceholder(t *testing.T) {
	reply := strings.Repeat("This answer is quite long. ", 10)
	s := NewSession(&scriptedResponder{reply: reply})
	s.delay = 5 * time.Millisecond

	if err := s.Submit(context.Background(), "tell me everything"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	msgs := s.Messages()
	ai := msgs[1]
	if !ai.Pending || ai.Text != "AI is thinking..." {
		t.Fatalf("long reply not staged behind placeholder: %+v", ai)
	}

	deadline := time.Now().Add(time.Second)
	for {
		ai = s.Messages()[1]
		if !ai.Pending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("placeholder never resolved")
		}
		time.Sleep(time.Millisecond)
	}
	if ai.Text != reply {
		t.Errorf("resolved text = %q, want full reply", ai.Text)
	}
	if ai.ID != msgs[1].ID {
		t.Errorf("resolution changed message identity: %d != %d", ai.ID, msgs[1].ID)
	}
}

func TestShortReplyNotStaged(t *testing.T) {
	s := NewSession(&scriptedResponder{reply: "Check the pricing page."})

	if err := s.Submit(context.Background(), "hi"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	ai := s.Messages()[1]
	if ai.Pending {
		t.Errorf("short reply should render immediately: %+v", ai)
	}
	if ai.Text != "Check the pricing page." {
		t.Errorf("unexpected AI text: %q", ai.Text)
	}
}

func TestResetDropsPendingResolution(t *testing.T) {
	reply := strings.Repeat("long ", 30)
	s := NewSession(&scriptedResponder{reply: reply})
	s.delay = 10 * time.Millisecond

	if err := s.Submit(context.Background(), "question"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	s.Reset()

	time.Sleep(50 * time.Millisecond)
	if got := s.Messages(); len(got) != 0 {
		t.Errorf("messages after reset: %v", got)
	}
}
