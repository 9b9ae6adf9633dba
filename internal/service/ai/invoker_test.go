package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

type stubGenerator struct {
	text     string
	err      error
	calls    int
	deadline bool
	history  []chat.Entry
	prompt   string
}

func (s *stubGenerator) Generate(ctx context.Context, history []chat.Entry, prompt string) (string, error) {
	s.calls++
	_, s.deadline = ctx.Deadline()
	s.history = history
	s.prompt = prompt
	return s.text, s.err
}

func (s *stubGenerator) Name() string { return "stub" }

func TestInvokerReturnsText(t *testing.T) {
	gen := &stubGenerator{text: "Use an index on created_at."}
	inv := NewInvoker(gen, time.Second)

	history := []chat.Entry{{Role: chat.RoleUser, Content: "hi"}}
	text, err := inv.Invoke(context.Background(), history, "How?")
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if text != "Use an index on created_at." {
		t.Fatalf("unexpected text %q", text)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one attempt, got %d", gen.calls)
	}
	if !gen.deadline {
		t.Fatal("expected timeout to be applied")
	}
	if gen.prompt != "How?" || len(gen.history) != 1 {
		t.Fatalf("history/prompt not forwarded: %+v %q", gen.history, gen.prompt)
	}
}

func TestInvokerKeepsCallerDeadline(t *testing.T) {
	gen := &stubGenerator{text: "ok"}
	inv := NewInvoker(gen, 0)

	if _, err := inv.Invoke(context.Background(), nil, "x"); err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if gen.deadline {
		t.Fatal("zero timeout must not add a deadline")
	}
}

func TestInvokerEmptyText(t *testing.T) {
	inv := NewInvoker(&stubGenerator{text: "  \n"}, time.Second)

	_, err := inv.Invoke(context.Background(), nil, "x")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if genErr.Code != 0 {
		t.Fatalf("expected no code, got %d", genErr.Code)
	}
}

func TestInvokerExtractsStatusCode(t *testing.T) {
	apiErr := genai.APIError{Code: 429, Message: "Quota exceeded for metric"}
	inv := NewInvoker(&stubGenerator{err: &apiStatusError{code: apiErr.Code, err: apiErr}}, time.Second)

	_, err := inv.Invoke(context.Background(), nil, "x")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if genErr.Code != 429 {
		t.Fatalf("expected code 429, got %d", genErr.Code)
	}
	if genErr.Message == "" {
		t.Fatal("expected raw message to be preserved")
	}
}

func TestInvokerPlainError(t *testing.T) {
	inv := NewInvoker(&stubGenerator{err: errors.New("dial tcp: lookup generativelanguage.googleapis.com: no such host")}, time.Second)

	_, err := inv.Invoke(context.Background(), nil, "x")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if genErr.Code != 0 {
		t.Fatalf("expected code 0, got %d", genErr.Code)
	}
}

func TestInvokerReady(t *testing.T) {
	if NewInvoker(nil, time.Second).Ready() {
		t.Fatal("nil generator must not be ready")
	}
	if got := NewInvoker(nil, time.Second).Backend(); got != "none" {
		t.Fatalf("expected backend none, got %q", got)
	}
	if !NewInvoker(&stubGenerator{}, time.Second).Ready() {
		t.Fatal("expected ready invoker")
	}
}
