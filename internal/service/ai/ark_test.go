package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

type fakeChatModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(f.reply, nil)}), nil
}

func (f *fakeChatModel) BindTools(tools []*schema.ToolInfo) error { return nil }

func TestArkGeneratorRunsChain(t *testing.T) {
	fake := &fakeChatModel{reply: "Crie um índice composto."}
	gen, err := newChainGenerator(context.Background(), fake, "doubao-test")
	if err != nil {
		t.Fatalf("newChainGenerator() error: %v", err)
	}

	history := []chat.Entry{
		{Role: chat.RoleUser, Content: "Tenho uma query lenta"},
		{Role: chat.RoleAssistant, Content: "Mostre o plano"},
	}
	text, err := gen.Generate(context.Background(), history, "Aqui está o plano")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if text != "Crie um índice composto." {
		t.Fatalf("unexpected text %q", text)
	}

	if len(fake.received) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(fake.received))
	}
	if fake.received[0].Role != schema.User || fake.received[1].Role != schema.Assistant {
		t.Fatalf("history roles not mapped: %s %s", fake.received[0].Role, fake.received[1].Role)
	}
	if fake.received[2].Role != schema.User || fake.received[2].Content != "Aqui está o plano" {
		t.Fatalf("unexpected last message: %+v", fake.received[2])
	}
	if gen.Name() != "ark:doubao-test" {
		t.Fatalf("unexpected name %q", gen.Name())
	}
}

func TestArkGeneratorWithoutHistory(t *testing.T) {
	fake := &fakeChatModel{reply: "ok"}
	gen, err := newChainGenerator(context.Background(), fake, "m")
	if err != nil {
		t.Fatalf("newChainGenerator() error: %v", err)
	}

	if _, err := gen.Generate(context.Background(), nil, "primeira"); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(fake.received) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fake.received))
	}
}

func TestArkGeneratorPropagatesError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("connection refused")}
	gen, err := newChainGenerator(context.Background(), fake, "m")
	if err != nil {
		t.Fatalf("newChainGenerator() error: %v", err)
	}

	if _, err := gen.Generate(context.Background(), nil, "x"); err == nil {
		t.Fatal("expected error")
	}
}
