package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/cqle/dba-virtual/backend/internal/config"
	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

// ArkGenerator runs an eino chain (history template -> Ark chat model).
type ArkGenerator struct {
	chatModel model.ChatModel
	modelName string
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewArkGenerator creates the Ark chat model from cfg and compiles the chain.
func NewArkGenerator(ctx context.Context, cfg config.AIConfig) (*ArkGenerator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newChainGenerator(ctx, chatModel, cfg.Ark.Model)
}

func newChainGenerator(ctx context.Context, chatModel model.ChatModel, modelName string) (*ArkGenerator, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkGenerator{chatModel: chatModel, modelName: modelName, chain: runnable}, nil
}

func (g *ArkGenerator) Name() string { return "ark:" + g.modelName }

// Generate invokes the chain once.
func (g *ArkGenerator) Generate(ctx context.Context, history []chat.Entry, prompt string) (string, error) {
	response, err := g.chain.Invoke(ctx, map[string]any{
		"history": buildHistoryMessages(history),
		"query":   prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil {
		return "", nil
	}
	return response.Content, nil
}

func buildHistoryMessages(history []chat.Entry) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	messages := make([]*schema.Message, 0, len(history))
	for _, entry := range history {
		if entry.Role == chat.RoleUser {
			messages = append(messages, schema.UserMessage(entry.Content))
		} else {
			messages = append(messages, schema.AssistantMessage(entry.Content, nil))
		}
	}
	return messages
}
