package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/w3wg/crypto-sage/internal/config"
	"github.com/w3wg/crypto-sage/internal/model/chat"
)

// modelFactory builds a chat model bound to one credential.
type modelFactory func(ctx context.Context, credential string) (model.ChatModel, error)

// arkProvider runs the transcript through an eino chain ending in an Ark model.
type arkProvider struct {
	newModel modelFactory
	template prompt.ChatTemplate
}

func newArkProvider(_ context.Context, cfg config.AIConfig) (*arkProvider, error) {
	if cfg.Model == "" {
		return nil, errors.New("ark model is required")
	}
	return newArkProviderWithFactory(cfg.NewChatModel), nil
}

func newArkProviderWithFactory(factory modelFactory) *arkProvider {
	return &arkProvider{
		newModel: factory,
		template: prompt.FromMessages(
			schema.FString,
			schema.MessagesPlaceholder("transcript", false),
		),
	}
}

func (p *arkProvider) Complete(ctx context.Context, credential string, transcript []chat.Message) (string, error) {
	chatModel, err := p.newModel(ctx, credential)
	if err != nil {
		return "", fmt.Errorf("failed to create chat model: %w", err)
	}

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(p.template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to compile chat chain: %w", err)
	}

	history, err := toSchemaMessages(transcript)
	if err != nil {
		return "", err
	}

	response, err := runnable.Invoke(ctx, map[string]any{"transcript": history})
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}
	if response == nil {
		return "", errors.New("chat chain returned no message")
	}
	return response.Content, nil
}

func toSchemaMessages(transcript []chat.Message) ([]*schema.Message, error) {
	history := make([]*schema.Message, 0, len(transcript))
	for _, msg := range transcript {
		switch msg.Role {
		case chat.RoleSystem:
			history = append(history, schema.SystemMessage(msg.Content))
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return history, nil
}
