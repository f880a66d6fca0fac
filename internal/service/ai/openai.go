package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/w3wg/crypto-sage/internal/config"
	"github.com/w3wg/crypto-sage/internal/model/chat"
)

// openAIProvider calls the chat completions API with the session's own key.
type openAIProvider struct {
	client openai.Client
	cfg    config.AIConfig
}

func newOpenAIProvider(cfg config.AIConfig) *openAIProvider {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &openAIProvider{client: client, cfg: cfg}
}

func (p *openAIProvider) Complete(ctx context.Context, credential string, transcript []chat.Message) (string, error) {
	params, err := p.buildChatParams(transcript)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Chat.Completions.New(ctx, params, option.WithAPIKey(credential))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *openAIProvider) buildChatParams(transcript []chat.Message) (openai.ChatCompletionNewParams, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript))
	for _, msg := range transcript {
		param, err := toChatMessageParam(msg)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, param)
	}

	return openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(p.cfg.Model),
		Messages:         messages,
		Temperature:      openai.Float(p.cfg.Temperature),
		MaxTokens:        openai.Int(int64(p.cfg.MaxTokens)),
		TopP:             openai.Float(p.cfg.TopP),
		FrequencyPenalty: openai.Float(p.cfg.FrequencyPenalty),
		PresencePenalty:  openai.Float(p.cfg.PresencePenalty),
	}, nil
}

func toChatMessageParam(msg chat.Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch msg.Role {
	case chat.RoleSystem:
		return openai.SystemMessage(msg.Content), nil
	case chat.RoleUser:
		return openai.UserMessage(msg.Content), nil
	case chat.RoleAssistant:
		return openai.AssistantMessage(msg.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported message role %q", msg.Role)
	}
}
