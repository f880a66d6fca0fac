package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/w3wg/crypto-sage/internal/config"
	"github.com/w3wg/crypto-sage/internal/model/chat"
	"github.com/w3wg/crypto-sage/pkg/log"
)

var ErrEmptyTranscript = errors.New("transcript is empty")

// Provider talks to one hosted chat-completion API.
type Provider interface {
	Complete(ctx context.Context, credential string, transcript []chat.Message) (string, error)
}

// Service forwards transcripts to the configured completion endpoint.
type Service struct {
	provider Provider
	cfg      config.AIConfig
}

// NewService picks the provider named by the configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	var (
		provider Provider
		err      error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		provider = newOpenAIProvider(cfg)
	case config.ProviderArk:
		provider, err = newArkProvider(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create completion provider: %w", err)
	}

	return NewServiceWithProvider(provider, cfg), nil
}

// NewServiceWithProvider wraps an already constructed provider.
func NewServiceWithProvider(provider Provider, cfg config.AIConfig) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Model returns the model identifier sent on every call.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Complete sends the whole transcript and returns the assistant reply.
func (s *Service) Complete(ctx context.Context, credential string, transcript []chat.Message) (string, error) {
	if len(transcript) == 0 {
		return "", ErrEmptyTranscript
	}

	reply, err := s.provider.Complete(ctx, credential, transcript)
	if err != nil {
		return "", err
	}

	log.Infow("generated completion", "provider", s.cfg.Provider, "model", s.cfg.Model, "length", len(reply))
	return reply, nil
}
