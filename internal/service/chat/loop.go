package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/w3wg/crypto-sage/internal/model/chat"
	"github.com/w3wg/crypto-sage/internal/model/persona"
	"github.com/w3wg/crypto-sage/pkg/log"
)

var (
	ErrEmptyMessage = errors.New("message content is required")
	ErrNotOpened    = errors.New("conversation has not been opened")
)

// Completer maps a transcript to the next assistant reply.
type Completer interface {
	Complete(ctx context.Context, credential string, transcript []chat.Message) (string, error)
}

// Loop drives the conversation: it seeds the persona, forwards every
// submission with the whole transcript and records the reply.
type Loop struct {
	sessions  *Service
	completer Completer
	personas  persona.Store
	policy    CredentialPolicy
}

// NewLoop wires the chat loop.
func NewLoop(sessions *Service, completer Completer, personas persona.Store, policy CredentialPolicy) *Loop {
	return &Loop{
		sessions:  sessions,
		completer: completer,
		personas:  personas,
		policy:    policy,
	}
}

// Sessions exposes the underlying session store.
func (l *Loop) Sessions() *Service {
	return l.sessions
}

// StoreCredential keeps credential for the session and returns the banner to show.
func (l *Loop) StoreCredential(ctx context.Context, sessionID, credential string) (Banner, error) {
	credential = strings.TrimSpace(credential)
	if err := l.sessions.SetCredential(ctx, sessionID, credential); err != nil {
		return Banner{}, err
	}
	return l.policy.BannerFor(credential), nil
}

// Banner returns the banner for the credential currently held by the session.
func (l *Loop) Banner(ctx context.Context, sessionID string) (Banner, error) {
	credential, err := l.sessions.Credential(ctx, sessionID)
	if err != nil {
		return Banner{}, err
	}
	return l.policy.BannerFor(credential), nil
}

// Visible returns the rendered part of the transcript.
func (l *Loop) Visible(ctx context.Context, sessionID string) ([]chat.Message, error) {
	transcript, err := l.sessions.LoadTranscript(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return chat.Visible(transcript), nil
}

// Open seeds the transcript with the persona and materializes the opening
// assistant message. It is a no-op once the transcript has been seeded.
func (l *Loop) Open(ctx context.Context, sessionID string) ([]chat.Message, error) {
	var visible []chat.Message
	err := l.sessions.withSession(sessionID, func(state *sessionState) error {
		if len(state.transcript) > 0 {
			visible = chat.Visible(state.transcript)
			return nil
		}
		if err := l.policy.Validate(state.credential); err != nil {
			return err
		}

		p, ok := l.personas.FindByID(state.session.PersonaID)
		if !ok {
			return fmt.Errorf("persona %s not found", state.session.PersonaID)
		}

		transcript := []chat.Message{{
			Role:      chat.RoleSystem,
			Content:   p.Prompt,
			CreatedAt: l.sessions.now().UTC(),
		}}
		reply, err := l.complete(ctx, state, transcript)
		if err != nil {
			return err
		}

		state.transcript = append(transcript, reply)
		visible = chat.Visible(state.transcript)
		return nil
	})
	return visible, err
}

// Submit appends the user message, asks the completion endpoint for a reply
// and appends it. On failure the transcript is left untouched.
func (l *Loop) Submit(ctx context.Context, sessionID, content string) ([]chat.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	var visible []chat.Message
	err := l.sessions.withSession(sessionID, func(state *sessionState) error {
		if err := l.policy.Validate(state.credential); err != nil {
			return err
		}
		if len(state.transcript) == 0 {
			return ErrNotOpened
		}

		transcript := make([]chat.Message, len(state.transcript), len(state.transcript)+2)
		copy(transcript, state.transcript)
		transcript = append(transcript, chat.Message{
			Role:      chat.RoleUser,
			Content:   content,
			CreatedAt: l.sessions.now().UTC(),
		})

		reply, err := l.complete(ctx, state, transcript)
		if err != nil {
			return err
		}

		state.transcript = append(transcript, reply)
		visible = chat.Visible(state.transcript)
		return nil
	})
	return visible, err
}

func (l *Loop) complete(ctx context.Context, state *sessionState, transcript []chat.Message) (chat.Message, error) {
	started := time.Now()
	content, err := l.completer.Complete(ctx, state.credential, transcript)
	if err != nil {
		log.Errorw("completion failed", "session", state.session.ID, "messages", len(transcript), "error", err)
		return chat.Message{}, fmt.Errorf("completion request failed: %w", err)
	}

	log.Infow("completion received",
		"session", state.session.ID,
		"messages", len(transcript),
		"length", len(content),
		"latency", time.Since(started).String(),
	)
	return chat.Message{
		Role:      chat.RoleAssistant,
		Content:   content,
		CreatedAt: l.sessions.now().UTC(),
	}, nil
}
