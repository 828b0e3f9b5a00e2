// Package ai is the chat-completion gateway: a vendor-agnostic Provider
// interface, the direct Gemini/OpenRouter adapters, the Qdrant+Mistral
// retrieval-augmented composition, and the configuration-driven selector.
// Adapters implement Provider so the HTTP layer is never coupled to a
// specific AI vendor.
package ai

import (
	"context"
	"errors"
)

// Conversation roles. The set is closed; unknown roles are dropped when a
// conversation window is rendered.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the capability every chat backend exposes.
// Chat is called at most once per inbound request, must not mutate its
// input, and returns either non-empty text or an error — never both empty.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

var (
	// ErrNoUserMessage is returned when the conversation holds no user turn.
	ErrNoUserMessage = errors.New("no user message found")

	// ErrEmptyCompletion is returned when the upstream model answers with
	// success status but no text. An empty completion is never a valid answer.
	ErrEmptyCompletion = errors.New("empty response from AI")

	// ErrInvalidAPIKey marks upstream rejections that look like a missing,
	// revoked or malformed credential, so operators get an actionable
	// message instead of a generic failure.
	ErrInvalidAPIKey = errors.New("invalid or missing API key")

	// ErrNotConfigured is returned by the selector when no backend has a
	// usable credential. This is the one unconditionally fatal path.
	ErrNotConfigured = errors.New("no AI providers configured correctly")
)
