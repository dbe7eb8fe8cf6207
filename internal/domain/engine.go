package domain

import "context"

// Engine is the external conversational backend. Given the triggering
// text and a conversation key it returns zero or more reply strings in
// order. speaker is nil when no display name could be resolved.
type Engine interface {
	Forward(ctx context.Context, text, conversationKey string, speaker *string) ([]string, error)
}
