package domain

import (
	"context"
	"errors"
)

// ErrProfileNotFound is returned by ProfileFetcher when the platform
// reports no profile for the given user id.
var ErrProfileNotFound = errors.New("profile not found")

// ErrInvalidSignature is returned by webhook parsing when the delivery
// fails the platform's signature check.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ProfileFetcher resolves a display name for a platform user id.
type ProfileFetcher interface {
	GetDisplayName(ctx context.Context, userID string) (string, error)
}

// OutboundMessage is one text message of a reply batch.
type OutboundMessage struct {
	Text string
}

// ReplySender delivers a shaped reply batch against a single-use reply
// token. Implementations must reject empty batches; callers are expected
// to suppress the call instead.
type ReplySender interface {
	Reply(ctx context.Context, replyToken string, messages []OutboundMessage) error
}
