// Package identity resolves a human-readable speaker name for a message
// sender. Resolution is cosmetic: every failure mode degrades to an
// absent name, never to a pipeline error.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dabini-lab/line-bot/internal/domain"
)

type Lookup struct {
	profiles domain.ProfileFetcher
	logger   *slog.Logger
}

func NewLookup(profiles domain.ProfileFetcher, logger *slog.Logger) *Lookup {
	return &Lookup{profiles: profiles, logger: logger}
}

// Resolve returns the sender's display name, or nil when the sender has
// no user id or the profile fetch fails. Not-found is expected for
// senders outside the bot's friend list and is logged apart from
// transport or authorization failures.
func (l *Lookup) Resolve(ctx context.Context, userID string) *string {
	if userID == "" {
		l.logger.Debug("no user id on event source, skipping profile lookup")
		return nil
	}

	name, err := l.profiles.GetDisplayName(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			l.logger.Warn("user profile not found", "user_id", userID)
		} else {
			l.logger.Error("profile lookup failed", "user_id", userID, "err", err)
		}
		return nil
	}
	return &name
}
