// Package mention decides whether an inbound message is addressed to the
// bot. The decision is an ordered list of independent signals; the first
// one that matches wins and later signals are not evaluated.
package mention

import (
	"log/slog"
	"strings"

	"github.com/dabini-lab/line-bot/internal/domain"
)

// Signal names the rule that matched a message.
type Signal string

const (
	SignalNone            Signal = ""
	SignalExplicitMention Signal = "explicit_mention" // structured mention of the bot's own id
	SignalDirectContext   Signal = "direct_context"   // 1:1 chat, every message is addressed
	SignalTextualCue      Signal = "textual_cue"      // "@" prefix or wake-word substring
)

// Resolver holds the bot identity and the configured wake-word.
type Resolver struct {
	botID    string
	wakeWord string
	logger   *slog.Logger
}

func NewResolver(botID, wakeWord string, logger *slog.Logger) *Resolver {
	return &Resolver{botID: botID, wakeWord: wakeWord, logger: logger}
}

// ShouldRespond reports whether the bot should respond to msg.
func (r *Resolver) ShouldRespond(msg *domain.TextMessage, src domain.Source) bool {
	return r.Decide(msg, src) != SignalNone
}

// Decide returns the first matching signal, or SignalNone. The mention
// payload is logged for diagnosis when present; logging never changes
// the outcome.
func (r *Resolver) Decide(msg *domain.TextMessage, src domain.Source) Signal {
	if len(msg.Mentionees) > 0 {
		r.logger.Debug("structured mention on message", "message_id", msg.ID, "mentionees", msg.Mentionees)
		for _, id := range msg.Mentionees {
			if id == r.botID {
				return SignalExplicitMention
			}
		}
	}

	if src.Kind.IsDirect() {
		return SignalDirectContext
	}

	if strings.HasPrefix(msg.Text, "@") {
		return SignalTextualCue
	}
	// Contains(s, "") is always true; an unset wake-word must never match.
	if r.wakeWord != "" && strings.Contains(strings.ToLower(msg.Text), r.wakeWord) {
		return SignalTextualCue
	}

	return SignalNone
}
