// Package reply caps engine output to the platform's per-turn quota and
// wraps it into the outbound message envelope.
package reply

import "github.com/dabini-lab/line-bot/internal/domain"

// Shape truncates replies to at most maxCount entries, preserving order,
// and wraps each survivor as a text message. An empty result is a valid
// terminal state; callers must not invoke the reply API with it.
func Shape(replies []string, maxCount int) []domain.OutboundMessage {
	if maxCount < 0 {
		maxCount = 0
	}
	if len(replies) > maxCount {
		replies = replies[:maxCount]
	}
	out := make([]domain.OutboundMessage, 0, len(replies))
	for _, text := range replies {
		out = append(out, domain.OutboundMessage{Text: text})
	}
	return out
}
