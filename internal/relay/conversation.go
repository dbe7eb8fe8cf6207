package relay

// Scope selects how conversation identity is derived for the engine.
type Scope string

const (
	// ScopeChannel keys one conversation per channel: every chat the bot
	// is in shares the bot's dialogue state.
	ScopeChannel Scope = "channel"
	// ScopeUser appends the sender id, giving each user their own
	// dialogue state.
	ScopeUser Scope = "user"
)

// ConversationKey derives the engine session identifier. The key is
// stable for the lifetime of the channel (and, under ScopeUser, the
// sender); it never depends on per-message data.
func ConversationKey(scope Scope, channelID, userID string) string {
	key := "line-" + channelID
	if scope == ScopeUser && userID != "" {
		key += "-" + userID
	}
	return key
}
