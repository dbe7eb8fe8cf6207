package domain

import "time"

// SourceKind identifies where an inbound event originated.
type SourceKind string

const (
	SourceUser  SourceKind = "user" // 1:1 chat with the bot
	SourceGroup SourceKind = "group"
	SourceRoom  SourceKind = "room"
)

// IsDirect reports whether the source is a one-to-one conversation.
func (k SourceKind) IsDirect() bool { return k == SourceUser }

// Source describes the sender side of an inbound event.
type Source struct {
	Kind   SourceKind
	UserID string // empty for anonymous senders (e.g. unverified group members)
	ChatID string // group/room id; equals UserID in 1:1 chats
}

// TextMessage is the payload of a text message event. Text is always
// non-nil by construction; empty string is a valid value.
type TextMessage struct {
	ID         string
	Text       string
	Mentionees []string // mentioned user ids in message order, nil when absent
}

// InboundEvent is one item of a webhook delivery. Message is nil for
// non-message events and for message events whose content is not text;
// such events are skipped by the dispatcher.
type InboundEvent struct {
	ReplyToken string
	Source     Source
	Message    *TextMessage
	Timestamp  time.Time
}

// IsText reports whether the event carries a text message payload.
func (e InboundEvent) IsText() bool { return e.Message != nil }
