package line

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/dabini-lab/line-bot/internal/domain"
)

// Parse verifies and decodes a webhook delivery into domain events.
// Signature failures map to domain.ErrInvalidSignature.
func (c *Client) Parse(r *http.Request) ([]domain.InboundEvent, error) {
	cb, err := webhook.ParseRequest(c.secret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, domain.ErrInvalidSignature
		}
		return nil, fmt.Errorf("parse webhook: %w", err)
	}

	events := make([]domain.InboundEvent, 0, len(cb.Events))
	for _, ev := range cb.Events {
		events = append(events, fromSDKEvent(ev))
	}
	return events, nil
}

// fromSDKEvent maps one SDK event to a domain event. Anything that is
// not a text message comes back with a nil Message and is skipped
// downstream.
func fromSDKEvent(ev webhook.EventInterface) domain.InboundEvent {
	me, ok := ev.(webhook.MessageEvent)
	if !ok {
		return domain.InboundEvent{}
	}

	out := domain.InboundEvent{
		ReplyToken: me.ReplyToken,
		Source:     fromSDKSource(me.Source),
		Timestamp:  time.UnixMilli(me.Timestamp),
	}

	tm, ok := me.Message.(webhook.TextMessageContent)
	if !ok {
		return out
	}

	msg := &domain.TextMessage{ID: tm.Id, Text: tm.Text}
	if tm.Mention != nil {
		for _, m := range tm.Mention.Mentionees {
			if um, ok := m.(webhook.UserMentionee); ok {
				msg.Mentionees = append(msg.Mentionees, um.UserId)
			}
		}
	}
	out.Message = msg
	return out
}

func fromSDKSource(src webhook.SourceInterface) domain.Source {
	switch s := src.(type) {
	case webhook.UserSource:
		return domain.Source{Kind: domain.SourceUser, UserID: s.UserId, ChatID: s.UserId}
	case webhook.GroupSource:
		return domain.Source{Kind: domain.SourceGroup, UserID: s.UserId, ChatID: s.GroupId}
	case webhook.RoomSource:
		return domain.Source{Kind: domain.SourceRoom, UserID: s.UserId, ChatID: s.RoomId}
	default:
		return domain.Source{}
	}
}
