package line

import (
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/dabini-lab/line-bot/internal/domain"
)

func TestFromSDKEvent_TextMessage(t *testing.T) {
	ev := webhook.MessageEvent{
		ReplyToken: "rt-1",
		Timestamp:  1700000000000,
		Source:     webhook.GroupSource{GroupId: "G-1", UserId: "U-1"},
		Message: webhook.TextMessageContent{
			Id:   "m-1",
			Text: "@다빈 안녕",
			Mention: &webhook.Mention{
				Mentionees: []webhook.MentioneeInterface{
					webhook.UserMentionee{UserId: "U-bot", Index: 0, Length: 3},
					webhook.UserMentionee{UserId: "U-2", Index: 4, Length: 3},
				},
			},
		},
	}

	got := fromSDKEvent(ev)
	if got.ReplyToken != "rt-1" {
		t.Errorf("expected reply token rt-1, got %q", got.ReplyToken)
	}
	if got.Message == nil {
		t.Fatal("expected a text message payload")
	}
	if got.Message.Text != "@다빈 안녕" {
		t.Errorf("unexpected text %q", got.Message.Text)
	}
	if len(got.Message.Mentionees) != 2 || got.Message.Mentionees[0] != "U-bot" || got.Message.Mentionees[1] != "U-2" {
		t.Errorf("mentionees not mapped in order: %v", got.Message.Mentionees)
	}
	if got.Source.Kind != domain.SourceGroup || got.Source.ChatID != "G-1" || got.Source.UserID != "U-1" {
		t.Errorf("unexpected source %+v", got.Source)
	}
}

func TestFromSDKEvent_TextWithoutMention(t *testing.T) {
	ev := webhook.MessageEvent{
		ReplyToken: "rt-2",
		Source:     webhook.UserSource{UserId: "U-1"},
		Message:    webhook.TextMessageContent{Id: "m-2", Text: "hello"},
	}

	got := fromSDKEvent(ev)
	if got.Message == nil || got.Message.Mentionees != nil {
		t.Errorf("expected text message without mentionees, got %+v", got.Message)
	}
	if got.Source.Kind != domain.SourceUser || got.Source.ChatID != "U-1" {
		t.Errorf("unexpected source %+v", got.Source)
	}
}

func TestFromSDKEvent_NonTextMessage(t *testing.T) {
	ev := webhook.MessageEvent{
		ReplyToken: "rt-3",
		Source:     webhook.UserSource{UserId: "U-1"},
		Message:    webhook.StickerMessageContent{Id: "m-3"},
	}

	got := fromSDKEvent(ev)
	if got.Message != nil {
		t.Errorf("sticker message should map to nil payload, got %+v", got.Message)
	}
	if got.ReplyToken != "rt-3" {
		t.Errorf("expected reply token preserved, got %q", got.ReplyToken)
	}
}

func TestFromSDKEvent_NonMessageEvent(t *testing.T) {
	got := fromSDKEvent(webhook.FollowEvent{})
	if got.IsText() {
		t.Error("follow event should not carry a text payload")
	}
}

func TestFromSDKSource_Room(t *testing.T) {
	got := fromSDKSource(webhook.RoomSource{RoomId: "R-1", UserId: "U-9"})
	if got.Kind != domain.SourceRoom || got.ChatID != "R-1" || got.UserID != "U-9" {
		t.Errorf("unexpected source %+v", got)
	}
}
