// Package line wraps the LINE Messaging API SDK behind the relay's
// platform interfaces. Webhook signature verification and wire parsing
// are delegated to the SDK.
package line

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/dabini-lab/line-bot/internal/domain"
)

// Client implements domain.ProfileFetcher and domain.ReplySender, and
// parses webhook deliveries.
type Client struct {
	api    *messaging_api.MessagingApiAPI
	secret string
	logger *slog.Logger
}

type ClientConfig struct {
	ChannelSecret string
	ChannelToken  string
	HTTPClient    *http.Client // optional, shared pooled client
	Endpoint      string       // optional, overridden in tests
	Logger        *slog.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	var opts []messaging_api.MessagingApiAPIOption
	if cfg.HTTPClient != nil {
		opts = append(opts, messaging_api.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, messaging_api.WithEndpoint(cfg.Endpoint))
	}
	api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging api client: %w", err)
	}
	return &Client{api: api, secret: cfg.ChannelSecret, logger: cfg.Logger}, nil
}

// GetDisplayName fetches the sender's profile and returns the display
// name. A platform 404 is reported as domain.ErrProfileNotFound so the
// caller can tell an unknown user from a transport failure.
func (c *Client) GetDisplayName(ctx context.Context, userID string) (string, error) {
	resp, profile, err := c.api.GetProfileWithHttpInfo(userID)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", domain.ErrProfileNotFound, userID)
		}
		return "", fmt.Errorf("get profile: %w", err)
	}
	return profile.DisplayName, nil
}

// Reply sends the shaped batch against the event's reply token. The
// token is single-use; a failed call cannot be retried with it.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []domain.OutboundMessage) error {
	out := make([]messaging_api.MessageInterface, 0, len(messages))
	for _, m := range messages {
		out = append(out, messaging_api.TextMessage{Text: m.Text})
	}
	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   out,
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	c.logger.Debug("reply sent", "messages", len(out))
	return nil
}
