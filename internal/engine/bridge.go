// Package engine forwards triggering messages to the conversational
// backend and normalizes its replies into an ordered string sequence.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ResponseShape pins which of the two known engine response formats the
// deployed engine emits. The shape is a startup configuration choice;
// the bridge never auto-detects.
type ResponseShape string

const (
	// ShapeMessages parses {"messages": ["...", ...]}.
	ShapeMessages ResponseShape = "messages"
	// ShapeContent parses {"response": {"content": "..."}}.
	ShapeContent ResponseShape = "content"
)

// Bridge calls the engine's /messages endpoint. The injected client must
// already carry the engine credential (an ID token scoped to the engine
// base URL); the bridge itself only shapes requests and responses.
type Bridge struct {
	baseURL string
	shape   ResponseShape
	client  *http.Client
	logger  *slog.Logger
}

type BridgeConfig struct {
	BaseURL string
	Shape   ResponseShape
	Client  *http.Client
	Logger  *slog.Logger
}

func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.Shape == "" {
		cfg.Shape = ShapeMessages
	}
	return &Bridge{
		baseURL: cfg.BaseURL,
		shape:   cfg.Shape,
		client:  cfg.Client,
		logger:  cfg.Logger,
	}
}

// Only the triggering message is sent, as a one-element list; history is
// the engine's job, keyed by session_id.
type engineRequest struct {
	Messages    []string `json:"messages"`
	SessionID   string   `json:"session_id"`
	SpeakerName *string  `json:"speaker_name"`
}

type messagesResponse struct {
	Messages []string `json:"messages"`
}

type contentResponse struct {
	Response struct {
		Content string `json:"content"`
	} `json:"response"`
}

// Forward sends text to the engine under conversationKey and returns the
// ordered reply sequence. speaker is nil when no display name was
// resolved and is serialized as an explicit null.
func (b *Bridge) Forward(ctx context.Context, text, conversationKey string, speaker *string) ([]string, error) {
	body := engineRequest{
		Messages:    []string{text},
		SessionID:   conversationKey,
		SpeakerName: speaker,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("engine %d: %s", resp.StatusCode, string(respBody))
	}

	switch b.shape {
	case ShapeContent:
		var parsed contentResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		// The platform rejects empty text messages; an empty content
		// field means the engine chose to stay silent.
		if parsed.Response.Content == "" {
			return nil, nil
		}
		return []string{parsed.Response.Content}, nil
	default:
		var parsed messagesResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return parsed.Messages, nil
	}
}
