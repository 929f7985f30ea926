package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultGatewayTimeout = 10 * time.Second

type HTTPGatewayConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// httpGateway forwards intents to the platform-binding sidecar over HTTP.
// Each intent is one POST; the binding owns retries against the platform
// itself.
type httpGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPGateway(cfg HTTPGatewayConfig) (Gateway, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, errors.New("invalid platform gateway configuration: base URL and token are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &httpGateway{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type refResponse struct {
	Ref int64 `json:"ref"`
}

func (g *httpGateway) CreateCategory(ctx context.Context, communityID int64, name string) (int64, error) {
	var out refResponse
	err := g.post(ctx, "/categories", map[string]interface{}{
		"community_id": communityID,
		"name":         name,
	}, &out)
	if err != nil {
		return 0, fmt.Errorf("create category %q: %w", name, err)
	}
	return out.Ref, nil
}

func (g *httpGateway) CreateTextChannel(ctx context.Context, intent TextChannelIntent) (int64, error) {
	var out refResponse
	if err := g.post(ctx, "/channels/text", intent, &out); err != nil {
		return 0, fmt.Errorf("create text channel %q: %w", intent.Name, err)
	}
	return out.Ref, nil
}

func (g *httpGateway) CreateVoiceChannel(ctx context.Context, intent VoiceChannelIntent) (int64, error) {
	var out refResponse
	if err := g.post(ctx, "/channels/voice", intent, &out); err != nil {
		return 0, fmt.Errorf("create voice channel %q: %w", intent.Name, err)
	}
	return out.Ref, nil
}

func (g *httpGateway) DeleteChannel(ctx context.Context, communityID, channelRef int64) error {
	return g.post(ctx, "/channels/delete", map[string]interface{}{
		"community_id": communityID,
		"channel_ref":  channelRef,
	}, nil)
}

func (g *httpGateway) CreateRole(ctx context.Context, communityID int64, name string) (int64, error) {
	var out refResponse
	err := g.post(ctx, "/roles", map[string]interface{}{
		"community_id": communityID,
		"name":         name,
	}, &out)
	if err != nil {
		return 0, fmt.Errorf("create role %q: %w", name, err)
	}
	return out.Ref, nil
}

func (g *httpGateway) DeleteRole(ctx context.Context, communityID, roleRef int64) error {
	return g.post(ctx, "/roles/delete", map[string]interface{}{
		"community_id": communityID,
		"role_ref":     roleRef,
	}, nil)
}

func (g *httpGateway) AssignRole(ctx context.Context, communityID, userID, roleRef int64) error {
	return g.post(ctx, "/roles/assign", map[string]interface{}{
		"community_id": communityID,
		"user_id":      userID,
		"role_ref":     roleRef,
	}, nil)
}

func (g *httpGateway) RemoveRole(ctx context.Context, communityID, userID, roleRef int64) error {
	return g.post(ctx, "/roles/remove", map[string]interface{}{
		"community_id": communityID,
		"user_id":      userID,
		"role_ref":     roleRef,
	}, nil)
}

func (g *httpGateway) PostMessage(ctx context.Context, communityID, channelRef int64, msg Message) (int64, error) {
	var out refResponse
	err := g.post(ctx, "/messages", map[string]interface{}{
		"community_id": communityID,
		"channel_ref":  channelRef,
		"message":      msg,
	}, &out)
	if err != nil {
		return 0, fmt.Errorf("post message to channel %d: %w", channelRef, err)
	}
	return out.Ref, nil
}

func (g *httpGateway) EditMessage(ctx context.Context, communityID, channelRef, messageRef int64, msg Message) error {
	return g.post(ctx, "/messages/edit", map[string]interface{}{
		"community_id": communityID,
		"channel_ref":  channelRef,
		"message_ref":  messageRef,
		"message":      msg,
	}, nil)
}

func (g *httpGateway) SendDirectNotification(ctx context.Context, userID int64, content string) error {
	return g.post(ctx, "/notifications/direct", map[string]interface{}{
		"user_id": userID,
		"content": content,
	}, nil)
}

func (g *httpGateway) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("platform gateway returned %d for %s", resp.StatusCode, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return nil
}
