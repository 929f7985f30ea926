package bracketapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultRequestTimeout = 15 * time.Second

type HTTPClientConfig struct {
	BaseURL  string // e.g. https://api.challonge.com/v1
	Username string
	APIKey   string
	Timeout  time.Duration
}

type httpClient struct {
	baseURL  string
	username string
	apiKey   string
	client   *http.Client
}

func NewHTTPClient(cfg HTTPClientConfig) (Client, error) {
	if cfg.BaseURL == "" || cfg.Username == "" || cfg.APIKey == "" {
		return nil, errors.New("invalid bracket API configuration: base URL, username and API key are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &httpClient{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type tournamentEnvelope struct {
	Tournament struct {
		ID               json.Number `json:"id"`
		FullChallongeURL string      `json:"full_challonge_url"`
		LiveImageURL     string      `json:"live_image_url"`
	} `json:"tournament"`
}

func (c *httpClient) CreateBracket(ctx context.Context, name string, participants []string, topology string) (*CreateResult, error) {
	form := url.Values{}
	form.Set("tournament[name]", name)
	form.Set("tournament[tournament_type]", topology)
	form.Set("tournament[private]", "false")

	var envelope tournamentEnvelope
	if err := c.do(ctx, http.MethodPost, "/tournaments.json", form, &envelope); err != nil {
		return nil, fmt.Errorf("create bracket %q: %w", name, err)
	}

	serviceID := envelope.Tournament.ID.String()
	if serviceID == "" {
		return nil, fmt.Errorf("create bracket %q: service returned no tournament id", name)
	}

	for _, participant := range participants {
		pForm := url.Values{}
		pForm.Set("participant[name]", participant)
		path := fmt.Sprintf("/tournaments/%s/participants.json", serviceID)
		if err := c.do(ctx, http.MethodPost, path, pForm, nil); err != nil {
			return nil, fmt.Errorf("register participant %q: %w", participant, err)
		}
	}

	startPath := fmt.Sprintf("/tournaments/%s/start.json", serviceID)
	if err := c.do(ctx, http.MethodPost, startPath, url.Values{}, nil); err != nil {
		return nil, fmt.Errorf("start bracket %s: %w", serviceID, err)
	}

	return &CreateResult{
		ServiceID: serviceID,
		ImageURL:  envelope.Tournament.FullChallongeURL + ".png",
	}, nil
}

func (c *httpClient) UpdateMatchScore(ctx context.Context, serviceID, serviceMatchID string, scoreA, scoreB int) (string, error) {
	form := url.Values{}
	form.Set("match[scores_csv]", strconv.Itoa(scoreA)+"-"+strconv.Itoa(scoreB))

	path := fmt.Sprintf("/tournaments/%s/matches/%s.json", serviceID, serviceMatchID)
	if err := c.do(ctx, http.MethodPut, path, form, nil); err != nil {
		return "", fmt.Errorf("update match %s score: %w", serviceMatchID, err)
	}

	var envelope tournamentEnvelope
	showPath := fmt.Sprintf("/tournaments/%s.json", serviceID)
	if err := c.do(ctx, http.MethodGet, showPath, nil, &envelope); err != nil {
		return "", fmt.Errorf("fetch bracket %s after score update: %w", serviceID, err)
	}

	return envelope.Tournament.FullChallongeURL + ".png", nil
}

func (c *httpClient) FetchBracketImage(ctx context.Context, serviceID string) (string, error) {
	var envelope tournamentEnvelope
	showPath := fmt.Sprintf("/tournaments/%s.json", serviceID)
	if err := c.do(ctx, http.MethodGet, showPath, nil, &envelope); err != nil {
		return "", fmt.Errorf("fetch bracket %s: %w", serviceID, err)
	}
	return envelope.Tournament.FullChallongeURL + ".png", nil
}

type matchEnvelope struct {
	Match struct {
		ID                 json.Number `json:"id"`
		Round              int         `json:"round"`
		SuggestedPlayOrder *int        `json:"suggested_play_order"`
	} `json:"match"`
}

func (c *httpClient) ListMatches(ctx context.Context, serviceID string) ([]MatchSlot, error) {
	var envelopes []matchEnvelope
	path := fmt.Sprintf("/tournaments/%s/matches.json", serviceID)
	if err := c.do(ctx, http.MethodGet, path, nil, &envelopes); err != nil {
		return nil, fmt.Errorf("list matches for bracket %s: %w", serviceID, err)
	}

	slots := make([]MatchSlot, 0, len(envelopes))
	for i, envelope := range envelopes {
		position := i + 1
		if envelope.Match.SuggestedPlayOrder != nil {
			position = *envelope.Match.SuggestedPlayOrder
		}
		slots = append(slots, MatchSlot{
			ServiceMatchID: envelope.Match.ID.String(),
			Round:          envelope.Match.Round,
			Position:       position,
		})
	}
	return slots, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bracket service returned %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode bracket service response: %w", err)
		}
	}
	return nil
}
