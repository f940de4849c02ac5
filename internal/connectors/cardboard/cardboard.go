// Package cardboard is the card-board connector. Auth is the provider's
// key+token pair passed as query parameters on every call.
package cardboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/integration"
)

const (
	DefaultBaseURL = "https://api.trello.com"

	defaultTimeout = 30 * time.Second
)

type Client struct {
	BaseURL string
	Key     string
	Token   string
	HTTP    *http.Client
}

func New(key, token, baseURL string, httpClient *http.Client) (*Client, error) {
	key = strings.TrimSpace(key)
	token = strings.TrimSpace(token)
	if key == "" {
		return nil, errors.New("card board api key is required")
	}
	if token == "" {
		return nil, errors.New("card board token is required")
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{BaseURL: base, Key: key, Token: token, HTTP: httpClient}, nil
}

func (c *Client) Provider() integration.Provider {
	return integration.ProviderCardBoard
}

func (c *Client) Identity(ctx context.Context) (connectors.Identity, error) {
	var payload struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		FullName  string `json:"fullName"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatarUrl"`
	}
	if err := c.get(ctx, "/1/members/me", &payload); err != nil {
		return connectors.Identity{}, err
	}
	name := payload.FullName
	if name == "" {
		name = payload.Username
	}
	return connectors.Identity{
		AccountID:    payload.ID,
		AccountName:  name,
		AccountEmail: payload.Email,
		AvatarURL:    payload.AvatarURL,
	}, nil
}

// Sync inventories cards across the member's boards. A board whose card
// listing fails is recorded as a per-item error; the loop keeps going.
func (c *Client) Sync(ctx context.Context) (connectors.Report, error) {
	var boards []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/1/members/me/boards", &boards); err != nil {
		return connectors.Report{}, err
	}

	var report connectors.Report
	for _, board := range boards {
		var cards []struct {
			ID string `json:"id"`
		}
		if err := c.get(ctx, "/1/boards/"+board.ID+"/cards", &cards); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("board %s: %v", board.Name, err))
			continue
		}
		report.ItemsSynced += len(cards)
	}
	return report, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	query := url.Values{"key": {c.Key}, "token": {c.Token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("card board request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("card board request %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("card board response %s: %w", path, err)
	}
	return nil
}
