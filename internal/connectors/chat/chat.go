// Package chat is the chat-platform connector. Auth is a bearer token from
// the OAuth credential; the API is JSON over HTTPS with an ok/error envelope.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/integration"
)

const (
	DefaultBaseURL = "https://slack.com/api"

	defaultTimeout = 30 * time.Second
	syncPageSize   = 200
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(token, baseURL string, httpClient *http.Client) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("chat access token is required")
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{BaseURL: base, Token: token, HTTP: httpClient}, nil
}

func (c *Client) Provider() integration.Provider {
	return integration.ProviderChat
}

func (c *Client) Identity(ctx context.Context) (connectors.Identity, error) {
	var payload struct {
		OK     bool   `json:"ok"`
		Error  string `json:"error"`
		User   string `json:"user"`
		UserID string `json:"user_id"`
		Team   string `json:"team"`
		TeamID string `json:"team_id"`
	}
	if err := c.get(ctx, "/auth.test", nil, &payload); err != nil {
		return connectors.Identity{}, err
	}
	if !payload.OK {
		return connectors.Identity{}, fmt.Errorf("chat auth test failed: %s", payload.Error)
	}
	return connectors.Identity{
		AccountID:     payload.UserID,
		AccountName:   payload.User,
		WorkspaceName: payload.Team,
		TeamID:        payload.TeamID,
	}, nil
}

// Sync inventories the conversations visible to the token.
func (c *Client) Sync(ctx context.Context) (connectors.Report, error) {
	var report connectors.Report
	cursor := ""
	for {
		query := url.Values{"limit": {fmt.Sprintf("%d", syncPageSize)}}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var payload struct {
			OK       bool   `json:"ok"`
			Error    string `json:"error"`
			Channels []struct {
				ID string `json:"id"`
			} `json:"channels"`
			ResponseMetadata struct {
				NextCursor string `json:"next_cursor"`
			} `json:"response_metadata"`
		}
		if err := c.get(ctx, "/conversations.list", query, &payload); err != nil {
			if report.ItemsSynced == 0 {
				return connectors.Report{}, err
			}
			report.Errors = append(report.Errors, err.Error())
			return report, nil
		}
		if !payload.OK {
			err := fmt.Errorf("chat conversations list failed: %s", payload.Error)
			if report.ItemsSynced == 0 {
				return connectors.Report{}, err
			}
			report.Errors = append(report.Errors, err.Error())
			return report, nil
		}

		report.ItemsSynced += len(payload.Channels)
		cursor = strings.TrimSpace(payload.ResponseMetadata.NextCursor)
		if cursor == "" {
			return report, nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("chat request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("chat response %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat request %s: status %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("chat response %s: %w", path, err)
	}
	return nil
}
