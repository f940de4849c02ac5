// Package deployplatform is the deployment-platform connector. Auth is a
// static bearer token, optionally scoped to a team.
package deployplatform

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
	DefaultBaseURL = "https://api.vercel.com"

	defaultTimeout = 30 * time.Second
)

type Client struct {
	BaseURL string
	Token   string
	TeamID  string
	HTTP    *http.Client
}

func New(token, teamID, baseURL string, httpClient *http.Client) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("deploy platform token is required")
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{BaseURL: base, Token: token, TeamID: strings.TrimSpace(teamID), HTTP: httpClient}, nil
}

func (c *Client) Provider() integration.Provider {
	return integration.ProviderDeployPlatform
}

func (c *Client) Identity(ctx context.Context) (connectors.Identity, error) {
	var payload struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
			Avatar   string `json:"avatar"`
		} `json:"user"`
	}
	if err := c.get(ctx, "/v2/user", nil, &payload); err != nil {
		return connectors.Identity{}, err
	}
	return connectors.Identity{
		AccountID:    payload.User.ID,
		AccountName:  payload.User.Username,
		AccountEmail: payload.User.Email,
		AvatarURL:    payload.User.Avatar,
		TeamID:       c.TeamID,
	}, nil
}

// Sync inventories recent deployments for the user or team.
func (c *Client) Sync(ctx context.Context) (connectors.Report, error) {
	query := url.Values{}
	if c.TeamID != "" {
		query.Set("teamId", c.TeamID)
	}

	var payload struct {
		Deployments []struct {
			UID string `json:"uid"`
		} `json:"deployments"`
	}
	if err := c.get(ctx, "/v6/deployments", query, &payload); err != nil {
		return connectors.Report{}, err
	}
	return connectors.Report{ItemsSynced: len(payload.Deployments)}, nil
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
		return fmt.Errorf("deploy platform request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deploy platform request %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("deploy platform response %s: %w", path, err)
	}
	return nil
}
