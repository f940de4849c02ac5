// Package mailbox is the mailbox connector (OAuth bearer token).
package mailbox

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

	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/integration"
)

const (
	DefaultBaseURL = "https://gmail.googleapis.com"

	defaultTimeout = 30 * time.Second
	syncPageSize   = 100
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(token, baseURL string, httpClient *http.Client) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("mailbox access token is required")
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
	return integration.ProviderMailbox
}

func (c *Client) Identity(ctx context.Context) (connectors.Identity, error) {
	var payload struct {
		EmailAddress string `json:"emailAddress"`
	}
	if err := c.get(ctx, "/gmail/v1/users/me/profile", nil, &payload); err != nil {
		return connectors.Identity{}, err
	}
	if payload.EmailAddress == "" {
		return connectors.Identity{}, errors.New("mailbox profile has no email address")
	}
	return connectors.Identity{
		AccountID:    payload.EmailAddress,
		AccountName:  payload.EmailAddress,
		AccountEmail: payload.EmailAddress,
	}, nil
}

// Sync inventories recent messages, one page per call.
func (c *Client) Sync(ctx context.Context) (connectors.Report, error) {
	query := url.Values{"maxResults": {strconv.Itoa(syncPageSize)}}
	var payload struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := c.get(ctx, "/gmail/v1/users/me/messages", query, &payload); err != nil {
		return connectors.Report{}, err
	}
	return connectors.Report{ItemsSynced: len(payload.Messages)}, nil
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
		return fmt.Errorf("mailbox request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailbox request %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("mailbox response %s: %w", path, err)
	}
	return nil
}
