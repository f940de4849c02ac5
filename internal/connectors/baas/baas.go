// Package baas is the backend-as-a-service connector. Auth pairs a project
// API key with a service token, both sent on every call.
package baas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/integration"
)

const (
	DefaultBaseURL = "https://api.supabase.com"

	defaultTimeout = 30 * time.Second
)

type Client struct {
	BaseURL string
	APIKey  string
	Token   string
	HTTP    *http.Client
}

func New(apiKey, token, baseURL string, httpClient *http.Client) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	token = strings.TrimSpace(token)
	if apiKey == "" {
		return nil, errors.New("baas api key is required")
	}
	if token == "" {
		return nil, errors.New("baas service token is required")
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{BaseURL: base, APIKey: apiKey, Token: token, HTTP: httpClient}, nil
}

func (c *Client) Provider() integration.Provider {
	return integration.ProviderBaaS
}

func (c *Client) Identity(ctx context.Context) (connectors.Identity, error) {
	var payload struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Organization string `json:"organization"`
	}
	if err := c.get(ctx, "/v1/project", &payload); err != nil {
		return connectors.Identity{}, err
	}
	return connectors.Identity{
		AccountID:     payload.ID,
		AccountName:   payload.Name,
		WorkspaceName: payload.Organization,
	}, nil
}

// Sync inventories the project's tables and functions. Either listing can
// fail independently; the other still counts.
func (c *Client) Sync(ctx context.Context) (connectors.Report, error) {
	var report connectors.Report
	listed := false

	var tables []struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/v1/tables", &tables); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("tables: %v", err))
	} else {
		report.ItemsSynced += len(tables)
		listed = true
	}

	var functions []struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/v1/functions", &functions); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("functions: %v", err))
	} else {
		report.ItemsSynced += len(functions)
		listed = true
	}

	if !listed {
		return connectors.Report{}, fmt.Errorf("baas inventory failed: %s", strings.Join(report.Errors, "; "))
	}
	return report, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("baas request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("baas request %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("baas response %s: %w", path, err)
	}
	return nil
}
