// Package designtool is the design-tool connector (OAuth bearer token).
package designtool

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
	DefaultBaseURL = "https://api.figma.com"

	defaultTimeout = 30 * time.Second
)

type Client struct {
	BaseURL string
	Token   string
	TeamID  string // optional; enables project inventory during sync
	HTTP    *http.Client
}

func New(token, baseURL, teamID string, httpClient *http.Client) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("design tool access token is required")
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
	return integration.ProviderDesignTool
}

func (c *Client) Identity(ctx context.Context) (connectors.Identity, error) {
	var payload struct {
		ID     string `json:"id"`
		Email  string `json:"email"`
		Handle string `json:"handle"`
		ImgURL string `json:"img_url"`
	}
	if err := c.get(ctx, "/v1/me", &payload); err != nil {
		return connectors.Identity{}, err
	}
	return connectors.Identity{
		AccountID:    payload.ID,
		AccountName:  payload.Handle,
		AccountEmail: payload.Email,
		AvatarURL:    payload.ImgURL,
		TeamID:       c.TeamID,
	}, nil
}

// Sync inventories team projects and their files. Without a team id there is
// nothing to enumerate and the report is empty.
func (c *Client) Sync(ctx context.Context) (connectors.Report, error) {
	if c.TeamID == "" {
		return connectors.Report{}, nil
	}

	var projects struct {
		Projects []struct {
			ID   json.Number `json:"id"`
			Name string      `json:"name"`
		} `json:"projects"`
	}
	if err := c.get(ctx, "/v1/teams/"+c.TeamID+"/projects", &projects); err != nil {
		return connectors.Report{}, err
	}

	var report connectors.Report
	for _, project := range projects.Projects {
		var files struct {
			Files []struct {
				Key string `json:"key"`
			} `json:"files"`
		}
		if err := c.get(ctx, "/v1/projects/"+project.ID.String()+"/files", &files); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("project %s: %v", project.Name, err))
			continue
		}
		report.ItemsSynced += len(files.Files)
	}
	return report, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("design tool request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("design tool request %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("design tool response %s: %w", path, err)
	}
	return nil
}
