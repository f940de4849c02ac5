// Package sourcehost is the source-control host connector. It speaks the
// host's API through the go-github client using the bearer token from the
// OAuth credential.
package sourcehost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v82/github"

	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/integration"
)

const syncPageSize = 100

type Client struct {
	gh *github.Client
}

// New builds a client from an OAuth access token. baseURL overrides the
// public API endpoint for self-hosted installs and tests.
func New(token, baseURL string, httpClient *http.Client) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("source host access token is required")
	}

	gh := github.NewClient(httpClient).WithAuthToken(token)
	if base := strings.TrimSpace(baseURL); base != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("source host base URL: %w", err)
		}
	}
	return &Client{gh: gh}, nil
}

func (c *Client) Provider() integration.Provider {
	return integration.ProviderSourceHost
}

func (c *Client) Identity(ctx context.Context) (connectors.Identity, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return connectors.Identity{}, fmt.Errorf("source host identity: %w", err)
	}
	return connectors.Identity{
		AccountID:    fmt.Sprintf("%d", user.GetID()),
		AccountName:  user.GetLogin(),
		AccountEmail: user.GetEmail(),
		AvatarURL:    user.GetAvatarURL(),
	}, nil
}

// Sync inventories the repositories visible to the authenticated user.
func (c *Client) Sync(ctx context.Context) (connectors.Report, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: syncPageSize},
	}

	var report connectors.Report
	for {
		repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			if report.ItemsSynced == 0 {
				return connectors.Report{}, fmt.Errorf("source host repositories: %w", err)
			}
			report.Errors = append(report.Errors, fmt.Sprintf("repository page %d: %v", opts.Page, err))
			return report, nil
		}
		report.ItemsSynced += len(repos)
		if resp.NextPage == 0 {
			return report, nil
		}
		opts.Page = resp.NextPage
	}
}
