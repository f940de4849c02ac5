// Package cloud is the cloud-provider connector. It authenticates with the
// three-part access credential, probes identity through STS, and inventories
// directory users through the Identity Store when one is configured.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/taskdeck/taskdeck/internal/connectors"
	"github.com/taskdeck/taskdeck/internal/integration"
)

const defaultHTTPTimeout = 60 * time.Second

// Options configure the cloud connector.
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	SessionToken    string

	// IdentityStoreID enables directory user inventory during sync.
	IdentityStoreID string
}

type stsAPI interface {
	GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type identityStoreAPI interface {
	ListUsers(context.Context, *identitystore.ListUsersInput, ...func(*identitystore.Options)) (*identitystore.ListUsersOutput, error)
}

type Client struct {
	identityStoreID string

	sts           stsAPI
	identitystore identityStoreAPI
}

// New builds SDK clients from static credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	accessKeyID := strings.TrimSpace(opts.AccessKeyID)
	secretAccessKey := strings.TrimSpace(opts.SecretAccessKey)
	region := strings.TrimSpace(opts.Region)
	if accessKeyID == "" || secretAccessKey == "" {
		return nil, errors.New("cloud access key id and secret access key are required")
	}
	if region == "" {
		return nil, errors.New("cloud region is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithHTTPClient(&http.Client{Timeout: defaultHTTPTimeout}),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			strings.TrimSpace(opts.SessionToken),
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("cloud sdk config: %w", err)
	}
	return NewWithConfig(cfg, opts), nil
}

// NewWithConfig wires the SDK clients from a prepared config. Tests inject
// stubs through the API interfaces instead.
func NewWithConfig(cfg aws.Config, opts Options) *Client {
	return &Client{
		identityStoreID: strings.TrimSpace(opts.IdentityStoreID),
		sts:             sts.NewFromConfig(cfg),
		identitystore:   identitystore.NewFromConfig(cfg),
	}
}

func (c *Client) Provider() integration.Provider {
	return integration.ProviderCloud
}

// Identity is the caller-check probe: the credential is valid iff STS can
// name the caller.
func (c *Client) Identity(ctx context.Context) (connectors.Identity, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return connectors.Identity{}, fmt.Errorf("cloud caller identity: %w", err)
	}
	return connectors.Identity{
		AccountID:     aws.ToString(out.Account),
		AccountName:   aws.ToString(out.Arn),
		WorkspaceName: aws.ToString(out.Account),
	}, nil
}

// Sync inventories directory users when an identity store is configured.
// Without one there is nothing to enumerate at this layer.
func (c *Client) Sync(ctx context.Context) (connectors.Report, error) {
	if c.identityStoreID == "" {
		return connectors.Report{}, nil
	}

	var report connectors.Report
	var nextToken *string
	for {
		out, err := c.identitystore.ListUsers(ctx, &identitystore.ListUsersInput{
			IdentityStoreId: aws.String(c.identityStoreID),
			NextToken:       nextToken,
		})
		if err != nil {
			if report.ItemsSynced == 0 {
				return connectors.Report{}, fmt.Errorf("cloud user inventory: %w", err)
			}
			report.Errors = append(report.Errors, fmt.Sprintf("user inventory page: %v", err))
			return report, nil
		}
		report.ItemsSynced += len(out.Users)
		if out.NextToken == nil || *out.NextToken == "" {
			return report, nil
		}
		nextToken = out.NextToken
	}
}
