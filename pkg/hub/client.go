package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tunelab/tune/pkg/logging"
)

// ModelInfo is the hub's model card record for a repository.
type ModelInfo struct {
	ID       string     `json:"id"`
	SHA      string     `json:"sha"`
	Private  bool       `json:"private"`
	Tags     []string   `json:"tags"`
	Siblings []RepoFile `json:"siblings"`
}

// RepoFile is one file entry inside a repository.
type RepoFile struct {
	Path string `json:"rfilename"`
}

// Client talks to the model hub REST API.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     logging.Interface
}

// NewClient creates a new hub client with the provided configuration.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hub config: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		logger:     logger,
	}, nil
}

// Endpoint returns the configured hub endpoint.
func (c *Client) Endpoint() string { return c.config.Endpoint }

// Token returns the configured access token. Empty for anonymous access.
func (c *Client) Token() string { return c.config.Token }

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
}

// ModelInfo fetches the model card for a model id. Returns
// RepositoryNotFoundError when the id does not resolve.
func (c *Client) ModelInfo(ctx context.Context, modelID string) (*ModelInfo, error) {
	apiURL := fmt.Sprintf("%s/api/models/%s", c.config.Endpoint, url.PathEscape(modelID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model info for %s: %w", modelID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, handleHTTPError(resp, modelID)
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode model info: %w", err)
	}

	return &info, nil
}

// ResolveModel fetches and parses a model's config.json at the main revision.
// This is how a model id is validated before any training work starts.
func (c *Client) ResolveModel(ctx context.Context, modelID string) (*ModelConfig, error) {
	c.logger.WithField("model_id", modelID).Info("Resolving model from hub")

	if _, err := c.ModelInfo(ctx, modelID); err != nil {
		return nil, err
	}

	fileURL := fmt.Sprintf("%s/%s/resolve/main/config.json", c.config.Endpoint, modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config.json for %s: %w", modelID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, handleHTTPError(resp, modelID)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read config.json for %s: %w", modelID, err)
	}

	return ParseModelConfig(data)
}
