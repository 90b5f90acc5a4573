package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type createRepoRequest struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Private      bool   `json:"private"`
}

type createRepoResponse struct {
	URL string `json:"url"`
}

// CreateRepo creates a model repository under the given organization and
// returns its URL. An already existing repository is not an error; its
// canonical URL is returned instead.
func (c *Client) CreateRepo(ctx context.Context, organization, name string) (string, error) {
	payload, err := json.Marshal(createRepoRequest{
		Type:         "model",
		Name:         name,
		Organization: organization,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal create-repo request: %w", err)
	}

	apiURL := c.config.Endpoint + "/api/repos/create"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create repo %s/%s: %w", organization, name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	repoURL := c.repoURL(organization, name)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var created createRepoResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err == nil && created.URL != "" {
			repoURL = created.URL
		}
		c.logger.WithField("url", repoURL).Info("Created hub repository")
		return repoURL, nil
	case http.StatusConflict:
		// exist_ok semantics: reuse the existing repository
		c.logger.WithField("url", repoURL).Info("Hub repository already exists, reusing")
		return repoURL, nil
	default:
		return "", handleHTTPError(resp, organization+"/"+name)
	}
}

func (c *Client) repoURL(organization, name string) string {
	if organization == "" {
		return fmt.Sprintf("%s/%s", c.config.Endpoint, name)
	}
	return fmt.Sprintf("%s/%s/%s", c.config.Endpoint, organization, name)
}
