package hub

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// HTTPError represents an HTTP error from the hub.
type HTTPError struct {
	Message    string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// RepositoryNotFoundError is returned when a model id cannot be resolved.
type RepositoryNotFoundError struct {
	*HTTPError
	RepoID string
}

func newRepositoryNotFoundError(repoID string, statusCode int) *RepositoryNotFoundError {
	return &RepositoryNotFoundError{
		HTTPError: &HTTPError{
			Message:    fmt.Sprintf("repository '%s' not found", repoID),
			StatusCode: statusCode,
		},
		RepoID: repoID,
	}
}

// IsNotFound reports whether err indicates an unresolvable repository.
func IsNotFound(err error) bool {
	var nf *RepositoryNotFoundError
	return errors.As(err, &nf)
}

func handleHTTPError(resp *http.Response, repoID string) error {
	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		return newRepositoryNotFoundError(repoID, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{
			Message:    string(body),
			StatusCode: resp.StatusCode,
		}
	}
}
