// Package httpx holds the small pieces shared by the HTTP-backed
// collaborators.
package httpx

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// UserAgent is sent on every outbound request. The public Google endpoints
// reject requests without a browser-like agent.
const UserAgent = "Mozilla/5.0 (compatible; signboard-mcp)"

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status: %s: %s", e.Status, e.Body)
}

// NewClient returns a client for one provider. Per-call deadlines come from
// the request context; timeout only backstops a context without one.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// CheckResponse returns a *StatusError for non-2xx responses, with up to
// maxErrorBody bytes of the body. The body is left for the caller to close.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
