package sources

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/valutatrade/tradehub/internal/apperrors"
)

// apiClient is the shared HTTP plumbing for rate sources: one timed GET with
// the configured timeout, failures mapped onto the typed source errors the
// aggregator distinguishes.
type apiClient struct {
	httpClient *http.Client
}

func newAPIClient(timeout time.Duration) *apiClient {
	return &apiClient{httpClient: &http.Client{Timeout: timeout}}
}

// get performs the request and returns the body, the HTTP status, the etag
// header and the request latency in milliseconds.
func (c *apiClient) get(ctx context.Context, url string) (body []byte, statusCode int, etag string, requestMS int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, "", 0, apperrors.TransportError{URL: url, Err: err}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	requestMS = time.Since(started).Milliseconds()
	if err != nil {
		return nil, 0, "", requestMS, apperrors.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, "", requestMS, apperrors.TransportError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, "", requestMS, apperrors.HTTPStatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, resp.StatusCode, resp.Header.Get("ETag"), requestMS, nil
}
