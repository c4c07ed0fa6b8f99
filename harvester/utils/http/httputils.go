// harvester/utils/http/httputils.go
package httputils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"harvester/harvester/utils/apperrors"
)

const DefaultTimeout = 30 * time.Second

// MaxBodySize caps how much of a listing page is read (10MB).
const MaxBodySize = 10 * 1024 * 1024

// Fetcher issues one GET per call with a browser-like identity. There is no retry.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch returns the raw body of url. Network errors, timeouts and non-2xx
// statuses all come back as transport errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Transport(url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	r, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.Transport(url, err)
	}
	defer r.Body.Close()

	if r.StatusCode < 200 || r.StatusCode > 299 {
		return nil, apperrors.Transport(url, fmt.Errorf("bad status: %d", r.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		return nil, apperrors.Transport(url, err)
	}
	return body, nil
}
