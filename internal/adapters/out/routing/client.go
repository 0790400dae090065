// Package routing estimates drive times against an OSRM-compatible routing
// service. The suggestion query treats estimates as decoration; callers
// already tolerate this provider failing or being absent.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Client implements ports.ETAProvider using an OSRM route endpoint.
// Safe for concurrent use.
type Client struct {
	session *http.Client
	baseURL string
	profile string
}

// NewClient creates a routing client for the given OSRM base URL,
// e.g. "http://router.project-osrm.org".
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("routing base URL is empty")
	}

	return &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
	}, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("routing service returned %d: %s", e.Code, e.Body)
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// EstimateDrive returns the drive time between two points.
func (c *Client) EstimateDrive(ctx context.Context, from, to kernel.GeoPoint) (time.Duration, error) {
	// OSRM takes lng,lat pairs.
	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=false",
		c.baseURL, c.profile, from.Lng(), from.Lat(), to.Lng(), to.Lat())

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return nil, fmt.Errorf("create request: %w", reqErr)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var parsed routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode route response: %w", err)
	}

	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return 0, fmt.Errorf("no route found (code %q)", parsed.Code)
	}

	return time.Duration(parsed.Routes[0].Duration * float64(time.Second)), nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429, 5xx) with
// exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 100 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var statusErr *httpStatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Code {
			case http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
