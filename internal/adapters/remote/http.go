package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/obs"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StatusError is returned for any response with a 4xx/5xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Is lets callers match a 404 with errors.Is(err, domain.ErrNotFound).
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Code == http.StatusNotFound
}

func (c *Client) endpoint(path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("api_key", c.apiKey)

	return c.baseURL + "/" + strings.TrimPrefix(path, "/") + "?" + q.Encode()
}

func (c *Client) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) do(resource string, req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		obs.RemoteRequests.WithLabelValues(resource, "error").Inc()
		return nil, err
	}
	obs.RemoteRequests.WithLabelValues(resource, strconv.Itoa(resp.StatusCode/100)+"xx").Inc()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures using exponential backoff while respecting
// context cancellation. Reads retry on network errors, 429 and 5xx. Writes only retry
// on 429, where the server has refused the request outright, so a rating is never
// stored twice.
func (c *Client) doWithRetry(
	ctx context.Context,
	resource string,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := c.backoff

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(resource, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(req.Method, err) || attempt == maxAttempts {
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

func retryable(method string, err error) bool {
	idempotent := method == http.MethodGet || method == http.MethodHead

	var he *StatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests:
			return true
		case 500, 502, 503, 504:
			return idempotent
		}
		return false
	}

	var netErr net.Error
	return idempotent && errors.As(err, &netErr)
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, resource, path string, query url.Values, out any) error {
	endpoint := c.endpoint(path, query)

	resp, err := c.doWithRetry(ctx, resource, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return fmt.Errorf("GET %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

// sendJSON issues a write with a JSON body. out may be nil when the response body
// is not needed.
func (c *Client) sendJSON(ctx context.Context, method, resource, path string, body any, out any) error {
	endpoint := c.endpoint(path, nil)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", resource, err)
		}
	}

	resp, err := c.doWithRetry(ctx, resource, func() (*http.Request, error) {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		return c.newRequest(ctx, method, endpoint, r)
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, resource, err)
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}
