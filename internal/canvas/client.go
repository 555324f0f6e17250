package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultPageSize = "100"

// Client talks to one Canvas-compatible REST API on behalf of one caller.
// It is scoped to a single request: the bearer token lives exactly as long
// as the client instance and is never written to any log.
type Client struct {
	apiRoot   string
	token     string
	http      *http.Client
	stream    *http.Client
	logger    *slog.Logger
	requestID string
}

// New builds a client for the given base endpoint and bearer token.
// The base URL may be a bare host, host + /api, or host + /api/v1.
func New(baseURL, token string, logger *slog.Logger, requestID string) *Client {
	if requestID == "" {
		requestID = "-"
	}
	return &Client{
		apiRoot:   normalizeRoot(baseURL),
		token:     token,
		http:      &http.Client{Timeout: 30 * time.Second},
		stream:    &http.Client{Transport: streamTransport()},
		logger:    logger,
		requestID: requestID,
	}
}

// streamTransport bounds connection setup and the wait for response
// headers, but puts no deadline on reading the body. Client.Timeout keeps
// running while the body is read, which would cut long downloads
// mid-stream, so the streaming client must not set one. Cancellation comes
// from the request context.
func streamTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

// normalizeRoot resolves the three accepted base-URL shapes to the
// versioned API root.
func normalizeRoot(baseURL string) string {
	trimmed := strings.TrimRight(baseURL, "/")
	lowered := strings.ToLower(trimmed)
	switch {
	case strings.HasSuffix(lowered, "/api/v1"):
		return trimmed
	case strings.HasSuffix(lowered, "/api"):
		return trimmed + "/v1"
	default:
		return trimmed + "/api/v1"
	}
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("canvas returned status %d", e.Status)
}

func (c *Client) url(path string, params url.Values) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.apiRoot + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// do issues one authenticated GET over the JSON API client and logs method,
// URL, status and elapsed time. The token only travels in the Authorization
// header.
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	return c.doWith(ctx, c.http, rawURL)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := hc.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Error("canvas request failed",
			"method", "GET",
			"url", rawURL,
			"elapsed_ms", elapsed,
			"error", err,
			"request_id", c.requestID,
		)
		return nil, err
	}

	c.logger.Info("canvas request",
		"method", "GET",
		"url", rawURL,
		"status", resp.StatusCode,
		"elapsed_ms", elapsed,
		"request_id", c.requestID,
	)
	return resp, nil
}

// Get issues one authenticated request against the API root. The caller
// owns the response body and inspects the status itself.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	return c.do(ctx, c.url(path, params))
}

// Paginate lazily walks a paginated collection, following the Link header's
// rel="next" URL until none is advertised. List pages are flattened to one
// record per element; an object-shaped page is yielded as a single record.
// The sequence is forward-only and restartable per call.
func (c *Client) Paginate(ctx context.Context, path string, params url.Values) iter.Seq2[json.RawMessage, error] {
	merged := url.Values{}
	for k, vs := range params {
		merged[k] = vs
	}
	if merged.Get("per_page") == "" {
		merged.Set("per_page", defaultPageSize)
	}
	first := c.url(path, merged)

	return func(yield func(json.RawMessage, error) bool) {
		next := first
		for next != "" {
			resp, err := c.do(ctx, next)
			if err != nil {
				yield(nil, err)
				return
			}
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				yield(nil, err)
				return
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				yield(nil, &StatusError{Status: resp.StatusCode})
				return
			}

			for _, rec := range splitPage(body) {
				if !yield(rec, nil) {
					return
				}
			}
			next = nextLink(resp.Header.Get("Link"))
		}
	}
}

// splitPage flattens a list page into its elements; anything else is one
// record.
func splitPage(body []byte) []json.RawMessage {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var page []json.RawMessage
		if err := json.Unmarshal(body, &page); err == nil {
			return page
		}
	}
	return []json.RawMessage{json.RawMessage(body)}
}

// nextLink extracts the rel="next" target from an RFC 5988 Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.SplitN(part, ";", 2)
		if len(segs) < 2 || !strings.Contains(segs[1], `rel="next"`) {
			continue
		}
		target := strings.TrimSpace(segs[0])
		return strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
	}
	return ""
}

// collect drains a paginated sequence into typed records.
func collect[T any](seq iter.Seq2[json.RawMessage, error]) ([]T, error) {
	var out []T
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
