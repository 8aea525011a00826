package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/fieldsales/internal/domain"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 16 << 20

// Client talks to the PushTrack REST API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Transport: tr, Timeout: timeout},
	}
}

// Get fetches path and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, path, token string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, token, nil, "")
}

// Post sends body with the given content type and returns the raw JSON body
// of the created resource. For multipart bodies contentType must carry the
// boundary produced by the encoder.
func (c *Client) Post(ctx context.Context, path, token string, body []byte, contentType string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, token, body, contentType)
}

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Tokens, error) {
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/api/token/", "", payload, "application/json")
	if err != nil {
		return nil, err
	}

	var tokens domain.Tokens
	if err := json.Unmarshal(raw, &tokens); err != nil || tokens.Access == "" {
		return nil, fmt.Errorf("%w: token response without access token", ErrMalformedResponse)
	}
	return &tokens, nil
}

// RefreshAccess trades a refresh token for a new access token.
func (c *Client) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", fmt.Errorf("failed to marshal refresh token: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/api/token/refresh/", "", payload, "application/json")
	if err != nil {
		return "", err
	}

	var resp struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Access == "" {
		return "", fmt.Errorf("%w: refresh response without access token", ErrMalformedResponse)
	}
	return resp.Access, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, contentType string) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkUnavailable{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "path", path, "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkUnavailable{Err: fmt.Errorf("read %s: %w", path, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newRejected(resp.StatusCode, data)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w from %s %s", ErrMalformedResponse, method, path)
	}
	return json.RawMessage(data), nil
}
