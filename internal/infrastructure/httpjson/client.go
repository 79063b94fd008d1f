// Package httpjson is the JSON-over-HTTP transport shared by the central
// system and training API clients.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wordsanctuary/training-portal/internal/domain"
)

const maxResponseBytes = 1 << 20

// Observer receives one callback per completed call.
type Observer interface {
	ObserveRemote(api, op string, status int, err error)
}

type Client struct {
	api     string
	baseURL string
	hc      *http.Client
	obs     Observer
}

// New returns a client for the API named api. A nil hc uses
// http.DefaultClient; obs may be nil.
func New(api, baseURL string, hc *http.Client, obs Observer) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{api: api, baseURL: strings.TrimRight(baseURL, "/"), hc: hc, obs: obs}
}

// envelope is the subset of every response body the transport inspects.
type envelope struct {
	Message string `json:"message"`
}

// Do sends body (when non-nil) as JSON and decodes a 2xx response into out.
// Non-2xx responses and transport failures return *domain.RemoteError.
func (c *Client) Do(ctx context.Context, op, method, path string, body, out any) error {
	status, err := c.do(ctx, op, method, path, body, out)
	if c.obs != nil {
		c.obs.ObserveRemote(c.api, op, status, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, &domain.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, &domain.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &domain.RemoteError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return resp.StatusCode, &domain.RemoteError{Op: op, Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, &domain.RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.StatusCode, nil
}
