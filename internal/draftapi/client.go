// Package draftapi talks to the remote email drafting endpoint.
package draftapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hal9000y/email-drafter/internal/drafter"
)

const (
	// DraftPath is the endpoint path, relative to the API base URL.
	DraftPath = "/email-draft"
	// DraftField is the response key carrying the draft. The misspelling is
	// what the deployed endpoint sends.
	DraftField = "reponse"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client posts draft requests to the drafting endpoint.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a Client for the endpoint under baseURL. A nil httpClient
// means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		url:  strings.TrimRight(baseURL, "/") + DraftPath,
		http: httpClient,
	}
}

// URL is the full endpoint URL.
func (c *Client) URL() string {
	return c.url
}

// Draft sends req and returns the generated draft. A response without the
// draft field yields a *drafter.ResponseError carrying the stringified body;
// any other error is a transport failure.
func (c *Client) Draft(ctx context.Context, req drafter.DraftRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("json.Marshal failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("http.NewRequestWithContext failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http.Do failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("io.ReadAll failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return ExtractDraft(raw)
}

// ExtractDraft returns the draft stored under DraftField in raw.
func ExtractDraft(raw []byte) (string, error) {
	if gjson.ValidBytes(raw) {
		field := gjson.GetBytes(raw, DraftField)
		if field.Type == gjson.String && field.Str != "" {
			return field.Str, nil
		}
	}

	return "", &drafter.ResponseError{Payload: Stringify(raw)}
}

// Stringify renders a response body for display: compact JSON when the body
// is JSON, otherwise the body as a quoted JSON string.
func Stringify(raw []byte) string {
	if gjson.ValidBytes(raw) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	}

	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return string(raw)
	}

	return string(quoted)
}
