package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// DefaultBaseURL is the public Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const (
	defaultUserAgent   = "onedrive-skill/0.1"
	contentTypeJSON    = "application/json"
	contentTypeOctet   = "application/octet-stream"
	clientRequestIDKey = "client-request-id"
)

// TokenSource provides OAuth2 bearer tokens. Defined at the consumer so the
// client works with a static token or anything else that yields one.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns the same bearer token.
// Expiry is not tracked; when the token expires requests fail with
// ErrUnauthorized and the caller obtains a new one.
type StaticToken string

// Token returns the token itself.
func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

// Client is an HTTP client for the Microsoft Graph API. Every request is a
// single attempt: there is no retry, backoff, or throttling logic.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	userAgent  string

	// newRequestID generates the client-request-id header value.
	// Tests override it for deterministic assertions.
	newRequestID func() string
}

// NewClient creates a Graph API client. baseURL is typically DefaultBaseURL
// and must not end with a slash; endpoint paths are appended verbatim.
// A nil httpClient means http.DefaultClient (no timeout); a nil logger means
// slog.Default(); an empty userAgent means the built-in default.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger, userAgent string) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		token:        token,
		logger:       logger,
		userAgent:    userAgent,
		newRequestID: uuid.NewString,
	}
}

// Do executes a single HTTP request against the Graph API. The path is
// appended to the client's base URL. An empty contentType means JSON.
// On a 2xx status the caller owns the response body and must close it.
// Any other status is returned as a *GraphError with the body consumed.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if contentType == "" {
		contentType = contentTypeJSON
	}

	return c.do(ctx, method, path, body, contentType)
}

// Call sends in (JSON-encoded, nil for no body) and decodes the JSON
// response into out. A 204 No Content or an empty body is the empty result:
// out is left untouched and no error is returned. out may be nil when the
// caller does not care about the body.
func (c *Client) Call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("graph: encoding %s %s request: %w", method, path, err)
		}

		body = bytes.NewReader(data)
	}

	return c.send(ctx, method, path, body, contentTypeJSON, out)
}

// send performs one request with an arbitrary body and content type and
// decodes the response like Call.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}

	return c.decodeResponse(resp, method, path, out)
}

// decodeResponse reads and closes resp.Body and decodes it into out unless
// the response is empty.
func (c *Client) decodeResponse(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("graph: reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		c.logger.Debug("empty response body",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return nil
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("graph: decoding %s %s response: %w", method, path, err)
	}

	return nil
}

// do performs the request with the given content type and classifies the
// status code.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("graph: creating request: %w", err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return nil, fmt.Errorf("graph: obtaining token: %w", err)
	}

	clientReqID := c.newRequestID()

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(clientRequestIDKey, clientReqID)

	c.logger.Debug("sending request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("client_request_id", clientReqID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("graph: request canceled: %w", ctx.Err())
		}

		return nil, fmt.Errorf("graph: %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	errBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	graphErr := &GraphError{
		StatusCode:      resp.StatusCode,
		RequestID:       resp.Header.Get("request-id"),
		ClientRequestID: clientReqID,
		Message:         string(errBody),
		Err:             classifyStatus(resp.StatusCode),
	}

	c.logger.Warn("request failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", graphErr.RequestID),
		slog.String("client_request_id", clientReqID),
	)

	return nil, graphErr
}
