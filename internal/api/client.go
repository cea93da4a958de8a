// Package api is the JSON-over-HTTP client for the DBC editor server.
// Every mutation is a single request with a single pass/fail outcome; the
// caller owns retry policy (there is none) and refreshing the snapshot
// afterwards.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/trailtech/dbcstudio/internal/types"
)

// Error is a failure reported by the server. Message carries the server's
// "error" field when present, else a generic fallback.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Client talks to a single DBC editor server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one JSON request and decodes the JSON response into out (when
// non-nil). The response body is parsed regardless of status so server
// error messages survive normalization.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Error string `json:"error"`
		}
		msg := "Request failed"
		if json.Unmarshal(raw, &failure) == nil && failure.Error != "" {
			msg = failure.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FetchDatabase retrieves the full database snapshot.
func (c *Client) FetchDatabase(ctx context.Context) (*types.Database, error) {
	var db types.Database
	if err := c.do(ctx, http.MethodGet, "/api/database", nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// CreateMessage adds a new message.
func (c *Client) CreateMessage(ctx context.Context, msg types.MessageUpdate) error {
	return c.do(ctx, http.MethodPost, "/api/messages", msg, nil)
}

// UpdateMessage updates the message addressed by frameID. The body may carry
// a different frame id when the operator renumbers the frame.
func (c *Client) UpdateMessage(ctx context.Context, frameID uint32, msg types.MessageUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/messages/%d", frameID), msg, nil)
}

// DeleteMessage removes a message and all its signals.
func (c *Client) DeleteMessage(ctx context.Context, frameID uint32) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/messages/%d", frameID), nil, nil)
}

// CreateSignal adds a signal to the message addressed by frameID.
func (c *Client) CreateSignal(ctx context.Context, frameID uint32, sig types.SignalUpdate) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/messages/%d/signals", frameID), sig, nil)
}

// UpdateSignal updates a signal addressed by its name within a message.
func (c *Client) UpdateSignal(ctx context.Context, frameID uint32, name string, sig types.SignalUpdate) error {
	path := fmt.Sprintf("/api/messages/%d/signals/%s", frameID, url.PathEscape(name))
	return c.do(ctx, http.MethodPut, path, sig, nil)
}

// DeleteSignal removes a signal from a message.
func (c *Client) DeleteSignal(ctx context.Context, frameID uint32, name string) error {
	path := fmt.Sprintf("/api/messages/%d/signals/%s", frameID, url.PathEscape(name))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateNode adds a new node.
func (c *Client) CreateNode(ctx context.Context, node types.NodeUpdate) error {
	return c.do(ctx, http.MethodPost, "/api/nodes", node, nil)
}

// UpdateNode updates the comment of an existing node. The name is identity
// and never changes.
func (c *Client) UpdateNode(ctx context.Context, name string, node types.NodeUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/nodes/"+url.PathEscape(name), node, nil)
}

// DeleteNode removes a node. Messages and signals referencing it keep their
// dangling sender/receiver entries; the server does not cascade.
func (c *Client) DeleteNode(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/nodes/"+url.PathEscape(name), nil, nil)
}

// Save commits the server's in-memory database to its backing file and
// returns the server's confirmation message.
func (c *Client) Save(ctx context.Context) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/save", nil, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// Reload discards the server's in-memory state and re-reads its file.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/reload", nil, nil)
}

// Download fetches the exported database file and writes it to destPath.
func (c *Client) Download(ctx context.Context, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/download", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeResponse(resp, nil)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Upload replaces the server's database with the given file, sent as a
// multipart form under the field name "file". Returns the server message.
func (c *Client) Upload(ctx context.Context, filePath string) (string, error) {
	src, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Message string `json:"message"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}
