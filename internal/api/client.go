// Package api talks to the customer-tracking backend over HTTP.
//
// Every call is a single attempt. A failed call returns an error and
// leaves the caller's state untouched; there is no retry.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/dexcel/internal/types"
)

// Backend is the set of operations the client needs from a server.
type Backend interface {
	Snapshot(ctx context.Context) (*types.Snapshot, error)
	Templates(ctx context.Context) (*types.Templates, error)
	SetRowStatus(ctx context.Context, req types.StatusRequest) (string, error)
	AddRow(ctx context.Context, values []string) (string, error)
	Import(ctx context.Context, path string) (string, error)
	Merge(ctx context.Context, paths []string) (string, error)
	SaveTemplates(ctx context.Context, t types.Templates) (string, error)
}

// Client speaks the /api/data style backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient returns a client for the backend at baseURL. A nil
// httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// call issues one request and decodes a JSON reply into out.
func (c *Client) call(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend unreachable", "endpoint", endpoint, "error", err)
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Endpoint: endpoint, Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Detail = eb.Detail
			if apiErr.Detail == "" {
				apiErr.Detail = eb.Error
			}
		}
		c.logger.Warn("backend error", "endpoint", endpoint, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{Endpoint: endpoint, Err: fmt.Errorf("decoding reply: %w", err)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return c.call(ctx, http.MethodGet, endpoint, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", endpoint, err)
	}
	return c.call(ctx, http.MethodPost, endpoint, bytes.NewReader(payload), "application/json", out)
}

// postFiles uploads paths as a multipart form, each under field.
func (c *Client) postFiles(ctx context.Context, endpoint, field string, paths []string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, path := range paths {
		if err := appendFile(w, field, path); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("building form for %s: %w", endpoint, err)
	}

	return c.call(ctx, http.MethodPost, endpoint, &buf, w.FormDataContentType(), out)
}

func appendFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func (c *Client) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	var snap types.Snapshot
	if err := c.getJSON(ctx, "/api/data", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) Templates(ctx context.Context) (*types.Templates, error) {
	var t types.Templates
	if err := c.getJSON(ctx, "/api/templates", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) SetRowStatus(ctx context.Context, req types.StatusRequest) (string, error) {
	var reply types.Reply
	if err := c.postJSON(ctx, "/api/row/status", req, &reply); err != nil {
		return "", err
	}
	c.logger.Info("row status updated", "row", req.ExcelRow, "convertita", req.Converted, "non_convertita", req.NotConverted, "pulisci", req.Clear)
	return reply.Message, nil
}

func (c *Client) AddRow(ctx context.Context, values []string) (string, error) {
	var reply types.Reply
	body := struct {
		Values []string `json:"values"`
	}{values}
	if err := c.postJSON(ctx, "/api/row/add", body, &reply); err != nil {
		return "", err
	}
	c.logger.Info("row added", "values", len(values))
	return reply.Message, nil
}

func (c *Client) Import(ctx context.Context, path string) (string, error) {
	var reply types.Reply
	if err := c.postFiles(ctx, "/api/import", "file", []string{path}, &reply); err != nil {
		return "", err
	}
	c.logger.Info("file imported", "file", filepath.Base(path))
	return reply.Message, nil
}

func (c *Client) Merge(ctx context.Context, paths []string) (string, error) {
	var reply types.Reply
	if err := c.postFiles(ctx, "/api/merge", "files", paths, &reply); err != nil {
		return "", err
	}
	c.logger.Info("files merged", "count", len(paths))
	return reply.Message, nil
}

func (c *Client) SaveTemplates(ctx context.Context, t types.Templates) (string, error) {
	var reply types.Reply
	if err := c.postJSON(ctx, "/api/templates/save", t, &reply); err != nil {
		return "", err
	}
	c.logger.Info("templates saved")
	return reply.Message, nil
}
