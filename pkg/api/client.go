// Package api is the REST client for the Tabletools notification
// endpoints. The realtime connection delivers new notifications; this
// client covers everything that needs request/response semantics: listing
// history and persisting read/dismiss state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tabletools/core/config"
	"github.com/tabletools/core/errors"
	"github.com/tabletools/core/pkg/models"
)

// Client talks to the notification REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ListOptions controls pagination of List.
type ListOptions struct {
	Page    int
	PerPage int
	Unread  bool // only unread entries
}

// ListResult is the server's listing envelope: a page of notifications
// plus the authoritative unread count.
type ListResult struct {
	Items       []*models.Notification `json:"items"`
	UnreadCount int                    `json:"unreadCount"`
	Total       int                    `json:"total"`
	Page        int                    `json:"page"`
}

// NewClient creates a REST client from backend configuration.
func NewClient(cfg config.BackendConfig) *Client {
	timeout := cfg.RequestTimeout.Std()
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(httpBase(cfg.URL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP creates a client with a caller-supplied http.Client.
// Tests use it to point at a local server.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.DefaultRequestTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// List fetches a page of notifications together with the unread count.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Unread {
		query.Set("unread", "true")
	}

	body, err := c.request(ctx, http.MethodGet, "/api/notifications", query, nil)
	if err != nil {
		return nil, err
	}

	var result ListResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAPIRequest, "failed to decode notification listing")
	}
	return &result, nil
}

// MarkRead persists the read flag for one notification.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	path := "/api/notifications/" + url.PathEscape(id) + "/read"
	_, err := c.request(ctx, http.MethodPost, path, nil, nil)
	return err
}

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil)
	return err
}

// Delete removes one notification.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := "/api/notifications/" + url.PathEscape(id)
	_, err := c.request(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// ClearAll removes every notification.
func (c *Client) ClearAll(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodDelete, "/api/notifications", nil, nil)
	return err
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	op := method + " " + path

	var reqBody io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeAPIRequest, "failed to encode request body")
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, errors.APIFailed(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.APIFailed(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.APIFailed(op, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotificationNotFound(path)
	}
	if resp.StatusCode >= 400 {
		apiErr := errors.APIBadStatus(op, resp.StatusCode)
		if msg := errorMessage(body); msg != "" {
			apiErr = apiErr.WithDetail("message", msg)
		}
		return nil, apiErr
	}
	return body, nil
}

// errorMessage pulls a human-readable message out of an error response
// body, tolerating both {"error": "..."} and {"error": {"message": "..."}}.
func errorMessage(body []byte) string {
	var flat struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &flat); err == nil {
		if flat.Error != "" {
			return flat.Error
		}
		if flat.Message != "" {
			return flat.Message
		}
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	return ""
}

// httpBase converts a possibly ws(s) configured URL into the http(s) base
// for REST calls.
func httpBase(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = ""
	return u.String()
}
