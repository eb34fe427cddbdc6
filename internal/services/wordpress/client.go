// Package wordpress wraps the WordPress REST API for publishing: featured
// image upload, category resolution, and post creation.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"craftpress/internal/config"
	"craftpress/internal/services"
)

const defaultHTTPTimeout = 30 * time.Second

// Client talks to the WordPress site configured in the wordpress section
// using application-password basic auth.
type Client struct {
	cfg        config.WordPress
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a WordPress client.
func NewClient(cfg config.WordPress, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Name identifies the client for health reporting.
func (c *Client) Name() string { return "wordpress" }

// CreatePost publishes one post. The image, when present, is uploaded first
// and attached as the featured media; the category is resolved or created on
// the site before the post references it.
func (c *Client) CreatePost(ctx context.Context, post services.PostRequest) (services.PostRef, error) {
	var mediaID int64
	if post.ImagePath != "" {
		id, err := c.uploadMedia(ctx, post.ImagePath)
		if err != nil {
			return services.PostRef{}, err
		}
		mediaID = id
	}

	categoryID, err := c.ensureCategory(ctx, post.Category.Name)
	if err != nil {
		return services.PostRef{}, err
	}

	payload := map[string]any{
		"title":   post.Title,
		"content": post.Body,
		"status":  "publish",
	}
	if categoryID > 0 {
		payload["categories"] = []int64{categoryID}
	}
	if mediaID > 0 {
		payload["featured_media"] = mediaID
	}

	var decoded struct {
		ID   int64  `json:"id"`
		Link string `json:"link"`
	}
	if err := c.postJSON(ctx, "wp/v2/posts", payload, &decoded); err != nil {
		return services.PostRef{}, err
	}
	if decoded.ID == 0 {
		return services.PostRef{}, services.Wrap(services.ErrDegenerate, "publish", "create post", "no post id in response", nil)
	}
	return services.PostRef{ID: decoded.ID, Link: decoded.Link}, nil
}

// HealthCheck verifies the credentials against the authenticated user route.
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint, err := c.restURL("wp/v2/users/me")
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.AppPassword)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalService, "wordpress", "health check", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrExternalService, "wordpress", "health check",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return nil
}

// uploadMedia pushes an image file to the media library and returns its id.
func (c *Client) uploadMedia(ctx context.Context, imagePath string) (int64, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return 0, fmt.Errorf("read image: %w", err)
	}

	endpoint, err := c.restURL("wp/v2/media")
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.AppPassword)
	fileName := filepath.Base(imagePath)
	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	var decoded struct {
		ID int64 `json:"id"`
	}
	if err := c.do(req, "publish", "upload media", &decoded); err != nil {
		return 0, err
	}
	if decoded.ID == 0 {
		return 0, services.Wrap(services.ErrDegenerate, "publish", "upload media", "no media id in response", nil)
	}
	return decoded.ID, nil
}

// ensureCategory resolves a category name to its site id, creating the term
// when the site does not have it yet. An empty name resolves to zero and the
// post falls back to the site default.
func (c *Client) ensureCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}

	endpoint, err := c.restURL("wp/v2/categories")
	if err != nil {
		return 0, err
	}
	searchURL := endpoint + "?" + url.Values{"search": {name}, "per_page": {"100"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.AppPassword)

	var matches []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := c.do(req, "publish", "find category", &matches); err != nil {
		return 0, err
	}
	for _, match := range matches {
		if strings.EqualFold(match.Name, name) {
			return match.ID, nil
		}
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := c.postJSON(ctx, "wp/v2/categories", map[string]any{"name": name}, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, services.Wrap(services.ErrDegenerate, "publish", "create category", "no term id in response", nil)
	}
	return created.ID, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, target any) error {
	endpoint, err := c.restURL(path)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.AppPassword)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "publish", path, target)
}

func (c *Client) do(req *http.Request, stage, operation string, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalService, stage, operation, "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrExternalService, stage, operation, "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrExternalService, stage, operation,
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return services.Wrap(services.ErrExternalService, stage, operation, "decode response", err)
	}
	return nil
}

func (c *Client) restURL(path string) (string, error) {
	endpoint, err := url.JoinPath(c.cfg.URL, "wp-json", path)
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	return endpoint, nil
}
