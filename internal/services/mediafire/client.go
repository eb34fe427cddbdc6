// Package mediafire wraps the MediaFire REST API for file hosting: session
// establishment, simple uploads, and download-link resolution.
package mediafire

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"craftpress/internal/config"
	"craftpress/internal/services"
)

const defaultHTTPTimeout = 120 * time.Second

// Client talks to the MediaFire API configured in the mediafire section.
// Session tokens are cached and re-established when a call reports an
// invalid session.
type Client struct {
	cfg        config.MediaFire
	httpClient *http.Client

	mu           sync.Mutex
	sessionToken string
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

// NewClient constructs a MediaFire client.
func NewClient(cfg config.MediaFire, opts ...Option) *Client {
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
func (c *Client) Name() string { return "mediafire" }

// Upload pushes a local file to the configured folder and returns its public
// download link.
func (c *Client) Upload(ctx context.Context, filePath string) (string, error) {
	token, err := c.session(ctx)
	if err != nil {
		return "", err
	}

	quickKey, err := c.simpleUpload(ctx, token, filePath)
	if err != nil {
		return "", err
	}
	return c.downloadLink(ctx, token, quickKey)
}

// HealthCheck verifies the credentials by establishing a session and reading
// account info.
func (c *Client) HealthCheck(ctx context.Context) error {
	token, err := c.session(ctx)
	if err != nil {
		return err
	}
	values := url.Values{}
	values.Set("session_token", token)
	values.Set("response_format", "json")
	var decoded struct {
		Response struct {
			Result   string `json:"result"`
			UserInfo struct {
				Email string `json:"email"`
			} `json:"user_info"`
		} `json:"response"`
	}
	if err := c.call(ctx, "user/get_info.php", values, &decoded); err != nil {
		return err
	}
	if decoded.Response.Result != "Success" {
		return services.Wrap(services.ErrExternalService, "mediafire", "health check",
			fmt.Sprintf("result %q", decoded.Response.Result), nil)
	}
	return nil
}

// session returns a cached session token, establishing one on first use.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionToken != "" {
		return c.sessionToken, nil
	}

	if c.cfg.Email == "" || c.cfg.Password == "" {
		return "", services.Wrap(services.ErrConfiguration, "mediafire", "session", "email and password required", nil)
	}

	signature := sha1.Sum([]byte(c.cfg.Email + c.cfg.Password + c.cfg.AppID))
	values := url.Values{}
	values.Set("email", c.cfg.Email)
	values.Set("password", c.cfg.Password)
	values.Set("application_id", c.cfg.AppID)
	values.Set("signature", hex.EncodeToString(signature[:]))
	values.Set("token_version", "1")
	values.Set("response_format", "json")

	var decoded struct {
		Response struct {
			Result       string `json:"result"`
			SessionToken string `json:"session_token"`
			Message      string `json:"message"`
		} `json:"response"`
	}
	if err := c.call(ctx, "user/get_session_token.php", values, &decoded); err != nil {
		return "", err
	}
	if decoded.Response.Result != "Success" || decoded.Response.SessionToken == "" {
		return "", services.Wrap(services.ErrExternalService, "mediafire", "session",
			fmt.Sprintf("result %q: %s", decoded.Response.Result, decoded.Response.Message), nil)
	}
	c.sessionToken = decoded.Response.SessionToken
	return c.sessionToken, nil
}

func (c *Client) simpleUpload(ctx context.Context, token, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read upload source: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish multipart body: %w", err)
	}

	values := url.Values{}
	values.Set("session_token", token)
	values.Set("response_format", "json")
	values.Set("action_on_duplicate", "replace")
	if c.cfg.FolderKey != "" {
		values.Set("folder_key", c.cfg.FolderKey)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "upload/simple.php")
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	endpoint += "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "upload", "simple upload", "request failed", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "upload", "simple upload", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternalService, "upload", "simple upload",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}

	var decoded struct {
		Response struct {
			Result   string `json:"result"`
			Message  string `json:"message"`
			DoUpload struct {
				QuickKey string `json:"quickkey"`
			} `json:"doupload"`
			QuickKey string `json:"quickkey"`
		} `json:"response"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalService, "upload", "simple upload", "decode response", err)
	}
	if decoded.Response.Result != "Success" {
		return "", services.Wrap(services.ErrExternalService, "upload", "simple upload",
			fmt.Sprintf("result %q: %s", decoded.Response.Result, decoded.Response.Message), nil)
	}
	quickKey := decoded.Response.QuickKey
	if quickKey == "" {
		quickKey = decoded.Response.DoUpload.QuickKey
	}
	if quickKey == "" {
		return "", services.Wrap(services.ErrDegenerate, "upload", "simple upload", "no quickkey in response", nil)
	}
	return quickKey, nil
}

func (c *Client) downloadLink(ctx context.Context, token, quickKey string) (string, error) {
	values := url.Values{}
	values.Set("session_token", token)
	values.Set("quick_key", quickKey)
	values.Set("link_type", "normal_download")
	values.Set("response_format", "json")

	var decoded struct {
		Response struct {
			Result string `json:"result"`
			Links  []struct {
				NormalDownload string `json:"normal_download"`
			} `json:"links"`
		} `json:"response"`
	}
	if err := c.call(ctx, "file/get_links.php", values, &decoded); err != nil {
		return "", err
	}
	if decoded.Response.Result != "Success" || len(decoded.Response.Links) == 0 || decoded.Response.Links[0].NormalDownload == "" {
		return "", services.Wrap(services.ErrDegenerate, "upload", "get links", "no download link in response", nil)
	}
	return decoded.Response.Links[0].NormalDownload, nil
}

func (c *Client) call(ctx context.Context, path string, values url.Values, target any) error {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalService, "mediafire", path, "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrExternalService, "mediafire", path, "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalService, "mediafire", path,
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return services.Wrap(services.ErrExternalService, "mediafire", path, "decode response", err)
	}
	return nil
}
