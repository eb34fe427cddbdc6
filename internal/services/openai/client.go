// Package openai wraps the OpenAI chat-completion and image-generation APIs
// for description writing, taxonomy fallback classification, and post images.
// Calls are single-shot; retry policy belongs to the caller.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"craftpress/internal/config"
	"craftpress/internal/services"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	// Descriptions shorter than this read like refusals or truncations and
	// are treated as degenerate output.
	minDescriptionLength = 50
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// Client talks to the OpenAI-compatible API configured in the openai section.
type Client struct {
	cfg        config.OpenAI
	imagesDir  string
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

// NewClient constructs an OpenAI client. imagesDir is where reusable and
// generated post images live.
func NewClient(cfg config.OpenAI, imagesDir string, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		imagesDir:  imagesDir,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Name identifies the client for health reporting.
func (c *Client) Name() string { return "openai" }

const descriptionSystemPrompt = "You write enthusiastic, SEO-friendly blog descriptions for papercraft " +
	"model downloads. Given a model name, respond with two or three sentences describing the model, " +
	"its difficulty, and who would enjoy building it. Respond with plain text only."

// GenerateDescription produces the post description for a display name.
// Output shorter than the degenerate threshold is rejected with an error so
// the caller can retry.
func (c *Client) GenerateDescription(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "content", "generate description", "name required", nil)
	}
	content, err := c.Complete(ctx, descriptionSystemPrompt, fmt.Sprintf("Model name: %s", name))
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if len(content) < minDescriptionLength {
		return "", services.Wrap(services.ErrDegenerate, "content", "generate description",
			fmt.Sprintf("description too short (%d chars)", len(content)), nil)
	}
	return content, nil
}

// GetOrGenerateImage returns a local image for the asset. An image already
// present in the images directory wins over generation; a generated image is
// decoded from the API response and saved there for reuse. With generation
// disabled and no local image the asset cannot proceed, so that is an error.
func (c *Client) GetOrGenerateImage(ctx context.Context, name string) (string, error) {
	slug := imageSlug(name)
	if slug == "" {
		return "", services.Wrap(services.ErrValidation, "image", "resolve image", "name required", nil)
	}

	for _, ext := range imageExtensions {
		candidate := filepath.Join(c.imagesDir, slug+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat image candidate: %w", err)
		}
	}

	if c.cfg.ImageModel == "" {
		return "", services.Wrap(services.ErrConfiguration, "image", "resolve image",
			"no local image and image generation is disabled", nil)
	}
	return c.generateImage(ctx, name, slug)
}

func (c *Client) generateImage(ctx context.Context, name, slug string) (string, error) {
	payload := imageRequest{
		Model:          c.cfg.ImageModel,
		Prompt:         fmt.Sprintf("Product photo of an assembled papercraft model of %s on a clean white background, studio lighting.", name),
		N:              1,
		Size:           c.cfg.ImageSize,
		ResponseFormat: "b64_json",
	}
	body, err := c.post(ctx, "images/generations", payload)
	if err != nil {
		return "", err
	}

	var decoded imageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalService, "image", "generate image", "decode response", err)
	}
	if len(decoded.Data) == 0 || decoded.Data[0].B64JSON == "" {
		return "", services.Wrap(services.ErrDegenerate, "image", "generate image", "empty image payload", nil)
	}
	raw, err := base64.StdEncoding.DecodeString(decoded.Data[0].B64JSON)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "image", "generate image", "decode image bytes", err)
	}

	if err := os.MkdirAll(c.imagesDir, 0o755); err != nil {
		return "", fmt.Errorf("create images directory: %w", err)
	}
	target := filepath.Join(c.imagesDir, slug+".png")
	if err := os.WriteFile(target, raw, 0o644); err != nil {
		return "", fmt.Errorf("write generated image: %w", err)
	}
	return target, nil
}

// Complete issues a single chat completion and returns the first message
// content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
	}
	body, err := c.post(ctx, "chat/completions", payload)
	if err != nil {
		return "", err
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalService, "content", "chat completion", "decode response", err)
	}
	if decoded.Error != nil {
		return "", services.Wrap(services.ErrExternalService, "content", "chat completion",
			strings.TrimSpace(decoded.Error.Message), nil)
	}
	if len(decoded.Choices) == 0 {
		return "", services.Wrap(services.ErrDegenerate, "content", "chat completion", "empty choices", nil)
	}
	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

// HealthCheck verifies the API key by listing models.
func (c *Client) HealthCheck(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "openai", "health check", "api key required", nil)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models")
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalService, "openai", "health check", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrExternalService, "openai", "health check",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "openai", path, "api key required", nil)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "openai", path, "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "openai", path, "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrExternalService, "openai", path,
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return body, nil
}

// imageSlug derives the filename stem used for cached and generated images.
func imageSlug(name string) string {
	var b strings.Builder
	prevSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevSep = false
		default:
			if !prevSep && b.Len() > 0 {
				b.WriteRune('_')
			}
			prevSep = true
		}
	}
	return strings.Trim(b.String(), "_")
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}
